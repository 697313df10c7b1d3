package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type ProductHandler struct {
	productUsecase usecase.ProductUsecase
	validator      *validator.CustomValidator
}

func NewProductHandler(productUsecase usecase.ProductUsecase, validator *validator.CustomValidator) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		validator:      validator,
	}
}

// Create handles product creation
// @Summary Create a new product
// @Description Add a product to the shop catalogue (admin)
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "Create Product Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /admin/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	product, err := h.productUsecase.Create(r.Context(), adminID, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidPrice:
			response.ValidationError(w, map[string]string{"price": err.Error()})
		default:
			response.InternalServerError(w, "Failed to create product")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Product created successfully", product)
}

// GetAll handles getting all products
// @Summary Get all products
// @Description Get all products with pagination
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /products [get]
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	products, total, err := h.productUsecase.GetAll(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get products")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Products retrieved successfully", products, response.NewMeta(page, limit, total))
}

// GetByID handles getting a product by ID
// @Summary Get product by ID
// @Description Get a product by its ID
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productUsecase.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrProductNotFound:
			response.NotFound(w, "Product not found")
		default:
			response.InternalServerError(w, "Failed to get product")
		}
		return
	}

	response.Success(w, http.StatusOK, "Product retrieved successfully", product)
}

// Update handles product update
// @Summary Update a product
// @Description Update a product by its ID (admin)
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body dto.UpdateProductRequest true "Update Product Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	product, err := h.productUsecase.Update(r.Context(), adminID, id, &req)
	if err != nil {
		switch err {
		case usecase.ErrProductNotFound:
			response.NotFound(w, "Product not found")
		case usecase.ErrInvalidPrice:
			response.ValidationError(w, map[string]string{"price": err.Error()})
		default:
			response.InternalServerError(w, "Failed to update product")
		}
		return
	}

	response.Success(w, http.StatusOK, "Product updated successfully", product)
}

// Delete handles product deletion
// @Summary Delete a product
// @Description Delete a product by its ID (admin)
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productUsecase.Delete(r.Context(), adminID, id); err != nil {
		switch err {
		case usecase.ErrProductNotFound:
			response.NotFound(w, "Product not found")
		default:
			response.InternalServerError(w, "Failed to delete product")
		}
		return
	}

	response.Success(w, http.StatusOK, "Product deleted successfully", nil)
}
