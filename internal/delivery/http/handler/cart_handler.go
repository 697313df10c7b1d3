package handler

import (
	"errors"
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/service"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"

	"github.com/gorilla/mux"
)

type CartHandler struct {
	cartUsecase usecase.CartUsecase
	validator   *validator.CustomValidator
}

func NewCartHandler(cartUsecase usecase.CartUsecase, validator *validator.CustomValidator) *CartHandler {
	return &CartHandler{
		cartUsecase: cartUsecase,
		validator:   validator,
	}
}

// GetCart handles reading the caller's cart
// @Summary Get cart
// @Description Shipping is only charged on a non-empty cart.
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, "Cart retrieved successfully", h.cartUsecase.GetCart(r.Context(), userID))
}

// AddItem handles adding a product to the cart
// @Summary Add cart item
// @Description Adding a product already in the cart increases its quantity.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AddCartItemRequest true "Add Cart Item Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	cart, err := h.cartUsecase.AddItem(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to add item")
		return
	}

	response.Success(w, http.StatusOK, "Item added to cart", cart)
}

// UpdateItem handles changing a line quantity
// @Summary Update cart item
// @Description Quantities below one leave the cart unchanged.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body dto.UpdateCartItemRequest true "Update Cart Item Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.cartUsecase.UpdateItem(r.Context(), userID, mux.Vars(r)["id"], &req)
	if err != nil {
		h.writeError(w, err, "Failed to update item")
		return
	}

	response.Success(w, http.StatusOK, "Cart updated", cart)
}

// RemoveItem handles removing a line
// @Summary Remove cart item
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Response
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartUsecase.RemoveItem(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "Failed to remove item")
		return
	}

	response.Success(w, http.StatusOK, "Item removed from cart", cart)
}

// Clear handles emptying the cart
// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /cart [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartUsecase.Clear(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to clear cart")
		return
	}

	response.Success(w, http.StatusOK, "Cart cleared", cart)
}

// Checkout handles creating the payment intent
// @Summary Checkout
// @Description The cart is cleared once the payment intent exists.
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /cart/checkout [post]
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.cartUsecase.Checkout(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrCartEmpty:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.Error(w, http.StatusBadGateway, "Payment provider unavailable", nil)
		}
		return
	}

	response.Success(w, http.StatusOK, "Checkout started", result)
}

func (h *CartHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, usecase.ErrCartItemNotFound):
		response.NotFound(w, "Cart item not found")
	case errors.Is(err, usecase.ErrInsufficientStock):
		response.Error(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCartItem):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
