package usecase

import (
	"context"
	"errors"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
)

type ProductUsecase interface {
	Create(ctx context.Context, adminID uuid.UUID, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetAll(ctx context.Context, category string, page, limit int) ([]dto.ProductResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Update(ctx context.Context, adminID uuid.UUID, id uuid.UUID, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, adminID uuid.UUID, id uuid.UUID) error
}

type productUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	productRepo  repository.ProductRepository
	auditService service.AuditService
}

func NewProductUsecase(db *gorm.DB, log *logrus.Logger, productRepo repository.ProductRepository, auditService service.AuditService) ProductUsecase {
	return &productUsecase{
		db:           db,
		log:          log,
		productRepo:  productRepo,
		auditService: auditService,
	}
}

func (u *productUsecase) Create(ctx context.Context, adminID uuid.UUID, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	product := &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}

	if err := u.productRepo.Create(ctx, product); err != nil {
		u.log.Warnf("Failed to create product: %+v", err)
		return nil, err
	}

	u.audit(ctx, adminID, entity.AuditActionProductCreate, product.ID, nil, product)

	return converter.ProductToResponse(product), nil
}

func (u *productUsecase) GetAll(ctx context.Context, category string, page, limit int) ([]dto.ProductResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit

	products, total, err := u.productRepo.FindAll(ctx, category, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to list products: %+v", err)
		return nil, 0, err
	}

	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *converter.ProductToResponse(&products[i]))
	}

	return responses, total, nil
}

func (u *productUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	return converter.ProductToResponse(product), nil
}

func (u *productUsecase) Update(ctx context.Context, adminID uuid.UUID, id uuid.UUID, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	product, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	before := *product
	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.Price = req.Price
	product.Stock = req.Stock
	product.ImageURL = req.ImageURL

	if err := u.productRepo.Update(ctx, product); err != nil {
		u.log.Warnf("Failed to update product: %+v", err)
		return nil, err
	}

	u.audit(ctx, adminID, entity.AuditActionProductUpdate, product.ID, &before, product)

	return converter.ProductToResponse(product), nil
}

func (u *productUsecase) Delete(ctx context.Context, adminID uuid.UUID, id uuid.UUID) error {
	product, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	if err := u.productRepo.Delete(ctx, id); err != nil {
		u.log.Warnf("Failed to delete product: %+v", err)
		return err
	}

	u.audit(ctx, adminID, entity.AuditActionProductDelete, id, product, nil)

	return nil
}

// audit records catalogue changes. Failures are logged by the audit service only.
func (u *productUsecase) audit(ctx context.Context, adminID uuid.UUID, action string, productID uuid.UUID, before, after *entity.Product) {
	switch {
	case before == nil:
		u.auditService.LogCreate(ctx, u.db, &adminID, action, "product", productID.String(), after)
	case after == nil:
		u.auditService.LogDelete(ctx, u.db, &adminID, action, "product", productID.String(), before)
	default:
		u.auditService.LogUpdate(ctx, u.db, &adminID, action, "product", productID.String(), before, after)
	}
}
