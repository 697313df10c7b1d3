package usecase

import (
	"context"
	"errors"
	"strconv"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CartUsecase interface {
	GetCart(ctx context.Context, userID uuid.UUID) *dto.CartResponse
	AddItem(ctx context.Context, userID uuid.UUID, req *dto.AddCartItemRequest) (*dto.CartResponse, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, itemID string, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID string) (*dto.CartResponse, error)
	Clear(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*dto.CheckoutResponse, error)
}

type cartUsecase struct {
	log         *logrus.Logger
	productRepo repository.ProductRepository
	carts       *service.CartStore
	payments    repository.PaymentProvider
	currency    string
}

func NewCartUsecase(
	log *logrus.Logger,
	productRepo repository.ProductRepository,
	carts *service.CartStore,
	payments repository.PaymentProvider,
	currency string,
) CartUsecase {
	return &cartUsecase{
		log:         log,
		productRepo: productRepo,
		carts:       carts,
		payments:    payments,
		currency:    currency,
	}
}

func (u *cartUsecase) GetCart(ctx context.Context, userID uuid.UUID) *dto.CartResponse {
	return u.toCartResponse(u.carts.Load(ctx, userID))
}

// AddItem looks the product up so name, price and image come from the catalogue.
func (u *cartUsecase) AddItem(ctx context.Context, userID uuid.UUID, req *dto.AddCartItemRequest) (*dto.CartResponse, error) {
	product, err := u.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		u.log.Warnf("Failed to find product: %+v", err)
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	item := entity.CartItem{
		ID:       product.ID.String(),
		Name:     product.Name,
		Price:    product.Price,
		Quantity: req.Quantity,
		Image:    product.ImageURL,
	}

	cart, err := u.carts.Update(ctx, userID, func(c *service.Cart) error {
		if inCart(c, item.ID)+item.Quantity > product.Stock {
			return ErrInsufficientStock
		}
		return c.Add(ctx, item)
	})
	if err != nil {
		u.logMutationError("add to", userID, err)
		return nil, err
	}

	return u.toCartResponse(cart), nil
}

// UpdateItem sets the quantity of a line. Quantities below one are ignored.
func (u *cartUsecase) UpdateItem(ctx context.Context, userID uuid.UUID, itemID string, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	cart, err := u.carts.Update(ctx, userID, func(c *service.Cart) error {
		if inCart(c, itemID) == 0 {
			return ErrCartItemNotFound
		}
		return c.SetQuantity(ctx, itemID, req.Quantity)
	})
	if err != nil {
		u.logMutationError("update", userID, err)
		return nil, err
	}

	return u.toCartResponse(cart), nil
}

func (u *cartUsecase) RemoveItem(ctx context.Context, userID uuid.UUID, itemID string) (*dto.CartResponse, error) {
	cart, err := u.carts.Update(ctx, userID, func(c *service.Cart) error {
		return c.Remove(ctx, itemID)
	})
	if err != nil {
		u.logMutationError("remove from", userID, err)
		return nil, err
	}

	return u.toCartResponse(cart), nil
}

func (u *cartUsecase) Clear(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := u.carts.Update(ctx, userID, func(c *service.Cart) error {
		return c.Clear(ctx)
	})
	if err != nil {
		u.logMutationError("clear", userID, err)
		return nil, err
	}

	return u.toCartResponse(cart), nil
}

// Checkout creates a payment intent for the cart total. The cart is cleared
// only once the intent exists.
func (u *cartUsecase) Checkout(ctx context.Context, userID uuid.UUID) (*dto.CheckoutResponse, error) {
	var result *dto.CheckoutResponse

	_, err := u.carts.Update(ctx, userID, func(c *service.Cart) error {
		if c.IsEmpty() {
			return ErrCartEmpty
		}

		total := c.Total()
		intent, err := u.payments.CreatePaymentIntent(ctx, total, u.currency, map[string]string{
			"user_id": userID.String(),
			"items":   strconv.Itoa(c.Count()),
		})
		if err != nil {
			service.CartCheckoutsTotal.WithLabelValues("failed").Inc()
			u.log.Warnf("Failed to create payment intent for user %s: %+v", userID, err)
			return err
		}
		service.CartCheckoutsTotal.WithLabelValues("ok").Inc()

		result = &dto.CheckoutResponse{
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
			Amount:          total,
			Currency:        u.currency,
			CartCleared:     true,
		}

		if err := c.Clear(ctx); err != nil {
			result.CartCleared = false
			service.CartCheckoutsTotal.WithLabelValues("uncleared").Inc()
			u.log.Errorf("Payment intent %s created but cart of user %s not cleared: %+v", intent.ID, userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (u *cartUsecase) logMutationError(action string, userID uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrCartItemNotFound), errors.Is(err, service.ErrInvalidCartItem):
		return
	}
	u.log.Warnf("Failed to %s cart of user %s: %+v", action, userID, err)
}

func (u *cartUsecase) toCartResponse(c *service.Cart) *dto.CartResponse {
	return &dto.CartResponse{
		Items:       converter.CartItemsToResponses(c.Items()),
		Count:       c.Count(),
		Subtotal:    c.Subtotal(),
		ShippingFee: c.ShippingFee(),
		Total:       c.Total(),
		Currency:    u.currency,
	}
}

func inCart(c *service.Cart, id string) int {
	for _, item := range c.Items() {
		if item.ID == id {
			return item.Quantity
		}
	}
	return 0
}
