package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=99"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// Response DTOs

type CartItemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	Count       int                `json:"count"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	ShippingFee decimal.Decimal    `json:"shipping_fee"`
	Total       decimal.Decimal    `json:"total"`
	Currency    string             `json:"currency"`
}

// CheckoutResponse carries the payment intent. CartCleared is false when the
// intent exists but the cart still holds its items; clients must not check
// out again with it.
type CheckoutResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CartCleared     bool            `json:"cart_cleared"`
}
