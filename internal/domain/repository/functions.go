package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

type VideoRoom struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VideoProvider provisions rooms and meeting tokens for consultations.
type VideoProvider interface {
	CreateRoom(ctx context.Context, name string) (*VideoRoom, error)
	CreateMeetingToken(ctx context.Context, roomName, userName string, isOwner bool) (string, error)
}

// PaymentProvider creates payment intents for shop checkout.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentIntent, error)
}

// ChatProvider answers assistant conversations.
type ChatProvider interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
