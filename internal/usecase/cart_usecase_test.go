package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	repoimpl "mediconnect/internal/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KeyValueStore with a switchable write failure.
type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet error
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type stubPayments struct {
	err     error
	amounts []decimal.Decimal
}

func (p *stubPayments) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*repository.PaymentIntent, error) {
	p.amounts = append(p.amounts, amount)
	if p.err != nil {
		return nil, p.err
	}
	return &repository.PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", len(p.amounts)),
		ClientSecret: "secret",
		Amount:       amount.Shift(2).IntPart(),
		Currency:     currency,
	}, nil
}

type cartFixture struct {
	carts    CartUsecase
	kv       *memKV
	payments *stubPayments
	bandage  *entity.Product
	gauze    *entity.Product
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	products := repoimpl.NewProductRepository(db)

	bandage := &entity.Product{Name: "Bandage", Price: decimal.NewFromInt(10), Stock: 5}
	gauze := &entity.Product{Name: "Gauze", Price: decimal.NewFromInt(5), Stock: 10}
	require.NoError(t, products.Create(context.Background(), bandage))
	require.NoError(t, products.Create(context.Background(), gauze))

	kv := &memKV{data: map[string][]byte{}}
	store := service.NewCartStore(kv, log, decimal.RequireFromString("5.99"), time.Hour)
	t.Cleanup(store.Stop)

	payments := &stubPayments{}
	return &cartFixture{
		carts:    NewCartUsecase(log, products, store, payments, "eur"),
		kv:       kv,
		payments: payments,
		bandage:  bandage,
		gauze:    gauze,
	}
}

func TestCart_TotalsIncludeShipping(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.bandage.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.gauze.ID, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, cart.Count)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(25)), cart.Subtotal.String())
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("30.99")), cart.Total.String())
	assert.Equal(t, "eur", cart.Currency)

	empty := f.carts.GetCart(ctx, uuid.New())
	assert.Zero(t, empty.Count)
	assert.True(t, empty.ShippingFee.IsZero())
}

func TestCart_StockAndUnknownProducts(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.bandage.ID, Quantity: 4})
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.bandage.ID, Quantity: 2})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, 4, f.carts.GetCart(ctx, user).Count)
}

func TestCart_UpdateIgnoresNonPositiveQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := uuid.New()
	itemID := f.gauze.ID.String()

	_, err := f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.gauze.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := f.carts.UpdateItem(ctx, user, itemID, &dto.UpdateCartItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Count)

	cart, err = f.carts.UpdateItem(ctx, user, itemID, &dto.UpdateCartItemRequest{Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Count)

	_, err = f.carts.UpdateItem(ctx, user, "missing", &dto.UpdateCartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	cart, err = f.carts.RemoveItem(ctx, user, itemID)
	require.NoError(t, err)
	assert.Zero(t, cart.Count)
}

func TestCart_CheckoutClearsOnlyAfterPaymentIntent(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := f.carts.Checkout(ctx, user)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, f.payments.amounts)

	_, err = f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.bandage.ID, Quantity: 1})
	require.NoError(t, err)

	f.payments.err = errBackend
	_, err = f.carts.Checkout(ctx, user)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, f.carts.GetCart(ctx, user).Count)

	f.payments.err = nil
	res, err := f.carts.Checkout(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "pi_2", res.PaymentIntentID)
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("15.99")), res.Amount.String())
	assert.True(t, res.CartCleared)
	assert.True(t, f.carts.GetCart(ctx, user).Count == 0)
}

func TestCart_CheckoutReportsUnclearedCart(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := f.carts.AddItem(ctx, user, &dto.AddCartItemRequest{ProductID: f.gauze.ID, Quantity: 2})
	require.NoError(t, err)

	f.kv.failSet = errBackend
	res, err := f.carts.Checkout(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", res.PaymentIntentID)
	assert.False(t, res.CartCleared)
	assert.Equal(t, 2, f.carts.GetCart(ctx, user).Count)
}
