package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// CartKeyPrefix is followed by the identity id.
	CartKeyPrefix = "medical_cart:"

	// Interval for cleaning up stale cart mutexes
	cartLockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	cartLockStaleThreshold = 10 * time.Minute
)

var ErrInvalidCartItem = errors.New("invalid cart item")

// Cart is the hydrated cart of one identity. Every mutation persists the
// whole list before returning; if the write fails the previous list is
// restored and the error returned.
type Cart struct {
	key         string
	items       []entity.CartItem
	store       repository.KeyValueStore
	ttl         time.Duration
	shippingFee decimal.Decimal
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []entity.CartItem {
	return slices.Clone(c.items)
}

func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Add appends item, or merges its quantity into an existing line with the same id.
func (c *Cart) Add(ctx context.Context, item entity.CartItem) error {
	if item.ID == "" || item.Quantity < 1 {
		return ErrInvalidCartItem
	}

	next := slices.Clone(c.items)
	if i := c.indexOf(item.ID); i >= 0 {
		next[i].Quantity += item.Quantity
	} else {
		next = append(next, item)
	}
	return c.commit(ctx, next)
}

func (c *Cart) Remove(ctx context.Context, id string) error {
	next := slices.DeleteFunc(slices.Clone(c.items), func(item entity.CartItem) bool {
		return item.ID == id
	})
	return c.commit(ctx, next)
}

// SetQuantity replaces the quantity of one line. n < 1 is ignored.
func (c *Cart) SetQuantity(ctx context.Context, id string, n int) error {
	if n < 1 {
		return nil
	}

	next := slices.Clone(c.items)
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = n
		}
	}
	return c.commit(ctx, next)
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.commit(ctx, []entity.CartItem{})
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ShippingFee is the flat fee, or zero for an empty cart.
func (c *Cart) ShippingFee() decimal.Decimal {
	if c.IsEmpty() {
		return decimal.Zero
	}
	return c.shippingFee
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.ShippingFee())
}

func (c *Cart) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(item entity.CartItem) bool {
		return item.ID == id
	})
}

func (c *Cart) commit(ctx context.Context, next []entity.CartItem) error {
	previous := c.items
	c.items = next

	data, err := json.Marshal(next)
	if err == nil {
		err = c.store.Set(ctx, c.key, data, c.ttl)
	}
	if err != nil {
		c.items = previous
		return err
	}
	return nil
}

// CartStore loads carts from the key-value store and serialises mutations
// of one identity's cart inside this process.
type CartStore struct {
	store       repository.KeyValueStore
	log         *logrus.Logger
	ttl         time.Duration
	shippingFee decimal.Decimal

	// Per-identity mutex
	locks sync.Map // map[uuid.UUID]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewCartStore starts the background lock cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewCartStore(store repository.KeyValueStore, log *logrus.Logger, shippingFee decimal.Decimal, ttl time.Duration) *CartStore {
	s := &CartStore{
		store:       store,
		log:         log,
		ttl:         ttl,
		shippingFee: shippingFee,
		stopChan:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLockLoop()

	return s
}

// Stop gracefully shuts down the store.
// Safe to call multiple times.
func (s *CartStore) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("CartStore stopped")
	}
}

// Load hydrates the cart of identityID for reading. Missing or malformed data
// yields an empty cart, and so does a failed read.
func (s *CartStore) Load(ctx context.Context, identityID uuid.UUID) *Cart {
	cart, err := s.read(ctx, identityID)
	if err != nil {
		s.log.Warnf("Failed to read cart %s: %+v", cart.key, err)
	}
	return cart
}

// read hydrates the cart of identityID. Missing or malformed data yields an
// empty cart; a backend error is returned with an empty cart that must not be
// written back.
func (s *CartStore) read(ctx context.Context, identityID uuid.UUID) (*Cart, error) {
	cart := &Cart{
		key:         CartKeyPrefix + identityID.String(),
		items:       []entity.CartItem{},
		store:       s.store,
		ttl:         s.ttl,
		shippingFee: s.shippingFee,
	}

	data, err := s.store.Get(ctx, cart.key)
	if err != nil {
		return cart, err
	}
	if data == nil {
		return cart, nil
	}

	var items []entity.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warnf("Discarding malformed cart %s: %+v", cart.key, err)
		return cart, nil
	}
	if items != nil {
		cart.items = items
	}
	return cart, nil
}

// Update loads the cart under the identity's lock and applies fn to it.
// A failed read aborts before fn runs, so the stored cart is never replaced
// by an empty one. Otherwise the cart is returned even when fn fails, holding
// the last persisted state.
func (s *CartStore) Update(ctx context.Context, identityID uuid.UUID, fn func(*Cart) error) (*Cart, error) {
	mt := s.getLock(identityID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	cart, err := s.read(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("read cart %s: %w", cart.key, err)
	}
	err = fn(cart)
	return cart, err
}

func (s *CartStore) getLock(identityID uuid.UUID) *mutexWithTimestamp {
	mt, _ := s.locks.LoadOrStore(identityID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *CartStore) cleanupLockLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cartLockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Cart lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleLocks(time.Now().Add(-cartLockStaleThreshold))
		}
	}
}

// cleanupStaleLocks removes unused mutexes. TryLock skips locks in use and
// lastUsed is checked while holding the lock.
func (s *CartStore) cleanupStaleLocks(cutoff time.Time) int {
	var cleaned int

	s.locks.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if !mt.mu.TryLock() {
			return true
		}
		if mt.lastUsed.Load() < cutoff.Unix() {
			s.locks.Delete(key)
			cleaned++
		}
		mt.mu.Unlock()
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale cart locks", cleaned)
	}
	return cleaned
}
