package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
)

// MaxLineQuantity caps the quantity of a single item in one cart
const MaxLineQuantity = 1000

var (
	ErrInvalidSession  = errors.New("session id is required")
	ErrInvalidQuantity = errors.New("cart quantity out of range")
)

// CartStore keeps one cart per chat session.
// Lines come back in first-insertion order and every quantity stays in 1..MaxLineQuantity.
type CartStore interface {
	// Add increments item by quantity and returns the new quantity.
	// It fails with ErrInvalidQuantity, leaving the cart untouched, when
	// quantity is not positive or the line would exceed MaxLineQuantity.
	Add(ctx context.Context, sessionID, item string, quantity int) (int, error)
	Get(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryCartStore implements CartStore in process memory.
// With a ttl, carts not added to for that long are dropped, like the Redis store's key expiry.
type MemoryCartStore struct {
	mu        sync.Mutex
	carts     map[string]*sessionCart
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// sessionCart is the cart of a single session, guarded by its own lock.
// touched belongs to the store lock.
type sessionCart struct {
	mu         sync.Mutex
	order      []string
	quantities map[string]int
	touched    time.Time
}

// NewMemoryCartStore creates an empty in-memory cart store whose carts never expire
func NewMemoryCartStore() *MemoryCartStore {
	return NewMemoryCartStoreWithTTL(0)
}

// NewMemoryCartStoreWithTTL creates an in-memory cart store that drops carts
// idle for longer than ttl. A zero ttl keeps carts until they are cleared.
func NewMemoryCartStoreWithTTL(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string]*sessionCart),
		ttl:   ttl,
		now:   time.Now,
	}
}

// cart looks up the session's cart. With touch set it creates the cart when
// missing and refreshes its expiry.
func (s *MemoryCartStore) cart(sessionID string, touch bool) *sessionCart {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, exists := s.carts[sessionID]
	if exists && s.expired(c, now) {
		delete(s.carts, sessionID)
		c, exists = nil, false
	}

	if !touch {
		return c
	}

	if s.ttl > 0 && now.Sub(s.lastSweep) >= s.ttl {
		s.sweep(now)
	}
	if !exists {
		c = &sessionCart{quantities: make(map[string]int)}
		s.carts[sessionID] = c
	}
	c.touched = now
	return c
}

func (s *MemoryCartStore) expired(c *sessionCart, now time.Time) bool {
	return s.ttl > 0 && now.Sub(c.touched) >= s.ttl
}

// sweep drops every expired cart so abandoned sessions do not pile up.
// Callers hold s.mu.
func (s *MemoryCartStore) sweep(now time.Time) {
	for id, c := range s.carts {
		if s.expired(c, now) {
			delete(s.carts, id)
		}
	}
	s.lastSweep = now
}

// Add increments the quantity of item in the session's cart
func (s *MemoryCartStore) Add(ctx context.Context, sessionID, item string, quantity int) (int, error) {
	if sessionID == "" {
		return 0, ErrInvalidSession
	}

	if quantity <= 0 || quantity > MaxLineQuantity {
		return 0, ErrInvalidQuantity
	}

	c := s.cart(sessionID, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.quantities[item]
	if current+quantity > MaxLineQuantity {
		return 0, fmt.Errorf("%w: %s already has %d", ErrInvalidQuantity, item, current)
	}
	if !exists {
		c.order = append(c.order, item)
	}
	c.quantities[item] += quantity

	return c.quantities[item], nil
}

// Get returns the session's cart lines in insertion order
func (s *MemoryCartStore) Get(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	c := s.cart(sessionID, false)
	if c == nil {
		return []models.CartLine{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]models.CartLine, 0, len(c.order))
	for _, item := range c.order {
		lines = append(lines, models.CartLine{Item: item, Quantity: c.quantities[item]})
	}
	return lines, nil
}

// Clear drops the session's cart
func (s *MemoryCartStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// Sessions returns how many sessions currently hold a cart, expired ones included until swept
func (s *MemoryCartStore) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Ping always succeeds for the in-memory store
func (s *MemoryCartStore) Ping(ctx context.Context) error {
	return nil
}
