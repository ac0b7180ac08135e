// Package memory keeps carts in process memory. Carts live as long as the
// process, or until PurgeIdle drops them.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/marketplace/internal/cart/app"
	"github.com/dwikikusuma/marketplace/internal/cart/domain"
)

type cart struct {
	lines   []domain.Line
	touched time.Time
}

// Store is safe for concurrent use; every operation holds the lock for its
// whole read-modify-write.
type Store struct {
	mu    sync.Mutex
	carts map[string]*cart

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		carts: make(map[string]*cart),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

var _ app.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, userID string) ([]domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return []domain.Line{}, nil
	}
	return domain.Clone(c.lines), nil
}

func (s *Store) Add(_ context.Context, userID, productID string, quantity int32, pkg domain.Package, limit int32) ([]domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []domain.Line
	if c, ok := s.carts[userID]; ok {
		current = c.lines
	}
	now := s.now()
	lines, err := domain.Merge(current, userID, productID, quantity, pkg, limit, s.newID, now)
	if err != nil {
		return nil, err
	}
	c := s.cartLocked(userID)
	c.lines = lines
	c.touched = now
	return domain.Clone(c.lines), nil
}

func (s *Store) Remove(_ context.Context, userID, lineID string) ([]domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return []domain.Line{}, nil
	}
	c.lines = domain.Without(c.lines, lineID)
	c.touched = s.now()
	return domain.Clone(c.lines), nil
}

func (s *Store) Update(_ context.Context, userID, lineID string, quantity int32) (domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return domain.Line{}, app.ErrLineNotFound
	}
	now := s.now()
	lines, updated, found := domain.SetQuantity(c.lines, lineID, quantity, now)
	if !found {
		return domain.Line{}, app.ErrLineNotFound
	}
	c.lines = lines
	c.touched = now
	return updated, nil
}

func (s *Store) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}

// PurgeIdle drops carts untouched for longer than ttl and returns how many
// were dropped.
func (s *Store) PurgeIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for userID, c := range s.carts {
		if c.touched.Before(cutoff) {
			delete(s.carts, userID)
			n++
		}
	}
	return n
}

func (s *Store) cartLocked(userID string) *cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart{}
		s.carts[userID] = c
	}
	return c
}
