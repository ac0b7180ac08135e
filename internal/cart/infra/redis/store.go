// Package redis stores each user's cart as one JSON document under
// "cart:<userID>", refreshed to the configured TTL on every write.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/dwikikusuma/marketplace/internal/cart/app"
	"github.com/dwikikusuma/marketplace/internal/cart/domain"
)

const maxTxRetries = 10

var ErrContention = fmt.Errorf("%w: too much write contention", app.ErrConflict)

type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string

	now   func() time.Time
	newID func() string
}

// NewStore wraps client. A zero ttl keeps carts until cleared.
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		prefix: "cart:",
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

var _ app.Store = (*Store)(nil)

func (s *Store) key(userID string) string { return s.prefix + userID }

func (s *Store) Get(ctx context.Context, userID string) ([]domain.Line, error) {
	return load(ctx, s.client, s.key(userID))
}

func (s *Store) Add(ctx context.Context, userID, productID string, quantity int32, pkg domain.Package, limit int32) ([]domain.Line, error) {
	return s.mutate(ctx, userID, func(lines []domain.Line) ([]domain.Line, error) {
		return domain.Merge(lines, userID, productID, quantity, pkg, limit, s.newID, s.now())
	})
}

func (s *Store) Remove(ctx context.Context, userID, lineID string) ([]domain.Line, error) {
	return s.mutate(ctx, userID, func(lines []domain.Line) ([]domain.Line, error) {
		return domain.Without(lines, lineID), nil
	})
}

func (s *Store) Update(ctx context.Context, userID, lineID string, quantity int32) (domain.Line, error) {
	var updated domain.Line
	_, err := s.mutate(ctx, userID, func(lines []domain.Line) ([]domain.Line, error) {
		out, line, ok := domain.SetQuantity(lines, lineID, quantity, s.now())
		if !ok {
			return nil, app.ErrLineNotFound
		}
		updated = line
		return out, nil
	})
	if err != nil {
		return domain.Line{}, err
	}
	return updated, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// mutate runs fn as an optimistic transaction on the user's key, retrying
// when another writer touched the key in between.
func (s *Store) mutate(ctx context.Context, userID string, fn func([]domain.Line) ([]domain.Line, error)) ([]domain.Line, error) {
	key := s.key(userID)
	var result []domain.Line

	txf := func(tx *redis.Tx) error {
		lines, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(lines)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if len(next) == 0 {
				p.Del(ctx, key)
				return nil
			}
			p.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			if result == nil {
				result = []domain.Line{}
			}
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrContention
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, key string) ([]domain.Line, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Line{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []domain.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lines == nil {
		lines = []domain.Line{}
	}
	return lines, nil
}
