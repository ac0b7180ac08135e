package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/marketplace/internal/cart/app"
	"github.com/dwikikusuma/marketplace/internal/cart/domain"
)

// newTestStore talks to TEST_REDIS_ADDR when set and to an in-process server
// otherwise.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		s, _ := newMiniStore(t)
		return s
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	s := NewStore(client, time.Minute)
	s.prefix = "test-cart:" + uuid.NewString() + ":"
	return s
}

func newMiniStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, time.Minute), mr
}

var small = domain.Package{Name: "small", Price: "10"}

func TestStoreMergeAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	_, err = s.Add(ctx, "u1", "p1", 2, small, 0)
	require.NoError(t, err)
	lines, err := s.Add(ctx, "u1", "p1", 3, small, 0)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(5), lines[0].Quantity)

	updated, err := s.Update(ctx, "u1", lines[0].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), updated.Quantity)

	_, err = s.Update(ctx, "u1", "line-x", 1)
	assert.True(t, errors.Is(err, app.ErrLineNotFound))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(0), got[0].Quantity)
}

func TestStoreRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lines, err := s.Add(ctx, "u1", "p1", 1, small, 0)
	require.NoError(t, err)
	_, err = s.Add(ctx, "u2", "p1", 1, small, 0)
	require.NoError(t, err)

	same, err := s.Remove(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Len(t, same, 1)

	after, err := s.Remove(ctx, "u1", lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, after)

	require.NoError(t, s.Clear(ctx, "u1"))
	other, err := s.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestStoreConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const n = 5
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := s.Add(gctx, "u1", "p1", 1, small, 0)
			return err
		})
	}
	require.NoError(t, g.Wait())

	lines, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(n), lines[0].Quantity)
}

func TestStoreRefreshesTTLOnWrite(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t)
	key := s.key("u1")

	_, err := s.Add(ctx, "u1", "p1", 1, small, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(40 * time.Second)
	_, err = s.Add(ctx, "u1", "p1", 1, small, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(key))
	lines, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStoreDeletesKeyWhenLastLineGoes(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t)

	lines, err := s.Add(ctx, "u1", "p1", 1, small, 0)
	require.NoError(t, err)
	require.True(t, mr.Exists(s.key("u1")))

	after, err := s.Remove(ctx, "u1", lines[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, after)
	assert.Empty(t, after)
	assert.False(t, mr.Exists(s.key("u1")))
}

func TestStoreUpdateUnknownLine(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t)

	_, err := s.Update(ctx, "nobody", "line-x", 3)
	assert.ErrorIs(t, err, app.ErrLineNotFound)
	assert.False(t, mr.Exists(s.key("nobody")))
}

func TestStoreAddRejectsOverLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newMiniStore(t)

	_, err := s.Add(ctx, "u1", "p1", 8, small, 10)
	require.NoError(t, err)
	_, err = s.Add(ctx, "u1", "p1", 3, small, 10)
	assert.ErrorIs(t, err, domain.ErrLineLimit)

	lines, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(8), lines[0].Quantity)
}

func TestStoreGivesUpUnderContention(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniStore(t)
	key := s.key("u1")

	attempts := 0
	s.now = func() time.Time {
		// Another writer lands between WATCH and EXEC on every attempt.
		attempts++
		mr.Set(key, "[]")
		return time.Now().UTC()
	}

	_, err := s.Add(ctx, "u1", "p1", 1, small, 0)
	assert.ErrorIs(t, err, ErrContention)
	assert.ErrorIs(t, err, app.ErrConflict)
	assert.Equal(t, maxTxRetries, attempts)
}
