package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline-rpg/engine/pkg/session"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRedisStore(mr.Addr(), ttl, logger)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func testSession(userID string) *session.Session {
	sess := session.New(userID, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	sess.SetMode(session.ModeExploring)
	sess.Player.Gold = 75
	sess.Player.AddItem("potion")
	return sess
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testSession("user-1")))

	loaded, err := s.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.UserID())
	assert.Equal(t, session.ModeExploring, loaded.Mode)
	assert.Equal(t, 75, loaded.Player.Gold)
	assert.Equal(t, []string{"potion"}, loaded.Player.Inventory)
}

func TestRedisStoreLoadMissing(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Hour)

	_, err := s.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testSession("user-1")))
	require.NoError(t, s.Delete(ctx, "user-1"))

	_, err := s.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent session is not an error.
	assert.NoError(t, s.Delete(ctx, "user-1"))
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	s, mr := newTestRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testSession("user-1")))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:user-1"))

	// Every save slides the expiry forward.
	mr.FastForward(20 * time.Minute)
	require.NoError(t, s.Save(ctx, testSession("user-1")))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:user-1"))

	mr.FastForward(31 * time.Minute)
	_, err := s.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreLock(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	ok, err := s.Lock(ctx, "user-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Lock(ctx, "user-1", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, s.Unlock(ctx, "user-1"))
	ok, err = s.Lock(ctx, "user-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// An abandoned lock expires on its own.
	mr.FastForward(6 * time.Second)
	ok, err = s.Lock(ctx, "user-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStorePing(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	assert.NoError(t, s.Ping(ctx))

	mr.Close()
	assert.Error(t, s.Ping(ctx))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, testSession("user-1")))
	loaded, err := s.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 75, loaded.Player.Gold)

	// Loads return independent copies; mutating one does not leak into
	// the stored state.
	loaded.Player.Gold = 0
	again, err := s.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 75, again.Player.Gold)

	require.NoError(t, s.Delete(ctx, "user-1"))
	_, err = s.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
