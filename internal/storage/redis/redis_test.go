package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

func newTestStorage(t *testing.T) (*SessionStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStorage(zerolog.Nop(), client, "session:"), mr
}

func newSession(id string, userID int64, ttl time.Duration) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	session := newSession("abc", 7, time.Hour)
	require.NoError(t, s.CreateSession(ctx, session))

	assert.True(t, mr.Exists("session:abc"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("session:abc").Seconds(), 5)
	ok, err := mr.SIsMember("session:user:7", "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetSessionByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSessionExpiresWithTTL(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("abc", 7, time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, err := s.GetSessionByID(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateExpiredSession(t *testing.T) {
	s, _ := newTestStorage(t)
	err := s.CreateSession(context.Background(), newSession("old", 1, -time.Second))
	assert.Error(t, err)
}

func TestDeleteSession(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("abc", 7, time.Hour)))
	require.NoError(t, s.DeleteSession(ctx, "abc"))

	assert.False(t, mr.Exists("session:abc"))
	assert.ErrorIs(t, s.DeleteSession(ctx, "abc"), storage.ErrNotFound)
}

func TestDeleteUserSessions(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, newSession("a", 7, time.Hour)))
	require.NoError(t, s.CreateSession(ctx, newSession("b", 7, time.Hour)))
	require.NoError(t, s.CreateSession(ctx, newSession("c", 8, time.Hour)))

	require.NoError(t, s.DeleteUserSessions(ctx, 7))

	assert.False(t, mr.Exists("session:a"))
	assert.False(t, mr.Exists("session:b"))
	assert.False(t, mr.Exists("session:user:7"))
	assert.True(t, mr.Exists("session:c"))
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	_, err := decodeSession("x", map[string]string{fieldUserID: "nope"})
	assert.Error(t, err)

	_, err = decodeSession("x", map[string]string{fieldUserID: "1", fieldExpiresAt: "yesterday"})
	assert.Error(t, err)
}
