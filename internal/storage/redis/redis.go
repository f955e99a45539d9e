// Package redis keeps sessions in redis hashes that expire together with
// the session, plus a per-user set used to revoke every session of a user.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

var _ storage.SessionStorage = (*SessionStorage)(nil)

const (
	fieldUserID    = "user_id"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

type SessionStorage struct {
	logger zerolog.Logger
	client goredis.UniversalClient
	prefix string
}

func NewSessionStorage(logger zerolog.Logger, client goredis.UniversalClient, prefix string) *SessionStorage {
	return &SessionStorage{
		logger: logger,
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStorage) sessionKey(id string) string {
	return s.prefix + id
}

func (s *SessionStorage) userKey(userID int64) string {
	return s.prefix + "user:" + strconv.FormatInt(userID, 10)
}

// CreateSession writes the session hash with a TTL that ends at ExpiresAt
// and records it in the user's index.
func (s *SessionStorage) CreateSession(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	key := s.sessionKey(session.ID)
	userKey := s.userKey(session.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, encodeSession(session))
		pipe.Expire(ctx, key, ttl)
		pipe.SAdd(ctx, userKey, session.ID)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to store session")
		return fmt.Errorf("storing session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Int64("user_id", session.UserID).
		Dur("ttl", ttl).
		Msg("stored session")
	return nil
}

func (s *SessionStorage) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("getting session: %w", storage.ErrNotFound)
	}

	session, err := decodeSession(id, data)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", id).
			Msg("failed to decode session")
		return nil, err
	}
	return session, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	key := s.sessionKey(id)

	rawUserID, err := s.client.HGet(ctx, key, fieldUserID).Result()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("deleting session: %w", storage.ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		return fmt.Errorf("deleting session: malformed user id %q: %w", rawUserID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SRem(ctx, s.userKey(userID), id)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", id).
		Msg("deleted session")
	return nil
}

func (s *SessionStorage) DeleteUserSessions(ctx context.Context, userID int64) error {
	userKey := s.userKey(userID)

	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("listing sessions of user %d: %w", userID, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, userKey)

	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("deleting sessions of user %d: %w", userID, err)
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int64("affected", deleted).
		Msg("deleted sessions by user id")
	return nil
}

func encodeSession(session *models.Session) map[string]any {
	return map[string]any{
		fieldUserID:    strconv.FormatInt(session.UserID, 10),
		fieldExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		fieldCreatedAt: session.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt: session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeSession(id string, data map[string]string) (*models.Session, error) {
	userID, err := strconv.ParseInt(data[fieldUserID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fieldUserID, err)
	}

	session := &models.Session{ID: id, UserID: userID}
	for field, dst := range map[string]*time.Time{
		fieldExpiresAt: &session.ExpiresAt,
		fieldCreatedAt: &session.CreatedAt,
		fieldUpdatedAt: &session.UpdatedAt,
	} {
		*dst, err = time.Parse(time.RFC3339Nano, data[field])
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", field, err)
		}
	}
	return session, nil
}
