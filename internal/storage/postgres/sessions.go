package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert session")
		return translateError(err)
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")
	return nil
}

func (s *Storage) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	session := &models.Session{ID: id}

	const selectSessionByIDQuery = `
SELECT user_id,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectSessionByIDQuery,
		session.ID,
	).Scan(
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("session_id", id).
				Msg("failed to select session by id")
		}
		return nil, err
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const deleteSessionQuery = `
DELETE FROM sessions
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteSessionQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", id).
			Msg("failed to delete session")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteUserSessions(ctx context.Context, userID int64) error {
	const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
WHERE user_id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteSessionsByUserIDQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to delete sessions by user id")
		return err
	}
	s.logger.Debug().
		Int64("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted sessions by user id")
	return nil
}
