package sqlite

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

// CreateSession inserts a session.
func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.UserID,
		session.ExpiresAt.UTC(), session.CreatedAt.UTC(), session.UpdatedAt.UTC(),
	)
	if err != nil {
		err = translateError(err)
		s.logFailure(err).
			Int64("user_id", session.UserID).
			Msg("failed to insert session")
		return fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")
	return nil
}

// GetSessionByID retrieves a session by ID.
func (s *Storage) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM sessions WHERE id = ?", id)
	if err != nil {
		err = translateError(err)
		s.logFailure(err).
			Str("session_id", id).
			Msg("failed to select session by id")
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return row.model(), nil
}

// DeleteSession removes a session by ID.
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", id).
			Msg("failed to delete session")
		return fmt.Errorf("deleting session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting session: %w", storage.ErrNotFound)
	}
	return nil
}

// DeleteUserSessions removes every session of a user.
func (s *Storage) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to delete sessions by user id")
		return fmt.Errorf("deleting sessions of user %d: %w", userID, err)
	}
	return nil
}
