package sqlite

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

// CreateUser inserts a user and sets its generated ID.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.Password, user.Role,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil {
		err = translateError(err)
		s.logFailure(err).
			Str("email", user.Email).
			Msg("failed to insert user")
		return fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = id

	s.logger.Debug().
		Int64("user_id", id).
		Msg("inserted user")
	return nil
}

// GetUserByID retrieves a single user by ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		err = translateError(err)
		s.logFailure(err).
			Int64("user_id", id).
			Msg("failed to select user by id")
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return row.model(), nil
}

// GetUserByEmail retrieves a single user by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM users WHERE email = ?", email)
	if err != nil {
		err = translateError(err)
		s.logFailure(err).
			Str("email", email).
			Msg("failed to select user by email")
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return row.model(), nil
}
