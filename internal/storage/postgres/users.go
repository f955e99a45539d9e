package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (name,
                   email,
                   password,
                   role,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertUserQuery,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Debug().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Msg("inserted user")
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const selectUserByIDQuery = `
SELECT id,
       name,
       email,
       password,
       role,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	user, err := scanUser(s.pgPool.QueryRow(ctx, selectUserByIDQuery, id))
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Int64("user_id", id).
				Msg("failed to select user by id")
		}
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const selectUserByEmailQuery = `
SELECT id,
       name,
       email,
       password,
       role,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	user, err := scanUser(s.pgPool.QueryRow(ctx, selectUserByEmailQuery, email))
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("email", email).
				Msg("failed to select user by email")
		}
		return nil, err
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := new(models.User)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
