package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

type authServiceImpl struct {
	logger        zerolog.Logger
	users         storage.UserStorage
	sessions      storage.SessionStorage
	jwtIssuer     string
	jwtSigningKey []byte
	tokenTTL      time.Duration
	now           func() time.Time
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserStorage,
	sessions storage.SessionStorage,
	jwtIssuer string,
	jwtSigningKey []byte,
	tokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:        logger,
		users:         users,
		sessions:      sessions,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: jwtSigningKey,
		tokenTTL:      tokenTTL,
		now:           time.Now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Name:      params.Name,
		Email:     params.Email,
		Password:  passwordHash,
		Role:      params.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, fmt.Errorf("%w: %w", ErrUserAlreadyExists,
				NewValidationError("email", "The email has already been taken."))
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("registered user")
	return result, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("email", params.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := comparePassword(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("session_id", result.SessionID).
		Msg("logged in")
	return result, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, principal models.Principal, all bool) error {
	if all {
		err := s.sessions.DeleteUserSessions(ctx, principal.ID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("user_id", principal.ID).
				Msg("failed to delete sessions by user id")
			return err
		}

		s.logger.Info().
			Int64("user_id", principal.ID).
			Msg("logged out everywhere")
		return nil
	}

	err := s.sessions.DeleteSession(ctx, principal.SessionID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().
			Err(err).
			Str("session_id", principal.SessionID).
			Msg("failed to delete session")
		return err
	}

	s.logger.Info().
		Int64("user_id", principal.ID).
		Str("session_id", principal.SessionID).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected token")
		return models.Principal{}, ErrInvalidToken
	}

	session, err := s.sessions.GetSessionByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Principal{}, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", claims.Subject).
			Msg("failed to select session by id")
		return models.Principal{}, err
	}

	if session.Expired(s.now()) {
		s.logger.Debug().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return models.Principal{}, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Principal{}, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", session.UserID).
			Msg("failed to select user by id")
		return models.Principal{}, err
	}

	return models.Principal{
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		SessionID: session.ID,
	}, nil
}

func (s *authServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:        sessionUUID.String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to insert session")
		return nil, err
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")

	token, err := s.generateToken(session)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	return &AuthResult{
		User:      user,
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authServiceImpl) parseToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSigningKey, nil
		},
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("failed to parse token: missing subject")
	}
	return claims, nil
}

func (s *authServiceImpl) generateToken(session *models.Session) (string, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.jwtIssuer,
		Subject:   session.ID,
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		NotBefore: jwt.NewNumericDate(session.CreatedAt),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
	})

	signed, err := token.SignedString(s.jwtSigningKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
