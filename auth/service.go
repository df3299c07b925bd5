package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/core/log"
	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

// Service orchestrates login and registration over the user store, the
// password hasher and the token codec. It holds no mutable state.
type Service struct {
	users  store.UserStore
	hasher *PasswordHasher
	codec  *TokenCodec
	logger *zap.Logger
}

// NewService creates an authentication service
func NewService(users store.UserStore, hasher *PasswordHasher, codec *TokenCodec, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
		logger: logger,
	}
}

// Login verifies the credentials and issues a bearer token. Unknown logins
// and wrong passwords fail identically with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, login, password string) (*IssuedToken, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison so the miss costs the same as a mismatch
			s.hasher.VerifyDummy(password)
			metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Login)
	if err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info("User logged in",
		zap.String("login", log.SanitizeLogin(user.Login)),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// Register creates a new credential record with the given role. The
// existence check and the write are not atomic; when two registrations
// race, the store's unique constraint decides and the conflict is reported
// as ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, login, password string, role Role) (*store.User, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(login) == "" {
		fields["login"] = "Invalid username"
	}
	if strings.TrimSpace(password) == "" {
		fields["password"] = "Invalid password"
	}
	if len(fields) > 0 {
		return nil, &InvalidInputError{Fields: fields}
	}

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, store.ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: hash,
		Role:         string(role),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, store.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info("User registered",
		zap.String("login", log.SanitizeLogin(user.Login)),
		zap.String("role", user.Role))

	return user, nil
}
