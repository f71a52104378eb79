package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// UserService implements signup.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	userID := strings.TrimSpace(in.UserID)
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if userID == "" || email == "" || name == "" || strings.TrimSpace(in.Role) == "" {
		return nil, domain.Validation("missing fields: userId, email, name, role")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.Validation("invalid role, allowed: ADMIN, CLIENT")
	}

	user := &domain.User{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}
