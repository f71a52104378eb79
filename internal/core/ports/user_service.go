package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// CreateUserInput is the signup payload after transport decoding.
type CreateUserInput struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
}
