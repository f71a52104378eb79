package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// UserRepository is the identity store. Implementations return users in the
// canonical shape regardless of how the record was written.
type UserRepository interface {
	// Create inserts u. Returns domain.ErrUserExists if the id is taken.
	Create(ctx context.Context, u *domain.User) error
	// FindByID returns domain.ErrUserNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
