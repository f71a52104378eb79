package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// EventRepository is the inventory store.
type EventRepository interface {
	// Create inserts a new event. Returns domain.ErrEventExists if the id is taken.
	Create(ctx context.Context, e *domain.Event) error
	// FindByID returns domain.ErrEventNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	// ListActive pages through the store until exhausted and returns every ACTIVE event.
	ListActive(ctx context.Context) ([]*domain.Event, error)
	// Update applies patch and returns the stored result, or domain.ErrEventNotFound.
	Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error)
	// Delete removes the event and returns its last values, or domain.ErrEventNotFound.
	Delete(ctx context.Context, id string) (*domain.Event, error)
	// MarkSoldOut flips the status to domain.StatusSoldOut only if no tickets remain.
	// flipped is false when the condition did not hold; that is not an error.
	MarkSoldOut(ctx context.Context, id string) (flipped bool, err error)
}
