package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// CreateEventInput carries the fields of a new event and the acting user.
type CreateEventInput struct {
	ActorID           string
	EventID           string
	Name              string
	Date              string
	Status            string
	Country           string
	City              string
	RemainingQuantity int
}

// UpdateEventInput carries an allow-listed patch and the acting user.
type UpdateEventInput struct {
	ActorID string
	EventID string
	Patch   domain.EventPatch
}

// DeleteEventInput identifies the event to remove and the acting user.
type DeleteEventInput struct {
	ActorID string
	EventID string
}

// EventService is the admin surface over the inventory store.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	ListActive(ctx context.Context) ([]*domain.Event, error)
	Update(ctx context.Context, in UpdateEventInput) (*domain.Event, error)
	Delete(ctx context.Context, in DeleteEventInput) (*domain.Event, error)
}
