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

type EventService struct {
	events ports.EventRepository
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewEventService(events ports.EventRepository, users ports.UserRepository, logger zerolog.Logger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new event on behalf of an administrator.
func (s *EventService) Create(ctx context.Context, in ports.CreateEventInput) (*domain.Event, error) {
	if err := s.requireAdmin(ctx, in.ActorID); err != nil {
		return nil, err
	}

	in.EventID = strings.TrimSpace(in.EventID)
	if in.EventID == "" {
		return nil, domain.Validation("EventId is required")
	}
	if in.RemainingQuantity < 0 {
		return nil, domain.Validation("Quantity must be >= 0")
	}
	status := domain.StatusActive
	if in.Status != "" {
		parsed, ok := domain.ParseEventStatus(in.Status)
		if !ok {
			return nil, domain.Validation("EventStatus is not a known status")
		}
		status = parsed
	}

	now := s.now()
	event := &domain.Event{
		ID:                in.EventID,
		Name:              in.Name,
		Date:              in.Date,
		Status:            status,
		Country:           in.Country,
		City:              in.City,
		RemainingQuantity: in.RemainingQuantity,
		UserID:            in.ActorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrEventExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("event_id", in.EventID).Msg("failed to create event")
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("user_id", in.ActorID).Int("quantity", event.RemainingQuantity).Msg("event created")
	return event, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Validation("EventId is required")
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListActive returns every event currently on sale.
func (s *EventService) ListActive(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Update applies the allow-listed patch on behalf of an administrator.
func (s *EventService) Update(ctx context.Context, in ports.UpdateEventInput) (*domain.Event, error) {
	if err := s.requireAdmin(ctx, in.ActorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.EventID) == "" {
		return nil, domain.Validation("EventId is required")
	}
	if in.Patch.IsEmpty() {
		return nil, domain.Validation("no valid fields to update")
	}
	if q := in.Patch.RemainingQuantity; q != nil && *q < 0 {
		return nil, domain.Validation("Quantity must be >= 0")
	}

	event, err := s.events.Update(ctx, in.EventID, in.Patch)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("event_id", in.EventID).Msg("failed to update event")
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.Info().Str("event_id", in.EventID).Str("user_id", in.ActorID).Msg("event updated")
	return event, nil
}

// Delete hard-deletes an event. Its registrations are left untouched.
func (s *EventService) Delete(ctx context.Context, in ports.DeleteEventInput) (*domain.Event, error) {
	if strings.TrimSpace(in.EventID) == "" {
		return nil, domain.Validation("EventId is required")
	}
	if err := s.requireAdmin(ctx, in.ActorID); err != nil {
		return nil, err
	}

	old, err := s.events.Delete(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("event_id", in.EventID).Msg("failed to delete event")
		return nil, fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info().Str("event_id", in.EventID).Str("user_id", in.ActorID).Msg("event deleted")
	return old, nil
}

// requireAdmin loads the acting user and checks the ADMIN role.
func (s *EventService) requireAdmin(ctx context.Context, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.Validation("UserId is required")
	}
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("load acting user: %w", err)
	}
	if !user.IsAdmin() {
		return domain.ErrAdminRequired
	}
	return nil
}
