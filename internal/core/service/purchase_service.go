package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// soldOutWarning is attached to a committed purchase whose status flip failed.
const soldOutWarning = "purchase registered but the event status could not be updated"

// PurchaseOptions tunes the purchase coordinator.
type PurchaseOptions struct {
	// DetailedConflicts reports the specific commit-time cause instead of the
	// single generic conflict message.
	DetailedConflicts bool
	// NewID generates registration ids when the client supplies none.
	NewID func() string
}

type purchaseService struct {
	events   ports.EventRepository
	users    ports.UserRepository
	store    ports.PurchaseStore
	notifier ports.Notifier
	opts     PurchaseOptions
	log      zerolog.Logger
}

// NewPurchaseService returns the purchase coordinator.
func NewPurchaseService(
	events ports.EventRepository,
	users ports.UserRepository,
	store ports.PurchaseStore,
	notifier ports.Notifier,
	opts PurchaseOptions,
	log zerolog.Logger,
) ports.PurchaseService {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &purchaseService{
		events:   events,
		users:    users,
		store:    store,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

// Purchase validates the request, commits the purchase atomically, then runs the
// best-effort sold-out flip and notification hand-off.
func (s *purchaseService) Purchase(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.EventID = strings.TrimSpace(in.EventID)
	in.RegistrationID = strings.TrimSpace(in.RegistrationID)

	if in.Quantity < 1 {
		return nil, domain.Validation("quantity must be an integer >= 1")
	}
	if in.UserID == "" || in.EventID == "" {
		return nil, domain.Validation("UserId, EventId and Quantity >= 1 are required")
	}

	// 1. Event prechecks. These reject early; the transaction is the source of truth.
	event, err := s.events.FindByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("purchase: load event: %w", err)
	}
	if err := event.CanSell(in.Quantity); err != nil {
		return nil, err
	}

	// 2. Buyer must be registered.
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotRegistered
		}
		return nil, fmt.Errorf("purchase: load user: %w", err)
	}

	// 3. Atomic commit.
	reg := &domain.Registration{
		ID:        in.RegistrationID,
		EventID:   in.EventID,
		UserID:    in.UserID,
		Quantity:  in.Quantity,
		CreatedAt: time.Now().UTC(),
	}
	if reg.ID == "" {
		reg.ID = s.opts.NewID()
	}
	if err := s.store.CommitPurchase(ctx, reg); err != nil {
		if ce, ok := domain.IsConflict(err); ok {
			s.log.Info().
				Str("event_id", in.EventID).
				Str("user_id", in.UserID).
				Str("registration_id", reg.ID).
				Str("cause", string(ce.Cause)).
				Msg("purchase rejected at commit")
			return nil, s.conflict(ce)
		}
		return nil, fmt.Errorf("purchase: commit: %w", err)
	}

	result := &ports.PurchaseResult{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		Quantity:       reg.Quantity,
	}

	// 4. Sold-out flip (non-fatal).
	if flipped, err := s.events.MarkSoldOut(ctx, in.EventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", in.EventID).Msg("failed to mark event sold out")
		result.Warning = soldOutWarning
	} else if flipped {
		s.log.Info().Str("event_id", in.EventID).Msg("event sold out")
	}

	// 5. Notification hand-off (non-fatal, never retried here).
	note := domain.NewPurchaseNotification(event, user, reg)
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to hand off purchase notification")
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("event_id", reg.EventID).
		Str("user_id", reg.UserID).
		Int("quantity", reg.Quantity).
		Msg("purchase registered")

	return result, nil
}

func (s *purchaseService) conflict(ce *domain.ConflictError) error {
	msg := domain.GenericConflictMessage
	if s.opts.DetailedConflicts {
		msg = ce.Message()
	}
	return &domain.Error{Kind: domain.KindConflict, Msg: msg, Err: ce}
}
