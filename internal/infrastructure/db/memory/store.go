// Package memory is an in-process implementation of the ticketing stores.
//
// Every operation runs under one mutex, so purchase commits are serializable.
// It backs STORE_DRIVER=memory for local runs and the end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// defaultPageSize bounds one ListActive page, mirroring the paged scans of the Mongo store.
const defaultPageSize = 100

// Store holds events, users and registrations.
type Store struct {
	mu            sync.Mutex
	events        map[string]domain.Event
	users         map[string]domain.User
	registrations map[string]domain.Registration
	pageSize      int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		events:        make(map[string]domain.Event),
		users:         make(map[string]domain.User),
		registrations: make(map[string]domain.Registration),
		pageSize:      defaultPageSize,
	}
}

// Ping always succeeds; it lets the store take part in readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

// ── Events ────────────────────────────────────────────────────────────────────

func (s *Store) Create(_ context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; ok {
		return domain.ErrEventExists
	}
	s.events[e.ID] = *e
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

// ListActive walks the events in id order one page at a time.
func (s *Store) ListActive(_ context.Context) ([]*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []*domain.Event{}
	for start := 0; start < len(ids); start += s.pageSize {
		end := min(start+s.pageSize, len(ids))
		for _, id := range ids[start:end] {
			e := s.events[id]
			if e.Status == domain.StatusActive {
				out = append(out, &e)
			}
		}
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	e = patch.Apply(e)
	s.events[id] = e
	return &e, nil
}

func (s *Store) Delete(_ context.Context, id string) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	delete(s.events, id)
	return &e, nil
}

func (s *Store) MarkSoldOut(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.RemainingQuantity != 0 {
		return false, nil
	}
	e.Status = domain.StatusSoldOut
	s.events[id] = e
	return true, nil
}

// ── Purchase transaction ──────────────────────────────────────────────────────

// CommitPurchase checks all three conditions before writing anything.
func (s *Store) CommitPurchase(_ context.Context, reg *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[reg.UserID]; !ok {
		return &domain.ConflictError{Cause: domain.CauseUserMissing}
	}
	e, ok := s.events[reg.EventID]
	switch {
	case !ok:
		return &domain.ConflictError{Cause: domain.CauseEventMissing}
	case e.Status.IsDisabled():
		return &domain.ConflictError{Cause: domain.CauseEventDisabled}
	case e.RemainingQuantity < reg.Quantity:
		return &domain.ConflictError{Cause: domain.CauseInventoryInsufficient}
	}
	if _, dup := s.registrations[reg.ID]; dup {
		return &domain.ConflictError{Cause: domain.CauseDuplicateRegistration}
	}

	e.RemainingQuantity -= reg.Quantity
	s.events[reg.EventID] = e
	s.registrations[reg.ID] = *reg
	return nil
}

// Registration returns a stored registration.
func (s *Store) Registration(id string) (domain.Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registrations[id]
	return r, ok
}

// Registrations returns how many registrations are stored.
func (s *Store) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}

// Users returns a view of the store that implements ports.UserRepository.
// Create and FindByID collide with the event methods, hence the separate type.
func (s *Store) Users() *Users { return &Users{s: s} }

// Users is the identity-store view of a Store.
type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[user.ID]; ok {
		return domain.ErrUserExists
	}
	u.s.users[user.ID] = *user
	return nil
}

func (u *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}
