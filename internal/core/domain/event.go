package domain

import (
	"strings"
	"time"
)

// EventStatus represents the sale lifecycle state of an event.
type EventStatus string

const (
	StatusActive      EventStatus = "ACTIVE"
	StatusDeactivated EventStatus = "DEACTIVATED"
	StatusDisabled    EventStatus = "DISABLED"
	StatusInhibited   EventStatus = "INHIBITED"
)

// StatusSoldOut is the variant the system writes when inventory runs out.
const StatusSoldOut = StatusDisabled

// statusAliases maps accepted spellings (upper-cased) to the canonical status.
// The Spanish names come from records written by the first version of the service.
var statusAliases = map[string]EventStatus{
	"ACTIVE":        StatusActive,
	"ACTIVO":        StatusActive,
	"DEACTIVATED":   StatusDeactivated,
	"DESACTIVADO":   StatusDeactivated,
	"DISABLED":      StatusDisabled,
	"DESHABILITADO": StatusDisabled,
	"INHIBITED":     StatusInhibited,
	"INHABILITADO":  StatusInhibited,
}

// ParseEventStatus normalizes a raw status string. ok is false for unknown values.
func ParseEventStatus(raw string) (EventStatus, bool) {
	s, ok := statusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return s, ok
}

// IsDisabled reports whether the status is any of the DISABLED variants.
func (s EventStatus) IsDisabled() bool {
	switch s {
	case StatusDeactivated, StatusDisabled, StatusInhibited:
		return true
	}
	return false
}

// DisabledStatusMarkers lists every raw value a store may hold for a disabled event.
func DisabledStatusMarkers() []string {
	return markersFor(func(s EventStatus) bool { return s.IsDisabled() })
}

// ActiveStatusMarkers lists every raw value a store may hold for an active event.
func ActiveStatusMarkers() []string {
	return append(markersFor(func(s EventStatus) bool { return s == StatusActive }), "Activo")
}

func markersFor(match func(EventStatus) bool) []string {
	out := make([]string, 0, len(statusAliases))
	for raw, s := range statusAliases {
		if match(s) {
			out = append(out, raw)
		}
	}
	return out
}

// Event is a ticketed occurrence with finite inventory.
type Event struct {
	ID                string      `json:"EventId"`
	Name              string      `json:"EventName"`
	Date              string      `json:"EventDate"`
	Status            EventStatus `json:"EventStatus"`
	Country           string      `json:"EventCountry"`
	City              string      `json:"EventCity"`
	RemainingQuantity int         `json:"Quantity"`
	UserID            string      `json:"UserId"`
	CreatedAt         time.Time   `json:"CreatedAt,omitempty"`
	UpdatedAt         time.Time   `json:"UpdatedAt,omitempty"`
}

// CanSell reports whether qty tickets may be sold according to this snapshot.
// The store re-checks the same conditions at commit time.
func (e *Event) CanSell(qty int) error {
	if e.Status.IsDisabled() {
		return ErrEventDisabled
	}
	if qty > e.RemainingQuantity {
		return ErrTicketsUnavailable
	}
	return nil
}

// EventPatch carries the allow-listed fields an admin may change. Nil means unchanged.
type EventPatch struct {
	Name              *string
	Date              *string
	Status            *EventStatus
	Country           *string
	City              *string
	RemainingQuantity *int
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Date == nil && p.Status == nil &&
		p.Country == nil && p.City == nil && p.RemainingQuantity == nil
}

// Apply returns a copy of e with the patch applied.
func (p EventPatch) Apply(e Event) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Country != nil {
		e.Country = *p.Country
	}
	if p.City != nil {
		e.City = *p.City
	}
	if p.RemainingQuantity != nil {
		e.RemainingQuantity = *p.RemainingQuantity
	}
	return e
}
