package mongo

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// Attribute names are shared with records written by earlier versions of the service.
const (
	fieldID        = "_id"
	fieldName      = "EventName"
	fieldDate      = "EventDate"
	fieldStatus    = "EventStatus"
	fieldCountry   = "EventCountry"
	fieldCity      = "EventCity"
	fieldQuantity  = "Quantity"
	fieldUpdatedAt = "UpdatedAt"
)

type eventDoc struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"EventName"`
	Date              string    `bson:"EventDate"`
	Status            string    `bson:"EventStatus"`
	Country           string    `bson:"EventCountry"`
	City              string    `bson:"EventCity"`
	RemainingQuantity int       `bson:"Quantity"`
	UserID            string    `bson:"UserId,omitempty"`
	CreatedAt         time.Time `bson:"CreatedAt,omitempty"`
	UpdatedAt         time.Time `bson:"UpdatedAt,omitempty"`
}

func newEventDoc(e *domain.Event) eventDoc {
	return eventDoc{
		ID:                e.ID,
		Name:              e.Name,
		Date:              e.Date,
		Status:            string(e.Status),
		Country:           e.Country,
		City:              e.City,
		RemainingQuantity: e.RemainingQuantity,
		UserID:            e.UserID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// toDomain normalizes legacy status spellings. Unknown values are kept verbatim.
func (d eventDoc) toDomain() *domain.Event {
	status, ok := domain.ParseEventStatus(d.Status)
	if !ok {
		status = domain.EventStatus(d.Status)
	}
	return &domain.Event{
		ID:                d.ID,
		Name:              d.Name,
		Date:              d.Date,
		Status:            status,
		Country:           d.Country,
		City:              d.City,
		RemainingQuantity: d.RemainingQuantity,
		UserID:            d.UserID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// patchUpdate builds the $set document for an allow-listed patch.
func patchUpdate(p domain.EventPatch, now time.Time) bson.M {
	set := bson.M{fieldUpdatedAt: now}
	if p.Name != nil {
		set[fieldName] = *p.Name
	}
	if p.Date != nil {
		set[fieldDate] = *p.Date
	}
	if p.Status != nil {
		set[fieldStatus] = string(*p.Status)
	}
	if p.Country != nil {
		set[fieldCountry] = *p.Country
	}
	if p.City != nil {
		set[fieldCity] = *p.City
	}
	if p.RemainingQuantity != nil {
		set[fieldQuantity] = *p.RemainingQuantity
	}
	return bson.M{"$set": set}
}

// statusVariants expands markers with their lower and title case spellings so
// filters match records regardless of how the status was capitalized.
func statusVariants(markers []string) []string {
	seen := make(map[string]struct{}, len(markers)*3)
	out := make([]string, 0, len(markers)*3)
	for _, m := range markers {
		if m == "" {
			continue
		}
		upper := strings.ToUpper(m)
		lower := strings.ToLower(m)
		title := upper[:1] + lower[1:]
		for _, v := range []string{m, upper, lower, title} {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}

type registrationDoc struct {
	ID        string    `bson:"_id"`
	EventID   string    `bson:"EventId"`
	UserID    string    `bson:"UserId"`
	Quantity  int       `bson:"Quantity"`
	CreatedAt time.Time `bson:"RegistrationDate"`
}

func newRegistrationDoc(r *domain.Registration) registrationDoc {
	return registrationDoc{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
	}
}

// userFromDoc maps a raw user record to the canonical shape. Older records used
// UserEmail, UserNames or UserName and Role; the current ones use email, name and role.
func userFromDoc(doc bson.M) *domain.User {
	u := &domain.User{
		ID:    firstString(doc, "_id", "userId", "UserId"),
		Email: firstString(doc, "email", "UserEmail", "Email"),
		Name:  firstString(doc, "name", "UserNames", "UserName"),
	}
	if role, ok := domain.ParseRole(firstString(doc, "role", "Role")); ok {
		u.Role = role
	}
	u.CreatedAt = timeField(doc, "createdAt", "CreatedAt")
	return u
}

func firstString(doc bson.M, keys ...string) string {
	for _, k := range keys {
		if v, ok := doc[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func timeField(doc bson.M, keys ...string) time.Time {
	for _, k := range keys {
		switch v := doc[k].(type) {
		case primitive.DateTime:
			return v.Time().UTC()
		case time.Time:
			return v.UTC()
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
