package domain

import "time"

// Registration is the durable record of a completed ticket purchase.
// EventID and UserID are lookups only; nothing cascades from them.
type Registration struct {
	ID        string    `json:"RegistrationId"`
	EventID   string    `json:"EventId"`
	UserID    string    `json:"UserId"`
	Quantity  int       `json:"Quantity"`
	CreatedAt time.Time `json:"RegistrationDate"`
}
