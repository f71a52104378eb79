package domain

// PurchaseNotification is the queued payload the receipt worker renders.
// Field names are part of the queue contract.
type PurchaseNotification struct {
	EventName      string `json:"EventName"`
	EventDate      string `json:"EventDate"`
	EventCountry   string `json:"EventCountry"`
	EventCity      string `json:"EventCity"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegistrationID string `json:"RegistrationId,omitempty"`
	EventID        string `json:"EventId,omitempty"`
	Quantity       int    `json:"Quantity,omitempty"`
}

// NewPurchaseNotification builds the payload from already-normalized records.
func NewPurchaseNotification(e *Event, u *User, reg *Registration) PurchaseNotification {
	return PurchaseNotification{
		EventName:      e.Name,
		EventDate:      e.Date,
		EventCountry:   e.Country,
		EventCity:      e.City,
		Name:           u.Name,
		Email:          u.Email,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Quantity:       reg.Quantity,
	}
}

// IsZero reports whether no field carries data, which the worker treats as malformed.
func (n PurchaseNotification) IsZero() bool {
	return n == PurchaseNotification{}
}
