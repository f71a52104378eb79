package handler

import (
	"github.com/99minutos/ticketing-system/internal/core/domain"
)

type createEventRequest struct {
	UserID   string  `json:"UserId"       validate:"required"`
	EventID  string  `json:"EventId"      validate:"required"`
	Name     string  `json:"EventName"`
	Date     string  `json:"EventDate"`
	Status   string  `json:"EventStatus"`
	Country  string  `json:"EventCountry"`
	City     string  `json:"EventCity"`
	Quantity flexInt `json:"Quantity"     swaggertype:"integer"`
}

// updateEventRequest lists the fields an admin may change. Anything else in the
// body is ignored.
type updateEventRequest struct {
	UserID   string  `json:"UserId"`
	EventID  string  `json:"EventId"`
	Name     *string `json:"EventName"`
	Date     *string `json:"EventDate"`
	Status   *string `json:"EventStatus"`
	Country  *string `json:"EventCountry"`
	City     *string `json:"EventCity"`
	Quantity flexInt `json:"Quantity"     swaggertype:"integer"`
}

type deleteEventRequest struct {
	UserID  string `json:"UserId"  validate:"required"`
	EventID string `json:"EventId" validate:"required"`
}

type eventResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

type listEventsResponse struct {
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    []*domain.Event `json:"data"`
}
