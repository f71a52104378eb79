package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// EventHandler handles the admin event endpoints.
type EventHandler struct {
	service ports.EventService
}

// NewEventHandler creates an EventHandler backed by the given service.
func NewEventHandler(service ports.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// Create handles POST /events.
//
// @Summary      Create an event
// @Description  Only ADMIN users may create events.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      createEventRequest  true  "Event"
// @Success      201   {object}  eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	qty, ok := req.Quantity.Int()
	if !ok {
		return domain.Validation("Quantity must be an integer >= 0")
	}

	event, err := h.service.Create(c.Request().Context(), ports.CreateEventInput{
		ActorID:           req.UserID,
		EventID:           req.EventID,
		Name:              req.Name,
		Date:              req.Date,
		Status:            req.Status,
		Country:           req.Country,
		City:              req.City,
		RemainingQuantity: qty,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, eventResponse{Message: "event created", Event: event})
}

// List handles GET /events.
//
// @Summary      List active events
// @Tags         events
// @Produce      json
// @Success      200  {object}  listEventsResponse
// @Failure      500  {object}  errorResponse
// @Router       /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEventsResponse{
		Message: "active events",
		Count:   len(events),
		Data:    events,
	})
}

// Get handles GET /events/:id.
//
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Update handles PUT /events and PUT /events/:id.
//
// @Summary      Update an event
// @Description  Only EventName, EventDate, EventStatus, EventCountry, EventCity and Quantity can change.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      updateEventRequest  true  "Fields to change"
// @Success      200   {object}  eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req updateEventRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid JSON body")
	}
	if id := c.Param("id"); id != "" {
		req.EventID = id
	}

	patch, err := req.patch()
	if err != nil {
		return err
	}
	event, err := h.service.Update(c.Request().Context(), ports.UpdateEventInput{
		ActorID: req.UserID,
		EventID: req.EventID,
		Patch:   patch,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eventResponse{Message: "event updated", Event: event})
}

// Delete handles DELETE /events and DELETE /events/:id.
//
// @Summary      Delete an event
// @Description  Returns the deleted event. Registrations for it are kept.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      deleteEventRequest  true  "Event and acting user"
// @Success      200   {object}  eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	var req deleteEventRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid JSON body")
	}
	if id := c.Param("id"); id != "" {
		req.EventID = id
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	old, err := h.service.Delete(c.Request().Context(), ports.DeleteEventInput{
		ActorID: req.UserID,
		EventID: req.EventID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eventResponse{Message: "event deleted", Event: old})
}

// patch maps the allow-listed fields. Status must be a known value and
// Quantity an integer when present.
func (r updateEventRequest) patch() (domain.EventPatch, error) {
	p := domain.EventPatch{
		Name:    r.Name,
		Date:    r.Date,
		Country: r.Country,
		City:    r.City,
	}
	if r.Status != nil {
		s, ok := domain.ParseEventStatus(*r.Status)
		if !ok {
			return p, domain.Validation("EventStatus is not a known status")
		}
		p.Status = &s
	}
	if r.Quantity.Set {
		q, ok := r.Quantity.Int()
		if !ok {
			return p, domain.Validation("Quantity must be an integer >= 0")
		}
		p.RemainingQuantity = &q
	}
	return p, nil
}
