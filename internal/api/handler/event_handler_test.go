package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

type stubEventService struct {
	createFn func(ctx context.Context, in ports.CreateEventInput) (*domain.Event, error)
	getFn    func(ctx context.Context, id string) (*domain.Event, error)
	listFn   func(ctx context.Context) ([]*domain.Event, error)
	updateFn func(ctx context.Context, in ports.UpdateEventInput) (*domain.Event, error)
	deleteFn func(ctx context.Context, in ports.DeleteEventInput) (*domain.Event, error)
}

func (s *stubEventService) Create(ctx context.Context, in ports.CreateEventInput) (*domain.Event, error) {
	return s.createFn(ctx, in)
}

func (s *stubEventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.getFn(ctx, id)
}

func (s *stubEventService) ListActive(ctx context.Context) ([]*domain.Event, error) {
	return s.listFn(ctx)
}

func (s *stubEventService) Update(ctx context.Context, in ports.UpdateEventInput) (*domain.Event, error) {
	return s.updateFn(ctx, in)
}

func (s *stubEventService) Delete(ctx context.Context, in ports.DeleteEventInput) (*domain.Event, error) {
	return s.deleteFn(ctx, in)
}

func TestEventHandler_Create(t *testing.T) {
	h := NewEventHandler(&stubEventService{
		createFn: func(_ context.Context, in ports.CreateEventInput) (*domain.Event, error) {
			if in.ActorID != "A1" || in.EventID != "E1" || in.RemainingQuantity != 50 || in.Status != "Activo" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Event{ID: in.EventID, Name: in.Name, Status: domain.StatusActive, RemainingQuantity: in.RemainingQuantity}, nil
		},
	})
	c, rec := newContext(http.MethodPost, "/events",
		`{"UserId":"A1","EventId":"E1","EventName":"Feria","EventStatus":"Activo","Quantity":"50"}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "event created" || resp.Event == nil || resp.Event.RemainingQuantity != 50 {
		t.Errorf("unexpected response %s", rec.Body.String())
	}
}

func TestEventHandler_Create_QuantityRequired(t *testing.T) {
	h := NewEventHandler(&stubEventService{})
	for _, body := range []string{
		`{"UserId":"A1","EventId":"E1"}`,
		`{"UserId":"A1","EventId":"E1","Quantity":"lots"}`,
	} {
		c, _ := newContext(http.MethodPost, "/events", body)
		if err := h.Create(c); domain.KindOf(err) != domain.KindValidation {
			t.Errorf("body %s: expected validation error, got %v", body, err)
		}
	}
}

func TestEventHandler_List(t *testing.T) {
	h := NewEventHandler(&stubEventService{
		listFn: func(context.Context) ([]*domain.Event, error) {
			return []*domain.Event{{ID: "A"}, {ID: "C"}}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/events", "")
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	var resp listEventsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp.Count != 2 || resp.Data[1].ID != "C" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestEventHandler_Get(t *testing.T) {
	h := NewEventHandler(&stubEventService{
		getFn: func(_ context.Context, id string) (*domain.Event, error) {
			if id != "E1" {
				return nil, domain.ErrEventNotFound
			}
			return &domain.Event{ID: id}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/events/E1", "")
	c.SetParamNames("id")
	c.SetParamValues("E1")
	if err := h.Get(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("got %d, %v", rec.Code, err)
	}

	c, _ = newContext(http.MethodGet, "/events/E9", "")
	c.SetParamNames("id")
	c.SetParamValues("E9")
	if err := h.Get(c); domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestEventHandler_Update_MapsAllowListedFields(t *testing.T) {
	h := NewEventHandler(&stubEventService{
		updateFn: func(_ context.Context, in ports.UpdateEventInput) (*domain.Event, error) {
			p := in.Patch
			if in.ActorID != "A1" || in.EventID != "E2" {
				t.Fatalf("unexpected ids %+v", in)
			}
			if p.City == nil || *p.City != "Lima" || p.Status == nil || *p.Status != domain.StatusInhibited {
				t.Fatalf("unexpected patch %+v", p)
			}
			if p.RemainingQuantity == nil || *p.RemainingQuantity != 0 || p.Name != nil {
				t.Fatalf("unexpected patch %+v", p)
			}
			return &domain.Event{ID: in.EventID, City: *p.City}, nil
		},
	})
	// The path id wins over the body id.
	c, rec := newContext(http.MethodPut, "/events/E2",
		`{"UserId":"A1","EventId":"E1","EventCity":"Lima","EventStatus":"inhabilitado","Quantity":0,"CreatedAt":"x"}`)
	c.SetParamNames("id")
	c.SetParamValues("E2")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestEventHandler_Update_RejectsBadValues(t *testing.T) {
	h := NewEventHandler(&stubEventService{})
	for _, body := range []string{
		`{"UserId":"A1","EventId":"E1","EventStatus":"paused"}`,
		`{"UserId":"A1","EventId":"E1","Quantity":"many"}`,
	} {
		c, _ := newContext(http.MethodPut, "/events", body)
		if err := h.Update(c); domain.KindOf(err) != domain.KindValidation {
			t.Errorf("body %s: expected validation error, got %v", body, err)
		}
	}
}

func TestEventHandler_Delete(t *testing.T) {
	h := NewEventHandler(&stubEventService{
		deleteFn: func(_ context.Context, in ports.DeleteEventInput) (*domain.Event, error) {
			if in.ActorID != "A1" || in.EventID != "E1" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Event{ID: in.EventID}, nil
		},
	})
	c, rec := newContext(http.MethodDelete, "/events", `{"UserId":"A1","EventId":"E1"}`)
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp eventResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp.Message != "event deleted" || resp.Event.ID != "E1" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}

	c, _ = newContext(http.MethodDelete, "/events", `{"EventId":"E1"}`)
	if err := h.Delete(c); err == nil {
		t.Error("delete without UserId accepted")
	}
}
