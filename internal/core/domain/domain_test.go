package domain

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestParseEventStatus(t *testing.T) {
	cases := map[string]EventStatus{
		"ACTIVE":        StatusActive,
		" activo ":      StatusActive,
		"Desactivado":   StatusDeactivated,
		"DISABLED":      StatusDisabled,
		"deshabilitado": StatusDisabled,
		"Inhabilitado":  StatusInhibited,
	}
	for raw, want := range cases {
		got, ok := ParseEventStatus(raw)
		if !ok || got != want {
			t.Errorf("ParseEventStatus(%q) = %s, %v; want %s", raw, got, ok, want)
		}
	}
	if _, ok := ParseEventStatus("PAUSED"); ok {
		t.Error("unknown status accepted")
	}
}

func TestStatusMarkers(t *testing.T) {
	disabled := DisabledStatusMarkers()
	for _, m := range []string{"DEACTIVATED", "DISABLED", "INHIBITED", "DESACTIVADO", "DESHABILITADO", "INHABILITADO"} {
		if !slices.Contains(disabled, m) {
			t.Errorf("disabled markers missing %s", m)
		}
	}
	if slices.Contains(disabled, "ACTIVE") {
		t.Error("ACTIVE listed as disabled")
	}
	active := ActiveStatusMarkers()
	for _, m := range []string{"ACTIVE", "ACTIVO", "Activo"} {
		if !slices.Contains(active, m) {
			t.Errorf("active markers missing %s", m)
		}
	}
}

func TestEventCanSell(t *testing.T) {
	e := &Event{Status: StatusActive, RemainingQuantity: 3}
	if err := e.CanSell(3); err != nil {
		t.Errorf("CanSell(R) = %v", err)
	}
	if err := e.CanSell(4); !errors.Is(err, ErrTicketsUnavailable) {
		t.Errorf("CanSell(R+1) = %v", err)
	}
	e.Status = StatusInhibited
	if err := e.CanSell(1); !errors.Is(err, ErrEventDisabled) {
		t.Errorf("CanSell on inhibited = %v", err)
	}
}

func TestEventPatch(t *testing.T) {
	if !(EventPatch{}).IsEmpty() {
		t.Error("zero patch not empty")
	}
	city := "MTY"
	qty := 0
	got := EventPatch{City: &city, RemainingQuantity: &qty}.Apply(Event{ID: "E1", City: "GDL", RemainingQuantity: 9, Name: "keep"})
	if got.City != "MTY" || got.RemainingQuantity != 0 || got.Name != "keep" || got.ID != "E1" {
		t.Errorf("Apply = %+v", got)
	}
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]Role{"admin": RoleAdmin, "CLIENT": RoleClient, "Cliente": RoleClient} {
		if got, ok := ParseRole(raw); !ok || got != want {
			t.Errorf("ParseRole(%q) = %s, %v", raw, got, ok)
		}
	}
	if _, ok := ParseRole("owner"); ok {
		t.Error("unknown role accepted")
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrUserNotRegistered)
	if KindOf(wrapped) != KindForbidden {
		t.Errorf("KindOf(wrapped) = %s", KindOf(wrapped))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("plain error not internal")
	}

	ce := &ConflictError{Cause: CauseEventDisabled}
	err := &Error{Kind: KindConflict, Msg: GenericConflictMessage, Err: ce}
	got, ok := IsConflict(err)
	if !ok || got.Cause != CauseEventDisabled {
		t.Fatalf("IsConflict = %v, %v", got, ok)
	}
	if got.Message() != "event is disabled" {
		t.Errorf("Message = %q", got.Message())
	}
	if (&ConflictError{Cause: "mystery"}).Message() != GenericConflictMessage {
		t.Error("unknown cause should fall back to the generic message")
	}
}

func TestPurchaseNotificationIsZero(t *testing.T) {
	if !(PurchaseNotification{}).IsZero() {
		t.Error("empty notification not zero")
	}
	n := NewPurchaseNotification(
		&Event{Name: "Feria", Date: "d", Country: "MX", City: "GDL"},
		&User{Name: "Ana", Email: "a@b.c"},
		&Registration{ID: "R1", EventID: "E1", Quantity: 2},
	)
	if n.IsZero() || n.Email != "a@b.c" || n.EventID != "E1" {
		t.Errorf("unexpected notification: %+v", n)
	}
}
