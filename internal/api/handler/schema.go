package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// errorResponse is the error envelope rendered by the central error handler.
// It is declared here for the API docs.
type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// flexInt accepts a JSON number or a numeric string. Decoding never fails;
// Valid reports whether the value was an integer.
type flexInt struct {
	Value int
	Set   bool
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.Set = false
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = n, true
	return nil
}

// Int returns the value and whether it was a present, well-formed integer.
func (f flexInt) Int() (int, bool) {
	return f.Value, f.Set && f.Valid
}

// ── Purchases ────────────────────────────────────────────────────────────────

type purchaseRequest struct {
	UserID         string  `json:"UserId"         validate:"required"`
	EventID        string  `json:"EventId"        validate:"required"`
	Quantity       flexInt `json:"Quantity"       swaggertype:"integer"`
	NumEntradas    flexInt `json:"NumEntradas"    swaggertype:"integer"`
	RegistrationID string  `json:"RegistrationId"`
}

// quantity prefers Quantity and falls back to NumEntradas. Malformed values yield 0,
// which the purchase service rejects.
func (r purchaseRequest) quantity() int {
	q := r.Quantity
	if !q.Set {
		q = r.NumEntradas
	}
	n, ok := q.Int()
	if !ok {
		return 0
	}
	return n
}

type purchaseResponse struct {
	Message        string `json:"message"`
	RegistrationID string `json:"RegistrationId"`
	EventID        string `json:"EventId"`
	UserID         string `json:"UserId"`
	Quantity       int    `json:"Quantity"`
	Warn           string `json:"warn,omitempty"`
}

// ── Users ────────────────────────────────────────────────────────────────────

type createUserRequest struct {
	UserID string `json:"userId" validate:"required"`
	Email  string `json:"email"  validate:"required,email"`
	Name   string `json:"name"   validate:"required"`
	Role   string `json:"role"   validate:"required"`
}

type createUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}
