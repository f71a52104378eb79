package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodOptions, "/purchases", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := CORS()(func(c echo.Context) error {
		t.Fatal("preflight must not reach the handler")
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "*" {
		t.Error("missing allow-origin header")
	}
}

func TestCORS_HeadersOnRegularRequests(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := CORS()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusCreated)
	})
	if err := handler(c); err != nil {
		t.Fatal(err)
	}
	if !called || rec.Code != http.StatusCreated {
		t.Fatalf("called=%v code=%d", called, rec.Code)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodDelete) {
		t.Error("allow-methods missing DELETE")
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "Content-Transfer-Encoding") {
		t.Error("allow-headers missing Content-Transfer-Encoding")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestLogger(zerolog.New(&buf))(func(c echo.Context) error {
		return errors.New("boom")
	})
	_ = handler(c)

	out := buf.String()
	if !strings.Contains(out, `"uri":"/events"`) || !strings.Contains(out, `"level":"error"`) {
		t.Errorf("unexpected log line: %s", out)
	}
}
