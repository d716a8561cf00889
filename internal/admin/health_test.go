package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/atomic"
)

func TestHealthHandler_LivenessAlwaysReturns200(t *testing.T) {
	readiness := atomic.NewBool(false)
	handler := NewHealthHandler(readiness)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	if err := handler.HandleLiveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("HandleLiveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with readiness=false, got %d", rec.Code)
	}
}

func TestHealthHandler_ReadinessToggle(t *testing.T) {
	readiness := atomic.NewBool(false)
	handler := NewHealthHandler(readiness)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	rec := httptest.NewRecorder()
	handler.HandleReadiness(e.NewContext(req, rec))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before readiness, got %d", rec.Code)
	}

	readiness.Store(true)
	rec = httptest.NewRecorder()
	handler.HandleReadiness(e.NewContext(req, rec))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 once ready, got %d", rec.Code)
	}

	readiness.Store(false)
	rec = httptest.NewRecorder()
	handler.HandleReadiness(e.NewContext(req, rec))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after toggling back, got %d", rec.Code)
	}
}

func TestHealthHandler_SetupRoutes(t *testing.T) {
	readiness := atomic.NewBool(true)
	handler := NewHealthHandler(readiness)
	e := echo.New()
	handler.setupRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected /healthz to return 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected /readyz to return 200, got %d", rec.Code)
	}
}
