package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/atomic"
)

// HealthHandler answers the liveness and readiness probes the admin
// sidecar exposes.
type HealthHandler struct {
	readiness *atomic.Bool
}

// NewHealthHandler builds a HealthHandler backed by readiness, a flag
// the origin listener flips once it is actually accepting connections.
func NewHealthHandler(readiness *atomic.Bool) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

// HandleLiveness always returns 200: the process being able to answer
// at all is what liveness means here.
func (h *HealthHandler) HandleLiveness(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// HandleReadiness returns 200 once the origin listener has bound its
// port and entered its accept loop, 503 otherwise.
func (h *HealthHandler) HandleReadiness(c echo.Context) error {
	if h.readiness.Load() {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusServiceUnavailable)
}

func (h *HealthHandler) setupRoutes(e *echo.Echo) {
	e.GET("/healthz", h.HandleLiveness)
	e.GET("/readyz", h.HandleReadiness)
}
