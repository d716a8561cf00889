// Package admin runs the observability sidecar: liveness/readiness
// probes and the Prometheus /metrics endpoint. It is a separate
// net/http-backed echo server from the raw-socket origin listener, so
// none of the Non-goals that bind the origin listener (no TLS, no
// HTTP/2, no chunked bodies) apply to it — it is ops surface, not
// origin traffic.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/atomic"

	"github.com/coldforge/originhttpd/internal/metrics"
	"github.com/coldforge/originhttpd/internal/workerpool"
	"github.com/coldforge/originhttpd/pkg/logger"
)

// Server is the admin sidecar's echo app plus its own readiness flag,
// which main flips once the origin listener is actually accepting
// connections.
type Server struct {
	echo      *echo.Echo
	readiness *atomic.Bool
	addr      string
	pool      *workerpool.Pool
}

// NewServer builds the sidecar bound to port, reporting queue depth
// from pool on every /metrics scrape.
func NewServer(port int, pool *workerpool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	readiness := atomic.NewBool(false)

	s := &Server{
		echo:      e,
		readiness: readiness,
		addr:      fmt.Sprintf(":%d", port),
		pool:      pool,
	}

	e.Use(middleware.Recover())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if pool != nil {
				metrics.WorkerPoolQueueDepthGauge.Set(float64(pool.QueueDepth()))
			}
			return next(c)
		}
	})

	e.Use(echoprometheus.NewMiddleware("originhttpd"))
	e.GET("/metrics", echoprometheus.NewHandler())

	health := NewHealthHandler(readiness)
	health.setupRoutes(e)

	return s
}

// Readiness returns the flag HandleReadiness consults; main flips it
// once the origin listener is accepting connections.
func (s *Server) Readiness() *atomic.Bool {
	return s.readiness
}

// Start runs the sidecar's HTTP server, blocking until it is shut
// down. Call it from its own goroutine.
func (s *Server) Start() {
	logger.Info("admin sidecar listening on %s", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		logger.Error("admin sidecar error: %v", err)
	}
}

// Shutdown gracefully stops the sidecar, waiting up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
