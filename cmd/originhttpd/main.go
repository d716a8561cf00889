// Command originhttpd runs the HTTP/1.1 origin server: a fixed-size
// worker pool drains connections accepted from a single listening
// socket, each connection running its own parse/dispatch/respond
// state machine with optional CGI dispatch to python3/php.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coldforge/originhttpd/internal/admin"
	"github.com/coldforge/originhttpd/internal/cgi"
	"github.com/coldforge/originhttpd/internal/config"
	"github.com/coldforge/originhttpd/internal/daemonize"
	"github.com/coldforge/originhttpd/internal/httpd"
	"github.com/coldforge/originhttpd/internal/metrics"
	"github.com/coldforge/originhttpd/internal/netutil"
	"github.com/coldforge/originhttpd/internal/workerpool"
	"github.com/coldforge/originhttpd/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config: %v", err)
	}

	logger.SetDebug(cfg.Debug)

	if cfg.Daemon {
		if err := daemonize.Detach(cfg.LogFile); err != nil {
			logger.Fatal("daemonize: %v", err)
		}
	} else if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Fatal("open log file: %v", err)
		}
		logger.SetOutput(f)
	}

	pool := workerpool.New(cfg.NumThreads)
	executor := cgi.NewExecutor(cfg.CgiMaxConcurrent)

	adminSrv := admin.NewServer(cfg.AdminPort, pool)

	ln, err := netutil.Listen(cfg.ListenPort, cfg.MaxClients)
	if err != nil {
		logger.Fatal("listen: %v", err)
	}
	logger.Info("originhttpd listening on :%d (root=%s, workers=%d)", cfg.ListenPort, cfg.ServerRoot, cfg.NumThreads)

	adminSrv.Readiness().Store(true)

	handlerCfg := httpd.HandlerConfig{
		ServerRoot:      cfg.ServerRoot,
		ServerSignature: cfg.ServerSignature,
		ReceiveTimeout:  time.Duration(cfg.ReceiveTimeoutSeconds) * time.Second,
		CGI:             executor,
		CGITimeout:      30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// g supervises the two long-running background loops (the admin
	// sidecar and the accept loop) so shutdown can wait for both to
	// actually return instead of racing process exit against them.
	var g errgroup.Group
	g.Go(func() error {
		adminSrv.Start()
		return nil
	})

	stopped := make(chan struct{})
	g.Go(func() error {
		acceptLoop(ln, pool, handlerCfg, stopped)
		return nil
	})

	logger.Info("server ready, waiting for interrupt signal...")
	<-quit
	logger.Info("shutdown signal received")

	ln.Close()
	<-stopped

	pool.Stop()
	logger.Info("worker pool drained")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin sidecar shutdown: %v", err)
	}

	if err := g.Wait(); err != nil {
		logger.Error("background loop error: %v", err)
	}

	logger.Info("server stopped gracefully")
}

// acceptLoop is the acceptor's only job: accept, wrap into a job,
// enqueue. It runs until main closes ln on a shutdown signal, at which
// point Accept returns an error and the loop exits, closing stopped.
func acceptLoop(ln net.Listener, pool *workerpool.Pool, handlerCfg httpd.HandlerConfig, stopped chan struct{}) {
	defer close(stopped)

	for {
		conn, err := netutil.AcceptOne(ln, handlerCfg.ReceiveTimeout)
		if err != nil {
			return
		}
		metrics.ConnectionsAcceptedTotal.Inc()

		pool.Submit(func() {
			httpd.Handle(conn, handlerCfg)
		})
	}
}
