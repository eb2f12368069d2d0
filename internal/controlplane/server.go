// Package controlplane exposes the daemon's local HTTP API: status, mount
// control, pair and exclude management, run history and a websocket event
// stream for sync progress.
package controlplane

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/journal"
)

type ServerConfig struct {
	Addr      string
	AuthToken string
}

type Server struct {
	config *ServerConfig
	server *http.Server
	hub    *EventHub
}

func NewServer(cfg *ServerConfig, svc *daemon.SyncService, store *config.Store, jrnl *journal.Journal) *Server {
	hub := NewEventHub()

	// stream run progress out to websocket subscribers
	svc.OnEvent = hub.PublishEvent
	svc.OnResult = hub.PublishResult

	routes := SetupRoutes(svc, store, jrnl, hub, &RouteConfig{
		Auth: TokenAuthConfig{Token: cfg.AuthToken},
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: routes,
		// Timeouts to prevent slow client attacks. WriteTimeout stays 0
		// because the event stream holds its connection open.
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	return &Server{
		config: cfg,
		server: httpServer,
		hub:    hub,
	}
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("control plane start", "addr", fmt.Sprintf("http://%s", s.config.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("control plane stop")
	return s.server.Shutdown(ctx)
}

var _ daemon.ControlServer = (*Server)(nil)
