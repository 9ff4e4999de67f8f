// Package server exposes the hub, the coordinator and the frontend over
// HTTP.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/soar/gamepadbrowse/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	coordinator http.Handler
	assets      *assets
	addr        string
	log         *slog.Logger
	httpServer  *http.Server
}

// New builds a server. coordinator may be nil, in which case /coordinator
// is not served.
func New(h *hub.Hub, b *hub.Broadcaster, coordinator http.Handler, frontendFS fs.FS, addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a, err := loadAssets(frontendFS)
	if err != nil {
		return nil, fmt.Errorf("load frontend: %w", err)
	}
	s := &Server{
		hub:         h,
		broadcaster: b,
		coordinator: coordinator,
		assets:      a,
		addr:        addr,
		log:         logger,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint for pages and monitors
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.log))

	if s.coordinator != nil {
		mux.Handle("/coordinator", s.coordinator)
	}

	// Static files (frontend)
	mux.Handle("/", s.assets)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
