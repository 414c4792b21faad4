// Package server provides the local HTTP API for managing hotkeys.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/app"
	"github.com/HopIT-Hub/hotkeykit/internal/autostart"
	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
)

// Controller is the part of the application the server drives.
type Controller interface {
	Bindings() []app.Binding
	Add(ctx context.Context, hc config.HotkeyConfig) (app.Binding, error)
	Remove(name string) error
	Reload(ctx context.Context) error
	KeyMap(ctx context.Context) (*keymap.KeyMap, error)
	Config() *config.Config
}

// Server serves the API on localhost.
type Server struct {
	httpServer  *http.Server
	listener    net.Listener
	ctrl        Controller
	deviceState func() string
	autoStart   func(enabled bool) error
	version     string
}

// New creates a server. deviceState may be nil when no accessory is
// configured.
func New(ctrl Controller, deviceState func() string, version string) *Server {
	s := &Server{
		ctrl:        ctrl,
		deviceState: deviceState,
		version:     version,
	}
	s.autoStart = func(enabled bool) error {
		return autostart.Set(enabled, "-config", ctrl.Config().File())
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/hotkeys", s.handleHotkeys)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/autostart", s.handleAutoStart)
	mux.HandleFunc("/keymap", s.handleKeymap)
	mux.HandleFunc("/keymap/character", s.handleCharacter)
	mux.HandleFunc("/keymap/keystrokes", s.handleKeystrokes)
	return mux
}

// Start begins serving on addr, "127.0.0.1:0" picking a free port.
// Returns the base URL.
func (s *Server) Start(addr string) (string, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] error: %v", err)
		}
	}()

	url := s.URL()
	log.Printf("[server] API available at %s", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
