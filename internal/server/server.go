// Package server exposes the content-tree engine over HTTP: the
// builder endpoint dispatches on the type query parameter (data,
// theme, asset), multipart POSTs store uploads, and /uploads serves
// stored uploads back.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/pkg/asset"
	"github.com/pagemason/pagemason/pkg/store"
	"github.com/pagemason/pagemason/pkg/theme"
)

// Config carries the server's collaborators. All of them are required
// except Logger.
type Config struct {
	Address  string
	Store    store.Store
	ThemeDir *theme.Dir
	Registry *theme.Registry
	Gateway  *asset.Gateway
	Logger   *zap.Logger
}

type Server struct {
	addr       string
	httpServer *http.Server
	logger     *zap.Logger
}

func New(c Config) (*Server, error) {
	if c.Store == nil || c.ThemeDir == nil || c.Registry == nil || c.Gateway == nil {
		return nil, errors.New("server: missing collaborator in config")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	addr := c.Address
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	h := &handler{
		store:    c.Store,
		themeDir: c.ThemeDir,
		registry: c.Registry,
		gateway:  c.Gateway,
		logger:   c.Logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/uploads/", h.uploadsHandler())
	mux.Handle("/", h)

	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: c.Logger,
	}, nil
}

func (s *Server) Addr() string { return s.addr }

// Handler returns the root handler, exported for httptest-based tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ListenAndServe blocks until the server stops. http.ErrServerClosed
// after a Shutdown is reported as nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", zap.String("address", s.addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "failed to serve")
}

// Serve serves on an existing listener, for callers that bind first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting server", zap.String("address", ln.Addr().String()))
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "failed to serve")
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping server")
	return errors.Wrap(s.httpServer.Shutdown(ctx), "failed to shut down server")
}

// uploadsHandler streams previously stored uploads. The gateway
// re-checks the path against its root, so no file outside the uploads
// root is reachable through this route.
func (h *handler) uploadsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		rel := strings.TrimPrefix(r.URL.Path, "/")
		h.serveAsset(w, r, rel)
	})
}
