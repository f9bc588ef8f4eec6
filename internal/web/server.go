// Package web serves the editor panel's JSON API and the host connection.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvedit/internal/bridge"
	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/core"
	"github.com/JonMunkholm/csvedit/internal/web/middleware"
)

// SettingsFunc returns the user's current editor settings.
type SettingsFunc func() config.ExtensionConfig

// Server is the HTTP server of one editor panel.
type Server struct {
	cfg      *config.Config
	session  *core.Session
	bridge   *bridge.Bridge
	settings SettingsFunc
	router   *chi.Mux
	server   *http.Server

	// ctx outlives requests; host sockets are hijacked and escape
	// http.Server.Shutdown, so they watch this instead.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server for session. Host connections attach to b.
func NewServer(cfg *config.Config, session *core.Session, b *bridge.Bridge, settings SettingsFunc) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		session:  session,
		bridge:   b,
		settings: settings,
		router:   chi.NewRouter(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

		r.Get("/session", s.handleSession)
		r.Get("/settings", s.handleSettings)

		r.Get("/options", s.handleGetOptions)
		r.Put("/options", s.handlePutOptions)

		r.Get("/table", s.handleGetTable)
		r.Put("/table", s.handlePutTable)
		r.Put("/header", s.handlePutHeader)
		r.Put("/comments", s.handlePutComments)

		r.Post("/content", s.handlePostContent)
		r.Post("/reload", s.handleReload)
		r.Get("/csv", s.handleGetCSV)

		r.Post("/apply", s.handleApply)
		r.Post("/copy", s.handleCopy)
		r.Post("/notify", s.handleNotify)
	})

	s.router.With(middleware.HostToken(&s.cfg.Security)).Get("/host", s.handleHost)
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.ctx },
	}

	slog.Info("server listening", "addr", s.cfg.Server.Addr())
	return s.server.ListenAndServe()
}

// Shutdown closes host connections and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}
