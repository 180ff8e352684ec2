// Package webui serves the HTTP interface: mount browsing, uploads and file
// management, login sessions, and the JSON tree/zip APIs.
//
// Every mutating or reading route follows the same order: resolve the
// caller's effective permission first (no filesystem access on deny), then
// normalize the request path, then confine it to the mount's canonical root.
package webui

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/marmos91/filegate/internal/ratelimiter"
	"github.com/marmos91/filegate/internal/session"
	"github.com/marmos91/filegate/pkg/access"
	"github.com/marmos91/filegate/pkg/config"
	"github.com/marmos91/filegate/pkg/registry"
	"github.com/rs/zerolog"
)

// sessionCookie is the name of the login session cookie.
const sessionCookie = "filegate_session"

// Server is the HTTP front end.
type Server struct {
	cfg          *config.Config
	reg          *registry.Registry
	sessions     *session.Store
	log          zerolog.Logger
	tmpl         *template.Template
	httpSrv      *http.Server
	loginLimiter *ratelimiter.Keyed
}

// New builds the web server from its collaborators.
func New(cfg *config.Config, reg *registry.Registry, sessions *session.Store, log zerolog.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		reg:      reg,
		sessions: sessions,
		log:      log,
		tmpl:     tmpl,
		// One attempt per second sustained, short burst for fat fingers.
		loginLimiter: ratelimiter.NewKeyed(1, 5),
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// routes wires the router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	r.Route("/browse/{mount}", func(r chi.Router) {
		r.Get("/*", s.handleBrowse)
		r.Post("/*", s.handleBrowseAction)
	})

	r.Route("/edit/{mount}", func(r chi.Router) {
		r.Get("/*", s.handleEditPage)
		r.Post("/*", s.handleEditSave)
	})

	r.Route("/api/{mount}", func(r chi.Router) {
		r.Get("/tree/*", s.handleTree)
		r.Post("/zip", s.handleZip)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpSrv.Addr
}

// ListenAndServe blocks serving HTTP until Shutdown is called or the
// listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("HTTP server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// identity resolves the caller's identity from the session cookie.
// Missing, unknown, or expired sessions yield the anonymous identity.
func (s *Server) identity(r *http.Request) access.Identity {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return access.Identity{}
	}

	sess, err := s.sessions.Resolve(cookie.Value)
	if err != nil {
		return access.Identity{}
	}

	return s.reg.Identity(sess.Username)
}

// mountPermission resolves a mount together with the caller's effective
// permission on it. An unknown mount behaves exactly like a mount the caller
// has no access to, so probing cannot distinguish the two.
func (s *Server) mountPermission(r *http.Request, mountName string) (*registry.Mount, *access.Permission, access.Identity) {
	id := s.identity(r)

	mount, err := s.reg.GetMount(mountName)
	if err != nil {
		return nil, nil, id
	}

	return mount, s.reg.Effective(mountName, id), id
}

// render executes a page template.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template rendering failed")
	}
}
