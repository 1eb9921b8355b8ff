package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// maxUploadSize bounds media uploads from the editor
const maxUploadSize = 32 << 20

// Config holds the collaborators of the HTTP host
type Config struct {
	Service    hiddencontent.Service
	Hooks      *hiddencontent.Hooks
	Repository hiddencontent.Repository
	Media      hiddencontent.MediaLibrary

	// Renders primary page content. Defaults to passthrough.
	Renderer hiddencontent.Renderer
	// Gates the edit screen and host field updates. Defaults to RolePermissions.
	Permissions hiddencontent.PermissionChecker

	JWTSecret string

	// Optional
	MetricsHandler http.Handler
	Observer       RequestObserver
	Logger         *slog.Logger
}

// Server is the HTTP host: public pages, the admin edit screen and the JSON API.
type Server struct {
	service  hiddencontent.Service
	hooks    *hiddencontent.Hooks
	repo     hiddencontent.Repository
	media    hiddencontent.MediaLibrary
	renderer hiddencontent.Renderer
	perms    hiddencontent.PermissionChecker
	auth     *jwtauth.JWTAuth
	metrics  http.Handler
	observer RequestObserver
	logger   *slog.Logger
}

// NewServer validates cfg and returns a Server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}
	if cfg.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	s := &Server{
		service:  cfg.Service,
		hooks:    cfg.Hooks,
		repo:     cfg.Repository,
		media:    cfg.Media,
		renderer: cfg.Renderer,
		perms:    cfg.Permissions,
		auth:     NewJWTAuth(cfg.JWTSecret),
		metrics:  cfg.MetricsHandler,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}

	if s.hooks == nil {
		s.hooks = hiddencontent.NewHooks()
		s.hooks.Register(s.service)
	}
	if s.renderer == nil {
		s.renderer = hiddencontent.NewPassthroughRenderer()
	}
	if s.perms == nil {
		s.perms = hiddencontent.NewRolePermissions(s.repo)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Auth returns the JWT verifier, for issuing tokens
func (s *Server) Auth() *jwtauth.JWTAuth {
	return s.auth
}

// Routes returns the HTTP handler of the host
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	if s.observer != nil {
		r.Use(MetricsMiddleware(s.observer))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.Health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// Public
	r.Get("/pages/{pageID}", s.ViewPage)
	r.Get("/media/{mediaID}", s.ServeMedia)

	// Admin screens
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.auth))
		r.Use(authenticator)

		r.Get("/admin/pages/{pageID}/edit", s.EditPage)
		r.Post("/admin/pages/{pageID}", s.SavePage)
		r.Post("/admin/media", s.UploadMedia)
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(jwtauth.Verifier(s.auth))
		r.Use(authenticator)

		r.Post("/pages", s.CreatePage)
		r.Get("/pages", s.ListPages)
		r.Get("/pages/{pageID}", s.GetPage)
		r.Delete("/pages/{pageID}", s.DeletePage)

		r.Post("/analysis/{filter}", s.Analyze)
	})

	return r
}

// Health reports liveness
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
