package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sash-studio/api/internal/platform/httpx"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 30 * time.Second
)

// RouteRegistrar adds a group's routes to r.
type RouteRegistrar func(r chi.Router)

// routeGroup is one mount point under /api/v1.
type routeGroup struct {
	path      string
	registrar RouteRegistrar
}

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	groups      map[string]RouteRegistrar
}

// Option customises NewRouter.
type Option func(*routerConfig)

// NewRouter builds the API router: probes at the root and the /public, /me and
// /quote-requests groups under /api/v1. A group nobody registered answers 501.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{groups: make(map[string]RouteRegistrar)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Timeout(requestTimeout))
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", "no route for "+req.URL.Path, http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("%s is not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	groups := []routeGroup{
		{path: "/public", registrar: cfg.groups["/public"]},
		{path: "/me", registrar: cfg.groups["/me"]},
		{path: "/quote-requests", registrar: cfg.groups["/quote-requests"]},
	}
	r.Route(apiPrefix, func(api chi.Router) {
		for _, group := range groups {
			api.Route(group.path, func(sub chi.Router) {
				if group.registrar == nil {
					notImplemented(sub, group.path)
					return
				}
				group.registrar(sub)
			})
		}
	})
	return r
}

// WithMiddlewares appends middleware after the request id and timeout middleware.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers replaces the /healthz and /readyz handlers.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithPublicRoutes registers the anonymous pricing endpoints.
func WithPublicRoutes(reg RouteRegistrar) Option {
	return withGroup("/public", reg)
}

// WithMeRoutes registers the signed-in customer endpoints.
func WithMeRoutes(reg RouteRegistrar) Option {
	return withGroup("/me", reg)
}

// WithQuoteRequestRoutes registers the anonymous quote request endpoint.
func WithQuoteRequestRoutes(reg RouteRegistrar) Option {
	return withGroup("/quote-requests", reg)
}

func withGroup(path string, reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.groups[path] = reg
	}
}

func notImplemented(r chi.Router, path string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", apiPrefix+path+" is not enabled", http.StatusNotImplemented))
	}
	r.HandleFunc("/", handler)
	r.HandleFunc("/*", handler)
	r.NotFound(handler)
	r.MethodNotAllowed(handler)
}
