// Package api wires the HTTP surface of the build server.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/packsmith/packsmith/internal/core"
	"github.com/packsmith/packsmith/internal/store"
)

// VersionService answers version-resolution queries.
type VersionService interface {
	VanillaVersions(ctx context.Context, versionType string) ([]string, error)
	LoaderFamilies(ctx context.Context, gameVersion string) ([]core.Family, error)
	LoaderReleases(ctx context.Context, gameVersion string, family core.Family) ([]string, error)
}

// BuildService triggers builds and reports their state.
type BuildService interface {
	Submit(ctx context.Context) error
	Status() (busy bool, message string)
}

// SpecStore persists the build spec document.
type SpecStore interface {
	Get() (*store.BuildSpec, error)
	Update(mutator func(*store.BuildSpec) error) (*store.BuildSpec, error)
	AddVersion(entry store.VersionEntry) (*store.BuildSpec, error)
	UpdateVersion(name string, entry store.VersionEntry) (*store.BuildSpec, error)
	DeleteVersion(name string) (*store.BuildSpec, error)
}

// TokenService issues and verifies capability tokens.
type TokenService interface {
	CreateAccessToken() (string, error)
	ValidateToken(raw string) error
}

// EntryValidator checks one version entry before it is persisted.
type EntryValidator interface {
	ValidateEntry(ctx context.Context, entry *store.VersionEntry) error
}

// Dependencies carries everything the handlers need; there is no ambient
// server state.
type Dependencies struct {
	AdminToken     string
	AllowedOrigins []string

	Auth      TokenService
	Store     SpecStore
	Versions  VersionService
	Builds    BuildService
	Validator EntryValidator
	WebSocket http.HandlerFunc
	Logger    hclog.Logger
}

// NewRouter builds the chi router for the API.
func NewRouter(deps *Dependencies) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	h := &handlers{deps: deps}

	r.Post("/auth/login", h.login)
	r.Get("/ws", deps.WebSocket)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/auth/check", h.authCheck)

		r.Get("/settings", h.getSettings)
		r.Post("/settings", h.updateSettings)

		r.Get("/modpacks", h.listModpacks)
		r.Post("/modpacks", h.createModpack)
		r.Get("/modpacks/{name}", h.getModpack)
		r.Patch("/modpacks/{name}", h.updateModpack)
		r.Delete("/modpacks/{name}", h.deleteModpack)

		r.Get("/mc-versions", h.listVanillaVersions)
		r.Get("/mc-versions/{version}/loaders", h.listLoaders)
		r.Get("/mc-versions/{version}/{loader}", h.listLoaderVersions)

		r.Post("/build", h.startBuild)
		r.Get("/build/status", h.buildStatus)
	})

	return r
}

// requireAuth enforces a valid bearer token on protected routes.
func (h *handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, http.StatusUnauthorized, "expected Bearer token")
			return
		}
		if err := h.deps.Auth.ValidateToken(parts[1]); err != nil {
			h.deps.Logger.Warn("invalid token attempt", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
