package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestora/backend/core"
	"github.com/gestora/backend/pkg/channelacl"
	"github.com/gestora/backend/pkg/membership"
	"github.com/gestora/backend/pkg/permission"
	"github.com/gestora/backend/svc/consolidation"
)

// UserGetter loads user documents for permission lookups.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*membership.User, error)
}

// Handler exposes the administrative operations of the access subsystem.
type Handler struct {
	users        UserGetter
	aggregator   *permission.Aggregator
	channels     channelacl.Store
	consolidator *consolidation.Service
	log          *slog.Logger
}

// NewHandler creates the admin module handler. A nil logger falls back to
// slog.Default.
func NewHandler(
	users UserGetter,
	aggregator *permission.Aggregator,
	channels channelacl.Store,
	consolidator *consolidation.Service,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		users:        users,
		aggregator:   aggregator,
		channels:     channels,
		consolidator: consolidator,
		log:          log,
	}
}

// Router mounts the admin operations. Every route requires a caller
// identity in the request context; the consolidation routes additionally
// require the technician system role.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requireCaller)

	r.Route("/tenants", func(r chi.Router) {
		r.With(requireTechnician).Get("/duplicates", h.diagnoseDuplicates)
		r.With(requireTechnician).Post("/consolidate", h.consolidate)

		r.Route("/{tenantID}", func(r chi.Router) {
			r.Get("/channels", h.listChannels)
			r.Route("/users/{userID}/channels/{channel}", func(r chi.Router) {
				r.Get("/", h.checkChannel)
				r.Post("/", h.grantChannel)
				r.Delete("/", h.revokeChannel)
			})
		})
	})

	r.Get("/users/{userID}/permissions", h.effectivePermissions)

	return r
}

// requireCaller rejects requests without an authenticated identity.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFromContext(r.Context()); !ok {
			core.JSONError(w, core.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireTechnician restricts a route to the elevated system role.
func requireTechnician(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		if !caller.IsTechnician() {
			core.JSONError(w, core.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tenantScope parses the tenant id from the URL and checks the caller's
// access to it.
func tenantScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return uuid.Nil, false
	}

	caller, _ := CallerFromContext(r.Context())
	if !membership.CanAccessTenant(caller, tenantID) {
		core.JSONError(w, core.ErrForbidden)
		return uuid.Nil, false
	}
	return tenantID, true
}
