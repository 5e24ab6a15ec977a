package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestora/backend/core"
	"github.com/gestora/backend/pkg/channelacl"
	"github.com/gestora/backend/pkg/logger"
	"github.com/gestora/backend/pkg/membership"
	"github.com/gestora/backend/svc/consolidation"
)

// diagnoseDuplicates handles GET /tenants/duplicates?name=<pattern>.
// Read-only; never mutates.
func (h *Handler) diagnoseDuplicates(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("name")
	if pattern == "" {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	diagnosis, err := h.consolidator.DiagnoseDuplicates(r.Context(), pattern)
	if err != nil {
		h.log.ErrorContext(r.Context(), "duplicate diagnosis failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSON(w, http.StatusOK, diagnosis)
}

type consolidateRequest struct {
	Name          string `json:"name"`
	ExpectedCount int    `json:"expected_count"`
}

// consolidate handles POST /tenants/consolidate.
func (h *Handler) consolidate(w http.ResponseWriter, r *http.Request) {
	var req consolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	result, err := h.consolidator.Consolidate(r.Context(), req.Name, req.ExpectedCount)
	if err != nil {
		switch {
		case errors.Is(err, consolidation.ErrUnexpectedCandidateCount),
			errors.Is(err, consolidation.ErrCandidateNameMismatch),
			errors.Is(err, consolidation.ErrConsolidationInProgress):
			core.JSONError(w, core.ErrConflict)
		default:
			h.log.ErrorContext(r.Context(), "consolidation failed", logger.Error(err))
			core.JSONError(w, core.ErrInternalServerError)
		}
		return
	}
	core.JSON(w, http.StatusOK, result)
}

type effectivePermissionsResponse struct {
	Permissions []string `json:"permissions"`
	Categories  []string `json:"categories"`
}

// effectivePermissions handles GET /users/{userID}/permissions?tenant_id=<id>.
// The caller must hold access to the tenant being queried.
func (h *Handler) effectivePermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return
	}

	caller, _ := CallerFromContext(r.Context())
	if !membership.CanAccessTenant(caller, tenantID) {
		core.JSONError(w, core.ErrForbidden)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, membership.ErrUserNotFound) {
			core.JSONError(w, core.ErrNotFound)
			return
		}
		h.log.ErrorContext(r.Context(), "user lookup failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	grant, err := h.aggregator.EffectivePermissions(r.Context(), user, tenantID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "permission aggregation failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	core.JSON(w, http.StatusOK, effectivePermissionsResponse{
		Permissions: sortedKeys(grant.Codes),
		Categories:  sortedKeys(grant.Categories),
	})
}

type channelMutationResponse struct {
	Success         bool     `json:"success"`
	CurrentChannels []string `json:"current_channels"`
}

// grantChannel handles POST /tenants/{tenantID}/users/{userID}/channels/{channel}.
func (h *Handler) grantChannel(w http.ResponseWriter, r *http.Request) {
	h.mutateChannel(w, r, h.channels.Grant)
}

// revokeChannel handles DELETE /tenants/{tenantID}/users/{userID}/channels/{channel}.
func (h *Handler) revokeChannel(w http.ResponseWriter, r *http.Request) {
	h.mutateChannel(w, r, h.channels.Revoke)
}

func (h *Handler) mutateChannel(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, tenantID, userID uuid.UUID, channel string) error,
) {
	tenantID, ok := tenantScope(w, r)
	if !ok {
		return
	}
	userID, channel, ok := channelParams(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), tenantID, userID, channel); err != nil {
		if errors.Is(err, channelacl.ErrEmptyChannel) {
			core.JSONError(w, core.ErrBadRequest)
			return
		}
		h.log.ErrorContext(r.Context(), "channel mutation failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	current, err := channelacl.Channels(r.Context(), h.channels, tenantID, userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "channel listing failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	if current == nil {
		current = []string{}
	}
	core.JSON(w, http.StatusOK, channelMutationResponse{Success: true, CurrentChannels: current})
}

type channelCheckResponse struct {
	HasAccess bool `json:"has_access"`
}

// checkChannel handles GET /tenants/{tenantID}/users/{userID}/channels/{channel}.
func (h *Handler) checkChannel(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantScope(w, r)
	if !ok {
		return
	}
	userID, channel, ok := channelParams(w, r)
	if !ok {
		return
	}

	granted, err := h.channels.Check(r.Context(), tenantID, userID, channel)
	if err != nil {
		if errors.Is(err, channelacl.ErrEmptyChannel) {
			core.JSONError(w, core.ErrBadRequest)
			return
		}
		h.log.ErrorContext(r.Context(), "channel check failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}
	core.JSON(w, http.StatusOK, channelCheckResponse{HasAccess: granted})
}

// listChannels handles GET /tenants/{tenantID}/channels.
func (h *Handler) listChannels(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantScope(w, r)
	if !ok {
		return
	}

	listing, err := h.channels.List(r.Context(), tenantID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "channel listing failed", logger.Error(err))
		core.JSONError(w, core.ErrInternalServerError)
		return
	}

	out := make(map[string][]string, len(listing))
	for userID, channels := range listing {
		out[userID.String()] = channels
	}
	core.JSON(w, http.StatusOK, out)
}

func channelParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, core.ErrBadRequest)
		return uuid.Nil, "", false
	}
	channel := chi.URLParam(r, "channel")
	if channel == "" {
		core.JSONError(w, core.ErrBadRequest)
		return uuid.Nil, "", false
	}
	return userID, channel, true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
