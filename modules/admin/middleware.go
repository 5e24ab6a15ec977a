package admin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gestora/backend/core"
	"github.com/gestora/backend/pkg/membership"
)

// CallerHeader carries the authenticated user id, set by the
// authenticating proxy in front of this service. The value is trusted;
// the proxy must strip the header from external traffic.
const CallerHeader = "X-User-ID"

// ResolveCaller loads the user named by CallerHeader and stores it in the
// request context. Requests without a valid header pass through without a
// caller and are rejected by requireCaller downstream.
func ResolveCaller(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := uuid.Parse(r.Header.Get(CallerHeader))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, membership.ErrUserNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				core.JSONError(w, core.ErrInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), user)))
		})
	}
}
