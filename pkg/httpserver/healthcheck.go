package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gestora/backend/pkg/logger"
)

// Healthcheck returns a probe handler. With no checks it is a liveness
// probe and always reports 200 "ALIVE". With checks it is a readiness
// probe: every check must pass for 200 "READY", otherwise the handler
// reports 500 "NOT_READY". Checks run against the request context.
func Healthcheck(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
