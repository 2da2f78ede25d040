package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/internal/focus"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// screenLeaseHeader carries "<screen>:<generation>" as returned by the focus endpoint.
const screenLeaseHeader = "X-Screen-Lease"

// ScreenLease resolves the X-Screen-Lease header against registry and stores the lease in the
// request context. Requests without the header are not tied to a screen.
func ScreenLease(registry *focus.Registry, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(screenLeaseHeader))
			if raw == "" || registry == nil {
				next.ServeHTTP(w, r)
				return
			}
			screen, generation, err := parseScreenLease(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			// Screens are registered by the focus endpoint; an unknown one gets a lease that never delivers.
			var lease focus.Lease
			if tracker, ok := registry.Lookup(screen); ok {
				lease = tracker.LeaseFor(generation)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxLease, lease)))
		})
	}
}

// Deliver runs fn unless the request belongs to a screen that has since lost focus.
// A stale request answers CONFLICT and fn's result is discarded.
func Deliver(ctx context.Context, fn func()) error {
	lease, ok := ctx.Value(ctxLease).(focus.Lease)
	if !ok {
		fn()
		return nil
	}
	if !lease.Deliver(fn) {
		return pkgerrors.New(pkgerrors.CodeConflict, "screen is no longer focused")
	}
	return nil
}

func parseScreenLease(raw string) (string, uint64, error) {
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		return "", 0, pkgerrors.New(pkgerrors.CodeValidation, "malformed screen lease").WithDetails(map[string]string{"header": screenLeaseHeader})
	}
	generation, err := strconv.ParseUint(raw[idx+1:], 10, 64)
	if err != nil {
		return "", 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed screen lease").WithDetails(map[string]string{"header": screenLeaseHeader})
	}
	return raw[:idx], generation, nil
}
