package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-client/pkg/logger"
)

type userLookup interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// SessionUser tags the log context with the signed-in user, if any.
func SessionUser(sess userLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sess != nil && logg != nil {
				if userID, ok := sess.CurrentUserID(ctx); ok {
					ctx = logg.WithUserID(ctx, userID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
