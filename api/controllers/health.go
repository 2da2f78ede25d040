package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// Pinger is implemented by storage backends holding a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the device store when the backend has a connection to check.
func HealthReady(cfg *config.Config, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "device store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "storage": cfg.Storage.Driver})
	}
}
