package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/internal/focus"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

type screenLease struct {
	Screen     string `json:"screen"`
	Generation uint64 `json:"generation"`
	Lease      string `json:"lease"`
}

// ScreenFocus starts a new focus generation for the screen. Requests sent with the returned
// lease are answered only while that generation is current.
func ScreenFocus(registry *focus.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		screen, err := pathScreen(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lease := registry.Tracker(screen).Focus()
		responses.WriteSuccess(w, screenLease{
			Screen:     screen,
			Generation: lease.Generation(),
			Lease:      screen + ":" + strconv.FormatUint(lease.Generation(), 10),
		})
	}
}

// ScreenBlur ends the screen's focus period. Blurring a screen that was never focused is a no-op.
func ScreenBlur(registry *focus.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		screen, err := pathScreen(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if tracker, ok := registry.Lookup(screen); ok {
			tracker.Blur()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

const maxScreenName = 64

func pathScreen(r *http.Request) (string, error) {
	screen := strings.TrimSpace(chi.URLParam(r, "screen"))
	if screen == "" || len(screen) > maxScreenName || strings.Contains(screen, ":") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"screen": "must be a screen name of at most 64 characters without ':'"})
	}
	return screen, nil
}
