package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-client/api/responses"
	"github.com/angelmondragon/storefront-client/api/validators"
	"github.com/angelmondragon/storefront-client/internal/account"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// SessionReader reports the signed-in state held on the device.
type SessionReader interface {
	CurrentUserID(ctx context.Context) (string, bool)
	AccessTokenExpired(ctx context.Context, now time.Time) bool
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func AccountSignIn(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload account.SignInInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.SignIn(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithUserID(r.Context(), user.ID), "account.signed_in")
		}
		responses.WriteSuccess(w, user)
	}
}

// AccountSignOut forgets the session. Cart and favorites stay stored for the next sign-in.
func AccountSignOut(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AccountSignUp(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload account.SignUpInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.SignUp(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, messageResponse{Message: msg})
	}
}

func AccountForgotPassword(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload forgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.ForgotPassword(r.Context(), payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messageResponse{Message: msg})
	}
}

func AccountProfile(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeased(w, r, logg, user)
	}
}

func AccountUpdateProfile(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload account.ProfileInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.UpdateProfile(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messageResponse{Message: msg})
	}
}

// SessionStatus lets the app shell decide between the login screen and the tabs.
func SessionStatus(sess SessionReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sess.CurrentUserID(r.Context())
		status := map[string]any{
			"isLoggedIn":   ok,
			"userId":       userID,
			"tokenExpired": ok && sess.AccessTokenExpired(r.Context(), time.Now()),
		}
		writeLeased(w, r, logg, status)
	}
}
