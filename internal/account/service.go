// Package account handles sign-in, sign-up, password reset and the shopper profile.
package account

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-client/internal/catalog"
	"github.com/angelmondragon/storefront-client/internal/session"
	"github.com/angelmondragon/storefront-client/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/validation"
)

type accountAPI interface {
	SignIn(ctx context.Context, email, password string) (*catalog.SignInResult, error)
	SignUp(ctx context.Context, req catalog.SignUpRequest) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	GetMe(ctx context.Context, token string) (*catalog.User, error)
	UpdateProfile(ctx context.Context, token string, update catalog.ProfileUpdate) (string, error)
}

type sessionStore interface {
	SetCurrentUser(ctx context.Context, creds session.Credentials) error
	ClearCurrentUser(ctx context.Context) error
	RequireAccessToken(ctx context.Context) (string, error)
}

// SignInInput is what the login screen submits.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpInput is what the registration screen submits.
type SignUpInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required,numeric,min=9,max=15"`
}

// ProfileInput is what the edit-profile screen submits.
type ProfileInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,numeric,min=9,max=15"`
}

// Service exposes account operations.
type Service interface {
	SignIn(ctx context.Context, input SignInInput) (*catalog.User, error)
	SignOut(ctx context.Context) error
	SignUp(ctx context.Context, input SignUpInput) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	Profile(ctx context.Context) (*catalog.User, error)
	UpdateProfile(ctx context.Context, input ProfileInput) (string, error)
}

// ServiceParams groups dependencies for the account service.
type ServiceParams struct {
	API     accountAPI
	Session sessionStore
	Logger  *logger.Logger
}

type service struct {
	api     accountAPI
	session sessionStore
	logg    *logger.Logger
}

// NewService validates params and returns the account service.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account api is required")
	}
	if params.Session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{api: params.API, session: params.Session, logg: logg}, nil
}

// SignIn validates credentials locally, authenticates against the API and persists the session.
// The user's cart and favorites become visible again as soon as the session is stored.
func (s *service) SignIn(ctx context.Context, input SignInInput) (*catalog.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	res, err := s.api.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(res.User.ID)
	if userID == "" {
		if claims, err := auth.ParseAccessTokenUnverified(res.AccessToken); err == nil {
			userID = claims.UserID()
		}
	}
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "sign-in response did not identify the user")
	}

	if err := s.session.SetCurrentUser(ctx, session.Credentials{
		UserID:       userID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}); err != nil {
		return nil, err
	}
	user := res.User
	user.ID = userID
	return &user, nil
}

// SignOut forgets the session. Per-user collections stay on the device.
func (s *service) SignOut(ctx context.Context) error {
	return s.session.ClearCurrentUser(ctx)
}

func (s *service) SignUp(ctx context.Context, input SignUpInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Struct(input); err != nil {
		return "", err
	}
	return s.api.SignUp(ctx, catalog.SignUpRequest{
		Name:            input.Name,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		Phone:           input.Phone,
	})
}

func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Var("email", email, "required,email"); err != nil {
		return "", err
	}
	return s.api.ForgotPassword(ctx, email)
}

func (s *service) Profile(ctx context.Context) (*catalog.User, error) {
	token, err := s.session.RequireAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.GetMe(ctx, token)
}

func (s *service) UpdateProfile(ctx context.Context, input ProfileInput) (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Struct(input); err != nil {
		return "", err
	}
	token, err := s.session.RequireAccessToken(ctx)
	if err != nil {
		return "", err
	}
	return s.api.UpdateProfile(ctx, token, catalog.ProfileUpdate{Name: input.Name, Phone: input.Phone})
}
