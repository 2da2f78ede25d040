package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
)

// User is the shopper profile returned by the API.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	IsAdmin   bool       `json:"isAdmin"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// SignInResult is the body of a successful POST /user/sign-in.
type SignInResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SignUpRequest is the body of POST /user/sign-up.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
}

// ProfileUpdate is the body of PUT /user/update-profile.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	var out SignInResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/user/sign-in", body: body}, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "sign-in response carried no access token")
	}
	return &out, nil
}

// SignUp registers a new account and returns the server's message.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	var out messageBody
	if err := c.do(ctx, request{method: http.MethodPost, path: "/user/sign-up", body: req}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ForgotPassword asks the API to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageBody
	body := map[string]string{"email": email}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/user/forgot-password", body: body}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// GetMe returns the profile of the token's owner. Only status SUCCESS or OK counts.
func (c *Client) GetMe(ctx context.Context, token string) (*User, error) {
	var out struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user/getMe", token: token}, &out); err != nil {
		return nil, err
	}
	if !okStatus(out.Status) {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "profile unavailable"
		}
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, msg).WithDetails(map[string]any{"status": out.Status})
	}
	var user User
	if err := json.Unmarshal(out.Data, &user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode profile")
	}
	return &user, nil
}

// UpdateProfile changes the name and phone of the token's owner.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (string, error) {
	var out messageBody
	if err := c.do(ctx, request{method: http.MethodPut, path: "/user/update-profile", token: token, body: update}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func okStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "OK":
		return true
	default:
		return false
	}
}
