// Package session tracks which storefront user is signed in on this device.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-client/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"go.uber.org/multierr"
)

// Device store keys. Collections live under their own keys and are never touched here.
const (
	KeyUserID       = "userId"
	KeyIsLoggedIn   = "isLoggedIn"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Credentials are what a successful sign-in hands back.
type Credentials struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// Manager reads and writes the session keys.
type Manager struct {
	store kvstore.Store
	logg  *logger.Logger
}

// NewManager returns a session manager persisting credentials in store. A nil logg logs nothing.
func NewManager(store kvstore.Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{store: store, logg: logg}, nil
}

// CurrentUserID returns the signed-in user. A store failure reads as signed out.
func (m *Manager) CurrentUserID(ctx context.Context) (string, bool) {
	id := m.read(ctx, KeyUserID)
	if id == "" {
		return "", false
	}
	return id, true
}

// RequireUser returns the signed-in user or a NOT_AUTHENTICATED error.
func (m *Manager) RequireUser(ctx context.Context) (string, error) {
	id, ok := m.CurrentUserID(ctx)
	if !ok {
		return "", pkgerrors.NotAuthenticated("please sign in to continue")
	}
	return id, nil
}

// IsLoggedIn reports the persisted flag.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	return m.read(ctx, KeyIsLoggedIn) == "true"
}

// AccessToken returns the stored bearer token, or "" when there is none.
func (m *Manager) AccessToken(ctx context.Context) string {
	return m.read(ctx, KeyAccessToken)
}

// RequireAccessToken returns the bearer token or a NOT_AUTHENTICATED error.
func (m *Manager) RequireAccessToken(ctx context.Context) (string, error) {
	token := m.AccessToken(ctx)
	if token == "" {
		return "", pkgerrors.NotAuthenticated("please sign in again")
	}
	return token, nil
}

// AccessTokenExpired reports whether the stored access token's exp is in the past.
// Without a token there is nothing to expire.
func (m *Manager) AccessTokenExpired(ctx context.Context, now time.Time) bool {
	token := m.AccessToken(ctx)
	if token == "" {
		return false
	}
	return auth.Expired(token, now)
}

// SetCurrentUser persists a fresh sign-in.
func (m *Manager) SetCurrentUser(ctx context.Context, creds Credentials) error {
	userID := strings.TrimSpace(creds.UserID)
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	writes := []struct{ key, value string }{
		{KeyAccessToken, creds.AccessToken},
		{KeyRefreshToken, creds.RefreshToken},
		{KeyUserID, userID},
		{KeyIsLoggedIn, "true"},
	}
	for _, w := range writes {
		if err := m.store.Set(ctx, w.key, w.value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save session")
		}
	}
	m.logg.Info(m.logg.WithUserID(ctx, userID), "session.signed_in")
	return nil
}

// ClearCurrentUser removes every session key. All removals are attempted; failures are combined.
func (m *Manager) ClearCurrentUser(ctx context.Context) error {
	var err error
	for _, key := range []string{KeyUserID, KeyIsLoggedIn, KeyAccessToken, KeyRefreshToken} {
		err = multierr.Append(err, m.store.Remove(ctx, key))
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear session")
	}
	m.logg.Info(ctx, "session.signed_out")
	return nil
}

func (m *Manager) read(ctx context.Context, key string) string {
	value, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.logg.Warn(m.logg.WithField(ctx, "key", key), "session.read_failed")
		}
		return ""
	}
	return strings.TrimSpace(value)
}
