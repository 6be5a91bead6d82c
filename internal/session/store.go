// Package session owns the persisted authentication state: the token
// pair, the cached profile, and the auth-dependent part of the page.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/api"
	"github.com/nuramustaphaali/nurastore/internal/localstore"
	"github.com/nuramustaphaali/nurastore/internal/logger"
	"github.com/nuramustaphaali/nurastore/internal/ui"
)

// Persisted storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

// Store wraps the persisted session and the auth operations against the
// API. The access token's presence is the sole authentication signal;
// no expiry inspection happens client-side.
type Store struct {
	api     *api.Client
	storage localstore.Storage
	doc     ui.Document
	toasts  ui.Toaster
	nav     ui.Navigator

	redirectDelay time.Duration
}

func NewStore(client *api.Client, storage localstore.Storage, doc ui.Document, toasts ui.Toaster, nav ui.Navigator, redirectDelay time.Duration) *Store {
	return &Store{
		api:           client,
		storage:       storage,
		doc:           doc,
		toasts:        toasts,
		nav:           nav,
		redirectDelay: redirectDelay,
	}
}

// IsAuthenticated reports whether an access token is present.
func (s *Store) IsAuthenticated() bool {
	return s.storage.Get(KeyAccessToken) != ""
}

// AccessToken returns the persisted bearer credential, empty when
// logged out.
func (s *Store) AccessToken() string {
	return s.storage.Get(KeyAccessToken)
}

// CurrentUser returns the cached profile, if one is persisted.
func (s *Store) CurrentUser() (api.User, bool) {
	raw := s.storage.Get(KeyUserData)
	if raw == "" {
		return api.User{}, false
	}
	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Warn("corrupt cached profile, ignoring", zap.Error(err))
		return api.User{}, false
	}
	return user, true
}

// Login exchanges credentials for tokens, persists them, loads the
// profile and navigates home. On rejection it surfaces the server's
// message and stays put.
func (s *Store) Login(ctx context.Context, username, password string) error {
	tokens, err := s.api.Login(ctx, username, password)
	if err != nil {
		if api.IsNetworkError(err) {
			s.toasts.ShowToast("Server connection failed", ui.SeverityError)
		} else {
			s.toasts.ShowToast(api.ServerMessage(err, "Login failed"), ui.SeverityError)
		}
		return err
	}

	if err := s.storage.Set(KeyAccessToken, tokens.Access); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := s.storage.Set(KeyRefreshToken, tokens.Refresh); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}

	if _, err := s.FetchUser(ctx); err != nil {
		logger.Warn("profile fetch after login failed", zap.Error(err))
	}

	s.nav.Navigate(ui.RouteHome)
	return nil
}

// Register creates an account and, after letting the user read the
// toast, sends them to the login page. Validation rejections surface
// the first field error in username, email, password order.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := s.api.Register(ctx, req); err != nil {
		if api.IsNetworkError(err) {
			s.toasts.ShowToast("Registration error", ui.SeverityError)
		} else {
			s.toasts.ShowToast(api.ServerMessage(err, "Registration failed"), ui.SeverityError)
		}
		return err
	}

	s.toasts.ShowToast("Registration successful! Please login.", ui.SeveritySuccess)
	s.nav.NavigateAfter(ui.RouteLogin, s.redirectDelay)
	return nil
}

// Logout clears every persisted session field and navigates to login.
// Safe to call with no session present.
func (s *Store) Logout() {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserData} {
		if err := s.storage.Remove(key); err != nil {
			logger.Warn("failed to clear session key", zap.String("key", key), zap.Error(err))
		}
	}
	s.UpdateUI()
	s.nav.Navigate(ui.RouteLogin)
}

// FetchUser loads the profile behind the current token, persists it and
// refreshes the auth region. A rejected credential triggers a full
// logout; network failures are logged only.
func (s *Store) FetchUser(ctx context.Context) (api.User, error) {
	token := s.AccessToken()
	if token == "" {
		return api.User{}, nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if api.IsAuthRejection(err) {
			logger.Info("stale credential rejected, logging out")
			s.Logout()
		} else {
			logger.Error("profile fetch failed", err)
		}
		return api.User{}, err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return api.User{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.storage.Set(KeyUserData, string(raw)); err != nil {
		return api.User{}, fmt.Errorf("persist profile: %w", err)
	}

	s.UpdateUI()
	return user, nil
}

// UpdateUI re-renders the auth-links region from persisted state. It is
// idempotent and tolerates a token without a cached profile.
func (s *Store) UpdateUI() {
	anchor, ok := s.doc.Anchor(ui.AnchorAuthLinks)
	if !ok {
		return
	}

	if !s.IsAuthenticated() {
		anchor.SetHTML(
			`<li class="nav-item"><a class="nav-link" href="/login">Login</a></li>` +
				`<li class="nav-item"><a class="btn btn-primary btn-sm ms-2" href="/register">Register</a></li>`)
		return
	}

	greeting := "Account"
	if user, ok := s.CurrentUser(); ok && user.Username != "" {
		greeting = "Hello, " + html.EscapeString(user.Username)
	}
	anchor.SetHTML(fmt.Sprintf(
		`<li class="nav-item dropdown"><a class="nav-link dropdown-toggle" href="#">%s</a>`+
			`<ul class="dropdown-menu">`+
			`<li><a class="dropdown-item" href="#">Profile</a></li>`+
			`<li><a class="dropdown-item" href="#">Orders</a></li>`+
			`<li><a class="dropdown-item" href="#" data-action="logout">Logout</a></li>`+
			`</ul></li>`, greeting))
}
