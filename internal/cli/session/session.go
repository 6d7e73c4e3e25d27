package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/storage"
	"github.com/yndnr/unionhub-go/internal/telemetry/logger"
)

// API paths.
const (
	TokenPath    = "/auth/token"
	RegisterPath = "/auth/register"
)

// DefaultLanding is where a successful login goes without a redirect.
const DefaultLanding = "/unions"

// RegisterFallbackMessage is shown when a failed registration carries no
// server detail.
const RegisterFallbackMessage = "Registration failed. Please try again."

// ErrMissingToken is returned when the token endpoint answers 2xx without
// an access_token.
var ErrMissingToken = errors.New("session: token response has no access_token")

// State is the authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// API is the subset of the HTTP client the session uses.
type API interface {
	PostForm(ctx context.Context, path string, form url.Values) (*connection.Response, error)
	PostJSON(ctx context.Context, path string, body any) (*connection.Response, error)
}

// Navigator moves to a route after login.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Store is the authentication session.
type Store struct {
	api    API
	kv     storage.KV
	logger logger.Logger

	mu        sync.RWMutex
	token     string
	user      *User
	lastError string
	nav       Navigator
}

// New creates a Store and hydrates the token from kv. A token that cannot
// be read is logged and the session starts Anonymous.
func New(ctx context.Context, kv storage.KV, api API, nav Navigator, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	s := &Store{
		api:    api,
		kv:     kv,
		nav:    nav,
		logger: log.With("component", "session"),
	}

	tok, err := kv.Get(ctx, storage.KeyToken)
	switch {
	case err == nil && tok != "":
		s.token = tok
		s.user = decodeUser(tok)
		s.logger.Debug("session restored from storage")
	case err == nil, errors.Is(err, storage.ErrKeyNotFound):
	default:
		s.logger.Warn("stored token unreadable, starting signed out", "error", err)
	}
	return s
}

// SetNavigator installs the post-login navigator.
func (s *Store) SetNavigator(nav Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav = nav
}

// Login exchanges credentials for a token. On success the session becomes
// Authenticated, the token is persisted and the navigator is sent to
// redirect, or to DefaultLanding when redirect is not a safe internal path.
// On failure nothing changes and the normalized error is returned.
func (s *Store) Login(ctx context.Context, username, password, redirect string) error {
	form := url.Values{
		"username":   {username},
		"password":   {password},
		"grant_type": {"password"},
	}

	reqCtx := connection.WithNewRequestID(ctx)
	log := s.logger.WithContext(reqCtx)
	resp, err := s.api.PostForm(reqCtx, TokenPath, form)
	if err != nil {
		log.Debug("login rejected", "username", username, "error", err)
		return err
	}

	var body tokenResponse
	if err := connection.DecodeJSON(resp, &body); err != nil {
		return err
	}
	if body.AccessToken == "" {
		return ErrMissingToken
	}

	s.mu.Lock()
	prevToken, prevUser := s.token, s.user
	s.token = body.AccessToken
	if err := s.kv.Set(ctx, storage.KeyToken, body.AccessToken); err != nil {
		s.token, s.user = prevToken, prevUser
		s.mu.Unlock()
		return fmt.Errorf("persist token: %w", err)
	}
	s.user = decodeUser(body.AccessToken)
	s.lastError = ""
	nav := s.nav
	s.mu.Unlock()

	log.Info("logged in", "username", username)

	if nav == nil {
		return nil
	}
	return nav.Navigate(ctx, SafeRedirect(redirect))
}

// Register creates an account. It never signs in. On failure LastError is
// set to the server detail, or RegisterFallbackMessage, and a
// KindValidation error wrapping the original is returned.
func (s *Store) Register(ctx context.Context, username, password string) error {
	ctx = connection.WithNewRequestID(ctx)
	_, err := s.api.PostJSON(ctx, RegisterPath, registerRequest{Username: username, Password: password})
	if err != nil {
		msg := RegisterFallbackMessage
		var ce *connection.Error
		if errors.As(err, &ce) && ce.Detail != "" {
			msg = ce.Detail
		}

		s.mu.Lock()
		s.lastError = msg
		s.mu.Unlock()

		s.logger.WithContext(ctx).Debug("registration rejected", "username", username, "error", err)
		return connection.NewValidationError(msg, err)
	}

	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// Logout clears the token and user from memory and storage. It is
// idempotent. Memory is cleared even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.kv.Remove(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("remove stored token: %w", err)
	}
	return nil
}

// SetUser replaces the user record.
func (s *Store) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Token returns the bearer token, or "" when Anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the user record, which may be nil even when Authenticated.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LastError returns the message of the last failed registration.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// State returns the current state.
func (s *Store) State() State {
	if s.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

// SafeRedirect returns target when it is an internal path ("/x", not
// "//host" and not the login page), else DefaultLanding.
func SafeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultLanding
	}
	if target == "/login" || strings.HasPrefix(target, "/login?") {
		return DefaultLanding
	}
	return target
}

func decodeUser(token string) *User {
	u, err := ParseUser(token)
	if err != nil {
		return nil
	}
	return u
}
