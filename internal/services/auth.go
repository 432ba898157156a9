// GoTrue-style auth API implementation of [AuthProvider]
//
// Endpoint shapes follow the Supabase auth REST surface:
// token?grant_type=password, signup, logout, token?grant_type=refresh_token.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/shared"
)

// SessionCache persists the current session between program invocations.
type SessionCache interface {
	Save(session *models.Session) error
	Load() (*models.Session, error)
	Clear() error
}

// AuthAPI implements [AuthProvider] against a GoTrue-style REST API.
//
// A single AuthAPI owns the current session for the process. Session change
// callbacks fire on sign-in, refresh and sign-out.
type AuthAPI struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	cache      SessionCache

	mu        sync.Mutex
	session   *models.Session
	listeners []func(*models.Session)
}

// NewAuthAPI creates an auth client for the given project URL and anon key.
// The cache may be nil, in which case sessions live only in memory.
func NewAuthAPI(baseURL, anonKey string, client *http.Client, cache SessionCache) *AuthAPI {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthAPI{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: client,
		cache:      cache,
	}
}

// tokenResponse is the session-shaped response of the token and signup endpoints.
type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	User         authUser `json:"user"`
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// authError is the error body shape of the auth endpoints.
type authError struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error"`
}

func (e authError) message(fallback string) string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.ErrorCode != "":
		return e.ErrorCode
	default:
		return fallback
	}
}

// SignIn exchanges email and password for a session via the password grant.
func (a *AuthAPI) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	body, status, err := a.post(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError(body, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", shared.ErrProvider, err)
	}

	session := tr.session()
	a.setSession(session, true)
	return session, nil
}

// SignUp registers a new account. The provider returns a session when email
// confirmation is disabled, and a bare user record when it is normally
// required; both shapes are surfaced unchanged in [SignUpResult].
func (a *AuthAPI) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	body, status, err := a.post(ctx, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError(body, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err == nil && tr.AccessToken != "" {
		session := tr.session()
		a.setSession(session, true)
		return &SignUpResult{Session: session}, nil
	}

	var user authUser
	if err := json.Unmarshal(body, &user); err == nil && user.ID != "" {
		return &SignUpResult{UserID: user.ID}, nil
	}

	return &SignUpResult{}, nil
}

// SignOut revokes the current session. The local session is cleared and the
// nil notification fires even when revocation fails; from the caller's
// perspective logout always succeeds.
func (a *AuthAPI) SignOut(ctx context.Context) error {
	a.mu.Lock()
	var token string
	if a.session != nil && a.session.Token != nil {
		token = a.session.Token.AccessToken
	}
	a.mu.Unlock()

	var reqErr error
	if token != "" {
		_, status, err := a.post(ctx, "/auth/v1/logout", nil, token)
		if err != nil {
			reqErr = err
		} else if status < 200 || status >= 300 {
			reqErr = fmt.Errorf("%w: logout returned status %d", shared.ErrProvider, status)
		}
	}

	a.setSession(nil, true)
	return reqErr
}

// CurrentSession returns the active session, restoring it from the cache on
// first use and refreshing it when expired. Returns (nil, nil) when logged out.
func (a *AuthAPI) CurrentSession(ctx context.Context) (*models.Session, error) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil && a.cache != nil {
		cached, err := a.cache.Load()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load cached session: %v", shared.ErrProvider, err)
		}
		session = cached
		if session != nil {
			a.setSession(session, false)
		}
	}

	if session == nil {
		return nil, nil
	}

	if session.Expired() {
		refreshed, err := a.refresh(ctx, session)
		if err != nil {
			a.setSession(nil, true)
			return nil, err
		}
		return refreshed, nil
	}

	return session, nil
}

// AccessToken returns the current session's bearer token, or "" when logged
// out. Satisfies [TokenSource] so store requests carry the user's identity.
func (a *AuthAPI) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil || a.session.Token == nil {
		return ""
	}
	return a.session.Token.AccessToken
}

// OnSessionChange registers a callback invoked on every session transition.
func (a *AuthAPI) OnSessionChange(fn func(*models.Session)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// refresh exchanges the refresh token for a new session and notifies listeners.
func (a *AuthAPI) refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session.Token == nil || session.Token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", shared.ErrSessionExpired)
	}

	body, status, err := a.post(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": session.Token.RefreshToken,
	}, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, providerError(body, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: malformed refresh response: %v", shared.ErrProvider, err)
	}

	refreshed := tr.session()
	a.setSession(refreshed, true)
	return refreshed, nil
}

// setSession replaces the current session, persists it, and optionally
// notifies listeners. Listeners run outside the lock.
func (a *AuthAPI) setSession(session *models.Session, notify bool) {
	a.mu.Lock()
	a.session = session
	listeners := make([]func(*models.Session), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	if a.cache != nil {
		if session == nil {
			a.cache.Clear()
		} else {
			a.cache.Save(session)
		}
	}

	if notify {
		for _, fn := range listeners {
			fn(session)
		}
	}
}

func (a *AuthAPI) post(ctx context.Context, path string, payload any, bearer string) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", shared.ErrProvider, err)
	}

	return body, resp.StatusCode, nil
}

// session converts a token response into a [models.Session].
func (tr tokenResponse) session() *models.Session {
	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return &models.Session{
		UserID: tr.User.ID,
		Email:  tr.User.Email,
		Token:  token,
	}
}

// providerError surfaces the provider's own error message verbatim.
func providerError(body []byte, status int) error {
	var ae authError
	_ = json.Unmarshal(body, &ae)
	return fmt.Errorf("%w: %s", shared.ErrProvider, ae.message(fmt.Sprintf("status %d", status)))
}
