// PostgREST-style data API implementation of [TabStore]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/shared"
)

// TokenSource yields the bearer token attached to store requests, so the
// store client always sends the tracker's current session token.
type TokenSource func() string

// StoreAPI implements [TabStore] against a PostgREST-style REST surface.
//
// A shared rate limiter throttles all store round trips; the backend is the
// single source of truth and is never hammered by UI-driven refresh storms.
type StoreAPI struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	limiter    *rate.Limiter
	token      TokenSource
}

// NewStoreAPI creates a store client. requestsPerSecond <= 0 disables
// throttling; token may be nil for anonymous access.
func NewStoreAPI(baseURL, anonKey string, client *http.Client, requestsPerSecond float64, token TokenSource) *StoreAPI {
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &StoreAPI{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: client,
		limiter:    limiter,
		token:      token,
	}
}

// QueryRole looks up the profile role for userID. A missing profile is not an
// error; it reports an empty role.
func (s *StoreAPI) QueryRole(ctx context.Context, userID string) (string, error) {
	path := "/rest/v1/profiles?id=eq." + url.QueryEscape(userID) + "&select=role"
	body, status, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", storeError(body, status)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return "", fmt.Errorf("%w: malformed profile response: %v", shared.ErrStore, err)
	}
	if len(profiles) == 0 {
		return "", nil
	}
	return profiles[0].Role, nil
}

// ListTabs fetches the full tab set ordered by artist then title, ascending.
// Sort order is delegated to the store; ties keep store-defined order.
func (s *StoreAPI) ListTabs(ctx context.Context) ([]models.Tab, error) {
	path := "/rest/v1/tabs?select=*&order=artist.asc,title.asc"
	body, status, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, storeError(body, status)
	}

	var tabs []models.Tab
	if err := json.Unmarshal(body, &tabs); err != nil {
		return nil, fmt.Errorf("%w: malformed tabs response: %v", shared.ErrStore, err)
	}
	return tabs, nil
}

// InsertTab stores a new tab record. Row-level authorization is enforced by
// the store; a rejection surfaces the store's message verbatim.
func (s *StoreAPI) InsertTab(ctx context.Context, tab models.NewTab) error {
	payload, err := json.Marshal(tab)
	if err != nil {
		return fmt.Errorf("failed to marshal tab: %w", err)
	}

	body, status, err := s.do(ctx, http.MethodPost, "/rest/v1/tabs", payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return storeError(body, status)
	}
	return nil
}

func (s *StoreAPI) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.anonKey)
	if s.token != nil {
		if bearer := s.token(); bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrStore, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", shared.ErrStore, err)
	}

	return body, resp.StatusCode, nil
}

// postgrestError is the error body shape of the data endpoints.
type postgrestError struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func storeError(body []byte, status int) error {
	var pe postgrestError
	if err := json.Unmarshal(body, &pe); err == nil && pe.Message != "" {
		return fmt.Errorf("%w: %s", shared.ErrStore, pe.Message)
	}
	return fmt.Errorf("%w: status %d", shared.ErrStore, status)
}
