// package testing contains shared testing utilities
package testing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
)

// NewSession builds a valid session for tests.
func NewSession(userID, email string) *models.Session {
	return &models.Session{
		UserID: userID,
		Email:  email,
		Token: &oauth2.Token{
			AccessToken:  "access-" + userID,
			RefreshToken: "refresh-" + userID,
			TokenType:    "bearer",
			Expiry:       time.Now().Add(time.Hour),
		},
	}
}

// MockProvider is a configurable test double for [services.AuthProvider].
//
// Each method counts its calls and delegates to the corresponding Fn when
// set. Fire delivers an external session-change notification to registered
// listeners, the way the real provider does on refresh or remote logout.
type MockProvider struct {
	mu sync.Mutex

	SignInFn  func(ctx context.Context, email, password string) (*models.Session, error)
	SignUpFn  func(ctx context.Context, email, password string) (*services.SignUpResult, error)
	SignOutFn func(ctx context.Context) error
	CurrentFn func(ctx context.Context) (*models.Session, error)

	SignInCalls  int
	SignUpCalls  int
	SignOutCalls int
	CurrentCalls int

	listeners []func(*models.Session)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	m.mu.Lock()
	m.SignInCalls++
	fn := m.SignInFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password)
	}
	return NewSession("user-1", email), nil
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*services.SignUpResult, error) {
	m.mu.Lock()
	m.SignUpCalls++
	fn := m.SignUpFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, email, password)
	}
	return &services.SignUpResult{Session: NewSession("user-1", email)}, nil
}

func (m *MockProvider) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.SignOutCalls++
	fn := m.SignOutFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	m.Fire(nil)
	return nil
}

func (m *MockProvider) CurrentSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	m.CurrentCalls++
	fn := m.CurrentFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *MockProvider) OnSessionChange(fn func(*models.Session)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Fire delivers a session-change notification to all listeners.
func (m *MockProvider) Fire(session *models.Session) {
	m.mu.Lock()
	listeners := make([]func(*models.Session), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(session)
	}
}

// MockStore is a configurable test double for [services.TabStore].
type MockStore struct {
	mu sync.Mutex

	RoleFn   func(ctx context.Context, userID string) (string, error)
	ListFn   func(ctx context.Context) ([]models.Tab, error)
	InsertFn func(ctx context.Context, tab models.NewTab) error

	RoleCalls   int
	ListCalls   int
	InsertCalls int

	Inserted []models.NewTab
}

func (m *MockStore) QueryRole(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	m.RoleCalls++
	fn := m.RoleFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID)
	}
	return "", nil
}

func (m *MockStore) ListTabs(ctx context.Context) ([]models.Tab, error) {
	m.mu.Lock()
	m.ListCalls++
	fn := m.ListFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return []models.Tab{}, nil
}

func (m *MockStore) InsertTab(ctx context.Context, tab models.NewTab) error {
	m.mu.Lock()
	m.InsertCalls++
	fn := m.InsertFn
	if fn == nil {
		m.Inserted = append(m.Inserted, tab)
	}
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, tab)
	}
	return nil
}
