package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
	"github.com/fretless/tabstash/internal/shared"
	mock "github.com/fretless/tabstash/internal/testing"
)

// fakeCollection records cascade calls without a real store.
type fakeCollection struct {
	mu        sync.Mutex
	refreshes int
	clears    int
	ops       []string
	refreshFn func(ctx context.Context) error
}

func (f *fakeCollection) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.refreshes++
	f.ops = append(f.ops, "refresh")
	fn := f.refreshFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (f *fakeCollection) Clear() {
	f.mu.Lock()
	f.clears++
	f.ops = append(f.ops, "clear")
	f.mu.Unlock()
}

func (f *fakeCollection) calls() (refreshes, clears int, ops []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes, f.clears, append([]string(nil), f.ops...)
}

func adminStore() *mock.MockStore {
	return &mock.MockStore{
		RoleFn: func(ctx context.Context, userID string) (string, error) {
			return "admin", nil
		},
	}
}

func TestTrackerInit(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a persisted session", func(t *testing.T) {
		provider := &mock.MockProvider{
			CurrentFn: func(ctx context.Context) (*models.Session, error) {
				return mock.NewSession("user-1", "player@example.com"), nil
			},
		}
		tracker := NewTracker(provider, NewAuthorizer(&mock.MockStore{}, nil), nil, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if provider.CurrentCalls != 1 {
			t.Errorf("expected 1 session query, got %d", provider.CurrentCalls)
		}
		state := tracker.Current()
		if state.Session == nil || state.Session.Email != "player@example.com" {
			t.Errorf("session not restored: %+v", state.Session)
		}
		if !state.Visibility.LoggedIn {
			t.Error("visibility should reflect the restored session")
		}
	})

	t.Run("starts logged out when nothing is persisted", func(t *testing.T) {
		provider := &mock.MockProvider{}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if tracker.Current().Session != nil {
			t.Error("expected no session")
		}
	})

	t.Run("restore failure proceeds logged out and surfaces the error", func(t *testing.T) {
		restoreErr := errors.New("cache corrupt")
		provider := &mock.MockProvider{
			CurrentFn: func(ctx context.Context) (*models.Session, error) {
				return nil, restoreErr
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Init(ctx); !errors.Is(err, restoreErr) {
			t.Fatalf("expected restore error, got %v", err)
		}
		if tracker.Current().Session != nil {
			t.Error("expected logged-out state after restore failure")
		}
	})
}

func TestTrackerLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid credentials block the network call", func(t *testing.T) {
		cases := []struct {
			name            string
			email, password string
		}{
			{"empty email", "", "secret123"},
			{"empty password", "player@example.com", ""},
			{"short password", "player@example.com", "abc"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				provider := &mock.MockProvider{}
				tracker := NewTracker(provider, nil, nil, nil)

				err := tracker.Login(ctx, tc.email, tc.password)
				if !errors.Is(err, shared.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if provider.SignInCalls != 0 {
					t.Errorf("sign-in called %d times despite invalid credentials", provider.SignInCalls)
				}
			})
		}
	})

	t.Run("successful login runs the full cascade", func(t *testing.T) {
		provider := &mock.MockProvider{}
		store := adminStore()
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(store, nil), collection, nil)

		var notified []State
		tracker.OnChange(func(s State) { notified = append(notified, s) })

		if err := tracker.Login(ctx, "admin@example.com", "secret123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		state := tracker.Current()
		if state.Session == nil {
			t.Fatal("expected a session")
		}
		if !state.IsAdmin || !state.Visibility.Admin {
			t.Error("admin role should flow into state and visibility")
		}
		if collection.refreshes != 1 {
			t.Errorf("expected 1 collection refresh, got %d", collection.refreshes)
		}
		if len(notified) != 1 || notified[0].Session == nil {
			t.Errorf("subscriber not notified with the new state: %+v", notified)
		}
	})

	t.Run("provider failure passes through and leaves state untouched", func(t *testing.T) {
		providerErr := errors.New("Invalid login credentials")
		provider := &mock.MockProvider{
			SignInFn: func(ctx context.Context, email, password string) (*models.Session, error) {
				return nil, providerErr
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Login(ctx, "player@example.com", "wrongpass"); !errors.Is(err, providerErr) {
			t.Fatalf("expected provider error verbatim, got %v", err)
		}
		if tracker.Current().Session != nil {
			t.Error("failed login must not produce a session")
		}
	})

	t.Run("role lookup failure never grants admin", func(t *testing.T) {
		provider := &mock.MockProvider{}
		store := &mock.MockStore{
			RoleFn: func(ctx context.Context, userID string) (string, error) {
				return "", errors.New("backend unavailable")
			},
		}
		tracker := NewTracker(provider, NewAuthorizer(store, nil), nil, nil)

		if err := tracker.Login(ctx, "player@example.com", "secret123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		state := tracker.Current()
		if state.IsAdmin || state.Visibility.Admin {
			t.Error("role lookup failure must fail open to non-admin")
		}
		if !state.Visibility.Tabs {
			t.Error("tab list should still show for a logged-in non-admin")
		}
	})
}

func TestTrackerSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("direct session logs in immediately", func(t *testing.T) {
		provider := &mock.MockProvider{}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Signup(ctx, "new@example.com", "secret123"); err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		if tracker.Current().Session == nil {
			t.Error("expected a session from direct signup")
		}
		if provider.SignInCalls != 0 {
			t.Errorf("fallback login attempted %d times despite direct session", provider.SignInCalls)
		}
	})

	t.Run("user without session triggers fallback login", func(t *testing.T) {
		provider := &mock.MockProvider{
			SignUpFn: func(ctx context.Context, email, password string) (*services.SignUpResult, error) {
				return &services.SignUpResult{UserID: "user-9"}, nil
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Signup(ctx, "new@example.com", "secret123"); err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		if provider.SignInCalls != 1 {
			t.Errorf("expected 1 fallback login, got %d", provider.SignInCalls)
		}
		if tracker.Current().Session == nil {
			t.Error("expected a session from the fallback login")
		}
	})

	t.Run("fallback failure reports the account was created", func(t *testing.T) {
		provider := &mock.MockProvider{
			SignUpFn: func(ctx context.Context, email, password string) (*services.SignUpResult, error) {
				return &services.SignUpResult{UserID: "user-9"}, nil
			},
			SignInFn: func(ctx context.Context, email, password string) (*models.Session, error) {
				return nil, errors.New("Email not confirmed")
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		err := tracker.Signup(ctx, "new@example.com", "secret123")
		if !errors.Is(err, shared.ErrAutoLogin) {
			t.Fatalf("expected auto-login error, got %v", err)
		}
		if tracker.Current().Session != nil {
			t.Error("fallback failure must not produce a session")
		}
	})

	t.Run("neither session nor user is an unexpected state", func(t *testing.T) {
		provider := &mock.MockProvider{
			SignUpFn: func(ctx context.Context, email, password string) (*services.SignUpResult, error) {
				return &services.SignUpResult{}, nil
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		err := tracker.Signup(ctx, "new@example.com", "secret123")
		if !errors.Is(err, shared.ErrUnexpectedState) {
			t.Fatalf("expected unexpected-state error, got %v", err)
		}
	})

	t.Run("provider rejection passes through verbatim", func(t *testing.T) {
		providerErr := errors.New("User already registered")
		provider := &mock.MockProvider{
			SignUpFn: func(ctx context.Context, email, password string) (*services.SignUpResult, error) {
				return nil, providerErr
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		if err := tracker.Signup(ctx, "new@example.com", "secret123"); !errors.Is(err, providerErr) {
			t.Fatalf("expected provider error, got %v", err)
		}
	})

	t.Run("invalid credentials block the network call", func(t *testing.T) {
		provider := &mock.MockProvider{}
		tracker := NewTracker(provider, nil, nil, nil)

		err := tracker.Signup(ctx, "new@example.com", "abc")
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if provider.SignUpCalls != 0 {
			t.Errorf("sign-up called %d times despite invalid credentials", provider.SignUpCalls)
		}
	})
}

func TestTrackerLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("notification clears state, visibility and collection", func(t *testing.T) {
		provider := &mock.MockProvider{}
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(adminStore(), nil), collection, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if err := tracker.Login(ctx, "admin@example.com", "secret123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		tracker.Logout(ctx)

		state := tracker.Current()
		if state.Session != nil {
			t.Error("session should be gone after logout")
		}
		if state.IsAdmin || state.Visibility.LoggedIn || state.Visibility.Admin || state.Visibility.Tabs {
			t.Errorf("state not fully cleared: %+v", state)
		}
		if collection.clears != 1 {
			t.Errorf("expected 1 collection clear, got %d", collection.clears)
		}
	})

	t.Run("sign-out failure is tolerated", func(t *testing.T) {
		provider := &mock.MockProvider{
			SignOutFn: func(ctx context.Context) error {
				return errors.New("backend unavailable")
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)
		tracker.Logout(ctx)

		if provider.SignOutCalls != 1 {
			t.Errorf("expected 1 sign-out call, got %d", provider.SignOutCalls)
		}
	})
}

func TestTrackerNotificationOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("action result then notification cascades once", func(t *testing.T) {
		provider := &mock.MockProvider{}
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(&mock.MockStore{}, nil), collection, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if err := tracker.Login(ctx, "player@example.com", "secret123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		// The provider notifies listeners with the same session it returned.
		provider.Fire(mock.NewSession("user-1", "player@example.com"))

		if collection.refreshes != 1 {
			t.Errorf("expected 1 refresh for one real transition, got %d", collection.refreshes)
		}
	})

	t.Run("notification then action result cascades once", func(t *testing.T) {
		provider := &mock.MockProvider{}
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(&mock.MockStore{}, nil), collection, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		provider.Fire(mock.NewSession("user-1", "player@example.com"))
		if err := tracker.Login(ctx, "player@example.com", "secret123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if collection.refreshes != 1 {
			t.Errorf("expected 1 refresh for one real transition, got %d", collection.refreshes)
		}
	})

	t.Run("logout arriving mid-login cascade lands last", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		store := &mock.MockStore{
			RoleFn: func(ctx context.Context, userID string) (string, error) {
				close(entered)
				<-release
				return "admin", nil
			},
		}
		provider := &mock.MockProvider{}
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(store, nil), collection, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}

		loginDone := make(chan error, 1)
		go func() {
			loginDone <- tracker.Login(ctx, "admin@example.com", "secret123")
		}()
		<-entered

		// A remote logout notification lands while the login cascade is
		// still blocked in the role lookup.
		fireDone := make(chan struct{})
		go func() {
			provider.Fire(nil)
			close(fireDone)
		}()

		close(release)
		if err := <-loginDone; err != nil {
			t.Fatalf("login failed: %v", err)
		}
		<-fireDone

		state := tracker.Current()
		if state.Session != nil {
			t.Errorf("expected no session after logout, got %+v", state.Session)
		}
		if state.IsAdmin || state.Visibility.LoggedIn || state.Visibility.Admin || state.Visibility.Tabs {
			t.Errorf("visibility must be fully hidden after logout: %+v", state)
		}

		_, clears, ops := collection.calls()
		if clears != 1 {
			t.Errorf("expected 1 clear, got %d", clears)
		}
		if len(ops) == 0 || ops[len(ops)-1] != "clear" {
			t.Errorf("collection must end cleared, got ops %v", ops)
		}
	})

	t.Run("a different session cascades again", func(t *testing.T) {
		provider := &mock.MockProvider{}
		collection := &fakeCollection{}
		tracker := NewTracker(provider, NewAuthorizer(&mock.MockStore{}, nil), collection, nil)

		if err := tracker.Init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		provider.Fire(mock.NewSession("user-1", "player@example.com"))
		provider.Fire(mock.NewSession("user-2", "other@example.com"))

		if collection.refreshes != 2 {
			t.Errorf("expected 2 refreshes for two transitions, got %d", collection.refreshes)
		}
	})
}

func TestTrackerBusyGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("second login while one is in flight is rejected", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		provider := &mock.MockProvider{
			SignInFn: func(ctx context.Context, email, password string) (*models.Session, error) {
				close(entered)
				<-release
				return mock.NewSession("user-1", email), nil
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		done := make(chan error, 1)
		go func() {
			done <- tracker.Login(ctx, "player@example.com", "secret123")
		}()
		<-entered

		if err := tracker.Login(ctx, "player@example.com", "secret123"); !errors.Is(err, shared.ErrBusy) {
			t.Fatalf("expected busy error, got %v", err)
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("first login failed: %v", err)
		}
		if provider.SignInCalls != 1 {
			t.Errorf("expected 1 sign-in, got %d", provider.SignInCalls)
		}
	})

	t.Run("login in flight does not block signup", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		provider := &mock.MockProvider{
			SignInFn: func(ctx context.Context, email, password string) (*models.Session, error) {
				close(entered)
				<-release
				return mock.NewSession("user-1", email), nil
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		done := make(chan error, 1)
		go func() {
			done <- tracker.Login(ctx, "player@example.com", "secret123")
		}()
		<-entered

		if err := tracker.Signup(ctx, "new@example.com", "secret123"); errors.Is(err, shared.ErrBusy) {
			t.Fatal("signup must carry its own guard, not share login's")
		}

		close(release)
		<-done
	})

	t.Run("guard resets after a failed login", func(t *testing.T) {
		provider := &mock.MockProvider{
			SignInFn: func(ctx context.Context, email, password string) (*models.Session, error) {
				return nil, errors.New("Invalid login credentials")
			},
		}
		tracker := NewTracker(provider, nil, nil, nil)

		_ = tracker.Login(ctx, "player@example.com", "wrongpass")

		provider.SignInFn = nil
		if err := tracker.Login(ctx, "player@example.com", "secret123"); err != nil {
			t.Fatalf("login after failure should succeed, got %v", err)
		}
	})
}
