package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
	"github.com/fretless/tabstash/internal/shared"
)

// Collection is the downstream cache the tracker drives: refreshed when a
// session appears, cleared when it ends. Satisfied by *tabs.Collection.
type Collection interface {
	Refresh(ctx context.Context) error
	Clear()
}

// State is the snapshot handed to change subscribers after every transition.
type State struct {
	Session    *models.Session
	IsAdmin    bool
	Visibility Visibility
}

// Tracker owns the current session and runs the downstream cascade on every
// transition it observes.
//
// Login and signup each carry their own reentrancy guard; a second invocation
// of the same action while one is in flight fails fast with [shared.ErrBusy]
// without touching the network. The guards reset on every exit path.
type Tracker struct {
	provider   services.AuthProvider
	authz      *Authorizer
	collection Collection
	logger     *log.Logger

	// cascadeMu serializes apply so transitions commit in arrival order; a
	// logout landing while an earlier login cascade is mid-flight waits for
	// it instead of being overwritten by its stale results.
	cascadeMu sync.Mutex

	mu         sync.Mutex
	session    *models.Session
	isAdmin    bool
	visibility Visibility
	loginBusy  bool
	signupBusy bool
	listeners  []func(State)
}

// NewTracker creates a tracker. The collection may be nil when no cache is
// wired (plain CLI commands manage their own fetches).
func NewTracker(provider services.AuthProvider, authz *Authorizer, collection Collection, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Tracker{
		provider:   provider,
		authz:      authz,
		collection: collection,
		logger:     logger,
	}
}

// Init subscribes to the provider's session-change stream and queries the
// current session exactly once. Called once at startup before any other
// tracker method.
func (t *Tracker) Init(ctx context.Context) error {
	t.provider.OnSessionChange(func(s *models.Session) {
		t.apply(ctx, s)
	})

	session, err := t.provider.CurrentSession(ctx)
	if err != nil {
		// Startup proceeds logged out; the error is surfaced but not fatal.
		t.apply(ctx, nil)
		return err
	}

	t.apply(ctx, session)
	return nil
}

// Login validates credentials locally, then exchanges them with the provider.
// Provider failure messages pass through verbatim.
func (t *Tracker) Login(ctx context.Context, email, password string) error {
	t.mu.Lock()
	if t.loginBusy {
		t.mu.Unlock()
		return fmt.Errorf("%w: login", shared.ErrBusy)
	}
	t.loginBusy = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.loginBusy = false
		t.mu.Unlock()
	}()

	if err := models.ValidateCredentials(email, password); err != nil {
		return err
	}

	session, err := t.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	t.apply(ctx, session)
	return nil
}

// Signup registers a new account and handles the provider's three-way
// outcome: a direct session, a user record without a session (email
// confirmation disabled in practice, so a fallback login is attempted
// immediately), or neither, which is outside the documented contract.
func (t *Tracker) Signup(ctx context.Context, email, password string) error {
	t.mu.Lock()
	if t.signupBusy {
		t.mu.Unlock()
		return fmt.Errorf("%w: signup", shared.ErrBusy)
	}
	t.signupBusy = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.signupBusy = false
		t.mu.Unlock()
	}()

	if err := models.ValidateCredentials(email, password); err != nil {
		return err
	}

	result, err := t.provider.SignUp(ctx, email, password)
	if err != nil {
		return err
	}

	switch {
	case result.Session != nil:
		t.apply(ctx, result.Session)
		return nil

	case result.UserID != "":
		session, err := t.provider.SignIn(ctx, email, password)
		if err != nil {
			return fmt.Errorf("%w: %v; try logging in manually", shared.ErrAutoLogin, err)
		}
		t.apply(ctx, session)
		return nil

	default:
		t.logger.Error("signup returned neither session nor user", "email", email)
		return fmt.Errorf("%w: signup returned neither session nor user", shared.ErrUnexpectedState)
	}
}

// Logout requests session termination. Always succeeds from the caller's
// perspective; the state transition lands when the provider's notification
// fires.
func (t *Tracker) Logout(ctx context.Context) {
	if err := t.provider.SignOut(ctx); err != nil {
		t.logger.Warn("sign-out request failed", "err", err)
	}
}

// OnChange registers a subscriber invoked with the new state after every
// completed cascade.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// Current returns the tracker's state snapshot.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Session: t.session, IsAdmin: t.isAdmin, Visibility: t.visibility}
}

// apply runs the cascade for an observed session value: role check,
// visibility projection, collection refresh or clear, subscriber
// notification.
//
// Explicit action results and provider notifications may deliver the same
// session in either order; a repeated delivery of the current session is a
// no-op so the cascade runs once per real transition. Cascades run one at a
// time, so the state, the visibility flags and the collection always reflect
// the transition that arrived last.
func (t *Tracker) apply(ctx context.Context, session *models.Session) {
	t.cascadeMu.Lock()
	defer t.cascadeMu.Unlock()

	t.mu.Lock()
	if sameSession(t.session, session) {
		t.mu.Unlock()
		return
	}
	t.session = session
	t.mu.Unlock()

	isAdmin := false
	if session != nil && t.authz != nil {
		isAdmin = t.authz.IsAdmin(ctx, session.UserID)
	}
	visibility := DeriveVisibility(session, isAdmin)

	t.mu.Lock()
	t.isAdmin = isAdmin
	t.visibility = visibility
	listeners := make([]func(State), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	if t.collection != nil {
		if session != nil {
			if err := t.collection.Refresh(ctx); err != nil {
				t.logger.Warn("collection refresh failed", "err", err)
			}
		} else {
			t.collection.Clear()
		}
	}

	state := State{Session: session, IsAdmin: isAdmin, Visibility: visibility}
	for _, fn := range listeners {
		fn(state)
	}
}

// sameSession reports whether two session values represent the same
// provider-issued session.
func sameSession(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Token == nil || b.Token == nil {
		return a.UserID == b.UserID && (a.Token == nil) == (b.Token == nil)
	}
	return a.Token.AccessToken == b.Token.AccessToken
}
