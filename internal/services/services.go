package services

import (
	"context"

	"github.com/fretless/tabstash/internal/models"
)

// AuthProvider defines the identity provider contract.
//
// Session lifetime is provider-controlled. Implementations must invoke the
// callbacks registered via OnSessionChange on every session transition:
// sign-in, sign-up, token refresh, sign-out, or an externally observed
// change. A transition the caller also sees as its own SignIn or SignUp
// result is notified too, in no guaranteed order relative to that result, so
// consumers must tolerate duplicate delivery of the same session.
type AuthProvider interface {
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*models.Session, error)

	// SignUp registers a new account. Depending on provider configuration the
	// result carries a session (confirmation disabled), only a user id
	// (confirmation normally required), or neither.
	SignUp(ctx context.Context, email, password string) (*SignUpResult, error)

	// SignOut revokes the current session. The nil-session change
	// notification fires regardless of revocation outcome.
	SignOut(ctx context.Context) error

	// CurrentSession returns the active session, or (nil, nil) when logged out.
	CurrentSession(ctx context.Context) (*models.Session, error)

	// OnSessionChange registers a callback for session transitions.
	// The callback receives nil when the session ended.
	OnSessionChange(fn func(*models.Session))
}

// SignUpResult is the three-way outcome of a signup call.
type SignUpResult struct {
	Session *models.Session // non-nil when the provider logged the user in directly
	UserID  string          // non-empty when only a user record was created
}

// TabStore defines the data store contract. These are the only store
// operations the client performs; there is no update or delete.
type TabStore interface {
	// QueryRole looks up the profile role for a user id.
	QueryRole(ctx context.Context, userID string) (string, error)

	// ListTabs returns the full tab set ordered by artist then title, both ascending.
	ListTabs(ctx context.Context) ([]models.Tab, error)

	// InsertTab stores a new tab record.
	InsertTab(ctx context.Context, tab models.NewTab) error
}
