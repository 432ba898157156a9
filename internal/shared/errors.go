package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Local input validation; checked before any network call
	ErrValidation = fmt.Errorf("validation failed")

	// Authentication and identity provider errors
	ErrProvider         = fmt.Errorf("provider request failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")

	// Signup created the account but the automatic fallback login failed;
	// distinct from a plain signup failure so the user knows to log in manually
	ErrAutoLogin = fmt.Errorf("account created but auto-login failed")

	// Signup returned neither a session nor a user; outside the documented contract
	ErrUnexpectedState = fmt.Errorf("unexpected provider response")

	// Data store errors
	ErrStore     = fmt.Errorf("store request failed")
	ErrForbidden = fmt.Errorf("operation not permitted")

	// A guarded action was invoked while a previous invocation is still in flight
	ErrBusy = fmt.Errorf("action already in progress")

	// CLI argument errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
