package session

import "github.com/fretless/tabstash/internal/models"

// Visibility is the set of UI flags fully determined by the current session
// and admin capability. It carries no independent state; it is recomputed
// after every transition, never patched.
type Visibility struct {
	LoggedIn bool // account area and logout control
	Admin    bool // tab submission panel
	Tabs     bool // tab list panel
}

// DeriveVisibility projects session presence and the admin capability into
// the visibility flags.
func DeriveVisibility(session *models.Session, isAdmin bool) Visibility {
	loggedIn := session != nil
	return Visibility{
		LoggedIn: loggedIn,
		Admin:    loggedIn && isAdmin,
		Tabs:     loggedIn,
	}
}
