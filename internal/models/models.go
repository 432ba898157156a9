package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/fretless/tabstash/internal/shared"
)

// RoleAdmin is the profile role that grants tab submission rights.
const RoleAdmin = "admin"

// MinPasswordLength is enforced locally before any call to the auth provider.
const MinPasswordLength = 6

// Tab is a guitar tablature record owned by the remote store.
//
// Tuning is optional and empty when absent; Content is free-form text and may
// contain arbitrary characters, including newlines and control sequences, so
// it must pass through [formatter.Escape] before display.
type Tab struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Tuning    string    `json:"tuning,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// NewTab is a tab submission before the store has assigned an ID.
//
// Tuning is a pointer so a blank tuning is stored as absent (JSON null), not
// as an empty string.
type NewTab struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Tuning  *string `json:"tuning"`
	Content string  `json:"content"`
}

// MakeNewTab trims all fields and normalizes a blank tuning to absent.
func MakeNewTab(title, artist, tuning, content string) NewTab {
	t := NewTab{
		Title:   strings.TrimSpace(title),
		Artist:  strings.TrimSpace(artist),
		Content: strings.TrimSpace(content),
	}
	if trimmed := strings.TrimSpace(tuning); trimmed != "" {
		t.Tuning = &trimmed
	}
	return t
}

// Validate checks the submission locally. Title, artist and content are
// required; tuning is optional.
func (t NewTab) Validate() error {
	var missing []string
	if t.Title == "" {
		missing = append(missing, "title")
	}
	if t.Artist == "" {
		missing = append(missing, "artist")
	}
	if t.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", shared.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Profile is the role record associated with a user id in the store.
type Profile struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Session is provider-issued proof of an authenticated identity.
//
// Owned exclusively by the session tracker; other components receive it
// read-only. The embedded [oauth2.Token] carries the access and refresh
// tokens plus expiry.
type Session struct {
	UserID string
	Email  string
	Token  *oauth2.Token
}

// Expired reports whether the session's access token is past its expiry.
// Sessions without an expiry never expire client-side.
func (s *Session) Expired() bool {
	if s == nil || s.Token == nil {
		return true
	}
	return !s.Token.Valid()
}

// ValidateCredentials applies the local pre-network checks shared by login
// and signup: both fields present, password at least [MinPasswordLength].
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: email and password required", shared.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, MinPasswordLength)
	}
	return nil
}
