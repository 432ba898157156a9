package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/shared"
)

// SessionRepository persists the current session in the local sqlite
// database. At most one row exists at a time; saving replaces it.
//
// Implements services.SessionCache.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save replaces the stored session with the given one.
func (r *SessionRepository) Save(session *models.Session) error {
	if session == nil || session.Token == nil {
		return fmt.Errorf("cannot save nil session")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	var expiresAt any
	if !session.Token.Expiry.IsZero() {
		expiresAt = session.Token.Expiry.UTC()
	}

	query := `
		INSERT INTO sessions (id, user_id, email, access_token, refresh_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err = tx.Exec(query,
		shared.GenerateID(),
		session.UserID,
		session.Email,
		session.Token.AccessToken,
		session.Token.RefreshToken,
		session.Token.TokenType,
		expiresAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return tx.Commit()
}

// Load returns the stored session, or (nil, nil) when none exists.
func (r *SessionRepository) Load() (*models.Session, error) {
	query := `
		SELECT user_id, email, access_token, refresh_token, token_type, expires_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var (
		userID       string
		email        string
		accessToken  string
		refreshToken string
		tokenType    string
		expiresAt    sql.NullTime
	)

	err := r.db.QueryRow(query).Scan(&userID, &email, &accessToken, &refreshToken, &tokenType, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
	}
	if expiresAt.Valid {
		token.Expiry = expiresAt.Time
	}

	return &models.Session{UserID: userID, Email: email, Token: token}, nil
}

// Clear removes any stored session.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
