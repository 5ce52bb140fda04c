// ABOUTME: User types and credential store methods
// ABOUTME: Supports username/password auth and single-session refresh tokens

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateUser creates a new user.
// Returns ErrUsernameTaken if the username is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, password_hash, refresh_token, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		nullableString(user.RefreshToken),
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// Check for unique constraint violation
		if isUniqueConstraintError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, refresh_token, created_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
// Returns ErrNotFound if no such user is registered.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, refresh_token, created_at
		FROM users WHERE username = ?
	`, username)
	return scanUser(row)
}

// GetUserByRefreshToken retrieves the user whose stored refresh token equals
// the given raw value. This exact-match lookup is the first step of the
// refresh check and what makes logout revocation effective immediately.
// Returns ErrNotFound if no user holds the token.
func (s *SQLiteStore) GetUserByRefreshToken(ctx context.Context, token string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, refresh_token, created_at
		FROM users WHERE refresh_token = ?
	`, token)
	return scanUser(row)
}

// SetRefreshToken overwrites the stored refresh token for a user. Any
// previously issued refresh token stops working, which keeps one active
// session per user.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) SetRefreshToken(ctx context.Context, userID, token string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET refresh_token = ? WHERE id = ?`, token, userID)
	if err != nil {
		return fmt.Errorf("setting refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("set refresh token", "user_id", userID)
	return nil
}

// ClearRefreshToken nulls out the stored refresh token, revoking the session.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) ClearRefreshToken(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET refresh_token = NULL WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("cleared refresh token", "user_id", userID)
	return nil
}

// scanUser scans a single user row, translating sql.ErrNoRows to ErrNotFound.
func scanUser(row *sql.Row) (*User, error) {
	var user User
	var refreshToken sql.NullString
	var createdAtStr string

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &refreshToken, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}

// nullableString returns nil for nil pointers, otherwise the pointed-at string
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
