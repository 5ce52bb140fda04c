// ABOUTME: Session manager orchestrating registration, login, refresh, and logout
// ABOUTME: Combines bcrypt credential checks with the token service and user store

// Package session manages the credential lifecycle: it owns password
// hashing, token issuance policy, and the stored-refresh-token session
// model. One refresh token is stored per user; issuing a new one
// silently replaces the old, so each account has at most one live
// session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MeghaRishabh/expense-tracker/internal/auth"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

var (
	// ErrMissingCredentials rejects blank usernames or passwords.
	ErrMissingCredentials = errors.New("username and password required")

	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike; callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionNotFound rejects refresh tokens that match no stored
	// session or fail cryptographic verification.
	ErrSessionNotFound = errors.New("session not found")
)

// dummyHash is a bcrypt hash compared against when the username is unknown,
// so login timing does not reveal which usernames exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Tokens bundles the credentials issued by Register and Login. The access
// token goes in the response body, the refresh token in the cookie.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Manager orchestrates the credential lifecycle over the user store and
// token service.
type Manager struct {
	users      store.UserStore
	tokens     *auth.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewManager creates a session manager. TTLs come from config; the access
// TTL bounds how long a revoked session's access tokens keep working.
func NewManager(users store.UserStore, tokens *auth.Service, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		users:      users,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     slog.Default().With("component", "session"),
	}
}

// Register creates a new account and starts its first session.
// Returns ErrMissingCredentials for blank input and store.ErrUsernameTaken
// when the username is already registered.
func (m *Manager) Register(ctx context.Context, username, password string) (*Tokens, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := m.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("registered user", "user_id", user.ID, "username", username)
	return tokens, nil
}

// Login verifies credentials and starts a fresh session, replacing any
// refresh token from a previous login on this account.
func (m *Manager) Login(ctx context.Context, username, password string) (*Tokens, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := m.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy comparison keeps timing constant for unknown usernames
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		m.logger.Warn("login failed", "username", username, "reason", "wrong_password")
		return nil, ErrInvalidCredentials
	}

	tokens, err := m.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("login", "user_id", user.ID)
	return tokens, nil
}

// Refresh exchanges a refresh token for a new access token. The check runs
// in two steps: first find the user whose STORED token equals the presented
// raw string (this is what makes logout revocation immediate), then verify
// the token cryptographically and require its subject to match that user.
// The refresh token itself is not rotated.
func (m *Manager) Refresh(ctx context.Context, rawToken string) (string, error) {
	user, err := m.users.GetUserByRefreshToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("looking up session: %w", err)
	}

	userID, err := m.tokens.VerifyRefreshToken(rawToken)
	if err != nil {
		m.logger.Warn("refresh rejected", "user_id", user.ID, "reason", "verification_failed")
		return "", ErrSessionNotFound
	}
	if userID != user.ID {
		m.logger.Warn("refresh rejected", "user_id", user.ID, "reason", "subject_mismatch")
		return "", ErrSessionNotFound
	}

	accessToken, err := m.tokens.IssueAccessToken(user.ID, m.accessTTL)
	if err != nil {
		return "", fmt.Errorf("issuing access token: %w", err)
	}

	m.logger.Debug("access token refreshed", "user_id", user.ID)
	return accessToken, nil
}

// Logout revokes the session holding the given refresh token. Unknown
// tokens and lookup failures are swallowed: logout must succeed from the
// client's point of view whether or not a session existed. Outstanding
// access tokens keep working until they expire.
func (m *Manager) Logout(ctx context.Context, rawToken string) error {
	user, err := m.users.GetUserByRefreshToken(ctx, rawToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("logout lookup failed", "error", err)
		}
		return nil
	}

	if err := m.users.ClearRefreshToken(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("clearing refresh token: %w", err)
	}

	m.logger.Info("session revoked", "user_id", user.ID)
	return nil
}

// issueSession mints the access/refresh token pair and persists the refresh
// token on the user row, displacing any previous session.
func (m *Manager) issueSession(ctx context.Context, userID string) (*Tokens, error) {
	accessToken, err := m.tokens.IssueAccessToken(userID, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refreshToken, err := m.tokens.IssueRefreshToken(userID, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	if err := m.users.SetRefreshToken(ctx, userID, refreshToken); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
