// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/transaction/budget persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists (":memory:" resolves to the current dir)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			refresh_token TEXT,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

		-- Refresh lookups go by raw token value, so the session check stays
		-- a single indexed point query.
		CREATE INDEX IF NOT EXISTS idx_users_refresh_token ON users(refresh_token);

		CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type        TEXT NOT NULL,
			category    TEXT NOT NULL,
			amount      REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			tx_date     TEXT NOT NULL,
			created_at  TEXT NOT NULL,

			CHECK (type IN ('income', 'expense')),
			CHECK (amount >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, tx_date);

		CREATE TABLE IF NOT EXISTS budgets (
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category     TEXT NOT NULL,
			limit_amount REAL NOT NULL,
			updated_at   TEXT NOT NULL,

			PRIMARY KEY (user_id, category),
			CHECK (limit_amount >= 0)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// Migration: the refresh_token column landed after the first release.
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first.
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM pragma_table_info('users') WHERE name = 'refresh_token'`).Scan(&exists)
	if err != nil {
		if _, err := s.db.Exec(`ALTER TABLE users ADD COLUMN refresh_token TEXT`); err != nil {
			return fmt.Errorf("adding refresh_token column to users: %w", err)
		}
		s.logger.Info("applied migration", "column", "refresh_token", "table", "users")
	}

	// Migration: description gained a NOT NULL DEFAULT for older rows
	err = s.db.QueryRow(`SELECT 1 FROM pragma_table_info('transactions') WHERE name = 'description'`).Scan(&exists)
	if err != nil {
		if _, err := s.db.Exec(`ALTER TABLE transactions ADD COLUMN description TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("adding description column to transactions: %w", err)
		}
		s.logger.Info("applied migration", "column", "description", "table", "transactions")
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	// SQLite returns "UNIQUE constraint failed" in the error message
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}

// isForeignKeyError checks if an error is a foreign key constraint violation.
func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
