// Package store provides persistent storage for the expense tracker using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - UserStore: Accounts, password hashes, and refresh token tracking
//   - TransactionStore: Owner-scoped income/expense records
//   - BudgetStore: Per-category spending limits
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries. Consumers should
// accept the narrowest interface they need: the session manager takes a
// UserStore, the transaction handlers a TransactionStore.
//
// # Data Models
//
//   - User: Account with bcrypt password hash and at most one active
//     refresh token (single-session semantics)
//   - Transaction: Income or expense entry owned by exactly one user
//   - Budget: Spending limit keyed by (user, category)
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Foreign keys matter here: transactions and budgets cascade-delete with
// their owning user.
//
// # Owner Scoping
//
// Every transaction query filters by user ID at the SQL level. A row that
// exists but belongs to another user is indistinguishable from a row that
// does not exist; both surface as ErrNotFound.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist (or is not yours)
//   - ErrUsernameTaken: Username already registered
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() database file for tests with real
// SQLite. A file path keeps every pooled connection on the same database,
// which ":memory:" does not guarantee.
//
// # Migrations
//
// Schema setup and migrations run automatically on store initialization.
// Migrations are idempotent column additions checked via pragma_table_info.
package store
