// ABOUTME: Store interface and data types for expense-tracker persistence
// ABOUTME: Defines User, Transaction, Budget structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when trying to create a user with an existing username
var ErrUsernameTaken = errors.New("username already taken")

// Transaction kinds
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// DateLayout is the storage format for transaction dates. A transaction date
// is a calendar day, not an instant, so it is stored as a plain string.
const DateLayout = "2006-01-02"

// User represents a registered account. RefreshToken holds the single active
// session token, nil when no session is active.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	RefreshToken *string
	CreatedAt    time.Time
}

// Transaction represents one ledger entry owned by a user
type Transaction struct {
	ID          string
	UserID      string
	Type        string // "income" or "expense"
	Category    string
	Amount      float64
	Description string
	Date        string // YYYY-MM-DD
	CreatedAt   time.Time
}

// TransactionUpdate carries replacement values for UpdateTransaction.
// Every field overwrites the stored value except Date: nil preserves the
// existing date.
type TransactionUpdate struct {
	Type        string
	Category    string
	Amount      float64
	Description string
	Date        *string
}

// Budget represents a per-category spending limit
type Budget struct {
	UserID    string
	Category  string
	Limit     float64
	UpdatedAt time.Time
}

// UserStore defines the interface for credential persistence
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// TransactionStore defines the interface for ledger persistence.
// All operations are owner-scoped: a transaction ID belonging to another
// user is indistinguishable from one that does not exist.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, userID, txID string, update *TransactionUpdate) error
	DeleteTransaction(ctx context.Context, userID, txID string) error
}

// BudgetStore defines the interface for per-category budget persistence
type BudgetStore interface {
	UpsertBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context, userID string) ([]*Budget, error)
	DeleteBudget(ctx context.Context, userID, category string) error
}

// Store combines all persistence interfaces
type Store interface {
	UserStore
	TransactionStore
	BudgetStore

	// Close releases any resources held by the store
	Close() error
}
