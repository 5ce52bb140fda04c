// ABOUTME: Transaction store methods for the owner-scoped ledger
// ABOUTME: All queries are keyed by (transaction id, user id) pairs

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateTransaction appends a transaction to the owner's ledger.
// Returns ErrNotFound if the owning user doesn't exist.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, category, amount, description, tx_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Type,
		tx.Category,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("inserting transaction: %w", err)
	}

	s.logger.Debug("created transaction", "id", tx.ID, "user_id", tx.UserID, "type", tx.Type)
	return nil
}

// ListTransactions retrieves the full ledger for a user in insertion order.
// Returns ErrNotFound if the user doesn't exist; an empty ledger for an
// existing user yields an empty slice.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]*Transaction, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking user: %w", err)
	}

	query := `
		SELECT id, user_id, type, category, amount, description, tx_date, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*Transaction{}
	for rows.Next() {
		var tx Transaction
		var createdAtStr string

		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Type,
			&tx.Category,
			&tx.Amount,
			&tx.Description,
			&tx.Date,
			&createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}

		tx.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// UpdateTransaction replaces a transaction's fields in a single row-scoped
// statement. A nil update date preserves the stored date; all other fields
// overwrite unconditionally.
// Returns ErrNotFound if no transaction matches the (id, user) pair.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, userID, txID string, update *TransactionUpdate) error {
	query := `
		UPDATE transactions
		SET type = ?, category = ?, amount = ?, description = ?,
		    tx_date = COALESCE(?, tx_date)
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		update.Type,
		update.Category,
		update.Amount,
		update.Description,
		nullableString(update.Date),
		txID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated transaction", "id", txID, "user_id", userID)
	return nil
}

// DeleteTransaction removes a transaction from the owner's ledger.
// Returns ErrNotFound if no transaction matches the (id, user) pair.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, txID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, txID, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted transaction", "id", txID, "user_id", userID)
	return nil
}
