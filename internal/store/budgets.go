// ABOUTME: Budget store methods for per-category spending limits
// ABOUTME: Budgets are keyed by (user id, category) and upserted in place

package store

import (
	"context"
	"fmt"
	"time"
)

// UpsertBudget saves or updates a per-category budget.
// Uses INSERT OR REPLACE to handle both insert and update cases.
// Returns ErrNotFound if the owning user doesn't exist.
func (s *SQLiteStore) UpsertBudget(ctx context.Context, b *Budget) error {
	query := `
		INSERT OR REPLACE INTO budgets (user_id, category, limit_amount, updated_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		b.UserID,
		b.Category,
		b.Limit,
		b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("saving budget: %w", err)
	}

	s.logger.Debug("saved budget", "user_id", b.UserID, "category", b.Category, "limit", b.Limit)
	return nil
}

// ListBudgets returns all budgets for a user in category order.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string) ([]*Budget, error) {
	query := `
		SELECT user_id, category, limit_amount, updated_at
		FROM budgets
		WHERE user_id = ?
		ORDER BY category ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer rows.Close()

	budgets := []*Budget{}
	for rows.Next() {
		var b Budget
		var updatedAtStr string

		if err := rows.Scan(&b.UserID, &b.Category, &b.Limit, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning budget row: %w", err)
		}

		b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		budgets = append(budgets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget rows: %w", err)
	}

	return budgets, nil
}

// DeleteBudget removes a user's budget for a category.
// Returns ErrNotFound if no budget exists for the (user, category) pair.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, userID, category string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ? AND category = ?`, userID, category)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted budget", "user_id", userID, "category", category)
	return nil
}
