// ABOUTME: CSV export of the caller's transaction ledger
// ABOUTME: Streams text/csv with an attachment disposition header

package server

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"github.com/MeghaRishabh/expense-tracker/internal/auth"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

// handleExport handles GET /auth/export.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.MustUserFromContext(r.Context())

	transactions, err := s.store.ListTransactions(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to export transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "type", "category", "amount", "description", "date"})
	for _, tx := range transactions {
		_ = cw.Write([]string{
			tx.ID,
			tx.Type,
			tx.Category,
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			tx.Description,
			tx.Date,
		})
	}
	cw.Flush()

	// Headers are already written; a flush error can only be logged.
	if err := cw.Error(); err != nil {
		s.logger.Error("csv export write failed", "error", err)
	}
}
