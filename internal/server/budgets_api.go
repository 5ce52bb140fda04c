// ABOUTME: HTTP handlers for per-category budget limits
// ABOUTME: Budgets are keyed by category in the URL path and upserted on PUT

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MeghaRishabh/expense-tracker/internal/auth"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

// budgetRequest is the PUT body. Limit is a pointer so a missing field is
// distinguishable from zero.
type budgetRequest struct {
	Limit *float64 `json:"limit"`
}

type budgetResponse struct {
	Category  string  `json:"category"`
	Limit     float64 `json:"limit"`
	UpdatedAt string  `json:"updatedAt"`
}

// handleBudgets handles GET /auth/budgets.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.MustUserFromContext(r.Context())

	budgets, err := s.store.ListBudgets(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = budgetResponse{
			Category:  b.Category,
			Limit:     b.Limit,
			UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// handleBudgetByCategory handles PUT and DELETE on /auth/budgets/{category}.
func (s *Server) handleBudgetByCategory(w http.ResponseWriter, r *http.Request) {
	category := pathSuffixID(r.URL.Path, "/auth/budgets/")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.upsertBudget(w, r, category)
	case http.MethodDelete:
		s.deleteBudget(w, r, category)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) upsertBudget(w http.ResponseWriter, r *http.Request, category string) {
	userID := auth.MustUserFromContext(r.Context())

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Limit == nil {
		writeError(w, http.StatusBadRequest, "limit is required")
		return
	}
	if *req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	budget := &store.Budget{
		UserID:    userID,
		Category:  category,
		Limit:     *req.Limit,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertBudget(r.Context(), budget); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to save budget", "error", err, "category", category)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request, category string) {
	userID := auth.MustUserFromContext(r.Context())

	if err := s.store.DeleteBudget(r.Context(), userID, category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		s.logger.Error("failed to delete budget", "error", err, "category", category)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
