// ABOUTME: HTTP handlers for the owner-scoped transaction CRUD endpoints
// ABOUTME: Create and update share one validator; ids come from the URL path

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MeghaRishabh/expense-tracker/internal/auth"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

// transactionRequest is the body for create and update. Amount and date are
// pointers so a missing field is distinguishable from a zero value.
type transactionRequest struct {
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
	Date        *string  `json:"date"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
}

// parseTransactionRequest decodes and validates a transaction body. The
// same rules apply to create and update.
func parseTransactionRequest(r io.Reader) (*transactionRequest, error) {
	var req transactionRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	switch req.Type {
	case "":
		return nil, errors.New("type is required")
	case store.TransactionTypeIncome, store.TransactionTypeExpense:
	default:
		return nil, errors.New("type must be income or expense")
	}

	if strings.TrimSpace(req.Category) == "" {
		return nil, errors.New("category is required")
	}

	if req.Amount == nil {
		return nil, errors.New("amount is required")
	}
	if *req.Amount < 0 {
		return nil, errors.New("amount must not be negative")
	}

	if req.Date != nil {
		if _, err := time.Parse(store.DateLayout, *req.Date); err != nil {
			return nil, errors.New("date must use YYYY-MM-DD format")
		}
	}

	return &req, nil
}

// pathSuffixID extracts the trailing path segment after prefix.
func pathSuffixID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func toTransactionResponse(tx *store.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

// handleCreateTransaction handles POST /auth/create.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.MustUserFromContext(r.Context())

	req, err := parseTransactionRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The ledger date defaults to today when the client omits it.
	date := time.Now().UTC().Format(store.DateLayout)
	if req.Date != nil {
		date = *req.Date
	}

	tx := &store.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      *req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateTransaction(r.Context(), tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "id": tx.ID})
}

// handleListTransactions handles GET /auth/transactions.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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
		s.logger.Error("failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]transactionResponse, len(transactions))
	for i, tx := range transactions {
		response[i] = toTransactionResponse(tx)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleUpdateTransaction handles PUT /auth/update/{id}. All fields are
// replaced except the date, which is preserved when omitted.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.MustUserFromContext(r.Context())

	txID := pathSuffixID(r.URL.Path, "/auth/update/")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	req, err := parseTransactionRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	update := &store.TransactionUpdate{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      *req.Amount,
		Description: req.Description,
		Date:        req.Date,
	}

	if err := s.store.UpdateTransaction(r.Context(), userID, txID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.Error("failed to update transaction", "error", err, "tx_id", txID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleDeleteTransaction handles DELETE /auth/delete/{id}.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.MustUserFromContext(r.Context())

	txID := pathSuffixID(r.URL.Path, "/auth/delete/")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), userID, txID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.Error("failed to delete transaction", "error", err, "tx_id", txID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
