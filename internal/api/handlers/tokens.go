package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/walnut-media/backend/internal/token"
)

type TokensHandler struct {
	ledger *token.Ledger
}

func NewTokensHandler(ledger *token.Ledger) *TokensHandler {
	return &TokensHandler{ledger: ledger}
}

// Balance returns the current token balance.
func (h *TokensHandler) Balance(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]int{"balance": h.ledger.Balance()}, http.StatusOK)
}

type creditRequest struct {
	Amount int `json:"amount"`
}

// Credit tops up the balance. A flat credit with no payment model behind
// it; anything non-positive is rejected.
func (h *TokensHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		jsonError(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	h.ledger.Credit(req.Amount, "top-up")
	jsonResponse(w, map[string]int{"balance": h.ledger.Balance()}, http.StatusOK)
}

// History returns all recorded ledger movements, oldest first.
func (h *TokensHandler) History(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.ledger.History(), http.StatusOK)
}
