package handlers

import (
	"net/http"
	"strconv"

	"github.com/walnut-media/backend/internal/db"
)

type OperationsHandler struct {
	db *db.Database
}

func NewOperationsHandler(database *db.Database) *OperationsHandler {
	return &OperationsHandler{db: database}
}

// List returns settled operations, newest first. Optional ?limit= caps
// the result.
func (h *OperationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ops, err := h.db.ListOperations(limit)
	if err != nil {
		jsonError(w, "failed to list operations: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, ops, http.StatusOK)
}
