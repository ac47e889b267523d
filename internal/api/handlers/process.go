package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/walnut-media/backend/internal/db"
	"github.com/walnut-media/backend/internal/session"
	"github.com/walnut-media/backend/internal/token"
)

type ProcessHandler struct {
	session *session.Session
	db      *db.Database
}

func NewProcessHandler(sess *session.Session, database *db.Database) *ProcessHandler {
	return &ProcessHandler{session: sess, db: database}
}

// Trigger starts one processing operation against the held file. Each
// failed precondition maps to its own status so the client can tell the
// user exactly what to fix.
func (h *ProcessHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req session.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snap := h.session.Snapshot()
	outcome, err := h.session.Trigger(r.Context(), req)
	switch {
	case errors.Is(err, session.ErrProcessing):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, session.ErrNoFile):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, session.ErrUnknownKind):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, session.ErrUnknownDuration):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, token.ErrInsufficientBalance):
		jsonError(w, err.Error(), http.StatusPaymentRequired)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.record(snap, outcome)
	jsonResponse(w, outcome, http.StatusOK)
}

// record appends the settled operation to the history. History failures
// are logged, never surfaced: the operation itself already settled.
func (h *ProcessHandler) record(snap session.Snapshot, outcome *session.Outcome) {
	if h.db == nil || outcome == nil {
		return
	}

	op := &db.Operation{
		ID:        outcome.OperationID,
		Kind:      string(outcome.Kind),
		Cost:      outcome.Cost,
		Status:    db.StatusSucceeded,
		Message:   outcome.Error,
		SettledAt: outcome.SettledAt,
	}
	if snap.File != nil {
		op.FileName = snap.File.Name
		op.DurationSeconds = snap.File.DurationSeconds
	}
	if !outcome.Succeeded() {
		op.Status = db.StatusFailed
	}

	if err := h.db.RecordOperation(op); err != nil {
		log.Printf("[api] record operation %s: %v", op.ID, err)
	}
}
