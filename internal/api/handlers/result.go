package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/walnut-media/backend/internal/session"
)

// downloadName is the default filename offered for rendered videos.
const downloadName = "walnut_translated.mp4"

type ResultHandler struct {
	session *session.Session
}

func NewResultHandler(sess *session.Session) *ResultHandler {
	return &ResultHandler{session: sess}
}

// Get returns the outcome of the last settled operation.
func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	outcome := h.session.Outcome()
	if outcome == nil {
		jsonError(w, "no result yet", http.StatusNotFound)
		return
	}
	jsonResponse(w, outcome, http.StatusOK)
}

// Video streams the rendered subtitled video for preview or download.
func (h *ResultHandler) Video(w http.ResponseWriter, r *http.Request) {
	rc, err := h.session.OpenVideo()
	if errors.Is(err, session.ErrNoResult) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to open rendered video", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	io.Copy(w, rc)
}
