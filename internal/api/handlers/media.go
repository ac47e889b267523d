package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/walnut-media/backend/internal/media"
	"github.com/walnut-media/backend/internal/session"
)

type MediaHandler struct {
	session   *session.Session
	maxUpload int64
}

func NewMediaHandler(sess *session.Session, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{session: sess, maxUpload: maxUploadBytes}
}

// Upload accepts a media file as multipart form field "file". Both upload
// gestures on the client (file picker and drag-and-drop) post here. The
// optional duration_seconds field carries the probed media duration; when
// absent the file is held but cannot be priced until re-uploaded with one.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	durationSeconds := 0
	if v := r.FormValue("duration_seconds"); v != "" {
		durationSeconds, err = strconv.Atoi(v)
		if err != nil || durationSeconds < 0 {
			jsonError(w, "invalid duration_seconds", http.StatusBadRequest)
			return
		}
	}

	accepted, err := h.session.AcceptFile(header.Filename, header.Header.Get("Content-Type"), file, durationSeconds)
	switch {
	case errors.Is(err, media.ErrRejectedFile):
		jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	case errors.Is(err, session.ErrProcessing):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, accepted, http.StatusCreated)
}

// Clear discards the held file and result.
func (h *MediaHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Clear(); err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the current session snapshot.
func (h *MediaHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.session.Snapshot(), http.StatusOK)
}
