package media

import (
	"errors"
	"net/http"
	"strings"
)

// ErrRejectedFile is returned when an uploaded file is neither audio nor
// video. The held file, if any, is left untouched on rejection.
var ErrRejectedFile = errors.New("unsupported media type: expected an audio or video file")

// Kind classifies a media file by its content.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// File is the single live media file of an upload session.
type File struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Size            int64  `json:"size"`
	Kind            Kind   `json:"kind"`
	DurationSeconds int    `json:"duration_seconds"`
	ContentType     string `json:"content_type"`
	Path            string `json:"-"` // absolute path of the stored upload
}

// detectKind classifies content by sniffing the leading bytes, falling back
// to the declared content type only when sniffing is inconclusive. The
// filename extension is never consulted.
func detectKind(head []byte, declared string) (Kind, string, error) {
	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" && declared != "" {
		// Sniffing could not identify the container (e.g. raw PCM, some
		// MKV variants); trust the declared type instead.
		contentType = declared
	}

	// Strip parameters such as "; codecs=..."
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	switch {
	case strings.HasPrefix(contentType, "audio/"):
		return KindAudio, contentType, nil
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo, contentType, nil
	default:
		return "", contentType, ErrRejectedFile
	}
}
