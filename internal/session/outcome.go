package session

import (
	"time"

	"github.com/walnut-media/backend/internal/engine"
	"github.com/walnut-media/backend/internal/pricing"
)

// placeholderText replaces an empty transcript so the result surface never
// shows a blank transcript for a successful call.
const placeholderText = "No speech was detected."

// Transcript is the success payload of a transcript operation.
type Transcript struct {
	Text            string        `json:"text"`
	Words           []engine.Word `json:"words"`
	DurationSeconds float64       `json:"duration_seconds"`
	Speakers        int           `json:"speakers"`
}

// Outcome records how the last operation settled. Exactly one outcome is
// held at a time; it is cleared when a new file is accepted and replaced
// when a new operation settles.
type Outcome struct {
	OperationID string       `json:"operation_id"`
	Kind        pricing.Kind `json:"kind"`
	Cost        int          `json:"cost"`
	Error       string       `json:"error,omitempty"`
	Transcript  *Transcript  `json:"transcript,omitempty"`
	VideoRef    string       `json:"video_ref,omitempty"`
	SettledAt   time.Time    `json:"settled_at"`
}

// Succeeded reports whether the operation settled successfully.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Error == ""
}

// buildTranscript interprets an engine transcription result. The speaker
// count is the number of distinct speaker labels across word entries and
// defaults to 1 when no word entries are present.
func buildTranscript(res *engine.TranscriptResult) *Transcript {
	text := res.Text
	if text == "" {
		text = placeholderText
	}

	words := res.Words
	if words == nil {
		words = []engine.Word{}
	}

	labels := make(map[string]struct{})
	for _, w := range words {
		labels[w.Speaker] = struct{}{}
	}
	speakers := len(labels)
	if speakers == 0 {
		speakers = 1
	}

	duration := res.DurationSeconds
	if duration < 0 {
		duration = 0
	}

	return &Transcript{
		Text:            text,
		Words:           words,
		DurationSeconds: duration,
		Speakers:        speakers,
	}
}
