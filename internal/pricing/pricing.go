package pricing

// Kind identifies the kind of processing operation being priced.
type Kind string

const (
	KindTranscript     Kind = "transcript"
	KindSubtitledVideo Kind = "subtitled-video"
)

// Valid reports whether k is a known operation kind.
func (k Kind) Valid() bool {
	return k == KindTranscript || k == KindSubtitledVideo
}

// Options are the user-selectable modifiers that affect the price.
type Options struct {
	HighSpeed     bool `json:"high_speed"`
	CustomStyling bool `json:"custom_styling"`
}

// Token rates per billed minute. Subtitle synthesis re-encodes the video
// on top of transcription, so it bills at a higher rate.
const (
	TranscriptRatePerMinute     = 25
	SubtitledVideoRatePerMinute = 40
	CustomStylingRatePerMinute  = 5
)

// Price returns the token cost of an operation. Billing is per started
// minute: partial minutes always round up, never down. A zero or unknown
// duration prices at 0; callers must not submit a paid operation against
// an unknown duration.
func Price(kind Kind, durationSeconds int, opts Options) int {
	if durationSeconds <= 0 {
		return 0
	}

	minutes := (durationSeconds + 59) / 60

	rate := TranscriptRatePerMinute
	if kind == KindSubtitledVideo {
		rate = SubtitledVideoRatePerMinute
	}
	total := minutes * rate

	// High-speed processing scales the base total by 3/2, rounded up to
	// the next whole token.
	if opts.HighSpeed {
		total = (total*3 + 1) / 2
	}

	// Custom styling is a flat per-minute surcharge, added after scaling.
	if opts.CustomStyling {
		total += minutes * CustomStylingRatePerMinute
	}

	return total
}
