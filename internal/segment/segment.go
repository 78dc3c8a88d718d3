// Package segment defines the transcribed utterance value shared by every stage of a run.
package segment

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// maxSeconds keeps float offsets inside the range of time.Duration.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// Segment is one transcribed utterance. It is immutable once created; use New
// or FromRecord to build one.
type Segment struct {
	speaker string
	start   time.Duration
	end     time.Duration
	text    string
}

// Record is the serializable shape of a Segment, used for the segment listing,
// chunk payloads and the notes document.
type Record struct {
	Speaker string  `json:"speaker" jsonschema:"minLength=1"`
	Start   float64 `json:"start" jsonschema:"minimum=0"`
	End     float64 `json:"end" jsonschema:"minimum=0"`
	Text    string  `json:"text" jsonschema:"minLength=1"`
}

// New validates its arguments and returns a Segment. Offsets are seconds from
// the start of the recording. Text is trimmed.
func New(speaker string, start, end float64, text string) (Segment, error) {
	speaker = strings.TrimSpace(speaker)
	text = strings.TrimSpace(text)

	malformed := func(reason string) (Segment, error) {
		return Segment{}, &MalformedSegmentError{Speaker: speaker, Index: -1, Reason: reason}
	}

	switch {
	case speaker == "":
		return malformed("missing speaker")
	case math.IsNaN(start) || math.IsNaN(end):
		return malformed("timestamp is NaN")
	case math.IsInf(start, 0) || math.IsInf(end, 0):
		return malformed("timestamp is infinite")
	case start < 0 || end < 0:
		return malformed(fmt.Sprintf("negative timestamp (start=%.3f end=%.3f)", start, end))
	case start > maxSeconds || end > maxSeconds:
		return malformed("timestamp out of range")
	case end < start:
		return malformed(fmt.Sprintf("end %.3f before start %.3f", end, start))
	case text == "":
		return malformed("empty text")
	}

	return Segment{
		speaker: speaker,
		start:   fromSeconds(start),
		end:     fromSeconds(end),
		text:    text,
	}, nil
}

// FromRecord validates a Record and converts it into a Segment.
func FromRecord(r Record) (Segment, error) {
	return New(r.Speaker, r.Start, r.End, r.Text)
}

func (s Segment) Speaker() string         { return s.speaker }
func (s Segment) Start() time.Duration    { return s.start }
func (s Segment) End() time.Duration      { return s.end }
func (s Segment) Text() string            { return s.text }
func (s Segment) Duration() time.Duration { return s.end - s.start }

// IsZero reports whether s is the zero value rather than a constructed segment.
func (s Segment) IsZero() bool {
	return s.speaker == "" && s.text == ""
}

// Overlaps reports whether s intersects the half-open window [from, to). A
// zero-length segment overlaps the window containing its instant.
func (s Segment) Overlaps(from, to time.Duration) bool {
	if s.start == s.end {
		return s.start >= from && s.start < to
	}
	return s.start < to && s.end > from
}

// WithSpeaker returns a copy of s attributed to speaker.
func (s Segment) WithSpeaker(speaker string) Segment {
	s.speaker = speaker
	return s
}

// Record returns the serializable form of s.
func (s Segment) Record() Record {
	return Record{
		Speaker: s.speaker,
		Start:   s.start.Seconds(),
		End:     s.end.Seconds(),
		Text:    s.text,
	}
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s] %s: %s", FormatTimestamp(s.start, true), s.speaker, s.text)
}

// Compare orders segments by start, then end, then speaker. It returns a
// negative number when a sorts before b, zero when the keys are equal, and a
// positive number otherwise.
func Compare(a, b Segment) int {
	switch {
	case a.start != b.start:
		return cmpDuration(a.start, b.start)
	case a.end != b.end:
		return cmpDuration(a.end, b.end)
	default:
		return strings.Compare(a.speaker, b.speaker)
	}
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Segment) bool {
	return Compare(a, b) < 0
}

func cmpDuration(a, b time.Duration) int {
	if a < b {
		return -1
	}
	return 1
}

func fromSeconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}

// Records converts segments to their serializable form, preserving order.
func Records(segs []Segment) []Record {
	out := make([]Record, len(segs))
	for i, s := range segs {
		out[i] = s.Record()
	}
	return out
}
