// Package assemble renders a merged transcript into its text and structured views
// and persists them as run artifacts.
package assemble

import (
	"strings"

	"github.com/samber/lo"

	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/segment"
)

// SpeakerText is one speaker's chronological plain-text view.
type SpeakerText struct {
	Speaker string
	Text    string
}

// Transcript holds every view of a single merged transcript.
type Transcript struct {
	Speakers []SpeakerText
	Merged   string
	Records  []segment.Record
}

// Assemble derives all views from the same merged transcript. Speakers are
// listed in order of first appearance.
func Assemble(m *merge.Transcript) *Transcript {
	segs := m.Segments()
	bySpeaker := lo.GroupBy(segs, func(s segment.Segment) string { return s.Speaker() })

	out := &Transcript{
		Merged:  MergedText(segs),
		Records: segment.Records(segs),
	}
	for _, sp := range m.Speakers() {
		out.Speakers = append(out.Speakers, SpeakerText{Speaker: sp, Text: SpeakerView(bySpeaker[sp])})
	}
	return out
}

// MergedText renders "[hh:mm:ss] speaker: text" lines.
func MergedText(segs []segment.Segment) string {
	lines := lo.Map(segs, func(s segment.Segment, _ int) string { return s.String() })
	return strings.Join(lines, "\n")
}

// SpeakerView renders "[hh:mm:ss] text" lines.
func SpeakerView(segs []segment.Segment) string {
	lines := lo.Map(segs, func(s segment.Segment, _ int) string {
		return "[" + segment.FormatTimestamp(s.Start(), true) + "] " + s.Text()
	})
	return strings.Join(lines, "\n")
}
