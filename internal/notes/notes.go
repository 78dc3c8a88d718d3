// Package notes assembles the meeting notes document and renders it.
package notes

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/research"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/summarize"
	"github.com/grovetools/meetinglogs/internal/timeline"
)

var logger = logging.NewLogger("notes")

// Notes is the meeting notes file content.
type Notes struct {
	summarize.Notes
	Date             string             `json:"date"`
	Attendees        []string           `json:"attendees"`
	MeetingType      string             `json:"meeting_type,omitempty"`
	ResearchRequests []research.Request `json:"research_requests"`
	ResearchResults  []research.Result  `json:"research_results"`
}

// Document is everything produced by a run, handed to the notes repository.
type Document struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Notes       Notes             `json:"notes"`
	Timeline    []timeline.Record `json:"timeline"`
	Chunks      []chunk.Record    `json:"chunks"`
	Segments    []segment.Record  `json:"segments"`
	Transcript  string            `json:"transcript"`
	Warnings    []run.Warning     `json:"warnings"`
}

// Input collects the stage outputs a Document is built from. Summary may be
// nil when no summarizer ran or it failed.
type Input struct {
	RunID      string
	Date       time.Time
	TitleHint  string
	Summary    *summarize.Notes
	Transcript *merge.Transcript
	Merged     string
	Chunks     []chunk.Chunk
	Buckets    []timeline.Bucket
	Research   []research.Request
	Results    []research.Result
	Warnings   []run.Warning
	Now        time.Time
}

// Build assembles a Document. The title is the caller's hint, then the
// summarizer's title, then DefaultTitle. Attendees are the sorted distinct
// speakers.
func Build(in Input) *Document {
	var n Notes
	if in.Summary != nil {
		n.Notes = *in.Summary
	}

	switch {
	case strings.TrimSpace(in.TitleHint) != "":
		n.Title = strings.TrimSpace(in.TitleHint)
	case strings.TrimSpace(n.Title) == "":
		n.Title = summarize.DefaultTitle
	}

	n.Date = in.Date.Format(DateLayout)
	n.Attendees = Attendees(in.Transcript)
	n.MeetingType = InferMeetingType(in.TitleHint)
	n.ResearchRequests = in.Research
	if n.ResearchRequests == nil {
		n.ResearchRequests = []research.Request{}
	}
	n.ResearchResults = in.Results
	if n.ResearchResults == nil {
		n.ResearchResults = []research.Result{}
	}
	n.Timeline = fillTimeline(n.Timeline, in.Buckets)

	warnings := in.Warnings
	if warnings == nil {
		warnings = []run.Warning{}
	}

	return &Document{
		RunID:       in.RunID,
		GeneratedAt: in.Now,
		Notes:       n,
		Timeline:    timeline.Records(in.Buckets),
		Chunks:      chunk.Records(in.Chunks),
		Segments:    in.Transcript.Records(),
		Transcript:  in.Merged,
		Warnings:    warnings,
	}
}

// Attendees returns the sorted distinct speakers of t.
func Attendees(t *merge.Transcript) []string {
	speakers := t.Speakers()
	if speakers == nil {
		return []string{}
	}
	sorted := lo.Uniq(speakers)
	sort.Strings(sorted)
	return sorted
}

// InferMeetingType guesses the kind of meeting from its title.
func InferMeetingType(title string) string {
	lowered := strings.ToLower(title)
	for _, kind := range []struct{ keyword, name string }{
		{"standup", "Standup"},
		{"retro", "Retro"},
		{"planning", "Planning"},
		{"brainstorm", "Brainstorm"},
		{"sync", "Sync"},
	} {
		if strings.Contains(lowered, kind.keyword) {
			return kind.name
		}
	}
	return ""
}

// fillTimeline gives every bucket a timeline entry. Entries from the
// summarizer are kept in bucket order; a bucket without one, or with an empty
// label, is labelled with its excerpt.
func fillTimeline(entries summarize.List[summarize.TimelineEntry], buckets []timeline.Bucket) summarize.List[summarize.TimelineEntry] {
	if len(buckets) == 0 {
		return entries
	}
	byRange := lo.KeyBy(entries, func(e summarize.TimelineEntry) string { return e.Range })

	out := make(summarize.List[summarize.TimelineEntry], 0, len(buckets))
	for _, bk := range buckets {
		e, ok := byRange[bk.Label()]
		if !ok {
			e = summarize.TimelineEntry{Range: bk.Label()}
		}
		if strings.TrimSpace(e.Label) == "" {
			e.Label = bk.Excerpt
			if bk.Empty() {
				e.Label = "No discussion"
			}
		}
		out = append(out, e)
	}
	return out
}
