// Package summarize is the boundary to the language-model summarizer.
package summarize

import (
	"context"

	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/timeline"
)

// DefaultTitle is used when neither the caller nor the summarizer names the meeting.
const DefaultTitle = "Team Sync"

// Request is everything a summarizer receives about one meeting.
type Request struct {
	Date      string
	Attendees []string
	TitleHint string
	Chunks    []chunk.Record
	Timeline  []timeline.Record
}

// Summarizer turns meeting chunks into structured notes.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (*Notes, error)
}

// Noop returns empty notes without calling anything.
type Noop struct{}

// Summarize implements Summarizer.
func (Noop) Summarize(_ context.Context, req Request) (*Notes, error) {
	return &Notes{Title: req.TitleHint}, nil
}
