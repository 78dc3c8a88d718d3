// Package merge interleaves per-speaker tracks into one time-ordered transcript.
package merge

import (
	"container/heap"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/track"
)

// Transcript is the merged, globally ordered segment sequence of a run.
// It is read-only: accessors return copies.
type Transcript struct {
	segments []segment.Segment
}

// Len returns the number of segments.
func (t *Transcript) Len() int { return len(t.segments) }

// At returns the i-th segment in merged order.
func (t *Transcript) At(i int) segment.Segment { return t.segments[i] }

// Segments returns a copy of the merged sequence.
func (t *Transcript) Segments() []segment.Segment {
	out := make([]segment.Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Records returns the serializable form of the merged sequence.
func (t *Transcript) Records() []segment.Record {
	return segment.Records(t.segments)
}

// Speakers returns the distinct speakers in order of first appearance.
func (t *Transcript) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.segments {
		if !seen[s.Speaker()] {
			seen[s.Speaker()] = true
			out = append(out, s.Speaker())
		}
	}
	return out
}

// End returns the latest end offset of any segment, or zero when empty.
func (t *Transcript) End() time.Duration {
	var end time.Duration
	for _, s := range t.segments {
		if s.End() > end {
			end = s.End()
		}
	}
	return end
}

// FromSorted wraps segs, which must already satisfy the merge order, as a
// Transcript. The slice is copied.
func FromSorted(segs []segment.Segment) *Transcript {
	out := make([]segment.Segment, len(segs))
	copy(out, segs)
	return &Transcript{segments: out}
}

// cursor points at the next unread segment of one track.
type cursor struct {
	track int
	pos   int
	segs  []segment.Segment
}

func (c *cursor) head() segment.Segment { return c.segs[c.pos] }

// cursorHeap orders cursors by their head segment, then track input order.
// Position within a track never ties because a track has a single cursor.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if c := segment.Compare(h[i].head(), h[j].head()); c != 0 {
		return c < 0
	}
	return h[i].track < h[j].track
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(*cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}

// Merge combines tracks into a Transcript with a k-way merge. Segments are
// ordered by start, then end, then speaker, then track input order, then
// position in the track. Overlapping and duplicate segments are all kept.
//
// A track whose segments are not in non-decreasing start order is stably
// re-sorted first and an unsorted_track warning is recorded. Merge returns
// *track.EmptyTrackSetError when there is nothing to merge.
func Merge(rc *run.Context, tracks []track.Track) (*Transcript, error) {
	logger := logging.NewLogger("merger").WithField("run_id", rc.ID)

	total := 0
	h := make(cursorHeap, 0, len(tracks))
	for i, tr := range tracks {
		if tr.Len() == 0 {
			continue
		}
		segs := tr.Segments
		if !isOrdered(segs) {
			segs = make([]segment.Segment, len(tr.Segments))
			copy(segs, tr.Segments)
			sort.SliceStable(segs, func(a, b int) bool { return segment.Less(segs[a], segs[b]) })
			rc.Warn(run.Warning{
				Code:    run.CodeUnsortedTrack,
				Speaker: tr.Speaker,
				Index:   -1,
				Message: fmt.Sprintf("track %d segments were out of order and have been re-sorted", i),
			})
		}
		total += len(segs)
		h = append(h, &cursor{track: i, segs: segs})
	}

	if total == 0 {
		return nil, &track.EmptyTrackSetError{Inputs: len(tracks)}
	}

	heap.Init(&h)
	merged := make([]segment.Segment, 0, total)
	for h.Len() > 0 {
		c := h[0]
		merged = append(merged, c.head())
		c.pos++
		if c.pos < len(c.segs) {
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}

	logger.WithFields(logrus.Fields{
		"tracks":   len(tracks),
		"segments": len(merged),
	}).Debug("Merged tracks")

	return &Transcript{segments: merged}, nil
}

// isOrdered reports whether segs follow the merge comparator. Equal keys keep
// their input order and count as ordered.
func isOrdered(segs []segment.Segment) bool {
	for i := 1; i < len(segs); i++ {
		if segment.Less(segs[i], segs[i-1]) {
			return false
		}
	}
	return true
}
