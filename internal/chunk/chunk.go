// Package chunk partitions a merged transcript into bounded-duration pieces
// sized for the summarizer.
package chunk

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/segment"
)

// Chunk is a contiguous run of merged segments.
type Chunk struct {
	Index    int
	Segments []segment.Segment
	Start    time.Duration
	End      time.Duration
}

// Span returns End - Start.
func (c Chunk) Span() time.Duration { return c.End - c.Start }

// Records returns the chunk segments in serializable form.
func (c Chunk) Records() []segment.Record {
	return segment.Records(c.Segments)
}

// Text renders the chunk as "[hh:mm:ss] speaker: text" lines.
func (c Chunk) Text() string {
	var b strings.Builder
	for _, s := range c.Segments {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Record is the serializable form of a Chunk.
type Record struct {
	Index    int              `json:"index"`
	Start    float64          `json:"start"`
	End      float64          `json:"end"`
	Segments []segment.Record `json:"segments"`
}

// Record returns the serializable form of c.
func (c Chunk) Record() Record {
	return Record{
		Index:    c.Index,
		Start:    c.Start.Seconds(),
		End:      c.End.Seconds(),
		Segments: c.Records(),
	}
}

// Records converts chunks to their serializable form.
func Records(chunks []Chunk) []Record {
	out := make([]Record, len(chunks))
	for i, c := range chunks {
		out[i] = c.Record()
	}
	return out
}

// BudgetViolation reports a chunking result that does not partition the
// transcript. It always indicates a bug in the chunker.
type BudgetViolation struct {
	Chunk  int
	Reason string
}

func (e *BudgetViolation) Error() string {
	return fmt.Sprintf("chunk %d violates the chunk budget: %s", e.Chunk, e.Reason)
}

// Chunker splits transcripts greedily by wall-clock span.
type Chunker struct {
	max    time.Duration
	logger *logrus.Entry
}

// New returns a Chunker for the given maximum span.
func New(max time.Duration) (*Chunker, error) {
	if max <= 0 {
		return nil, fmt.Errorf("invalid max chunk duration %s: must be positive", max)
	}
	return &Chunker{max: max, logger: logging.NewLogger("chunker")}, nil
}

// Split walks the transcript in order, adding each segment to the current
// chunk while next.end - chunk.start stays within the maximum. A segment
// longer than the maximum becomes a chunk of its own. An empty transcript
// yields no chunks.
func (c *Chunker) Split(t *merge.Transcript) ([]Chunk, error) {
	segs := t.Segments()
	var chunks []Chunk
	var cur *Chunk

	for _, s := range segs {
		if cur != nil && s.End()-cur.Start > c.max {
			chunks = append(chunks, *cur)
			cur = nil
		}
		if cur == nil {
			cur = &Chunk{Index: len(chunks), Start: s.Start(), End: s.End()}
		}
		cur.Segments = append(cur.Segments, s)
		if s.End() > cur.End {
			cur.End = s.End()
		}
	}
	if cur != nil {
		chunks = append(chunks, *cur)
	}

	if err := verify(segs, chunks); err != nil {
		return nil, fmt.Errorf("failed to chunk transcript: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"segments": len(segs),
		"chunks":   len(chunks),
		"max":      c.max.String(),
	}).Debug("Chunked transcript")
	return chunks, nil
}

// verify checks that chunks partition segs exactly and that no chunk span is
// shorter than a segment it contains.
func verify(segs []segment.Segment, chunks []Chunk) error {
	pos := 0
	for i, ch := range chunks {
		if ch.Index != i {
			return &BudgetViolation{Chunk: i, Reason: fmt.Sprintf("index %d out of sequence", ch.Index)}
		}
		if len(ch.Segments) == 0 {
			return &BudgetViolation{Chunk: i, Reason: "empty chunk"}
		}
		for _, s := range ch.Segments {
			if pos >= len(segs) || s != segs[pos] {
				return &BudgetViolation{Chunk: i, Reason: fmt.Sprintf("segment %d out of place", pos)}
			}
			if s.Duration() > ch.Span() {
				return &BudgetViolation{Chunk: i, Reason: fmt.Sprintf("span %s shorter than segment %d", ch.Span(), pos)}
			}
			pos++
		}
	}
	if pos != len(segs) {
		return &BudgetViolation{Chunk: len(chunks), Reason: fmt.Sprintf("%d segments not assigned", len(segs)-pos)}
	}
	return nil
}
