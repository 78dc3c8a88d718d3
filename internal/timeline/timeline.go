// Package timeline builds a fixed-grid activity overview of a merged transcript.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/segment"
)

const ellipsis = "…"

// Bucket is one window [Start, End) of the timeline grid.
type Bucket struct {
	Index          int
	Start          time.Duration
	End            time.Duration
	ActiveSpeakers []string
	Excerpt        string
	SegmentCount   int
}

// Empty reports whether no speech overlaps the bucket.
func (b Bucket) Empty() bool { return b.SegmentCount == 0 }

// Label returns the window as "mm:ss-mm:ss" (hh:mm:ss once hours are reached).
func (b Bucket) Label() string { return segment.FormatRange(b.Start, b.End) }

// Record is the serializable form of a Bucket.
type Record struct {
	Index          int      `json:"index"`
	Range          string   `json:"range"`
	Start          float64  `json:"start"`
	End            float64  `json:"end"`
	ActiveSpeakers []string `json:"active_speakers"`
	Excerpt        string   `json:"excerpt"`
	SegmentCount   int      `json:"segment_count"`
}

// Record returns the serializable form of b.
func (b Bucket) Record() Record {
	speakers := b.ActiveSpeakers
	if speakers == nil {
		speakers = []string{}
	}
	return Record{
		Index:          b.Index,
		Range:          b.Label(),
		Start:          b.Start.Seconds(),
		End:            b.End.Seconds(),
		ActiveSpeakers: speakers,
		Excerpt:        b.Excerpt,
		SegmentCount:   b.SegmentCount,
	}
}

// Records converts buckets to their serializable form.
func Records(buckets []Bucket) []Record {
	return lo.Map(buckets, func(b Bucket, _ int) Record { return b.Record() })
}

// Builder lays a fixed grid over a transcript.
type Builder struct {
	width        time.Duration
	excerptWords int
	logger       *logrus.Entry
}

// NewBuilder returns a Builder with the given bucket width and excerpt length
// in words.
func NewBuilder(width time.Duration, excerptWords int) (*Builder, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid bucket width %s: must be positive", width)
	}
	if excerptWords <= 0 {
		return nil, fmt.Errorf("invalid excerpt length %d: must be positive", excerptWords)
	}
	return &Builder{width: width, excerptWords: excerptWords, logger: logging.NewLogger("timeline")}, nil
}

// Build returns ceil(lastEnd/width) buckets tiling [0, lastEnd), at least one
// when the transcript is not empty. A segment is counted in every bucket it
// overlaps; a zero-length segment counts in the bucket holding its instant.
// Buckets without speech are kept.
func (b *Builder) Build(t *merge.Transcript) []Bucket {
	segs := t.Segments()
	if len(segs) == 0 {
		return nil
	}

	last := t.End()
	n := int((last + b.width - 1) / b.width)
	if n == 0 {
		n = 1
	}
	// A zero-length segment sitting exactly on the last boundary needs one
	// more bucket to land in.
	if lo.SomeBy(segs, func(s segment.Segment) bool { return s.Start() == s.End() && s.Start() >= time.Duration(n)*b.width }) {
		n++
	}

	buckets := make([]Bucket, n)
	texts := make([][]string, n)
	for i := range buckets {
		buckets[i] = Bucket{
			Index: i,
			Start: time.Duration(i) * b.width,
			End:   time.Duration(i+1) * b.width,
		}
	}

	for _, s := range segs {
		first := int(s.Start() / b.width)
		for i := first; i < n; i++ {
			bk := &buckets[i]
			if !s.Overlaps(bk.Start, bk.End) {
				break
			}
			bk.SegmentCount++
			bk.ActiveSpeakers = append(bk.ActiveSpeakers, s.Speaker())
			texts[i] = append(texts[i], s.Text())
		}
	}

	for i := range buckets {
		speakers := lo.Uniq(buckets[i].ActiveSpeakers)
		sort.Strings(speakers)
		if len(speakers) == 0 {
			speakers = nil
		}
		buckets[i].ActiveSpeakers = speakers
		buckets[i].Excerpt = excerpt(texts[i], b.excerptWords)
	}

	b.logger.WithFields(logrus.Fields{
		"buckets": n,
		"width":   b.width.String(),
	}).Debug("Built timeline")
	return buckets
}

// excerpt joins texts and keeps the first max words, appending an ellipsis
// when words were cut.
func excerpt(texts []string, max int) string {
	words := strings.Fields(strings.Join(texts, " "))
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ") + ellipsis
}
