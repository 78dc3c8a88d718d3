// Package meetinglogs is the public entry point for merging per-speaker
// meeting transcripts in-process.
package meetinglogs

import (
	"context"
	"time"

	"github.com/grovetools/meetinglogs/internal/assemble"
	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/timeline"
	"github.com/grovetools/meetinglogs/internal/track"
)

type (
	// RawTrack is the transcription engine output for one speaker.
	RawTrack = track.RawTrack
	// RawSegment is one unvalidated engine segment.
	RawSegment = track.RawSegment
	// Segment is one validated utterance in the merged transcript.
	Segment = segment.Record
	// Chunk is a contiguous transcript slice within the duration budget.
	Chunk = chunk.Record
	// Bucket is one fixed-width timeline window.
	Bucket = timeline.Record
	// Warning is a recoverable anomaly seen while processing.
	Warning = run.Warning
	// SpeakerText is one speaker's own view of the meeting.
	SpeakerText = assemble.SpeakerText
)

// Options tunes Process. Zero values fall back to the package defaults.
type Options struct {
	MaxChunkDuration time.Duration
	BucketWidth      time.Duration
	ExcerptWords     int
	Workers          int
}

// Result holds every view produced from one set of tracks.
type Result struct {
	RunID    string
	Merged   string
	Speakers []SpeakerText
	Segments []Segment
	Chunks   []Chunk
	Timeline []Bucket
	Warnings []Warning
}

// Process validates and merges tracks, then chunks, buckets and assembles the
// merged transcript. It writes nothing to disk.
func Process(ctx context.Context, tracks []RawTrack, opts Options) (*Result, error) {
	rc := run.NewContext(run.Config{
		MaxChunkDuration: opts.MaxChunkDuration,
		BucketWidth:      opts.BucketWidth,
		ExcerptWords:     opts.ExcerptWords,
		Workers:          opts.Workers,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded, err := track.NewLoader(rc).Load(tracks)
	if err != nil {
		return nil, err
	}
	m, err := merge.Merge(rc, loaded)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.New(rc.Config.MaxChunkDuration)
	if err != nil {
		return nil, err
	}
	chunks, err := chunker.Split(m)
	if err != nil {
		return nil, err
	}

	builder, err := timeline.NewBuilder(rc.Config.BucketWidth, rc.Config.ExcerptWords)
	if err != nil {
		return nil, err
	}

	t := assemble.Assemble(m)
	return &Result{
		RunID:    rc.ID,
		Merged:   t.Merged,
		Speakers: t.Speakers,
		Segments: t.Records,
		Chunks:   chunk.Records(chunks),
		Timeline: timeline.Records(builder.Build(m)),
		Warnings: rc.Warnings(),
	}, nil
}
