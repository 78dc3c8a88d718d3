// Package track builds per-speaker segment tracks from transcription engine output.
package track

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
)

// RawSegment is one segment as emitted by the transcription engine, before validation.
type RawSegment struct {
	Speaker string  `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// RawTrack is the engine output for one speaker.
type RawTrack struct {
	Speaker  string       `json:"speaker"`
	Source   string       `json:"source,omitempty"`
	Segments []RawSegment `json:"segments"`
}

// Track is the validated segment sequence of exactly one speaker.
type Track struct {
	Speaker  string
	Source   string
	Segments []segment.Segment
}

// Len returns the number of segments in the track.
func (t Track) Len() int { return len(t.Segments) }

// EmptyTrackSetError is returned when no track holds a valid segment.
type EmptyTrackSetError struct {
	Inputs int
}

func (e *EmptyTrackSetError) Error() string {
	return fmt.Sprintf("no valid tracks (from %d inputs)", e.Inputs)
}

// Loader validates raw tracks. Independent tracks are loaded in parallel.
type Loader struct {
	rc     *run.Context
	logger *logrus.Entry
}

// NewLoader creates a loader bound to a run.
func NewLoader(rc *run.Context) *Loader {
	return &Loader{
		rc:     rc,
		logger: logging.NewLogger("track-loader").WithField("run_id", rc.ID),
	}
}

type loaded struct {
	track    Track
	warnings []run.Warning
}

// Load converts raw tracks into validated tracks. Malformed segments are
// dropped with a warning. The returned tracks keep the input order; tracks
// left without segments are omitted. Load fails with *EmptyTrackSetError when
// nothing valid remains.
func (l *Loader) Load(raws []RawTrack) ([]Track, error) {
	results := make([]loaded, len(raws))

	var g errgroup.Group
	g.SetLimit(l.rc.Config.Workers)
	for i := range raws {
		g.Go(func() error {
			results[i] = buildTrack(raws[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Warnings are recorded after the join so their order follows the input.
	var tracks []Track
	for _, r := range results {
		for _, w := range r.warnings {
			l.rc.Warn(w)
		}
		if r.track.Len() == 0 {
			continue
		}
		tracks = append(tracks, r.track)
		l.logger.WithFields(logrus.Fields{
			"speaker":  r.track.Speaker,
			"segments": r.track.Len(),
		}).Debug("Loaded track")
	}

	if len(tracks) == 0 {
		return nil, &EmptyTrackSetError{Inputs: len(raws)}
	}
	return tracks, nil
}

func buildTrack(raw RawTrack) loaded {
	speaker := strings.TrimSpace(raw.Speaker)
	if speaker == "" {
		for _, rs := range raw.Segments {
			if s := strings.TrimSpace(rs.Speaker); s != "" {
				speaker = s
				break
			}
		}
	}

	out := loaded{track: Track{Speaker: speaker, Source: raw.Source}}
	warn := func(code string, index int, msg string) {
		out.warnings = append(out.warnings, run.Warning{Code: code, Speaker: speaker, Index: index, Message: msg})
	}

	for i, rs := range raw.Segments {
		if other := strings.TrimSpace(rs.Speaker); other != "" && other != speaker {
			warn(run.CodeSpeakerMismatch, i, fmt.Sprintf("segment speaker %q reassigned to track speaker", other))
		}

		seg, err := segment.New(speaker, rs.Start, rs.End, rs.Text)
		if err != nil {
			var malformed *segment.MalformedSegmentError
			if errors.As(err, &malformed) {
				malformed.Index = i
			}
			warn(run.CodeMalformedSegment, i, err.Error())
			continue
		}
		out.track.Segments = append(out.track.Segments, seg)
	}

	if len(out.track.Segments) == 0 {
		warn(run.CodeEmptyTrack, -1, fmt.Sprintf("track has no valid segments (%d raw)", len(raw.Segments)))
	}
	return out
}
