package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/track"
)

// Artifact file names written into a run's transcript directory.
const (
	MergedFile   = "merged_transcript.txt"
	SegmentsFile = "segments.json"
	ChunksFile   = "chunks.json"
	TimelineFile = "timeline.json"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SpeakerFileName returns a file-system safe name for a speaker's text file.
func SpeakerFileName(speaker string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(speaker, "_"), "._")
	if name == "" {
		name = "speaker"
	}
	return name + ".txt"
}

// WriteArtifacts writes one text file per speaker, the merged transcript and
// the segment listing into dir and returns the written paths.
func WriteArtifacts(dir string, t *Transcript) ([]string, error) {
	logger := logging.NewLogger("assembler")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	var written []string
	// Speaker files never take the merged transcript's name.
	taken := map[string]bool{MergedFile: true}
	for _, sp := range t.Speakers {
		name := SpeakerFileName(sp.Speaker)
		base := strings.TrimSuffix(name, ".txt")
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d.txt", base, n)
		}
		taken[name] = true
		p := filepath.Join(dir, name)
		if err := WriteText(p, sp.Text); err != nil {
			return written, err
		}
		written = append(written, p)
	}

	p := filepath.Join(dir, MergedFile)
	if err := WriteText(p, t.Merged); err != nil {
		return written, err
	}
	written = append(written, p)

	p = filepath.Join(dir, SegmentsFile)
	if err := WriteJSON(p, t.Records); err != nil {
		return written, err
	}
	written = append(written, p)

	logger.WithField("dir", dir).WithField("files", len(written)).Info("Wrote transcript artifacts")
	return written, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return WriteText(path, string(data)+"\n")
}

// WriteText writes text to path, creating parent directories.
func WriteText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSegments reloads a segment listing written by WriteArtifacts. Records
// are validated again and re-merged, so a hand-edited listing still yields a
// correctly ordered transcript.
func ReadSegments(rc *run.Context, path string) (*merge.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment listing: %w", err)
	}
	var records []segment.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse segment listing: %w", err)
	}

	var raws []track.RawTrack
	index := make(map[string]int)
	for _, r := range records {
		sp := strings.TrimSpace(r.Speaker)
		i, ok := index[sp]
		if !ok {
			i = len(raws)
			index[sp] = i
			raws = append(raws, track.RawTrack{Speaker: sp, Source: path})
		}
		raws[i].Segments = append(raws[i].Segments, track.RawSegment{
			Speaker: r.Speaker,
			Start:   r.Start,
			End:     r.End,
			Text:    r.Text,
		})
	}

	tracks, err := track.NewLoader(rc).Load(raws)
	if err != nil {
		return nil, err
	}
	return merge.Merge(rc, tracks)
}
