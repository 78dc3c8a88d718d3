package track

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/run"
)

func TestLoadDropsMalformedSegment(t *testing.T) {
	rc := run.NewContext(run.Config{})
	raw := RawTrack{Speaker: "alice"}
	for i := 0; i < 9; i++ {
		raw.Segments = append(raw.Segments, RawSegment{Start: float64(i * 10), End: float64(i*10 + 5), Text: fmt.Sprintf("line %d", i)})
	}
	raw.Segments = append(raw.Segments[:4], append([]RawSegment{{Start: 50, End: 40, Text: "backwards"}}, raw.Segments[4:]...)...)

	tracks, err := NewLoader(rc).Load([]RawTrack{raw})
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 9, tracks[0].Len())

	warnings := rc.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, run.CodeMalformedSegment, warnings[0].Code)
	assert.Equal(t, 4, warnings[0].Index)
	assert.Equal(t, "alice", warnings[0].Speaker)
}

func TestLoadKeepsInputOrderAcrossWorkers(t *testing.T) {
	rc := run.NewContext(run.Config{Workers: 3})
	var raws []RawTrack
	for i := 0; i < 12; i++ {
		raws = append(raws, RawTrack{
			Speaker:  fmt.Sprintf("s%02d", i),
			Segments: []RawSegment{{Start: 1, End: 2, Text: "x"}},
		})
	}

	tracks, err := NewLoader(rc).Load(raws)
	require.NoError(t, err)
	require.Len(t, tracks, 12)
	for i, tr := range tracks {
		assert.Equal(t, fmt.Sprintf("s%02d", i), tr.Speaker)
	}
}

func TestLoadSkipsEmptyTracksButContinues(t *testing.T) {
	rc := run.NewContext(run.Config{})
	raws := []RawTrack{
		{Speaker: "broken", Segments: []RawSegment{{Start: -1, End: 1, Text: "x"}}},
		{Speaker: "ok", Segments: []RawSegment{{Start: 0, End: 1, Text: "fine"}}},
	}

	tracks, err := NewLoader(rc).Load(raws)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "ok", tracks[0].Speaker)

	codes := []string{}
	for _, w := range rc.Warnings() {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{run.CodeMalformedSegment, run.CodeEmptyTrack}, codes)
}

func TestLoadEmptyTrackSet(t *testing.T) {
	rc := run.NewContext(run.Config{})

	_, err := NewLoader(rc).Load(nil)
	var empty *EmptyTrackSetError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 0, empty.Inputs)

	_, err = NewLoader(rc).Load([]RawTrack{{Speaker: "a", Segments: []RawSegment{{Start: 2, End: 1, Text: "x"}}}})
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 1, empty.Inputs)
}

func TestLoadReassignsForeignSpeaker(t *testing.T) {
	rc := run.NewContext(run.Config{})
	tracks, err := NewLoader(rc).Load([]RawTrack{{
		Speaker:  "alice",
		Segments: []RawSegment{{Speaker: "bob", Start: 0, End: 1, Text: "hi"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "alice", tracks[0].Segments[0].Speaker())
	require.Len(t, rc.Warnings(), 1)
	assert.Equal(t, run.CodeSpeakerMismatch, rc.Warnings()[0].Code)
}

func TestLoadFallsBackToSegmentSpeaker(t *testing.T) {
	rc := run.NewContext(run.Config{})
	tracks, err := NewLoader(rc).Load([]RawTrack{{
		Segments: []RawSegment{{Speaker: "carol", Start: 0, End: 1, Text: "hi"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "carol", tracks[0].Speaker)
	assert.Empty(t, rc.Warnings())
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bob.json", `[{"start":4,"end":6,"text":"hi there"}]`)
	writeFile(t, dir, "alice.json", `{"speaker":"Alice","segments":[{"start":0,"end":5,"text":"hello"}]}`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "segments.json", `[]`)
	writeFile(t, dir, "notes.txt", `ignored`)

	rc := run.NewContext(run.Config{})
	raws, err := ReadDir(rc, dir)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Alice", raws[0].Speaker)
	assert.Equal(t, "bob", raws[1].Speaker)
	assert.Equal(t, "hi there", raws[1].Segments[0].Text)

	warnings := rc.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, run.CodeUnreadableTrack, warnings[0].Code)
	assert.Contains(t, warnings[0].Message, "broken.json")
}

func TestReadDirMissing(t *testing.T) {
	_, err := ReadDir(run.NewContext(run.Config{}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

type fakeSource struct {
	fail map[string]bool
}

func (f fakeSource) Transcribe(_ context.Context, audioPath string) (RawTrack, error) {
	name := filepath.Base(audioPath)
	if f.fail[name] {
		return RawTrack{}, fmt.Errorf("engine unavailable for %s", name)
	}
	return RawTrack{Segments: []RawSegment{{Start: 0, End: 1, Text: "from " + name}}}, nil
}

func TestTranscribeAll(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zoe.ogg", "adam.wav", "bea.flac", "readme.md"} {
		writeFile(t, dir, name, "")
	}

	paths, err := AudioFiles(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	rc := run.NewContext(run.Config{Workers: 2})
	raws, err := TranscribeAll(context.Background(), rc, fakeSource{fail: map[string]bool{"bea.flac": true}}, paths)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "adam", raws[0].Speaker)
	assert.Equal(t, "zoe", raws[1].Speaker)
	assert.True(t, strings.HasSuffix(raws[1].Source, "zoe.ogg"))

	require.Len(t, rc.Warnings(), 1)
	assert.Equal(t, "bea", rc.Warnings()[0].Speaker)
}

func TestCommandSourceRejectsEmptyCommand(t *testing.T) {
	_, err := CommandSource{}.Transcribe(context.Background(), "a.wav")
	require.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
