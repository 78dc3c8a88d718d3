package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/track"
)

func merged(t *testing.T) *merge.Transcript {
	t.Helper()
	rc := run.NewContext(run.Config{})
	tracks, err := track.NewLoader(rc).Load([]track.RawTrack{
		{Speaker: "Alice", Segments: []track.RawSegment{
			{Start: 0, End: 5, Text: "hello"},
			{Start: 10, End: 12, Text: "how are you"},
		}},
		{Speaker: "Bob Smith", Segments: []track.RawSegment{
			{Start: 4, End: 6, Text: "hi there"},
			{Start: 3725.5, End: 3727, Text: "good thanks"},
		}},
	})
	require.NoError(t, err)
	m, err := merge.Merge(rc, tracks)
	require.NoError(t, err)
	return m
}

func TestAssembleViews(t *testing.T) {
	out := Assemble(merged(t))

	assert.Equal(t,
		"[00:00:00] Alice: hello\n"+
			"[00:00:04] Bob Smith: hi there\n"+
			"[00:00:10] Alice: how are you\n"+
			"[01:02:05] Bob Smith: good thanks",
		out.Merged)

	require.Len(t, out.Speakers, 2)
	assert.Equal(t, "Alice", out.Speakers[0].Speaker)
	assert.Equal(t, "[00:00:00] hello\n[00:00:10] how are you", out.Speakers[0].Text)
	assert.Equal(t, "[00:00:04] hi there\n[01:02:05] good thanks", out.Speakers[1].Text)

	require.Len(t, out.Records, 4)
	assert.Equal(t, "Bob Smith", out.Records[1].Speaker)
	assert.Equal(t, 3725.5, out.Records[3].Start)
}

func TestSpeakerFileName(t *testing.T) {
	assert.Equal(t, "Bob_Smith.txt", SpeakerFileName("Bob Smith"))
	assert.Equal(t, "a_b.txt", SpeakerFileName("a/b"))
	assert.Equal(t, "speaker.txt", SpeakerFileName("../"))
	assert.Equal(t, "alice.txt", SpeakerFileName("alice"))
}

func TestWriteArtifactsAndReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2024-05-01")
	m := merged(t)

	paths, err := WriteArtifacts(dir, Assemble(m))
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	for _, name := range []string{"Alice.txt", "Bob_Smith.txt", MergedFile, SegmentsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "Alice.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[00:00:00] hello\n[00:00:10] how are you", string(data))

	reloaded, err := ReadSegments(run.NewContext(run.Config{}), filepath.Join(dir, SegmentsFile))
	require.NoError(t, err)
	assert.Equal(t, m.Records(), reloaded.Records())
}

func TestWriteArtifactsDisambiguatesFileNames(t *testing.T) {
	dir := t.TempDir()
	out := &Transcript{Speakers: []SpeakerText{{Speaker: "a b", Text: "x"}, {Speaker: "a_b", Text: "y"}}}

	_, err := WriteArtifacts(dir, out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a_b.txt"))
	assert.FileExists(t, filepath.Join(dir, "a_b-2.txt"))
}

func TestWriteArtifactsKeepsSpeakerNamedLikeMergedFile(t *testing.T) {
	dir := t.TempDir()
	out := &Transcript{
		Speakers: []SpeakerText{{Speaker: "merged_transcript", Text: "mine"}, {Speaker: "a_b-2", Text: "x"}, {Speaker: "a b", Text: "y"}, {Speaker: "a_b", Text: "z"}},
		Merged:   "all",
	}

	written, err := WriteArtifacts(dir, out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "merged_transcript-2.txt"),
		filepath.Join(dir, "a_b-2.txt"),
		filepath.Join(dir, "a_b.txt"),
		filepath.Join(dir, "a_b-3.txt"),
		filepath.Join(dir, MergedFile),
		filepath.Join(dir, SegmentsFile),
	}, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(written))

	data, err := os.ReadFile(filepath.Join(dir, "merged_transcript-2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
	data, err = os.ReadFile(filepath.Join(dir, MergedFile))
	require.NoError(t, err)
	assert.Equal(t, "all", string(data))
}

func TestReadSegmentsRevalidates(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, SegmentsFile)
	require.NoError(t, os.WriteFile(p, []byte(`[
  {"speaker": "b", "start": 5, "end": 6, "text": "later"},
  {"speaker": "a", "start": 1, "end": 0, "text": "broken"},
  {"speaker": "a", "start": 2, "end": 3, "text": "earlier"}
]`), 0o644))

	rc := run.NewContext(run.Config{})
	m, err := ReadSegments(rc, p)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	assert.Equal(t, "earlier", m.At(0).Text())
	assert.Equal(t, "later", m.At(1).Text())
	require.Len(t, rc.Warnings(), 1)
	assert.Equal(t, run.CodeMalformedSegment, rc.Warnings()[0].Code)
}

func TestReadSegmentsEmptyListing(t *testing.T) {
	p := filepath.Join(t.TempDir(), SegmentsFile)
	require.NoError(t, os.WriteFile(p, []byte(`[]`), 0o644))

	_, err := ReadSegments(run.NewContext(run.Config{}), p)
	var empty *track.EmptyTrackSetError
	assert.True(t, errors.As(err, &empty))
}
