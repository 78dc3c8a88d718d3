package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/timeline"
)

func sample(t *testing.T) *merge.Transcript {
	t.Helper()
	var segs []segment.Segment
	for _, r := range []segment.Record{
		{Speaker: "ann", Start: 0, End: 5, Text: "hello"},
		{Speaker: "ann", Start: 6, End: 8, Text: "anyone there?"},
		{Speaker: "bo", Start: 400, End: 402, Text: "yes"},
	} {
		s, err := segment.FromRecord(r)
		require.NoError(t, err)
		segs = append(segs, s)
	}
	return merge.FromSorted(segs)
}

func TestPrintTranscriptGroupsSpeakers(t *testing.T) {
	var buf bytes.Buffer
	PrintTranscript(&buf, sample(t))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "ann"))
	assert.Contains(t, out, "00:00:06 anyone there?")
	assert.Contains(t, out, "bo")
	assert.Contains(t, out, "00:06:40")
}

func TestPrintChunksTable(t *testing.T) {
	c, err := chunk.New(5 * time.Minute)
	require.NoError(t, err)
	chunks, err := c.Split(sample(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintChunksTable(chunks, &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "CHUNK"))
	assert.Contains(t, lines[1], "00:00-00:08")
	assert.Contains(t, lines[1], "ann")
	assert.Contains(t, lines[2], "bo")
}

func TestPrintTimelineTable(t *testing.T) {
	b, err := timeline.NewBuilder(2*time.Minute, 40)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintTimelineTable(b.Build(sample(t)), &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "hello anyone there?")
	assert.Contains(t, lines[2], "02:00-04:00")
	assert.Contains(t, lines[2], "-")
	assert.Contains(t, lines[4], "bo")
}

func TestPrintMeetingsTable(t *testing.T) {
	var buf bytes.Buffer
	PrintMeetingsTable([]archive.Meeting{{ID: "r1", Date: "2024-05-01", Title: "Standup", Attendees: "ann,bo", SegmentCount: 3}}, &buf)
	assert.Contains(t, buf.String(), "ann, bo")
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	PrintWarnings(&buf, nil)
	assert.Empty(t, buf.String())

	PrintWarnings(&buf, []run.Warning{{Code: run.CodeMalformedSegment, Speaker: "ann", Index: 3, Message: "end before start"}})
	assert.Contains(t, buf.String(), "Warnings (1)")
	assert.Contains(t, buf.String(), "malformed_segment [ann]: end before start")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
