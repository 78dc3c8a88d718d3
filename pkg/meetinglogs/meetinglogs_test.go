package meetinglogs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/track"
)

func TestProcess(t *testing.T) {
	tracks := []RawTrack{
		{Speaker: "A", Segments: []RawSegment{{Start: 0, End: 5, Text: "hello"}, {Start: 10, End: 12, Text: "how are you"}}},
		{Speaker: "B", Segments: []RawSegment{{Start: 4, End: 6, Text: "hi"}, {Start: 13, End: 15, Text: "good"}, {Start: 20, End: 19, Text: "bad"}}},
	}

	res, err := Process(context.Background(), tracks, Options{MaxChunkDuration: 10 * time.Second, BucketWidth: 5 * time.Second})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "[00:00:00] A: hello\n[00:00:04] B: hi\n[00:00:10] A: how are you\n[00:00:13] B: good", res.Merged)
	require.Len(t, res.Segments, 4)
	assert.Equal(t, []string{"A", "B", "A", "B"}, []string{res.Segments[0].Speaker, res.Segments[1].Speaker, res.Segments[2].Speaker, res.Segments[3].Speaker})
	assert.Len(t, res.Chunks, 2)
	assert.Len(t, res.Timeline, 3)
	require.Len(t, res.Speakers, 2)
	assert.Equal(t, "A", res.Speakers[0].Speaker)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "B", res.Warnings[0].Speaker)
}

func TestProcessNoSegments(t *testing.T) {
	_, err := Process(context.Background(), nil, Options{})
	var empty *track.EmptyTrackSetError
	assert.True(t, errors.As(err, &empty))
}
