package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/notes"
	"github.com/grovetools/meetinglogs/internal/segment"
	"github.com/grovetools/meetinglogs/internal/summarize"
)

func document(id, date string, segs ...segment.Record) *notes.Document {
	return &notes.Document{
		RunID:       id,
		GeneratedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Notes: notes.Notes{
			Notes:     summarize.Notes{Title: "Standup " + date},
			Date:      date,
			Attendees: []string{"ann", "bo"},
		},
		Segments: segs,
	}
}

func openArchive(t *testing.T) *SQLite {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSaveAndLoad(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	doc := document("run-1", "2024-05-01",
		segment.Record{Speaker: "ann", Start: 0, End: 2.5, Text: "morning"},
		segment.Record{Speaker: "bo", Start: 1, End: 3, Text: "deploy is green"},
	)
	require.NoError(t, a.Save(ctx, doc))

	meetings, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "run-1", meetings[0].ID)
	assert.Equal(t, "ann,bo", meetings[0].Attendees)
	assert.Equal(t, 2, meetings[0].SegmentCount)
	assert.Contains(t, meetings[0].NotesJSON, `"title":"Standup 2024-05-01"`)

	rows, err := a.Segments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ann", rows[0].Speaker)
	assert.Equal(t, 2.5, rows[0].End)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, "deploy is green", rows[1].Text)
}

func TestSaveReplacesEarlierRun(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, document("run-1", "2024-05-01",
		segment.Record{Speaker: "ann", Start: 0, End: 1, Text: "first draft"},
		segment.Record{Speaker: "ann", Start: 2, End: 3, Text: "more"},
	)))
	require.NoError(t, a.Save(ctx, document("run-1", "2024-05-01",
		segment.Record{Speaker: "ann", Start: 0, End: 1, Text: "second draft"},
	)))

	meetings, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, meetings, 1)

	rows, err := a.Segments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "second draft", rows[0].Text)
}

func TestRecentAndSearch(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, document("old", "2024-04-01", segment.Record{Speaker: "bo", Start: 0, End: 1, Text: "budget review"})))
	require.NoError(t, a.Save(ctx, document("new", "2024-05-01", segment.Record{Speaker: "ann", Start: 0, End: 1, Text: "no budget talk"})))
	require.NoError(t, a.Save(ctx, document("empty", "2024-03-01")))

	meetings, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, "new", meetings[0].ID)
	assert.Equal(t, "old", meetings[1].ID)

	hits, err := a.Search(ctx, "budget", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "new", hits[0].MeetingID)
	assert.Equal(t, "old", hits[1].MeetingID)
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, document("run-1", "2024-05-01",
		segment.Record{Speaker: "ann", Start: 0, End: 1, Text: "we are 100% done"},
		segment.Record{Speaker: "bo", Start: 1, End: 2, Text: "rename user_id"},
		segment.Record{Speaker: "ann", Start: 2, End: 3, Text: `path C:\tmp`},
		segment.Record{Speaker: "bo", Start: 3, End: 4, Text: "plain words"},
	)))

	hits, err := a.Search(ctx, "%", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "we are 100% done", hits[0].Text)

	hits, err = a.Search(ctx, "_", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "rename user_id", hits[0].Text)

	hits, err = a.Search(ctx, `\`, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Position)
}
