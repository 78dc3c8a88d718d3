package research

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/run"
)

type fakeProvider struct {
	hits    map[string][]Hit
	queries []string
}

func (f *fakeProvider) Search(_ context.Context, query string, _ int) ([]Hit, error) {
	f.queries = append(f.queries, query)
	hits, ok := f.hits[query]
	if !ok {
		return nil, errors.New("rate limited")
	}
	return hits, nil
}

func fakeSearch(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	p := filepath.Join(t.TempDir(), "search.sh")
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))
	return p
}

func TestRunKeepsOrderAndWarnsOnFailure(t *testing.T) {
	rc := run.NewContext(run.Config{})
	p := &fakeProvider{hits: map[string][]Hit{
		"rust async":   {{Title: "a"}, {Title: "b"}, {Title: "c"}},
		"vector store": nil,
	}}
	requests := []Request{
		{TS: "00:00:05", Speaker: "ann", Query: "rust async"},
		{TS: "00:01:00", Speaker: "bo", Query: "flaky"},
		{TS: "00:02:00", Speaker: "bo", Query: "vector store"},
	}

	results := Run(context.Background(), rc, p, requests, 2)

	assert.Equal(t, []string{"rust async", "flaky", "vector store"}, p.queries)
	require.Len(t, results, 2)
	assert.Equal(t, Result{TS: "00:00:05", Speaker: "ann", Query: "rust async", Results: []Hit{{Title: "a"}, {Title: "b"}}}, results[0])
	assert.Equal(t, []Hit{}, results[1].Results)

	warnings := rc.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, run.CodeResearch, warnings[0].Code)
	assert.Equal(t, "bo", warnings[0].Speaker)
}

func TestRunWithoutRequests(t *testing.T) {
	results := Run(context.Background(), run.NewContext(run.Config{}), &fakeProvider{}, nil, 0)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCommandProviderSearch(t *testing.T) {
	script := fakeSearch(t, `#!/bin/sh
if [ "$1" = "wrapped" ]; then
  echo '{"results": [{"title": " Go ", "url": "https://go.dev", "content": "the language"}]}'
else
  echo '[{"title": "one", "url": "u1", "snippet": "s1"}, {"title": "two"}, {"title": "three"}]'
fi
`)
	p := CommandProvider{Command: script}

	hits, err := p.Search(context.Background(), "wrapped", 5)
	require.NoError(t, err)
	assert.Equal(t, []Hit{{Title: "Go", URL: "https://go.dev", Snippet: "the language"}}, hits)

	hits, err = p.Search(context.Background(), "plain query", 2)
	require.NoError(t, err)
	assert.Equal(t, []Hit{{Title: "one", URL: "u1", Snippet: "s1"}, {Title: "two"}}, hits)
}

func TestCommandProviderFailures(t *testing.T) {
	_, err := CommandProvider{}.Search(context.Background(), "q", 5)
	assert.Error(t, err)

	_, err = CommandProvider{Command: fakeSearch(t, "#!/bin/sh\necho nope >&2\nexit 3\n")}.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	_, err = CommandProvider{Command: fakeSearch(t, "#!/bin/sh\necho not json\n")}.Search(context.Background(), "q", 5)
	assert.Error(t, err)
}
