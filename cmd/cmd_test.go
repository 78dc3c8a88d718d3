package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	config string
	input  string
	root   string
}

func setup(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("MLOGS_CONFIG", "")

	input := filepath.Join(root, "retro-2024-02-03")
	require.NoError(t, os.MkdirAll(input, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "ann.json"),
		[]byte(`[{"start": 0, "end": 5, "text": "hello"}, {"start": 10, "end": 12, "text": "how are you"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "bo.json"),
		[]byte(`[{"start": 4, "end": 6, "text": "hi there"}, {"start": 13, "end": 15, "text": "good thanks"}]`), 0o644))

	cfg := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`
output:
  transcripts_dir: %s
  notes_dir: %s
archive:
  enabled: true
  path: %s
log:
  level: error
`, filepath.Join(root, "transcripts"), filepath.Join(root, "outputs"), filepath.Join(root, "archive.db"))), 0o644))

	return env{config: cfg, input: input, root: root}
}

func execute(t *testing.T, e env, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	require.NoError(t, cmd.Execute(), errOut.String())
	return out.String()
}

func TestMergeCommand(t *testing.T) {
	e := setup(t)
	out := execute(t, e, "merge", e.input)
	assert.Equal(t,
		"[00:00:00] ann: hello\n[00:00:04] bo: hi there\n[00:00:10] ann: how are you\n[00:00:13] bo: good thanks\n",
		out)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(execute(t, e, "merge", "--json", e.input)), &records))
	assert.Len(t, records, 4)
}

func TestProcessThenReload(t *testing.T) {
	e := setup(t)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(execute(t, e, "process", "--json", e.input)), &res))
	assert.Equal(t, "2024-02-03", res["date"])
	assert.EqualValues(t, 4, res["segments"])

	segments := filepath.Join(e.root, "transcripts", "2024-02-03", "segments.json")
	assert.FileExists(t, segments)
	assert.FileExists(t, filepath.Join(e.root, "outputs", "2024-02-03_meeting_notes.md"))

	chunks := execute(t, e, "chunk", "--max", "10s", segments)
	assert.Equal(t, 2, strings.Count(chunks, "\n")-1)

	timeline := execute(t, e, "timeline", "--width", "5s", "--json", segments)
	var buckets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(timeline), &buckets))
	assert.Len(t, buckets, 3)

	history := execute(t, e, "history")
	assert.Contains(t, history, "2024-02-03")
	assert.Contains(t, history, "ann, bo")

	hits := execute(t, e, "history", "--search", "thanks")
	assert.Contains(t, hits, "bo: good thanks")
}

func TestShowCommand(t *testing.T) {
	e := setup(t)
	out := execute(t, e, "show", e.input)
	assert.Contains(t, out, "how are you")
	assert.Equal(t, 2, strings.Count(out, "bo"))
}

func TestProcessRequiresInput(t *testing.T) {
	e := setup(t)
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", e.config, "process"})
	require.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	e := setup(t)
	assert.Contains(t, execute(t, e, "version"), "mlogs dev")
}

func TestWatchOnce(t *testing.T) {
	e := setup(t)
	out := execute(t, e, "watch", "--once", "--settle", "0s", "--no-archive", e.root)
	assert.Contains(t, out, "✓ retro-2024-02-03 -> ")
	assert.Contains(t, out, "Processed 1 meeting(s)")
	assert.FileExists(t, filepath.Join(e.root, "outputs", "2024-02-03_meeting_notes.md"))
}

func TestWatchRejectsNonPositiveInterval(t *testing.T) {
	e := setup(t)
	for _, interval := range []string{"--interval=0s", "--interval=-5s"} {
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", e.config, "watch", interval, e.root})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--interval must be positive")
	}
}
