package track

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/meetinglogs/internal/run"
)

// ReadFile decodes one speaker's raw segment file. The file is either a JSON
// array of segments or an object with "speaker" and "segments" fields. The
// speaker defaults to the file name without extension.
func ReadFile(path string) (RawTrack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawTrack{}, fmt.Errorf("failed to read track file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	raw := RawTrack{Speaker: stem, Source: path}

	var segs []RawSegment
	if err := json.Unmarshal(data, &segs); err == nil {
		raw.Segments = segs
		return raw, nil
	}

	var obj RawTrack
	if err := json.Unmarshal(data, &obj); err != nil {
		return RawTrack{}, fmt.Errorf("failed to parse track file %s: %w", path, err)
	}
	if strings.TrimSpace(obj.Speaker) != "" {
		raw.Speaker = obj.Speaker
	}
	raw.Segments = obj.Segments
	return raw, nil
}

// ReadDir reads every *.json file in dir as one speaker's raw track, in name
// order. Files that cannot be read or parsed are skipped with a warning.
// Files produced by a previous run (segments.json, chunks.json, ...) are ignored.
func ReadDir(rc *run.Context, dir string) ([]RawTrack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read track directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		if reservedNames[strings.ToLower(e.Name())] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var raws []RawTrack
	for _, name := range names {
		raw, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			rc.Warn(run.Warning{Code: run.CodeUnreadableTrack, Index: -1, Message: err.Error()})
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

var reservedNames = map[string]bool{
	"segments.json": true,
	"chunks.json":   true,
	"timeline.json": true,
}
