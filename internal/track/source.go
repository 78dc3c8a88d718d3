package track

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/grovetools/meetinglogs/internal/run"
)

// AudioExtensions lists the source file types handed to a transcription engine.
var AudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// Source is the transcription engine boundary: it turns one speaker's audio
// file into raw segments.
type Source interface {
	Transcribe(ctx context.Context, audioPath string) (RawTrack, error)
}

// CommandSource runs an external transcription command as
// "<command...> <audio path>" and decodes the JSON segment list it prints.
type CommandSource struct {
	Command string
}

// Transcribe implements Source.
func (c CommandSource) Transcribe(ctx context.Context, audioPath string) (RawTrack, error) {
	parts := strings.Fields(c.Command)
	if len(parts) == 0 {
		return RawTrack{}, fmt.Errorf("invalid transcription command")
	}

	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], audioPath)...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return RawTrack{}, fmt.Errorf("transcription command failed: %v, stderr: %s", err, strings.TrimSpace(errOut.String()))
	}

	raw := RawTrack{Speaker: speakerFromPath(audioPath), Source: audioPath}
	var segs []RawSegment
	if err := json.Unmarshal(out.Bytes(), &segs); err == nil {
		raw.Segments = segs
		return raw, nil
	}
	var obj RawTrack
	if err := json.Unmarshal(out.Bytes(), &obj); err != nil {
		return RawTrack{}, fmt.Errorf("failed to parse transcription output for %s: %w", audioPath, err)
	}
	raw.Segments = obj.Segments
	return raw, nil
}

// AudioFiles lists the audio files in dir, sorted by name.
func AudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && AudioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// TranscribeAll transcribes each audio file in parallel. The speaker of each
// track is the file name without extension. A file that fails is skipped with
// a warning; the returned tracks keep the order of paths.
func TranscribeAll(ctx context.Context, rc *run.Context, src Source, paths []string) ([]RawTrack, error) {
	results := make([]*RawTrack, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.Workers)
	for i, p := range paths {
		g.Go(func() error {
			raw, err := src.Transcribe(gctx, p)
			if err != nil {
				errs[i] = err
				return nil
			}
			raw.Speaker = speakerFromPath(p)
			raw.Source = p
			results[i] = &raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raws []RawTrack
	for i, r := range results {
		if errs[i] != nil {
			rc.Warn(run.Warning{
				Code:    run.CodeUnreadableTrack,
				Speaker: speakerFromPath(paths[i]),
				Index:   -1,
				Message: errs[i].Error(),
			})
			continue
		}
		raws = append(raws, *r)
	}
	return raws, nil
}

func speakerFromPath(p string) string {
	return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
}
