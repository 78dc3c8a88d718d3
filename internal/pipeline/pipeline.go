// Package pipeline runs one meeting end to end: load tracks, merge, write the
// transcript artifacts, chunk, build the timeline, summarize and archive.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/assemble"
	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/notes"
	"github.com/grovetools/meetinglogs/internal/research"
	"github.com/grovetools/meetinglogs/internal/run"
	"github.com/grovetools/meetinglogs/internal/summarize"
	"github.com/grovetools/meetinglogs/internal/timeline"
	"github.com/grovetools/meetinglogs/internal/track"
)

// Options describe one run.
type Options struct {
	// InputDir holds one JSON track or audio file per speaker.
	InputDir string
	// SegmentsFile, when set, reloads a previous segment listing instead of
	// reading InputDir.
	SegmentsFile string
	// Date overrides the meeting date (YYYY-MM-DD).
	Date string
	// Title overrides the meeting title.
	Title string
	// SkipSummary disables the summarizer for this run.
	SkipSummary bool
}

// Result reports what a run produced. SummaryErr and ArchiveErr record
// collaborator failures that did not stop the run.
type Result struct {
	RunID         string
	Date          string
	TranscriptDir string
	Artifacts     []string
	NotesPath     string
	MarkdownPath  string
	Transcript    *merge.Transcript
	Chunks        []chunk.Chunk
	Timeline      []timeline.Bucket
	Document      *notes.Document
	Warnings      []run.Warning
	SummaryErr    error
	ArchiveErr    error
}

// Pipeline wires the stages together. Source, Summarizer, Researcher and
// Repository are optional.
type Pipeline struct {
	Config         run.Config
	TranscriptsDir string
	NotesDir       string
	Source         track.Source
	Summarizer     summarize.Summarizer
	SummaryTimeout time.Duration
	Repository     archive.Repository
	Research       *research.Extractor
	Researcher     research.Provider
	ResearchMax    int
	Now            func() time.Time

	logger *logrus.Entry
}

// New builds a Pipeline from configuration. The archive is left unset; the
// caller opens it and owns its lifetime.
func New(cfg *config.Config) *Pipeline {
	p := &Pipeline{
		Config:         cfg.RunConfig(),
		TranscriptsDir: config.ExpandPath(cfg.Output.TranscriptsDir),
		NotesDir:       config.ExpandPath(cfg.Output.NotesDir),
		SummaryTimeout: time.Duration(cfg.Summarizer.TimeoutSeconds) * time.Second,
		Research:       research.NewExtractor(cfg.Research.Triggers, cfg.Research.Verbs),
		ResearchMax:    cfg.Research.MaxResults,
		Now:            time.Now,
		logger:         logging.NewLogger("pipeline"),
	}
	if cfg.Transcriber.Command != "" {
		p.Source = track.CommandSource{Command: cfg.Transcriber.Command}
	}
	if cfg.Research.Enabled && cfg.Research.Command != "" {
		p.Researcher = research.CommandProvider{Command: cfg.Research.Command}
	}
	if cfg.Summarizer.Enabled {
		p.Summarizer = summarize.NewCommand(cfg.Summarizer.LLMCommand, cfg.Summarizer.MaxInputChars)
	}
	return p
}

func (p *Pipeline) log() *logrus.Entry {
	if p.logger == nil {
		p.logger = logging.NewLogger("pipeline")
	}
	return p.logger
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Load reads and merges the tracks of a run.
func (p *Pipeline) Load(ctx context.Context, rc *run.Context, opts Options) (*merge.Transcript, error) {
	if opts.SegmentsFile != "" {
		return assemble.ReadSegments(rc, opts.SegmentsFile)
	}
	if opts.InputDir == "" {
		return nil, fmt.Errorf("no input directory or segment listing given")
	}

	var raws []track.RawTrack
	audio, err := track.AudioFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if p.Source != nil && len(audio) > 0 {
		p.log().WithField("files", len(audio)).Info("Transcribing audio")
		raws, err = track.TranscribeAll(ctx, rc, p.Source, audio)
	} else {
		raws, err = track.ReadDir(rc, opts.InputDir)
	}
	if err != nil {
		return nil, err
	}

	tracks, err := track.NewLoader(rc).Load(raws)
	if err != nil {
		return nil, err
	}
	return merge.Merge(rc, tracks)
}

// Run executes the whole pipeline. It fails only when no transcript can be
// built or the core stages fail; summarizer and archive failures are recorded
// as warnings and the artifacts already written stay on disk.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	rc := run.NewContext(p.Config)
	logger := p.log().WithField("run_id", rc.ID)

	dateDir := opts.InputDir
	if dateDir == "" {
		dateDir = filepath.Dir(opts.SegmentsFile)
	}
	date := notes.ResolveDate(opts.Date, dateDir, p.now())
	res := &Result{RunID: rc.ID, Date: date.Format(notes.DateLayout)}

	m, err := p.Load(ctx, rc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript: %w", err)
	}
	res.Transcript = m

	assembled := assemble.Assemble(m)
	res.TranscriptDir = filepath.Join(p.TranscriptsDir, res.Date)
	res.Artifacts, err = assemble.WriteArtifacts(res.TranscriptDir, assembled)
	if err != nil {
		return nil, fmt.Errorf("failed to write transcript artifacts: %w", err)
	}

	chunker, err := chunk.New(rc.Config.MaxChunkDuration)
	if err != nil {
		return nil, err
	}
	res.Chunks, err = chunker.Split(m)
	if err != nil {
		return nil, err
	}
	if err := p.writeJSON(res, assemble.ChunksFile, chunk.Records(res.Chunks)); err != nil {
		return nil, err
	}

	builder, err := timeline.NewBuilder(rc.Config.BucketWidth, rc.Config.ExcerptWords)
	if err != nil {
		return nil, err
	}
	res.Timeline = builder.Build(m)
	if err := p.writeJSON(res, assemble.TimelineFile, timeline.Records(res.Timeline)); err != nil {
		return nil, err
	}

	var requests []research.Request
	if p.Research != nil {
		requests = p.Research.Extract(m)
	}
	var results []research.Result
	if p.Researcher != nil && len(requests) > 0 {
		logger.WithField("requests", len(requests)).Info("Running research lookups")
		results = research.Run(ctx, rc, p.Researcher, requests, p.ResearchMax)
	}

	var summary *summarize.Notes
	if p.Summarizer != nil && !opts.SkipSummary {
		summary, res.SummaryErr = p.summarize(ctx, summarize.Request{
			Date:      res.Date,
			Attendees: notes.Attendees(m),
			TitleHint: opts.Title,
			Chunks:    chunk.Records(res.Chunks),
			Timeline:  timeline.Records(res.Timeline),
		})
		if res.SummaryErr != nil {
			rc.Warn(run.Warning{Code: run.CodeSummarizer, Index: -1, Message: res.SummaryErr.Error()})
		}
	}

	res.Document = notes.Build(notes.Input{
		RunID:      rc.ID,
		Date:       date,
		TitleHint:  opts.Title,
		Summary:    summary,
		Transcript: m,
		Merged:     assembled.Merged,
		Chunks:     res.Chunks,
		Buckets:    res.Timeline,
		Research:   requests,
		Results:    results,
		Warnings:   rc.Warnings(),
		Now:        p.now(),
	})
	res.NotesPath, res.MarkdownPath, err = notes.WriteFiles(p.NotesDir, res.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to write notes: %w", err)
	}

	if p.Repository != nil {
		if err := p.Repository.Save(ctx, res.Document); err != nil {
			res.ArchiveErr = err
			rc.Warn(run.Warning{Code: run.CodeArchive, Index: -1, Message: err.Error()})
		}
	}

	res.Warnings = rc.Warnings()
	logger.WithFields(logrus.Fields{
		"segments": m.Len(),
		"chunks":   len(res.Chunks),
		"buckets":  len(res.Timeline),
		"warnings": len(res.Warnings),
	}).Info("Run complete")
	return res, nil
}

func (p *Pipeline) summarize(ctx context.Context, req summarize.Request) (*summarize.Notes, error) {
	if p.SummaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.SummaryTimeout)
		defer cancel()
	}
	p.log().WithField("chunks", len(req.Chunks)).Info("Summarising")
	return p.Summarizer.Summarize(ctx, req)
}

func (p *Pipeline) writeJSON(res *Result, name string, v any) error {
	path := filepath.Join(res.TranscriptDir, name)
	if err := assemble.WriteJSON(path, v); err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, path)
	return nil
}
