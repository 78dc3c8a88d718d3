// Package run holds the per-run state shared by the pipeline stages.
package run

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/meetinglogs/internal/logging"
)

// Defaults applied by NewContext when a field is left at its zero value.
const (
	DefaultMaxChunkDuration = 5 * time.Minute
	DefaultBucketWidth      = 5 * time.Minute
	DefaultExcerptWords     = 40
	DefaultWorkers          = 4
)

// Config carries the tunables of a single run.
type Config struct {
	MaxChunkDuration time.Duration
	BucketWidth      time.Duration
	ExcerptWords     int
	Workers          int
}

// Warning codes recorded during a run.
const (
	CodeMalformedSegment = "malformed_segment"
	CodeSpeakerMismatch  = "speaker_mismatch"
	CodeUnsortedTrack    = "unsorted_track"
	CodeUnreadableTrack  = "unreadable_track"
	CodeEmptyTrack       = "empty_track"
	CodeSummarizer       = "summarizer_failed"
	CodeArchive          = "archive_failed"
	CodeResearch         = "research_failed"
)

// Warning is a recoverable anomaly. Index is -1 when it does not refer to a
// single segment.
type Warning struct {
	Code    string `json:"code"`
	Speaker string `json:"speaker,omitempty"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Speaker == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.Speaker, w.Message)
}

// Context is created at the start of a run and discarded at its end. It is
// safe for concurrent use by track loaders.
type Context struct {
	ID     string
	Config Config
	Logger *logrus.Entry

	mu       sync.Mutex
	warnings []Warning
}

// NewContext returns a Context with defaults applied to cfg.
func NewContext(cfg Config) *Context {
	if cfg.MaxChunkDuration == 0 {
		cfg.MaxChunkDuration = DefaultMaxChunkDuration
	}
	if cfg.BucketWidth == 0 {
		cfg.BucketWidth = DefaultBucketWidth
	}
	if cfg.ExcerptWords == 0 {
		cfg.ExcerptWords = DefaultExcerptWords
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	id := uuid.NewString()
	return &Context{
		ID:     id,
		Config: cfg,
		Logger: logging.NewLogger("run").WithField("run_id", id),
	}
}

// Warn records a warning and logs it.
func (c *Context) Warn(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()

	c.Logger.WithFields(logrus.Fields{
		"code":    w.Code,
		"speaker": w.Speaker,
		"index":   w.Index,
	}).Warn(w.Message)
}

// Warnings returns a copy of the warnings recorded so far.
func (c *Context) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}
