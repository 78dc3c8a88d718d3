package config

//go:generate go run ../tools/schema-generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/meetinglogs/internal/run"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "MLOGS_CONFIG"

// DefaultPath is the config file used when neither a flag nor EnvConfigPath is set.
const DefaultPath = "~/.config/mlogs/config.yaml"

// PipelineConfig tunes the transcript core.
type PipelineConfig struct {
	// ChunkMinutes is the maximum wall-clock span of a summarizer chunk.
	ChunkMinutes int `yaml:"chunk_minutes,omitempty" toml:"chunk_minutes,omitempty" jsonschema:"minimum=1,default=5"`

	// BucketMinutes is the width of a timeline bucket.
	BucketMinutes int `yaml:"bucket_minutes,omitempty" toml:"bucket_minutes,omitempty" jsonschema:"minimum=1,default=5"`

	// ExcerptWords caps the excerpt shown for each timeline bucket.
	ExcerptWords int `yaml:"excerpt_words,omitempty" toml:"excerpt_words,omitempty" jsonschema:"minimum=1,default=40"`

	// Workers bounds how many tracks are loaded or transcribed at once.
	Workers int `yaml:"workers,omitempty" toml:"workers,omitempty" jsonschema:"minimum=1,default=4"`
}

// TranscriberConfig configures the external speech-to-text command.
type TranscriberConfig struct {
	// Command is run as "<command> <audio file>" and must print the segments as JSON.
	// Empty means inputs are pre-transcribed JSON tracks.
	Command string `yaml:"command,omitempty" toml:"command,omitempty"`
}

// SummarizerConfig configures the language-model summarizer.
type SummarizerConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	LLMCommand     string `yaml:"llm_command,omitempty" toml:"llm_command,omitempty" jsonschema:"default=llm -m gpt-4o-mini"`
	MaxInputChars  int    `yaml:"max_input_chars,omitempty" toml:"max_input_chars,omitempty" jsonschema:"default=24000"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty" jsonschema:"default=300"`
}

// ResearchConfig overrides the spoken research request vocabulary and
// configures the lookup of extracted requests.
type ResearchConfig struct {
	Triggers []string `yaml:"triggers,omitempty" toml:"triggers,omitempty"`
	Verbs    []string `yaml:"verbs,omitempty" toml:"verbs,omitempty"`

	// Enabled runs Command for every extracted request.
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Command is run as "<command> <query>" and must print the hits as JSON.
	Command    string `yaml:"command,omitempty" toml:"command,omitempty"`
	MaxResults int    `yaml:"max_results,omitempty" toml:"max_results,omitempty" jsonschema:"minimum=1,default=5"`
}

// ArchiveConfig configures the SQLite notes archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty" jsonschema:"default=~/.local/share/mlogs/archive.db"`
}

// OutputConfig sets where artifacts are written. Relative paths are resolved
// against the working directory.
type OutputConfig struct {
	TranscriptsDir string `yaml:"transcripts_dir,omitempty" toml:"transcripts_dir,omitempty" jsonschema:"default=transcripts"`
	NotesDir       string `yaml:"notes_dir,omitempty" toml:"notes_dir,omitempty" jsonschema:"default=outputs"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty" jsonschema:"enum=text,enum=json"`
}

// Config is the top-level configuration structure for mlogs.
type Config struct {
	Pipeline    PipelineConfig    `yaml:"pipeline,omitempty" toml:"pipeline,omitempty"`
	Transcriber TranscriberConfig `yaml:"transcriber,omitempty" toml:"transcriber,omitempty"`
	Summarizer  SummarizerConfig  `yaml:"summarizer,omitempty" toml:"summarizer,omitempty"`
	Research    ResearchConfig    `yaml:"research,omitempty" toml:"research,omitempty"`
	Archive     ArchiveConfig     `yaml:"archive,omitempty" toml:"archive,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty" toml:"output,omitempty"`
	Log         LogConfig         `yaml:"log,omitempty" toml:"log,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Pipeline.ChunkMinutes == 0 {
		c.Pipeline.ChunkMinutes = int(run.DefaultMaxChunkDuration / time.Minute)
	}
	if c.Pipeline.BucketMinutes == 0 {
		c.Pipeline.BucketMinutes = int(run.DefaultBucketWidth / time.Minute)
	}
	if c.Pipeline.ExcerptWords == 0 {
		c.Pipeline.ExcerptWords = run.DefaultExcerptWords
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = run.DefaultWorkers
	}
	if c.Summarizer.LLMCommand == "" {
		c.Summarizer.LLMCommand = "llm -m gpt-4o-mini"
	}
	if c.Summarizer.MaxInputChars == 0 {
		c.Summarizer.MaxInputChars = 24000
	}
	if c.Summarizer.TimeoutSeconds == 0 {
		c.Summarizer.TimeoutSeconds = 300
	}
	if c.Research.MaxResults == 0 {
		c.Research.MaxResults = 5
	}
	if c.Archive.Path == "" {
		c.Archive.Path = "~/.local/share/mlogs/archive.db"
	}
	if c.Output.TranscriptsDir == "" {
		c.Output.TranscriptsDir = "transcripts"
	}
	if c.Output.NotesDir == "" {
		c.Output.NotesDir = "outputs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv lets environment variables (including those from .env) override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MLOGS_LLM_COMMAND"); v != "" {
		c.Summarizer.LLMCommand = v
	}
	if v := os.Getenv("MLOGS_TRANSCRIBE_COMMAND"); v != "" {
		c.Transcriber.Command = v
	}
	if v := os.Getenv("MLOGS_RESEARCH_COMMAND"); v != "" {
		c.Research.Command = v
	}
	if v := os.Getenv("MLOGS_ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv("MLOGS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports settings that cannot produce a run.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipeline.ChunkMinutes < 0 {
		errs = append(errs, fmt.Errorf("pipeline.chunk_minutes must be positive, got %d", c.Pipeline.ChunkMinutes))
	}
	if c.Pipeline.BucketMinutes < 0 {
		errs = append(errs, fmt.Errorf("pipeline.bucket_minutes must be positive, got %d", c.Pipeline.BucketMinutes))
	}
	if c.Pipeline.ExcerptWords < 0 {
		errs = append(errs, fmt.Errorf("pipeline.excerpt_words must be positive, got %d", c.Pipeline.ExcerptWords))
	}
	if c.Pipeline.Workers < 0 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers))
	}
	if c.Research.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("research.max_results must be positive, got %d", c.Research.MaxResults))
	}
	if c.Research.Enabled && strings.TrimSpace(c.Research.Command) == "" {
		errs = append(errs, fmt.Errorf("research.command is required when research is enabled"))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// RunConfig converts the pipeline section into run settings.
func (c *Config) RunConfig() run.Config {
	return run.Config{
		MaxChunkDuration: time.Duration(c.Pipeline.ChunkMinutes) * time.Minute,
		BucketWidth:      time.Duration(c.Pipeline.BucketMinutes) * time.Minute,
		ExcerptWords:     c.Pipeline.ExcerptWords,
		Workers:          c.Pipeline.Workers,
	}
}

// Load reads the configuration. The file is path if set, else $MLOGS_CONFIG,
// else DefaultPath; only an explicitly named file must exist. Files ending in
// .toml are parsed as TOML, anything else as YAML. A .env file in the working
// directory is loaded first so its variables can override file settings.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}
	path = ExpandPath(path)

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}
