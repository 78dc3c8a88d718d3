package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/assemble"
	"github.com/grovetools/meetinglogs/internal/logging"
	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/pipeline"
	"github.com/grovetools/meetinglogs/internal/run"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
}

// NewRootCmd creates the root command for mlogs.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "mlogs",
		Short:         "Meeting transcript merging, timelines and notes",
		Long:          "Merge per-speaker meeting transcripts into one timeline, chunk it for summarization and write meeting notes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Log.Level = "debug"
			}
			if opts.logFormat != "" {
				cfg.Log.Format = opts.logFormat
			}
			logging.SetOutput(cmd.ErrOrStderr())
			logging.Configure(cfg.Log.Level, cfg.Log.Format)
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $MLOGS_CONFIG or ~/.config/mlogs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(newProcessCmd(opts))
	rootCmd.AddCommand(newMergeCmd(opts))
	rootCmd.AddCommand(newChunkCmd(opts))
	rootCmd.AddCommand(newTimelineCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadTranscript builds a merged transcript from a track directory or a
// segment listing file.
func loadTranscript(ctx context.Context, opts *rootOptions, path string) (*merge.Transcript, *run.Context, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}

	p := pipeline.New(opts.cfg)
	rc := run.NewContext(p.Config)
	if info.IsDir() {
		m, err := p.Load(ctx, rc, pipeline.Options{InputDir: path})
		return m, rc, err
	}
	m, err := assemble.ReadSegments(rc, path)
	return m, rc, err
}
