package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/display"
	"github.com/grovetools/meetinglogs/internal/pipeline"
)

func newProcessCmd(root *rootOptions) *cobra.Command {
	var (
		opts       pipeline.Options
		noArchive  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "process <input_dir>",
		Short: "Run the full pipeline for one meeting",
		Long: `Read one track per speaker from input_dir (JSON segment files, or audio files when a
transcriber command is configured), merge them, write the transcript artifacts, chunk and
bucket the transcript, summarize it and write the meeting notes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.InputDir = args[0]
			}
			if opts.InputDir == "" && opts.SegmentsFile == "" {
				return fmt.Errorf("an input directory or --segments is required")
			}

			p := pipeline.New(root.cfg)
			if root.cfg.Archive.Enabled && !noArchive {
				repo, err := archive.Open(config.ExpandPath(root.cfg.Archive.Path))
				if err != nil {
					return err
				}
				defer repo.Close()
				p.Repository = repo
			}

			res, err := p.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(map[string]any{
					"run_id":        res.RunID,
					"date":          res.Date,
					"artifacts":     res.Artifacts,
					"notes_path":    res.NotesPath,
					"markdown_path": res.MarkdownPath,
					"segments":      res.Transcript.Len(),
					"chunks":        len(res.Chunks),
					"buckets":       len(res.Timeline),
					"warnings":      res.Warnings,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal result: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintln(out, display.Header(res.Document.Notes.Title+" ("+res.Date+")"))
			fmt.Fprintf(out, "Segments: %d   Chunks: %d   Timeline buckets: %d\n", res.Transcript.Len(), len(res.Chunks), len(res.Timeline))
			fmt.Fprintf(out, "Transcripts: %s\n", res.TranscriptDir)
			fmt.Fprintf(out, "Notes: %s\n", res.MarkdownPath)
			display.PrintWarnings(out, res.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SegmentsFile, "segments", "", "Reload a segments.json listing instead of reading input_dir")
	cmd.Flags().StringVar(&opts.Date, "date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Meeting title")
	cmd.Flags().BoolVar(&opts.SkipSummary, "no-summary", false, "Skip the summarizer")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not save the run to the archive")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
