package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/meetinglogs/internal/assemble"
	"github.com/grovetools/meetinglogs/internal/chunk"
	"github.com/grovetools/meetinglogs/internal/display"
	"github.com/grovetools/meetinglogs/internal/timeline"
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func newMergeCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool
	var outDir string

	cmd := &cobra.Command{
		Use:   "merge <input_dir|segments.json>",
		Short: "Merge per-speaker tracks into one transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, rc, err := loadTranscript(cmd.Context(), root, args[0])
			if err != nil {
				return err
			}
			assembled := assemble.Assemble(m)

			if outDir != "" {
				if _, err := assemble.WriteArtifacts(outDir, assembled); err != nil {
					return err
				}
			}
			display.PrintWarnings(cmd.ErrOrStderr(), rc.Warnings())

			if jsonOutput {
				return printJSON(cmd, assembled.Records)
			}
			fmt.Fprintln(cmd.OutOrStdout(), assembled.Merged)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the segment listing as JSON")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also write the transcript artifacts into this directory")
	return cmd
}

func newChunkCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool
	var maxDuration time.Duration

	cmd := &cobra.Command{
		Use:   "chunk <input_dir|segments.json>",
		Short: "Split the merged transcript into summarizer chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, rc, err := loadTranscript(cmd.Context(), root, args[0])
			if err != nil {
				return err
			}
			if maxDuration == 0 {
				maxDuration = rc.Config.MaxChunkDuration
			}
			chunker, err := chunk.New(maxDuration)
			if err != nil {
				return err
			}
			chunks, err := chunker.Split(m)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, chunk.Records(chunks))
			}
			display.PrintChunksTable(chunks, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().DurationVar(&maxDuration, "max", 0, "Maximum chunk span (default from config)")
	return cmd
}

func newTimelineCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool
	var width time.Duration
	var words int

	cmd := &cobra.Command{
		Use:   "timeline <input_dir|segments.json>",
		Short: "Show the fixed-width activity timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, rc, err := loadTranscript(cmd.Context(), root, args[0])
			if err != nil {
				return err
			}
			if width == 0 {
				width = rc.Config.BucketWidth
			}
			if words == 0 {
				words = rc.Config.ExcerptWords
			}
			builder, err := timeline.NewBuilder(width, words)
			if err != nil {
				return err
			}
			buckets := builder.Build(m)

			if jsonOutput {
				return printJSON(cmd, timeline.Records(buckets))
			}
			display.PrintTimelineTable(buckets, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().DurationVar(&width, "width", 0, "Bucket width (default from config)")
	cmd.Flags().IntVar(&words, "words", 0, "Excerpt length in words (default from config)")
	return cmd
}

func newShowCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <input_dir|segments.json>",
		Short: "Render the merged transcript grouped by speaker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, rc, err := loadTranscript(cmd.Context(), root, args[0])
			if err != nil {
				return err
			}
			display.PrintTranscript(cmd.OutOrStdout(), m)
			display.PrintWarnings(cmd.ErrOrStderr(), rc.Warnings())
			return nil
		},
	}
	return cmd
}
