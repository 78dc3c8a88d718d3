package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/display"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool
	var limit int
	var search string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived meetings or search their transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := archive.Open(config.ExpandPath(root.cfg.Archive.Path))
			if err != nil {
				return err
			}
			defer repo.Close()

			out := cmd.OutOrStdout()
			if search != "" {
				hits, err := repo.Search(cmd.Context(), search, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd, hits)
				}
				if len(hits) == 0 {
					fmt.Fprintf(out, "No segments matching '%s'\n", search)
					return nil
				}
				for _, h := range hits {
					fmt.Fprintf(out, "%s #%d %s: %s\n", h.MeetingID, h.Position, h.Speaker, h.Text)
				}
				return nil
			}

			meetings, err := repo.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, meetings)
			}
			if len(meetings) == 0 {
				fmt.Fprintln(out, "No archived meetings found.")
				return nil
			}
			display.PrintMeetingsTable(meetings, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search archived transcript text")
	return cmd
}
