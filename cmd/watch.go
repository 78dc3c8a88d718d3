package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/archive"
	"github.com/grovetools/meetinglogs/internal/pipeline"
	"github.com/grovetools/meetinglogs/internal/watch"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		interval  time.Duration
		settle    time.Duration
		once      bool
		noArchive bool
	)

	cmd := &cobra.Command{
		Use:   "watch <recordings_root>",
		Short: "Process meeting folders as they appear",
		Long: `Poll recordings_root and run the pipeline for every subdirectory whose track or audio
files are new or have changed. A folder is only picked up after its files have been
unchanged for the settle period.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			if settle < 0 {
				return fmt.Errorf("--settle must not be negative, got %s", settle)
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

			out := cmd.OutOrStdout()
			m := watch.NewMonitor(args[0], p, interval)
			m.Settle = settle
			m.OnResult = func(dir string, res *pipeline.Result, err error) {
				if err != nil {
					fmt.Fprintf(out, "✗ %s: %v\n", filepath.Base(dir), err)
					return
				}
				fmt.Fprintf(out, "✓ %s -> %s\n", filepath.Base(dir), res.MarkdownPath)
			}

			if once {
				n := m.Scan(cmd.Context())
				fmt.Fprintf(out, "Processed %d meeting(s)\n", n)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m.Start(ctx)
			<-ctx.Done()
			m.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", watch.DefaultInterval, "Polling interval")
	cmd.Flags().DurationVar(&settle, "settle", 10*time.Second, "How long a folder must stay unchanged before processing")
	cmd.Flags().BoolVar(&once, "once", false, "Scan once and exit")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not record runs in the archive")
	return cmd
}
