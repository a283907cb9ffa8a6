package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forPelevin/storycut/internal/pipeline"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>...",
		Short: "Print media durations and how they were resolved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cfg := pipeline.Config{
				FFmpegPath:   s.FFmpegPath,
				FFprobePath:  s.FFprobePath,
				ProbeTimeout: s.ProbeTimeout,
				Log:          log,
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tKIND\tSECONDS\tSOURCE")
			for _, r := range pipeline.ProbeFiles(context.Background(), cfg, args) {
				fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\n", r.Path, r.Kind, r.Seconds, r.Source)
			}
			return tw.Flush()
		},
	}
}
