package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/storycut/internal/pipeline"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that ffmpeg and ffprobe are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			ffm, ffp, err := pipeline.CheckTools(context.Background(), pipeline.Config{
				FFmpegPath:  s.FFmpegPath,
				FFprobePath: s.FFprobePath,
			})
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ffm)
			fmt.Fprintln(cmd.OutOrStdout(), ffp)
			return nil
		},
	}
}
