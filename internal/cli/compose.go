package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/pipeline"
	"github.com/forPelevin/storycut/internal/types"
)

func newComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose <manifest.json>",
		Short: "Compose the shots listed in a manifest into one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(cmd, args[0])
		},
	}

	f := cmd.Flags()
	f.String("out", "", "Output video (overrides the manifest)")
	f.String("work-dir", "", "Parent directory for job workspaces")
	f.Int("parallel", 1, "Shots synced concurrently")
	f.Bool("transitions", false, "Fade shots into each other")
	f.String("transition-mode", "uniform", "Transition mode: uniform, random, custom")
	f.String("transition-type", "fade", "Transition used in uniform mode")
	f.Float64("transition-length", 0.5, "Transition length in seconds")
	f.String("music", "", "Background music file")
	f.Float64("music-volume", 0.3, "Background music volume (0-1)")
	f.String("subtitle-position", "bottom", "Subtitle position: top, middle, bottom")
	f.Bool("srt-sidecar", false, "Write the subtitle file next to the output")
	f.Bool("keep-workspace", false, "Keep intermediate files")
	f.String("metrics-file", "", "Write Prometheus textfile metrics here after the job")
	f.Duration("job-timeout", 3*time.Hour, "Abort the job after this long")

	// Hidden tuning flags
	f.Float64("gain", 2.0, "Narration gain")
	f.Int("fps", 30, "Output frame rate")
	_ = f.MarkHidden("gain")
	_ = f.MarkHidden("fps")
	return cmd
}

func runCompose(cmd *cobra.Command, manifestPath string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return err
	}
	fh, err := os.Open(absManifest)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	m, err := types.DecodeManifest(fh, s.Composition())
	fh.Close()
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if m.Output, err = filepath.Abs(out); err != nil {
			return err
		}
	}
	// Flags set on the command line beat the manifest's own config.
	overrideComposition(cmd, m.Config)
	m = m.Resolve(filepath.Dir(absManifest))

	var met *metrics.Metrics
	if s.MetricsFile != "" {
		met = metrics.New()
	}
	cfg := pipelineConfig(s, m, log, met)
	cfg.OnState = func(st types.JobState) {
		fmt.Fprintf(cmd.ErrOrStderr(), "==> %s\n", st)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, s.JobTimeout)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if met != nil {
		if err := met.WriteFile(s.MetricsFile); err != nil {
			log.Warn("write metrics file", zap.Error(err))
		}
	}
	if !res.OK {
		return errors.New(res.Message)
	}
	for _, d := range res.Degraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.OutputPath)
	return nil
}

func overrideComposition(cmd *cobra.Command, c *types.CompositionConfig) {
	f := cmd.Flags()
	if f.Changed("transitions") {
		c.Transition.Enabled, _ = f.GetBool("transitions")
	}
	if f.Changed("transition-mode") {
		v, _ := f.GetString("transition-mode")
		c.Transition.Mode = types.TransitionMode(v)
	}
	if f.Changed("transition-type") {
		c.Transition.UniformType, _ = f.GetString("transition-type")
	}
	if f.Changed("transition-length") {
		c.Transition.Duration, _ = f.GetFloat64("transition-length")
	}
	if f.Changed("music") {
		v, _ := f.GetString("music")
		if v != "" {
			v, _ = filepath.Abs(v)
		}
		c.Music.Path = v
	}
	if f.Changed("music-volume") {
		c.Music.Volume, _ = f.GetFloat64("music-volume")
	}
	if f.Changed("subtitle-position") {
		v, _ := f.GetString("subtitle-position")
		c.Subtitle.Position = types.SubtitlePosition(v)
	}
	if f.Changed("srt-sidecar") {
		c.Subtitle.Sidecar, _ = f.GetBool("srt-sidecar")
	}
}
