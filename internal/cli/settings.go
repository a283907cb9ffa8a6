package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/config"
	"github.com/forPelevin/storycut/internal/logging"
	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/pipeline"
	"github.com/forPelevin/storycut/internal/types"
)

func loadSettings(cmd *cobra.Command) (config.Settings, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	s, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Settings{}, nil, err
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(s.LogLevel, s.LogFormat)
	if err != nil {
		return config.Settings{}, nil, fmt.Errorf("config: %w", err)
	}
	return s, log, nil
}

// pipelineConfig maps settings and one manifest onto a pipeline run.
func pipelineConfig(s config.Settings, m types.Manifest, log *zap.Logger, met *metrics.Metrics) pipeline.Config {
	comp := s.Composition()
	if m.Config != nil {
		comp = *m.Config
	}
	return pipeline.Config{
		Shots:         m.Shots,
		Output:        m.Output,
		Composition:   comp,
		FFmpegPath:    s.FFmpegPath,
		FFprobePath:   s.FFprobePath,
		WorkDir:       s.WorkDir,
		KeepWorkspace: s.KeepWorkspace,
		Parallel:      s.Parallel,
		NarrationGain: s.NarrationGain,
		FPS:           s.FPS,
		ProbeTimeout:  s.ProbeTimeout,
		RenderTimeout: s.RenderTimeout,
		Log:           log,
		Metrics:       met,
	}
}
