package ports

import (
	"context"
	"time"

	"github.com/forPelevin/storycut/internal/types"
)

// MediaTool is the narrow surface the engine needs from the media toolchain.
type MediaTool interface {
	// Render runs one ffmpeg invocation; args carry inputs, filters and the output.
	Render(ctx context.Context, args []string) error
	// Diagnose asks ffmpeg to open path and returns its decoded diagnostic text.
	Diagnose(ctx context.Context, path string) (string, error)
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// MetadataReader reads a duration straight from container metadata.
type MetadataReader interface {
	Duration(path string) (time.Duration, error)
}

// DurationProber never fails; it always answers with a positive duration in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string, kind types.MediaKind) float64
}

type StageObserver interface {
	ObserveStage(stage types.JobState, outcome string, d time.Duration)
	IncDegraded(stage types.JobState)
}
