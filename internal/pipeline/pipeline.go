package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/domain/encode"
	"github.com/forPelevin/storycut/internal/domain/probe"
	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/ports"
	"github.com/forPelevin/storycut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/storycut/internal/ports/adapters/metadata"
	"github.com/forPelevin/storycut/internal/types"
	"github.com/forPelevin/storycut/internal/usecase"
	"github.com/forPelevin/storycut/internal/workspace"
)

type Config struct {
	// JobID is generated when empty.
	JobID       string
	Shots       []types.Shot
	Output      string
	Composition types.CompositionConfig

	FFmpegPath  string
	FFprobePath string

	// WorkDir is the parent of the per-job workspace. If empty, the OS temp dir is used.
	WorkDir       string
	KeepWorkspace bool

	Parallel      int
	NarrationGain float64
	FPS           int

	ProbeTimeout  time.Duration
	RenderTimeout time.Duration

	Log     *zap.Logger
	Metrics *metrics.Metrics
	OnState func(types.JobState)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output is empty")
	}
	if filepath.Ext(c.Output) == "" {
		return fmt.Errorf("output %q needs a container extension", c.Output)
	}
	if len(c.Shots) == 0 {
		return errors.New("no shots")
	}
	for i, s := range c.Shots {
		if s.VideoPath == "" || s.AudioPath == "" {
			return fmt.Errorf("shot %d: video and audio are required", i)
		}
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must be >= 0")
	}
	return c.Composition.Validate()
}

// Run composes one job in its own workspace, removed afterwards unless
// KeepWorkspace is set. The error is reserved for setup failures; job
// outcomes are reported through the Result.
func Run(ctx context.Context, cfg Config) (types.Result, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	jobID := cfg.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	log = log.With(zap.String("job_id", jobID))

	out, err := filepath.Abs(cfg.Output)
	if err != nil {
		return types.Result{}, err
	}

	log.Debug("preparing workspace")
	ws, err := workspace.New(cfg.WorkDir, workspacePrefix(out, jobID))
	if err != nil {
		return types.Result{}, err
	}
	if cfg.KeepWorkspace {
		log.Info("keeping workspace", zap.String("dir", ws.Dir()))
	} else {
		defer func() {
			if err := ws.Cleanup(); err != nil {
				log.Warn("workspace cleanup", zap.Error(err))
			}
		}()
	}
	log.Debug("workspace", zap.String("dir", ws.Dir()))

	media := newMedia(cfg, log)
	prof := encode.Default()
	if cfg.FPS > 0 {
		prof.FPS = cfg.FPS
	}
	deps := usecase.Deps{
		Media:    media,
		Probe:    probe.New(metadata.New(), media, log),
		Log:      log,
		Parallel: cfg.Parallel,
		Gain:     cfg.NarrationGain,
		Profile:  prof,
	}
	if cfg.Metrics != nil {
		deps.Metrics = cfg.Metrics
	}

	uc := usecase.New(deps)
	res := uc.Compose(ctx, usecase.Job{
		ID:        jobID,
		Shots:     cfg.Shots,
		Config:    cfg.Composition,
		Workspace: ws,
		Output:    out,
		OnState:   cfg.OnState,
	})
	if cfg.Metrics != nil {
		cfg.Metrics.ObserveJob(res.OK)
	}
	return res, nil
}

func newMedia(cfg Config, log *zap.Logger) *ffmpeg.Adapter {
	opts := ffmpeg.Options{
		Log:           log,
		ProbeTimeout:  cfg.ProbeTimeout,
		RenderTimeout: cfg.RenderTimeout,
	}
	if cfg.Metrics != nil {
		opts.OnRun = cfg.Metrics.ObserveFFmpeg
	}
	return ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, opts)
}

func workspacePrefix(output, jobID string) string {
	name := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	name = normalizePathSegment(name)
	if name == "" {
		name = "output"
	}
	id := normalizePathSegment(jobID)
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("storycut-%s-%s", name, id)
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var _ ports.MediaTool = (*ffmpeg.Adapter)(nil)
var _ ports.MetadataReader = (*metadata.Reader)(nil)
var _ ports.DurationProber = (*probe.Prober)(nil)
var _ ports.StageObserver = (*metrics.Metrics)(nil)
