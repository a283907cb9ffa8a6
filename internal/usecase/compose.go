package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/types"
	"github.com/forPelevin/storycut/internal/workspace"
)

// Compose drives a job through Planning, Concatenating, Subtitling and Mixing.
// Only the first two stages can fail the job; the others fall back to their
// input video.
func (u Usecase) Compose(ctx context.Context, job Job) types.Result {
	start := time.Now()
	log := u.d.Log.With(zap.String("job_id", job.ID))
	res := types.Result{State: types.StatePending}

	enter := func(s types.JobState) {
		res.State = s
		log.Info("stage", zap.String("state", string(s)))
		if job.OnState != nil {
			job.OnState(s)
		}
	}
	fail := func(err error) types.Result {
		log.Error("job failed", zap.String("state", string(res.State)), zap.Error(err))
		enter(types.StateFailed)
		res.Message = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	enter(types.StatePlanning)
	t := time.Now()
	synced, err := u.SyncShots(ctx, job.Shots, job.Workspace)
	u.observe(types.StatePlanning, err, t)
	if err != nil {
		return fail(err)
	}

	enter(types.StateConcatenating)
	t = time.Now()
	video, err := u.Concatenate(ctx, synced, job.Config.Transition, job.Workspace)
	u.observe(types.StateConcatenating, err, t)
	if err != nil {
		return fail(err)
	}

	enter(types.StateSubtitling)
	sub := u.degradable(types.StateSubtitling, video, func() (string, error) {
		return u.BurnSubtitles(ctx, video, synced, job.Config.Subtitle, job.Workspace)
	})
	if sub.Degraded {
		res.Degraded = append(res.Degraded, "subtitles: "+sub.Err.Error())
	}
	video = sub.Artifact

	enter(types.StateMixing)
	mix := u.degradable(types.StateMixing, video, func() (string, error) {
		return u.MixMusic(ctx, video, job.Config.Music, job.Workspace)
	})
	if mix.Degraded {
		res.Degraded = append(res.Degraded, "music: "+mix.Err.Error())
	}
	video = mix.Artifact

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("cancelled: %w", err))
	}
	if err := workspace.Publish(video, job.Output); err != nil {
		return fail(err)
	}
	if job.Config.Subtitle.Sidecar && !sub.Degraded {
		u.publishSidecar(job, log)
	}

	enter(types.StateDone)
	res.OK = true
	res.OutputPath = job.Output
	res.Duration = time.Since(start)
	res.Message = fmt.Sprintf("composed %d shots into %s", len(synced), job.Output)
	if len(res.Degraded) > 0 {
		res.Message += " (degraded: " + strings.Join(res.Degraded, "; ") + ")"
	}
	log.Info("job done", zap.Duration("elapsed", res.Duration), zap.Strings("degraded", res.Degraded))
	return res
}

// degradable runs a non-fatal stage, keeping input when it fails.
func (u Usecase) degradable(stage types.JobState, input string, fn func() (string, error)) Degradable {
	t := time.Now()
	out, err := fn()
	u.observe(stage, err, t)
	if err != nil {
		u.d.Log.Warn("stage degraded, keeping previous video",
			zap.String("stage", string(stage)),
			zap.Error(err))
		if u.d.Metrics != nil {
			u.d.Metrics.IncDegraded(stage)
		}
		return Degradable{Artifact: input, Degraded: true, Err: err}
	}
	return Degradable{Artifact: out}
}

func (u Usecase) publishSidecar(job Job, log *zap.Logger) {
	srt := job.Workspace.Path(srtName)
	if !readable(srt) {
		return
	}
	dst := strings.TrimSuffix(job.Output, filepath.Ext(job.Output)) + ".srt"
	if err := workspace.Publish(srt, dst); err != nil {
		log.Warn("subtitle sidecar not written", zap.Error(err))
	}
}
