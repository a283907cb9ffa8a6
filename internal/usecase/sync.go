package usecase

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/storycut/internal/domain/syncplan"
	"github.com/forPelevin/storycut/internal/types"
)

// SyncShots syncs every shot with bounded parallelism. The result keeps input
// order; the first failure cancels the remaining renders.
func (u Usecase) SyncShots(ctx context.Context, shots []types.Shot, ws Workspace) ([]types.SyncedShot, error) {
	out := make([]types.SyncedShot, len(shots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.d.Parallel)
	for i, s := range shots {
		g.Go(func() error {
			ss, err := u.SyncShot(gctx, i, s, ws)
			if err != nil {
				return err
			}
			out[i] = ss
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncShot forces one shot's picture onto its narration length.
func (u Usecase) SyncShot(ctx context.Context, index int, shot types.Shot, ws Workspace) (types.SyncedShot, error) {
	if !readable(shot.VideoPath) && !readable(shot.AudioPath) {
		return types.SyncedShot{}, &SyncError{Index: index, ShotID: shot.ID, Err: ErrUnreadable}
	}

	vd := u.d.Probe.Duration(ctx, shot.VideoPath, types.KindVideo)
	ad := u.d.Probe.Duration(ctx, shot.AudioPath, types.KindAudio)
	plan := syncplan.New(vd, ad)
	out := ws.Path(fmt.Sprintf("synced_%03d.mp4", index))

	log := u.d.Log.With(zap.Int("shot", index), zap.String("shot_id", shot.ID))
	log.Info("sync plan",
		zap.String("strategy", string(plan.Strategy)),
		zap.Float64("video_sec", vd),
		zap.Float64("audio_sec", ad))

	args := syncplan.Args(plan, shot.VideoPath, shot.AudioPath, out, u.d.Gain, u.d.Profile)
	if err := u.d.Media.Render(ctx, args); err != nil {
		return types.SyncedShot{}, &SyncError{Index: index, ShotID: shot.ID, Err: err}
	}

	// Frame quantization makes the rendered clip differ slightly from the
	// narration; the measured length keeps subtitle cues on the real timeline.
	dur := plan.Target()
	if got := u.d.Probe.Duration(ctx, out, types.KindVideo); math.Abs(got-ad) > types.DurationTolerance {
		log.Warn("synced duration off target",
			zap.Float64("got_sec", got),
			zap.Float64("want_sec", ad))
	} else {
		dur = got
	}

	return types.SyncedShot{
		Index:        index,
		ShotID:       shot.ID,
		Path:         out,
		Duration:     dur,
		SubtitleText: shot.SubtitleText,
		Strategy:     plan.Strategy,
	}, nil
}
