package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/storycut/internal/domain/transitions"
	"github.com/forPelevin/storycut/internal/types"
)

// Concatenate joins the synced shots in order, optionally fading each shot first.
func (u Usecase) Concatenate(ctx context.Context, synced []types.SyncedShot, cfg types.TransitionConfig, ws Workspace) (string, error) {
	if len(synced) == 0 {
		return "", &ConcatError{Err: fmt.Errorf("no shots")}
	}
	clips := make([]string, len(synced))
	for i, s := range synced {
		clips[i] = s.Path
	}
	if cfg.Enabled && len(synced) > 1 {
		clips = u.applyTransitions(ctx, synced, cfg, ws)
	}

	list := ws.Path("concat.txt")
	if err := writeFile(list, []byte(concatList(clips))); err != nil {
		return "", &ConcatError{Err: fmt.Errorf("write list: %w", err)}
	}
	out := ws.Path("concat.mp4")
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		out,
	}
	if err := u.d.Media.Render(ctx, args); err != nil {
		return "", &ConcatError{Err: err}
	}
	return out, nil
}

// applyTransitions renders a faded copy of each shot. A shot whose render
// fails keeps its untransitioned clip.
func (u Usecase) applyTransitions(ctx context.Context, synced []types.SyncedShot, cfg types.TransitionConfig, ws Workspace) []string {
	durs := make([]float64, len(synced))
	for i, s := range synced {
		durs[i] = s.Duration
	}
	fades := transitions.Plan(durs, transitions.NewPicker(cfg).Boundaries(len(synced)), cfg.Duration)

	clips := make([]string, len(synced))
	var g errgroup.Group
	g.SetLimit(u.d.Parallel)
	for i, s := range synced {
		clips[i] = s.Path
		vf := transitions.Filter(fades[i], s.Duration, cfg.Intensity)
		if vf == "" {
			continue
		}
		g.Go(func() error {
			out := ws.Path(fmt.Sprintf("transition_%03d.mp4", i))
			args := append([]string{"-y", "-i", s.Path, "-vf", vf}, u.d.Profile.Video()...)
			args = append(args, "-c:a", "copy", out)
			if err := u.d.Media.Render(ctx, args); err != nil {
				u.d.Log.Warn("transition render failed, using original clip",
					zap.Int("shot", i),
					zap.Error(err))
				return nil
			}
			clips[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return clips
}

// concatList renders the concat demuxer input; quotes in paths are closed,
// escaped and reopened.
func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}
