package usecase

import (
	"context"
	"fmt"

	"github.com/forPelevin/storycut/internal/domain/music"
	"github.com/forPelevin/storycut/internal/domain/subtitles"
	"github.com/forPelevin/storycut/internal/types"
)

const srtName = "subtitles.srt"

// BurnSubtitles writes an SRT for the synced timeline and burns it into video.
// Without any caption text the input is returned unchanged.
func (u Usecase) BurnSubtitles(ctx context.Context, video string, synced []types.SyncedShot, style types.SubtitleStyle, ws Workspace) (string, error) {
	if !subtitles.HasText(synced) {
		return video, nil
	}
	srt := ws.Path(srtName)
	if err := writeFile(srt, []byte(subtitles.RenderSRT(subtitles.BuildCues(synced)))); err != nil {
		return "", fmt.Errorf("write srt: %w", err)
	}

	out := ws.Path("subtitled.mp4")
	args := append([]string{"-y", "-i", video, "-vf", subtitles.Filter(srt, style)}, u.d.Profile.Video()...)
	args = append(args, "-c:a", "copy", out)
	if err := u.d.Media.Render(ctx, args); err != nil {
		return "", fmt.Errorf("burn subtitles: %w", err)
	}
	return out, nil
}

// MixMusic lays the background track under the narration. A missing or
// unreadable track is a no-op.
func (u Usecase) MixMusic(ctx context.Context, video string, cfg types.MusicConfig, ws Workspace) (string, error) {
	if !readable(cfg.Path) {
		return video, nil
	}
	vd := u.d.Probe.Duration(ctx, video, types.KindVideo)
	out := ws.Path("mixed.mp4")
	if err := u.d.Media.Render(ctx, music.Args(cfg, video, out, vd, u.d.Profile)); err != nil {
		return "", fmt.Errorf("mix music: %w", err)
	}
	return out, nil
}
