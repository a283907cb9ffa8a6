package music

import (
	"fmt"
	"strings"

	"github.com/forPelevin/storycut/internal/domain/encode"
	"github.com/forPelevin/storycut/internal/types"
)

// FadeSeconds is the length of the music fade in and fade out.
const FadeSeconds = 2.0

// FilterGraph builds the filter_complex that shapes the music (input 1) to the
// video length and mixes it under the narration (input 0). amix with
// duration=first keeps the narration track as the length reference; normalize=0
// sums the inputs so the narration keeps its full level.
func FilterGraph(cfg types.MusicConfig, videoDur float64) string {
	chain := []string{fmt.Sprintf("volume=%.2f", cfg.Volume)}
	fade := min(FadeSeconds, videoDur)
	if cfg.FadeIn && fade > 0 {
		chain = append(chain, fmt.Sprintf("afade=t=in:st=0:d=%s", encode.Seconds(fade)))
	}
	if cfg.FadeOut && fade > 0 {
		chain = append(chain, fmt.Sprintf("afade=t=out:st=%s:d=%s", encode.Seconds(videoDur-fade), encode.Seconds(fade)))
	}
	chain = append(chain,
		fmt.Sprintf("atrim=0:%s", encode.Seconds(videoDur)),
		"asetpts=PTS-STARTPTS",
	)
	return fmt.Sprintf("[1:a]%s[bgm];[0:a][bgm]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[aout]",
		strings.Join(chain, ","))
}

// Args copies the video stream and re-encodes only the mixed audio.
func Args(cfg types.MusicConfig, videoPath, out string, videoDur float64, prof encode.Profile) []string {
	args := []string{"-y", "-i", videoPath}
	if cfg.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", cfg.Path,
		"-filter_complex", FilterGraph(cfg, videoDur),
		"-map", "0:v:0",
		"-map", "[aout]",
		"-c:v", "copy",
	)
	args = append(args, prof.Audio()...)
	args = append(args, "-t", encode.Seconds(videoDur), out)
	return args
}
