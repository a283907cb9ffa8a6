package syncplan

import (
	"math"
	"strconv"

	"github.com/forPelevin/storycut/internal/domain/encode"
	"github.com/forPelevin/storycut/internal/types"
)

// Epsilon is the duration gap below which a shot is muxed as is.
const Epsilon = 0.1

// DefaultGain boosts narration so it sits above later background music.
const DefaultGain = 2.0

// Plan describes how one shot is forced onto its narration length.
type Plan struct {
	Strategy types.SyncStrategy
	Video    float64
	Audio    float64
}

// Target is the output duration; narration is authoritative.
func (p Plan) Target() float64 { return p.Audio }

func Decide(video, audio, eps float64) types.SyncStrategy {
	switch {
	case math.Abs(video-audio) <= eps:
		return types.SyncPassthrough
	case video < audio:
		return types.SyncLoop
	default:
		return types.SyncTrim
	}
}

func New(video, audio float64) Plan {
	return Plan{Strategy: Decide(video, audio, Epsilon), Video: video, Audio: audio}
}

// Args builds the ffmpeg arguments that produce out from the shot's inputs.
// Every branch caps output at the narration length.
func Args(p Plan, videoPath, audioPath, out string, gain float64, prof encode.Profile) []string {
	var args []string
	args = append(args, "-y")
	if p.Strategy == types.SyncLoop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-af", "volume="+strconv.FormatFloat(gain, 'f', 2, 64),
	)
	args = append(args, prof.Video()...)
	args = append(args, prof.Audio()...)
	args = append(args, "-t", encode.Seconds(p.Target()), out)
	return args
}
