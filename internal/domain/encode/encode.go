// Package encode holds the codec settings shared by every re-encoding stage,
// so per-shot outputs stay concat-compatible under stream copy.
package encode

import "strconv"

type Profile struct {
	FPS          int
	CRF          int
	Preset       string
	AudioBitrate string
	SampleRate   int
}

func Default() Profile {
	return Profile{
		FPS:          30,
		CRF:          18,
		Preset:       "veryfast",
		AudioBitrate: "192k",
		SampleRate:   44100,
	}
}

func (p Profile) Video() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", p.Preset,
		"-crf", strconv.Itoa(p.CRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(p.FPS),
	}
}

func (p Profile) Audio() []string {
	return []string{
		"-c:a", "aac",
		"-b:a", p.AudioBitrate,
		"-ar", strconv.Itoa(p.SampleRate),
		"-ac", "2",
	}
}

// Seconds formats a duration in seconds the way ffmpeg time options expect.
func Seconds(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
