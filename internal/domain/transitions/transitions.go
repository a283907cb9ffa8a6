package transitions

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/forPelevin/storycut/internal/types"
)

// Style is a per-clip approximation of a boundary effect. Only single-input
// filters are used, so each shot fades on its own and concat stays a stream copy.
type Style string

const (
	Fade       Style = "fade"
	FadeWhite  Style = "fadewhite"
	Desaturate Style = "desaturate"
	Flash      Style = "flash"
)

var Styles = []Style{Fade, FadeWhite, Desaturate, Flash}

// Resolve maps a requested transition name onto a supported style. ok is false
// for names that are not recognized at all.
func Resolve(name string) (Style, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Styles {
		if n == string(s) {
			return s, true
		}
	}
	// Two-input families degrade to a plain fade.
	return Fade, types.KnownTransition(n)
}

// Picker chooses one style per shot boundary.
type Picker struct {
	cfg types.TransitionConfig
	rng *rand.Rand
}

func NewPicker(cfg types.TransitionConfig) *Picker {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Picker{cfg: cfg, rng: rand.New(rand.NewPCG(uint64(seed), 0x5eed))}
}

// Boundaries returns n-1 styles for n shots.
func (p *Picker) Boundaries(n int) []Style {
	if n < 2 {
		return nil
	}
	out := make([]Style, n-1)
	for i := range out {
		switch p.cfg.Mode {
		case types.TransitionRandom:
			out[i] = Styles[p.rng.IntN(len(Styles))]
		case types.TransitionCustom:
			if len(p.cfg.Custom) == 0 {
				out[i] = Fade
				continue
			}
			out[i], _ = Resolve(p.cfg.Custom[i%len(p.cfg.Custom)])
		default:
			out[i], _ = Resolve(p.cfg.UniformType)
		}
	}
	return out
}

// ShotFade is the head and tail effect applied to one shot.
type ShotFade struct {
	In, Out       Style
	HasIn, HasOut bool
	// D is the fade length after clamping to the shot duration.
	D float64
}

// Plan assigns fades: the first shot only fades out, the last only fades in,
// interior shots do both.
func Plan(durations []float64, boundaries []Style, d float64) []ShotFade {
	out := make([]ShotFade, len(durations))
	n := len(durations)
	for i, dur := range durations {
		f := ShotFade{D: d}
		if i > 0 && i-1 < len(boundaries) {
			f.In, f.HasIn = boundaries[i-1], true
		}
		if i < n-1 && i < len(boundaries) {
			f.Out, f.HasOut = boundaries[i], true
		}
		limit := dur
		if f.HasIn && f.HasOut {
			limit = dur / 2
		}
		f.D = min(f.D, limit)
		out[i] = f
	}
	return out
}

// Filter renders the ffmpeg video filter chain for one shot; empty means no effect.
func Filter(f ShotFade, dur, intensity float64) string {
	if f.D <= 0 || (!f.HasIn && !f.HasOut) {
		return ""
	}
	outStart := dur - f.D
	var parts []string
	if f.HasIn {
		if s := headOrTail(f.In, "in", 0, f.D, intensity, outStart); s != "" {
			parts = append(parts, s)
		}
	}
	if f.HasOut {
		if s := headOrTail(f.Out, "out", outStart, f.D, intensity, outStart); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

func headOrTail(s Style, dir string, st, d, intensity, outStart float64) string {
	// ramp is 1 at the cut and 0 once the effect has settled.
	ramp := fmt.Sprintf("max(0,1-t/%.3f)", d)
	if dir == "out" {
		ramp = fmt.Sprintf("max(0,(t-%.3f)/%.3f)", outStart, d)
	}
	switch s {
	case FadeWhite:
		return fmt.Sprintf("fade=t=%s:st=%.3f:d=%.3f:color=white", dir, st, d)
	case Desaturate:
		return fmt.Sprintf("hue=s='1-%.3f*%s'", intensity, ramp)
	case Flash:
		return fmt.Sprintf("eq=brightness='%.3f*%s':eval=frame", 0.6*intensity, ramp)
	default:
		return fmt.Sprintf("fade=t=%s:st=%.3f:d=%.3f", dir, st, d)
	}
}
