package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DurationTolerance is the accepted gap between a synced shot and its narration.
const DurationTolerance = 0.05

type MediaKind int

const (
	KindAudio MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "audio"
}

// Shot is one input unit: a generated clip plus the narration it must match.
type Shot struct {
	ID           string `json:"id"`
	VideoPath    string `json:"video"`
	AudioPath    string `json:"audio"`
	SubtitleText string `json:"subtitle,omitempty"`
}

type SyncStrategy string

const (
	SyncPassthrough SyncStrategy = "passthrough"
	SyncLoop        SyncStrategy = "loop"
	SyncTrim        SyncStrategy = "trim"
)

// SyncedShot is a workspace artifact whose duration equals its narration.
type SyncedShot struct {
	Index        int
	ShotID       string
	Path         string
	Duration     float64
	SubtitleText string
	Strategy     SyncStrategy
}

type TransitionMode string

const (
	TransitionUniform TransitionMode = "uniform"
	TransitionRandom  TransitionMode = "random"
	TransitionCustom  TransitionMode = "custom"
)

// Transition names accepted in config. The two-input families are matched by
// prefix (slideleft, wipeup, ...) and render as a plain fade.
var (
	transitionStyles   = []string{"fade", "fadewhite", "desaturate", "flash"}
	transitionFamilies = []string{"fadeblack", "dissolve", "slide", "wipe", "zoom", "circle", "smooth", "cover", "reveal", "push"}
)

// KnownTransition reports whether name is a recognized transition type.
func KnownTransition(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if slices.Contains(transitionStyles, n) {
		return true
	}
	for _, f := range transitionFamilies {
		if strings.HasPrefix(n, f) {
			return true
		}
	}
	return false
}

type TransitionConfig struct {
	Enabled     bool           `json:"enabled" mapstructure:"enabled"`
	Mode        TransitionMode `json:"mode" mapstructure:"mode"`
	Duration    float64        `json:"duration" mapstructure:"duration"`
	Intensity   float64        `json:"intensity" mapstructure:"intensity"`
	UniformType string         `json:"uniform_type" mapstructure:"uniform_type"`
	Custom      []string       `json:"custom,omitempty" mapstructure:"custom"`
	// Seed fixes the random picker; zero means time-seeded.
	Seed int64 `json:"seed,omitempty" mapstructure:"seed"`
}

type SubtitlePosition string

const (
	PositionTop    SubtitlePosition = "top"
	PositionMiddle SubtitlePosition = "middle"
	PositionBottom SubtitlePosition = "bottom"
)

type SubtitleStyle struct {
	FontSize     int              `json:"font_size" mapstructure:"font_size"`
	FontColor    string           `json:"font_color" mapstructure:"font_color"`
	OutlineColor string           `json:"outline_color" mapstructure:"outline_color"`
	OutlineSize  int              `json:"outline_size" mapstructure:"outline_size"`
	Position     SubtitlePosition `json:"position" mapstructure:"position"`
	// Sidecar copies the generated SRT next to the output video.
	Sidecar bool `json:"sidecar" mapstructure:"sidecar"`
}

type MusicConfig struct {
	Path    string  `json:"path" mapstructure:"path"`
	Volume  float64 `json:"volume" mapstructure:"volume"`
	Loop    bool    `json:"loop" mapstructure:"loop"`
	FadeIn  bool    `json:"fade_in" mapstructure:"fade_in"`
	FadeOut bool    `json:"fade_out" mapstructure:"fade_out"`
}

type CompositionConfig struct {
	Transition TransitionConfig `json:"transition" mapstructure:"transition"`
	Subtitle   SubtitleStyle    `json:"subtitle" mapstructure:"subtitle"`
	Music      MusicConfig      `json:"music" mapstructure:"music"`
}

func DefaultCompositionConfig() CompositionConfig {
	return CompositionConfig{
		Transition: TransitionConfig{
			Mode:        TransitionUniform,
			Duration:    0.5,
			Intensity:   1.0,
			UniformType: "fade",
		},
		Subtitle: SubtitleStyle{
			FontSize:     24,
			FontColor:    "#FFFFFF",
			OutlineColor: "#000000",
			OutlineSize:  2,
			Position:     PositionBottom,
		},
		Music: MusicConfig{
			Volume:  0.3,
			Loop:    true,
			FadeIn:  true,
			FadeOut: true,
		},
	}
}

func (c CompositionConfig) Validate() error {
	t := c.Transition
	switch t.Mode {
	case TransitionUniform, TransitionRandom:
	case TransitionCustom:
		if t.Enabled && len(t.Custom) == 0 {
			return errors.New("transition: custom mode needs at least one type")
		}
	default:
		return fmt.Errorf("transition: unknown mode %q", t.Mode)
	}
	if !KnownTransition(t.UniformType) {
		return fmt.Errorf("transition: unknown type %q", t.UniformType)
	}
	for _, name := range t.Custom {
		if !KnownTransition(name) {
			return fmt.Errorf("transition: unknown custom type %q", name)
		}
	}
	if t.Enabled && t.Duration <= 0 {
		return errors.New("transition: duration must be > 0")
	}
	if t.Intensity < 0 || t.Intensity > 1 {
		return errors.New("transition: intensity must be within [0, 1]")
	}

	s := c.Subtitle
	switch s.Position {
	case PositionTop, PositionMiddle, PositionBottom:
	default:
		return fmt.Errorf("subtitle: unknown position %q", s.Position)
	}
	if s.FontSize <= 0 {
		return errors.New("subtitle: font size must be > 0")
	}
	if s.OutlineSize < 0 {
		return errors.New("subtitle: outline size must be >= 0")
	}
	for name, v := range map[string]string{"font color": s.FontColor, "outline color": s.OutlineColor} {
		if !isHexColor(v) {
			return fmt.Errorf("subtitle: %s %q is not #RRGGBB", name, v)
		}
	}

	if c.Music.Volume < 0 || c.Music.Volume > 1 {
		return errors.New("music: volume must be within [0, 1]")
	}
	return nil
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Manifest is the JSON job description accepted by the CLI and the HTTP API.
type Manifest struct {
	Output string             `json:"output"`
	Shots  []Shot             `json:"shots"`
	Config *CompositionConfig `json:"config,omitempty"`
}

func (m Manifest) Validate() error {
	if strings.TrimSpace(m.Output) == "" {
		return errors.New("output is empty")
	}
	if len(m.Shots) == 0 {
		return errors.New("no shots")
	}
	for i, s := range m.Shots {
		if s.VideoPath == "" || s.AudioPath == "" {
			return fmt.Errorf("shot %d: video and audio are required", i)
		}
	}
	return nil
}

type JobState string

const (
	StatePending       JobState = "pending"
	StatePlanning      JobState = "planning"
	StateConcatenating JobState = "concatenating"
	StateSubtitling    JobState = "subtitling"
	StateMixing        JobState = "mixing"
	StateDone          JobState = "done"
	StateFailed        JobState = "failed"
)

// Result is what callers see: a success flag and a human-readable message.
type Result struct {
	OK         bool          `json:"ok"`
	OutputPath string        `json:"output_path,omitempty"`
	Message    string        `json:"message"`
	State      JobState      `json:"state"`
	Degraded   []string      `json:"degraded,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}
