package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/forPelevin/storycut/internal/domain/syncplan"
	"github.com/forPelevin/storycut/internal/types"
)

const EnvPrefix = "STORYCUT"

// Settings is everything a run needs beyond the job manifest.
type Settings struct {
	Transition types.TransitionConfig `mapstructure:"transition"`
	Subtitle   types.SubtitleStyle    `mapstructure:"subtitle"`
	Music      types.MusicConfig      `mapstructure:"music"`

	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
	WorkDir     string `mapstructure:"work_dir"`

	Parallel      int     `mapstructure:"parallel"`
	NarrationGain float64 `mapstructure:"narration_gain"`
	FPS           int     `mapstructure:"fps"`

	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	MetricsFile   string `mapstructure:"metrics_file"`
	KeepWorkspace bool   `mapstructure:"keep_workspace"`
	Addr          string `mapstructure:"addr"`
	// OutputRoot confines job outputs accepted by the HTTP API.
	OutputRoot string `mapstructure:"output_root"`
}

// flag name -> settings key
var flagKeys = map[string]string{
	"ffmpeg":            "ffmpeg_path",
	"ffprobe":           "ffprobe_path",
	"work-dir":          "work_dir",
	"parallel":          "parallel",
	"gain":              "narration_gain",
	"fps":               "fps",
	"job-timeout":       "job_timeout",
	"log-level":         "log_level",
	"log-format":        "log_format",
	"metrics-file":      "metrics_file",
	"keep-workspace":    "keep_workspace",
	"addr":              "addr",
	"output-root":       "output_root",
	"transitions":       "transition.enabled",
	"transition-mode":   "transition.mode",
	"transition-type":   "transition.uniform_type",
	"transition-length": "transition.duration",
	"music":             "music.path",
	"music-volume":      "music.volume",
	"subtitle-position": "subtitle.position",
	"srt-sidecar":       "subtitle.sidecar",
}

func setDefaults(v *viper.Viper) {
	def := types.DefaultCompositionConfig()
	v.SetDefault("transition.enabled", def.Transition.Enabled)
	v.SetDefault("transition.mode", string(def.Transition.Mode))
	v.SetDefault("transition.duration", def.Transition.Duration)
	v.SetDefault("transition.intensity", def.Transition.Intensity)
	v.SetDefault("transition.uniform_type", def.Transition.UniformType)
	v.SetDefault("transition.custom", []string{})
	v.SetDefault("transition.seed", 0)

	v.SetDefault("subtitle.font_size", def.Subtitle.FontSize)
	v.SetDefault("subtitle.font_color", def.Subtitle.FontColor)
	v.SetDefault("subtitle.outline_color", def.Subtitle.OutlineColor)
	v.SetDefault("subtitle.outline_size", def.Subtitle.OutlineSize)
	v.SetDefault("subtitle.position", string(def.Subtitle.Position))
	v.SetDefault("subtitle.sidecar", false)

	v.SetDefault("music.path", "")
	v.SetDefault("music.volume", def.Music.Volume)
	v.SetDefault("music.loop", def.Music.Loop)
	v.SetDefault("music.fade_in", def.Music.FadeIn)
	v.SetDefault("music.fade_out", def.Music.FadeOut)

	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("work_dir", "")
	v.SetDefault("parallel", 1)
	v.SetDefault("narration_gain", syncplan.DefaultGain)
	v.SetDefault("fps", 30)
	v.SetDefault("probe_timeout", 30*time.Second)
	v.SetDefault("render_timeout", 10*time.Minute)
	v.SetDefault("job_timeout", 3*time.Hour)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_file", "")
	v.SetDefault("keep_workspace", false)
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("output_root", "")
}

// Load layers defaults, the optional config file, STORYCUT_* env vars and
// explicitly set flags, in increasing priority.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

func (s Settings) Composition() types.CompositionConfig {
	return types.CompositionConfig{Transition: s.Transition, Subtitle: s.Subtitle, Music: s.Music}
}

func (s Settings) Validate() error {
	if err := s.Composition().Validate(); err != nil {
		return err
	}
	if s.Parallel < 1 {
		return errors.New("parallel must be >= 1")
	}
	if s.FPS <= 0 {
		return errors.New("fps must be > 0")
	}
	if s.NarrationGain <= 0 {
		return errors.New("narration gain must be > 0")
	}
	if s.ProbeTimeout <= 0 || s.RenderTimeout <= 0 || s.JobTimeout <= 0 {
		return errors.New("timeouts must be > 0")
	}
	return nil
}
