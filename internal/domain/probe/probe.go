package probe

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/ports"
	"github.com/forPelevin/storycut/internal/types"
)

// Source names the strategy that produced a duration.
type Source string

const (
	SourceMetadata    Source = "metadata"
	SourceFFprobe     Source = "ffprobe"
	SourceDiagnostics Source = "diagnostics"
	SourceFileSize    Source = "filesize"
	SourceFallback    Source = "fallback"
)

const (
	FallbackSeconds = 5.0

	minEstimate = 1.0
	maxEstimate = 30.0
)

// Assumed bitrates (bits/s) for the size estimate.
var estimateBitrate = map[types.MediaKind]float64{
	types.KindAudio: 128_000,
	types.KindVideo: 2_000_000,
}

var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// Prober resolves media durations through a chain of progressively cruder
// strategies. Each strategy is isolated: an error or panic moves on to the next.
type Prober struct {
	meta ports.MetadataReader
	tool ports.MediaTool
	log  *zap.Logger
}

func New(meta ports.MetadataReader, tool ports.MediaTool, log *zap.Logger) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{meta: meta, tool: tool, log: log}
}

func (p *Prober) Duration(ctx context.Context, path string, kind types.MediaKind) float64 {
	sec, _ := p.Resolve(ctx, path, kind)
	return sec
}

// Resolve is Duration plus the strategy that answered.
func (p *Prober) Resolve(ctx context.Context, path string, kind types.MediaKind) (float64, Source) {
	steps := []struct {
		src Source
		fn  func() (float64, error)
	}{
		{SourceMetadata, func() (float64, error) { return p.fromMetadata(path) }},
		{SourceFFprobe, func() (float64, error) { return p.fromFFprobe(ctx, path) }},
		{SourceDiagnostics, func() (float64, error) { return p.fromDiagnostics(ctx, path) }},
		{SourceFileSize, func() (float64, error) { return fromFileSize(path, kind) }},
	}
	for _, s := range steps {
		sec, err := attempt(s.fn)
		if err == nil && sec > 0 {
			p.log.Debug("duration probed",
				zap.String("path", path),
				zap.String("source", string(s.src)),
				zap.Float64("seconds", sec))
			return sec, s.src
		}
		p.log.Debug("probe strategy failed",
			zap.String("path", path),
			zap.String("source", string(s.src)),
			zap.Error(err))
	}
	p.log.Warn("duration unknown, using fallback",
		zap.String("path", path),
		zap.Float64("seconds", FallbackSeconds))
	return FallbackSeconds, SourceFallback
}

func attempt(fn func() (float64, error)) (sec float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (p *Prober) fromMetadata(path string) (float64, error) {
	if p.meta == nil {
		return 0, fmt.Errorf("no metadata reader")
	}
	d, err := p.meta.Duration(path)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

func (p *Prober) fromFFprobe(ctx context.Context, path string) (float64, error) {
	if p.tool == nil {
		return 0, fmt.Errorf("no media tool")
	}
	d, err := p.tool.ProbeDuration(ctx, path)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

func (p *Prober) fromDiagnostics(ctx context.Context, path string) (float64, error) {
	if p.tool == nil {
		return 0, fmt.Errorf("no media tool")
	}
	text, err := p.tool.Diagnose(ctx, path)
	if err != nil {
		return 0, err
	}
	return ParseDiagnosticDuration(text)
}

// ParseDiagnosticDuration extracts "Duration: HH:MM:SS.mmm" from ffmpeg output.
func ParseDiagnosticDuration(text string) (float64, error) {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no duration line")
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, fmt.Errorf("parse seconds %q: %w", m[3], err)
	}
	return float64(h)*3600 + float64(mi)*60 + s, nil
}

func fromFileSize(path string, kind types.MediaKind) (float64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() || fi.Size() == 0 {
		return 0, fmt.Errorf("not a media file")
	}
	return EstimateFromSize(fi.Size(), kind), nil
}

// EstimateFromSize guesses a duration from byte size at an assumed bitrate,
// clamped to a plausible shot length.
func EstimateFromSize(size int64, kind types.MediaKind) float64 {
	sec := float64(size) * 8 / estimateBitrate[kind]
	return min(max(sec, minEstimate), maxEstimate)
}
