package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/domain/probe"
	"github.com/forPelevin/storycut/internal/ports/adapters/metadata"
	"github.com/forPelevin/storycut/internal/types"
)

type ProbeReport struct {
	Path    string
	Kind    types.MediaKind
	Seconds float64
	Source  probe.Source
}

var audioExts = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".aac": true, ".flac": true, ".ogg": true, ".opus": true,
}

// KindOf guesses the media kind from the file extension.
func KindOf(path string) types.MediaKind {
	if audioExts[strings.ToLower(filepath.Ext(path))] {
		return types.KindAudio
	}
	return types.KindVideo
}

// ProbeFiles reports each file's duration and the strategy that resolved it.
func ProbeFiles(ctx context.Context, cfg Config, paths []string) []ProbeReport {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	p := probe.New(metadata.New(), newMedia(cfg, log), log)
	out := make([]ProbeReport, 0, len(paths))
	for _, path := range paths {
		kind := KindOf(path)
		sec, src := p.Resolve(ctx, path, kind)
		out = append(out, ProbeReport{Path: path, Kind: kind, Seconds: sec, Source: src})
	}
	return out
}

// CheckTools returns the version line of ffmpeg and ffprobe.
func CheckTools(ctx context.Context, cfg Config) (ffmpegVersion, ffprobeVersion string, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	media := newMedia(cfg, zap.NewNop())
	if ffmpegVersion, err = media.Version(ctx, false); err != nil {
		return "", "", err
	}
	if ffprobeVersion, err = media.Version(ctx, true); err != nil {
		return "", "", err
	}
	return ffmpegVersion, ffprobeVersion, nil
}
