package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProbeTimeout  = 30 * time.Second
	defaultRenderTimeout = 10 * time.Minute
)

type Options struct {
	Log           *zap.Logger
	ProbeTimeout  time.Duration
	RenderTimeout time.Duration
	// OnRun is called after every ffmpeg render with its outcome.
	OnRun func(ok bool)
}

type Adapter struct {
	ffmpeg        string
	ffprobe       string
	log           *zap.Logger
	probeTimeout  time.Duration
	renderTimeout time.Duration
	onRun         func(ok bool)
}

func New(ffmpegPath, ffprobePath string, opts Options) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	a := &Adapter{
		ffmpeg:        ffmpegPath,
		ffprobe:       ffprobePath,
		log:           opts.Log,
		probeTimeout:  opts.ProbeTimeout,
		renderTimeout: opts.RenderTimeout,
		onRun:         opts.OnRun,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.probeTimeout <= 0 {
		a.probeTimeout = defaultProbeTimeout
	}
	if a.renderTimeout <= 0 {
		a.renderTimeout = defaultRenderTimeout
	}
	return a
}

func (a *Adapter) Render(ctx context.Context, args []string) error {
	full := append([]string{"-hide_banner", "-nostdin", "-loglevel", "error"}, args...)
	start := time.Now()
	_, err := a.run(ctx, a.renderTimeout, a.ffmpeg, full)
	a.log.Debug("ffmpeg render",
		zap.Strings("args", full),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	if a.onRun != nil {
		a.onRun(err == nil)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

// Diagnose opens path without an output so ffmpeg prints the input summary and
// exits non-zero; the exit status is expected and ignored.
func (a *Adapter) Diagnose(ctx context.Context, path string) (string, error) {
	stderr, err := a.run(ctx, a.probeTimeout, a.ffmpeg, []string{"-hide_banner", "-nostdin", "-i", path})
	var ee *ExecError
	if err != nil && !(errors.As(err, &ee) && ee.ExitCode > 0) {
		return "", fmt.Errorf("ffmpeg diagnose: %w", err)
	}
	return decodeDiagnostics(stderr), nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := a.output(ctx, a.probeTimeout, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if sec <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// Version returns the first line of "<bin> -version".
func (a *Adapter) Version(ctx context.Context, ffprobe bool) (string, error) {
	bin := a.ffmpeg
	if ffprobe {
		bin = a.ffprobe
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", fmt.Errorf("%s not found: %w", bin, err)
	}
	out, err := a.output(ctx, a.probeTimeout, bin, "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}
