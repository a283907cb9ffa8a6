//go:build integration

package itest

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Container rounding and AAC priming make rendered files a few frames off.
const renderTolerance = 0.15

func mustRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("repo root: %v", errors.New("could not locate go.mod"))
		}
		dir = parent
	}
}

func requireTools(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Fatalf("%s is required for itest: %v", bin, err)
		}
	}
}

func ffmpegFixture(t *testing.T, out string, args ...string) string {
	t.Helper()
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	full = append(full, out)
	if b, err := exec.Command("ffmpeg", full...).CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture %s: %v\n%s", filepath.Base(out), err, b)
	}
	return out
}

// silentClip renders a video-only test pattern, like a generated shot.
func silentClip(t *testing.T, dir, name string, seconds float64) string {
	t.Helper()
	return ffmpegFixture(t, filepath.Join(dir, name),
		"-f", "lavfi", "-i", fmt.Sprintf("testsrc=size=320x240:rate=30:duration=%g", seconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p")
}

func tone(t *testing.T, dir, name string, seconds float64, freq int) string {
	t.Helper()
	return ffmpegFixture(t, filepath.Join(dir, name),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%d:sample_rate=44100:duration=%g", freq, seconds))
}

func mediaDuration(t *testing.T, path string) float64 {
	t.Helper()
	b, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe %s: %v\n%s", path, err, b)
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		t.Fatalf("parse duration %q: %v", b, err)
	}
	return sec
}

func streamTypes(t *testing.T, path string) []string {
	t.Helper()
	b, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe streams %s: %v\n%s", path, err, b)
	}
	return strings.Fields(string(b))
}

func within(got, want, tol float64) bool {
	return got >= want-tol && got <= want+tol
}
