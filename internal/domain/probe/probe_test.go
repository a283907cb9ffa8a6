package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forPelevin/storycut/internal/types"
)

type fakeMeta struct {
	d   time.Duration
	err error
}

func (f fakeMeta) Duration(string) (time.Duration, error) { return f.d, f.err }

type fakeTool struct {
	probe      time.Duration
	probeErr   error
	diag       string
	diagErr    error
	panicProbe bool
}

func (f fakeTool) Render(context.Context, []string) error { return nil }

func (f fakeTool) Diagnose(context.Context, string) (string, error) { return f.diag, f.diagErr }

func (f fakeTool) ProbeDuration(context.Context, string) (time.Duration, error) {
	if f.panicProbe {
		panic("boom")
	}
	return f.probe, f.probeErr
}

var errNope = errors.New("nope")

func TestResolve_Chain(t *testing.T) {
	dir := t.TempDir()
	sized := filepath.Join(dir, "a.bin")
	// 64000 bytes at 128 kbps is 4 seconds.
	if err := os.WriteFile(sized, make([]byte, 64000), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.wav")

	tests := map[string]struct {
		meta    fakeMeta
		tool    fakeTool
		path    string
		want    float64
		wantSrc Source
	}{
		"metadata wins": {
			meta: fakeMeta{d: 2500 * time.Millisecond},
			tool: fakeTool{probe: 9 * time.Second},
			path: sized, want: 2.5, wantSrc: SourceMetadata,
		},
		"ffprobe after metadata error": {
			meta: fakeMeta{err: errNope},
			tool: fakeTool{probe: 7 * time.Second},
			path: sized, want: 7, wantSrc: SourceFFprobe,
		},
		"diagnostics after ffprobe panic": {
			meta: fakeMeta{err: errNope},
			tool: fakeTool{panicProbe: true, diag: "  Duration: 00:01:02.50, start: 0.0"},
			path: sized, want: 62.5, wantSrc: SourceDiagnostics,
		},
		"file size estimate": {
			meta: fakeMeta{err: errNope},
			tool: fakeTool{probeErr: errNope, diag: "no duration here"},
			path: sized, want: 4, wantSrc: SourceFileSize,
		},
		"constant fallback": {
			meta: fakeMeta{err: errNope},
			tool: fakeTool{probeErr: errNope, diagErr: errNope},
			path: missing, want: FallbackSeconds, wantSrc: SourceFallback,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := New(tc.meta, tc.tool, nil)
			got, src := p.Resolve(context.Background(), tc.path, types.KindAudio)
			if got != tc.want || src != tc.wantSrc {
				t.Fatalf("Resolve = (%v, %s), want (%v, %s)", got, src, tc.want, tc.wantSrc)
			}
		})
	}
}

func TestParseDiagnosticDuration(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    float64
		wantErr bool
	}{
		"hours":      {in: "Duration: 01:00:00.25, start", want: 3600.25},
		"no frac":    {in: "Duration: 00:00:05, bitrate", want: 5},
		"N/A":        {in: "Duration: N/A, start: 0", wantErr: true},
		"no match":   {in: "Stream #0:0: Audio: pcm_s16le", wantErr: true},
		"multi line": {in: "Input #0, wav\n  Duration: 00:00:03.48, bitrate: 1411 kb/s\n", want: 3.48},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDiagnosticDuration(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("ParseDiagnosticDuration(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEstimateFromSize_Clamped(t *testing.T) {
	tests := []struct {
		size int64
		kind types.MediaKind
		want float64
	}{
		{size: 100, kind: types.KindAudio, want: 1},
		{size: 160_000, kind: types.KindAudio, want: 10},
		{size: 10_000_000, kind: types.KindAudio, want: 30},
		{size: 2_500_000, kind: types.KindVideo, want: 10},
	}
	for _, tc := range tests {
		if got := EstimateFromSize(tc.size, tc.kind); got != tc.want {
			t.Fatalf("EstimateFromSize(%d, %s) = %v, want %v", tc.size, tc.kind, got, tc.want)
		}
	}
}
