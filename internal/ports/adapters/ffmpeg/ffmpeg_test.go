package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are unix-only")
	}
	p := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return p
}

func TestDiagnose_IgnoresExitStatus(t *testing.T) {
	bin := fakeTool(t, `echo "  Duration: 00:00:03.50, start: 0.000000, bitrate: 128 kb/s" >&2; exit 1`)
	a := New(bin, "", Options{})

	out, err := a.Diagnose(context.Background(), "in.wav")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if !strings.Contains(out, "Duration: 00:00:03.50") {
		t.Fatalf("unexpected diagnostics: %q", out)
	}
}

func TestRender_FailureCarriesStderr(t *testing.T) {
	bin := fakeTool(t, `echo "Invalid data found when processing input" >&2; exit 183`)
	var outcomes []bool
	a := New(bin, "", Options{OnRun: func(ok bool) { outcomes = append(outcomes, ok) }})

	err := a.Render(context.Background(), []string{"-i", "x.mp4", "out.mp4"})
	var ee *ExecError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExecError, got %v", err)
	}
	if ee.ExitCode != 183 {
		t.Fatalf("exit code = %d, want 183", ee.ExitCode)
	}
	if !strings.Contains(ee.Stderr, "Invalid data") {
		t.Fatalf("stderr tail missing: %q", ee.Stderr)
	}
	if len(outcomes) != 1 || outcomes[0] {
		t.Fatalf("unexpected run outcomes: %v", outcomes)
	}
}

func TestRender_TimeoutKillsProcess(t *testing.T) {
	bin := fakeTool(t, `sleep 30`)
	a := New(bin, "", Options{RenderTimeout: 200 * time.Millisecond})

	start := time.Now()
	err := a.Render(context.Background(), []string{"out.mp4"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("render was not killed promptly")
	}
}

func TestProbeDuration_ParsesSeconds(t *testing.T) {
	bin := fakeTool(t, `echo 3.250000`)
	a := New("", bin, Options{})

	d, err := a.ProbeDuration(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if d != 3250*time.Millisecond {
		t.Fatalf("duration = %s, want 3.25s", d)
	}
}

func TestProbeDuration_RejectsNA(t *testing.T) {
	bin := fakeTool(t, `echo N/A`)
	a := New("", bin, Options{})

	if _, err := a.ProbeDuration(context.Background(), "in.mp4"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDecodeDiagnostics(t *testing.T) {
	gb, err := simplifiedchinese.GB18030.NewEncoder().String("输入 Duration: 00:00:02.00")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	tests := map[string]struct {
		in     []byte
		locale string
		want   string
	}{
		"utf8":        {in: []byte("Duration: 00:00:01.00"), want: "Duration: 00:00:01.00"},
		"gb18030":     {in: []byte(gb), locale: "zh_CN.GB18030", want: "输入 Duration: 00:00:02.00"},
		"latin1 name": {in: []byte("caf\xe9 Duration: 00:00:04.00"), locale: "en_US.ISO-8859-1", want: "café Duration: 00:00:04.00"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("LC_ALL", tc.locale)
			if got := decodeDiagnostics(tc.in); got != tc.want {
				t.Fatalf("decodeDiagnostics = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLimitedWriterKeepsTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	lw.Write([]byte(" world, again"))
	if got := buf.String(); got != "rld, again" {
		t.Fatalf("tail = %q, want %q", got, "rld, again")
	}
}
