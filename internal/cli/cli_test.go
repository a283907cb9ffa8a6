package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestArgsValidation(t *testing.T) {
	dir := t.TempDir()
	emptyManifest := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(emptyManifest, []byte(`{"output":"out.mp4","shots":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	badField := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badField, []byte(`{"output":"out.mp4","clips":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := map[string]struct {
		args []string
		env  map[string]string
		want string
	}{
		"compose no args":       {args: []string{"compose"}, want: "accepts 1 arg(s), received 0"},
		"compose too many args": {args: []string{"compose", "a.json", "b.json"}, want: "accepts 1 arg(s), received 2"},
		"unknown flag":          {args: []string{"compose", "a.json", "--wat"}, want: "unknown flag: --wat"},
		"parallel non int":      {args: []string{"compose", "a.json", "--parallel", "nope"}, want: `invalid argument "nope" for "--parallel"`},
		"parallel zero":         {args: []string{"compose", "a.json", "--parallel", "0"}, want: "config: parallel must be >= 1"},
		"bad position":          {args: []string{"compose", "a.json", "--subtitle-position", "left"}, want: `unknown position "left"`},
		"env parallel zero":     {args: []string{"compose", "a.json"}, env: map[string]string{"STORYCUT_PARALLEL": "0"}, want: "parallel must be >= 1"},
		"missing manifest":      {args: []string{"compose", filepath.Join(dir, "nope.json")}, want: "open manifest"},
		"manifest unknown key":  {args: []string{"compose", badField}, want: `unknown field "clips"`},
		"manifest no shots":     {args: []string{"compose", emptyManifest}, want: "config: no shots"},
		"probe no args":         {args: []string{"probe"}, want: "requires at least 1 arg(s)"},
		"check extra args":      {args: []string{"check", "x"}, want: `unknown command "x"`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			out, err := execRoot(t, tc.args...)
			if err == nil {
				t.Fatalf("expected error\noutput:\n%s", out)
			}
			if !strings.Contains(err.Error()+out, tc.want) {
				t.Fatalf("expected %q in error %q\noutput:\n%s", tc.want, err, out)
			}
		})
	}
}

func TestProbe_FallsBackWithoutTools(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(junk, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.wav")

	out, err := execRoot(t, "probe", junk, missing,
		"--ffmpeg", filepath.Join(dir, "no-ffmpeg"),
		"--ffprobe", filepath.Join(dir, "no-ffprobe"),
		"--log-level", "error")
	if err != nil {
		t.Fatalf("probe: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got:\n%s", out)
	}
	for i, want := range []string{"video  1.000  filesize", "audio  5.000  fallback"} {
		if !strings.Contains(strings.Join(strings.Fields(lines[i+1]), "  "), want) {
			t.Fatalf("row %d: expected %q, got %q", i+1, want, lines[i+1])
		}
	}
}
