package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const maxStderrBytes = 64 * 1024

// ExecError is a failed toolchain invocation with the tail of its stderr.
type ExecError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d: %v", e.Tool, e.ExitCode, e.Err)
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		msg += "\n" + truncate(tail, 2048)
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// run executes bin in its own process group and returns the stderr tail.
func (a *Adapter) run(ctx context.Context, timeout time.Duration, bin string, args []string) ([]byte, error) {
	_, stderr, err := a.exec(ctx, timeout, bin, args, false)
	return stderr, err
}

func (a *Adapter) output(ctx context.Context, timeout time.Duration, bin string, args ...string) ([]byte, error) {
	stdout, _, err := a.exec(ctx, timeout, bin, args, true)
	return stdout, err
}

func (a *Adapter) exec(ctx context.Context, timeout time.Duration, bin string, args []string, wantStdout bool) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}
	if wantStdout {
		cmd.Stdout = &stdout
	}

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), nil
	}
	ee := &ExecError{Tool: bin, Args: args, ExitCode: -1, Stderr: stderr.String(), Err: err}
	if ctxErr := ctx.Err(); ctxErr != nil {
		ee.Err = ctxErr
		return nil, stderr.Bytes(), ee
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ee.ExitCode = exitErr.ExitCode()
	}
	return nil, stderr.Bytes(), ee
}

// limitedWriter keeps only the last limit bytes written.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
