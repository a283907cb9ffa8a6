//go:build !unix

package ffmpeg

import "os/exec"

func setProcessGroup(*exec.Cmd) {}
