package usecase

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/domain/encode"
	"github.com/forPelevin/storycut/internal/domain/syncplan"
	"github.com/forPelevin/storycut/internal/ports"
	"github.com/forPelevin/storycut/internal/types"
)

type Deps struct {
	Media   ports.MediaTool
	Probe   ports.DurationProber
	Log     *zap.Logger
	Metrics ports.StageObserver

	// Parallel bounds concurrent per-shot renders; values below 1 mean sequential.
	Parallel int
	// Gain is the narration volume multiplier applied while syncing.
	Gain    float64
	Profile encode.Profile
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Gain <= 0 {
		d.Gain = syncplan.DefaultGain
	}
	if d.Profile.FPS == 0 {
		d.Profile = encode.Default()
	}
	if d.Parallel < 1 {
		d.Parallel = 1
	}
	return Usecase{d: d}
}

// Workspace hands out job-private artifact paths.
type Workspace interface {
	Path(name string) string
}

type Job struct {
	ID        string
	Shots     []types.Shot
	Config    types.CompositionConfig
	Workspace Workspace
	Output    string
	// OnState, when set, is called on every state transition.
	OnState func(types.JobState)
}

var ErrUnreadable = errors.New("neither video nor audio is readable")

// SyncError fails the whole job: a shot could not be forced onto its narration.
type SyncError struct {
	Index  int
	ShotID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync shot %d (%s): %v", e.Index, e.ShotID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// ConcatError fails the whole job: the synced shots could not be joined.
type ConcatError struct{ Err error }

func (e *ConcatError) Error() string { return "concatenate: " + e.Err.Error() }

func (e *ConcatError) Unwrap() error { return e.Err }

// Degradable is the result of a stage that falls back to its input on failure.
type Degradable struct {
	Artifact string
	Degraded bool
	Err      error
}

func (u Usecase) observe(stage types.JobState, err error, start time.Time) {
	if u.d.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	u.d.Metrics.ObserveStage(stage, outcome, time.Since(start))
}

func readable(path string) bool {
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	fi, err := f.Stat()
	return err == nil && !fi.IsDir()
}

func writeFile(path string, b []byte) error {
	return os.WriteFile(path, b, 0o644)
}
