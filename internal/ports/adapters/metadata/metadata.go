package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var ErrUnsupported = errors.New("metadata: unsupported container")

// Reader reads durations from container headers without spawning a process.
type Reader struct{}

func New() *Reader { return &Reader{} }

func (r *Reader) Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var d time.Duration
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4a", ".m4v", ".mov":
		d, err = mp4Duration(f)
	case ".wav":
		d, err = wavDuration(f)
	case ".mp3":
		d, err = mp3Duration(f)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("metadata: no duration in %s", filepath.Base(path))
	}
	return d, nil
}

func mp4Duration(f *os.File) (time.Duration, error) {
	info, err := mp4.Probe(f)
	if err != nil {
		return 0, fmt.Errorf("mp4 probe: %w", err)
	}
	if info.Timescale == 0 {
		return 0, errors.New("mp4 probe: zero timescale")
	}
	sec := float64(info.Duration) / float64(info.Timescale)
	return time.Duration(sec * float64(time.Second)), nil
}

func wavDuration(f *os.File) (time.Duration, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, errors.New("wav: invalid file")
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("wav duration: %w", err)
	}
	return d, nil
}

// go-mp3 decodes to 16-bit stereo, so one sample frame is four bytes.
func mp3Duration(f *os.File) (time.Duration, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("mp3 decoder: %w", err)
	}
	n := dec.Length()
	if n <= 0 || dec.SampleRate() <= 0 {
		return 0, errors.New("mp3: unknown length")
	}
	sec := float64(n) / float64(4*dec.SampleRate())
	return time.Duration(sec * float64(time.Second)), nil
}
