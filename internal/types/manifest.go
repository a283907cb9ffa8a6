package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

// DecodeManifest reads a JSON manifest, rejecting unknown fields. The
// manifest's "config" object is overlaid on base, so it only needs the
// fields it changes; the returned Config is never nil.
func DecodeManifest(r io.Reader, base CompositionConfig) (Manifest, error) {
	var raw struct {
		Output string          `json:"output"`
		Shots  []Shot          `json:"shots"`
		Config json.RawMessage `json:"config,omitempty"`
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}

	cfg := base
	cfg.Transition.Custom = append([]string(nil), base.Transition.Custom...)
	if len(raw.Config) > 0 && !bytes.Equal(raw.Config, []byte("null")) {
		cd := json.NewDecoder(bytes.NewReader(raw.Config))
		cd.DisallowUnknownFields()
		if err := cd.Decode(&cfg); err != nil {
			return Manifest{}, fmt.Errorf("decode manifest config: %w", err)
		}
	}
	return Manifest{Output: raw.Output, Shots: raw.Shots, Config: &cfg}, nil
}

// Resolve makes relative media and output paths relative to base.
func (m Manifest) Resolve(base string) Manifest {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	out := m
	out.Output = abs(m.Output)
	out.Shots = make([]Shot, len(m.Shots))
	for i, s := range m.Shots {
		s.VideoPath = abs(s.VideoPath)
		s.AudioPath = abs(s.AudioPath)
		out.Shots[i] = s
	}
	if m.Config != nil {
		c := *m.Config
		c.Music.Path = abs(c.Music.Path)
		out.Config = &c
	}
	return out
}
