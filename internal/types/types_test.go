package types

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCompositionConfigValidate(t *testing.T) {
	if err := DefaultCompositionConfig().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	tests := map[string]func(c *CompositionConfig){
		"unknown mode":     func(c *CompositionConfig) { c.Transition.Mode = "chaos" },
		"zero duration":    func(c *CompositionConfig) { c.Transition.Enabled = true; c.Transition.Duration = 0 },
		"intensity":        func(c *CompositionConfig) { c.Transition.Intensity = 2 },
		"empty custom":     func(c *CompositionConfig) { c.Transition.Enabled = true; c.Transition.Mode = TransitionCustom },
		"position":         func(c *CompositionConfig) { c.Subtitle.Position = "left" },
		"font size":        func(c *CompositionConfig) { c.Subtitle.FontSize = 0 },
		"outline colour":   func(c *CompositionConfig) { c.Subtitle.OutlineColor = "#12345" },
		"negative outline": func(c *CompositionConfig) { c.Subtitle.OutlineSize = -1 },
		"music volume":     func(c *CompositionConfig) { c.Music.Volume = -0.1 },
		"uniform typo":     func(c *CompositionConfig) { c.Transition.UniformType = "fdae" },
		"custom typo":      func(c *CompositionConfig) { c.Transition.Custom = []string{"fade", "slidelfet", "spin"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := DefaultCompositionConfig()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestKnownTransition(t *testing.T) {
	tests := map[string]bool{
		"fade":       true,
		" FadeWhite": true,
		"slideleft":  true,
		"wipeup":     true,
		"dissolve":   true,
		"fdae":       false,
		"spin":       false,
		"":           false,
	}
	for name, want := range tests {
		if got := KnownTransition(name); got != want {
			t.Fatalf("KnownTransition(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDecodeManifest(t *testing.T) {
	in := `{
  "output": "final.mp4",
  "shots": [
    {"id": "1", "video": "clips/1.mp4", "audio": "voice/1.wav", "subtitle": "Once upon a time"},
    {"id": "2", "video": "/abs/2.mp4", "audio": "voice/2.wav"}
  ],
  "config": {"music": {"path": "bgm.mp3", "volume": 0.2}}
}`
	m, err := DecodeManifest(strings.NewReader(in), DefaultCompositionConfig())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	r := m.Resolve("/jobs/a")
	if r.Output != filepath.Join("/jobs/a", "final.mp4") {
		t.Fatalf("output = %q", r.Output)
	}
	if r.Shots[0].VideoPath != filepath.Join("/jobs/a", "clips/1.mp4") || r.Shots[1].VideoPath != "/abs/2.mp4" {
		t.Fatalf("shots = %+v", r.Shots)
	}
	if r.Config.Music.Path != filepath.Join("/jobs/a", "bgm.mp3") {
		t.Fatalf("music path = %q", r.Config.Music.Path)
	}
	if r.Config.Music.Volume != 0.2 || !r.Config.Music.Loop || r.Config.Subtitle.FontSize != 24 {
		t.Fatalf("config overlay lost defaults: %+v", r.Config)
	}
	if err := r.Config.Validate(); err != nil {
		t.Fatalf("overlaid config should validate: %v", err)
	}
	if m.Shots[0].VideoPath != "clips/1.mp4" {
		t.Fatalf("Resolve must not modify the receiver")
	}
}

func TestDecodeManifest_UnknownField(t *testing.T) {
	if _, err := DecodeManifest(strings.NewReader(`{"output":"a.mp4","clips":[]}`), DefaultCompositionConfig()); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := DecodeManifest(strings.NewReader(`{"output":"a.mp4","config":{"musik":{}}}`), DefaultCompositionConfig()); err == nil {
		t.Fatalf("expected unknown config field error")
	}
}

func TestManifestValidate(t *testing.T) {
	tests := map[string]Manifest{
		"no output": {Shots: []Shot{{VideoPath: "a", AudioPath: "b"}}},
		"no shots":  {Output: "o.mp4"},
		"no video":  {Output: "o.mp4", Shots: []Shot{{AudioPath: "b"}}},
	}
	for name, m := range tests {
		t.Run(name, func(t *testing.T) {
			if err := m.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
