package transitions

import (
	"slices"
	"strings"
	"testing"

	"github.com/forPelevin/storycut/internal/types"
)

func TestResolve(t *testing.T) {
	tests := map[string]struct {
		want Style
		ok   bool
	}{
		"fade":       {want: Fade, ok: true},
		"FadeWhite":  {want: FadeWhite, ok: true},
		"desaturate": {want: Desaturate, ok: true},
		"slideleft":  {want: Fade, ok: true},
		"zoomin":     {want: Fade, ok: true},
		"sparkle":    {want: Fade, ok: false},
	}
	for in, tc := range tests {
		t.Run(in, func(t *testing.T) {
			got, ok := Resolve(in)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("Resolve(%q) = (%s, %v), want (%s, %v)", in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestStylesAreAcceptedByConfig(t *testing.T) {
	for _, s := range Styles {
		if !types.KnownTransition(string(s)) {
			t.Fatalf("style %q would be rejected by config validation", s)
		}
	}
}

func TestPicker_Modes(t *testing.T) {
	uniform := NewPicker(types.TransitionConfig{Mode: types.TransitionUniform, UniformType: "flash"})
	if got := uniform.Boundaries(4); !slices.Equal(got, []Style{Flash, Flash, Flash}) {
		t.Fatalf("uniform boundaries = %v", got)
	}

	custom := NewPicker(types.TransitionConfig{Mode: types.TransitionCustom, Custom: []string{"fadewhite", "desaturate"}})
	if got := custom.Boundaries(4); !slices.Equal(got, []Style{FadeWhite, Desaturate, FadeWhite}) {
		t.Fatalf("custom boundaries = %v", got)
	}

	cfg := types.TransitionConfig{Mode: types.TransitionRandom, Seed: 42}
	a := NewPicker(cfg).Boundaries(8)
	b := NewPicker(cfg).Boundaries(8)
	if !slices.Equal(a, b) {
		t.Fatalf("seeded random picks differ: %v vs %v", a, b)
	}
	for _, s := range a {
		if !slices.Contains(Styles, s) {
			t.Fatalf("random pick %q is not a known style", s)
		}
	}

	if got := uniform.Boundaries(1); got != nil {
		t.Fatalf("single shot should have no boundaries, got %v", got)
	}
}

func TestPlan_EdgesFadeOneSide(t *testing.T) {
	durs := []float64{4, 4, 0.6}
	fades := Plan(durs, []Style{Fade, FadeWhite}, 0.5)

	if fades[0].HasIn || !fades[0].HasOut {
		t.Fatalf("first shot must only fade out: %+v", fades[0])
	}
	if !fades[1].HasIn || !fades[1].HasOut || fades[1].In != Fade || fades[1].Out != FadeWhite {
		t.Fatalf("interior shot must fade both ways: %+v", fades[1])
	}
	if !fades[2].HasIn || fades[2].HasOut {
		t.Fatalf("last shot must only fade in: %+v", fades[2])
	}
	if fades[2].D != 0.5 {
		t.Fatalf("single-sided fade on 0.6s shot should keep 0.5s, got %v", fades[2].D)
	}

	short := Plan([]float64{3, 0.6, 3}, []Style{Fade, Fade}, 0.5)
	if short[1].D != 0.3 {
		t.Fatalf("interior fades must fit the shot, got %v", short[1].D)
	}
}

func TestFilter(t *testing.T) {
	both := ShotFade{In: Fade, Out: FadeWhite, HasIn: true, HasOut: true, D: 0.5}
	got := Filter(both, 4, 1)
	want := "fade=t=in:st=0.000:d=0.500,fade=t=out:st=3.500:d=0.500:color=white"
	if got != want {
		t.Fatalf("Filter = %q, want %q", got, want)
	}

	desat := Filter(ShotFade{In: Desaturate, HasIn: true, D: 0.5}, 4, 0.8)
	if desat != "hue=s='1-0.800*max(0,1-t/0.500)'" {
		t.Fatalf("desaturate filter = %q", desat)
	}

	flash := Filter(ShotFade{Out: Flash, HasOut: true, D: 1}, 5, 0.5)
	if !strings.HasPrefix(flash, "eq=brightness='0.300*max(0,(t-4.000)/1.000)'") {
		t.Fatalf("flash filter = %q", flash)
	}

	if got := Filter(ShotFade{D: 0.5}, 4, 1); got != "" {
		t.Fatalf("no fades should render empty, got %q", got)
	}
}
