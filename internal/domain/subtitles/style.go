package subtitles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forPelevin/storycut/internal/types"
)

// ForceStyle renders the libass override string for the subtitles filter.
func ForceStyle(s types.SubtitleStyle) string {
	return strings.Join([]string{
		fmt.Sprintf("FontSize=%d", s.FontSize),
		"PrimaryColour=" + ASSColour(s.FontColor),
		"OutlineColour=" + ASSColour(s.OutlineColor),
		"BorderStyle=1",
		fmt.Sprintf("Outline=%d", s.OutlineSize),
		fmt.Sprintf("Alignment=%d", alignment(s.Position)),
		"MarginV=30",
	}, ",")
}

// ASSColour converts #RRGGBB into libass &H00BBGGRR. Malformed input maps to white.
func ASSColour(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return "&H00FFFFFF"
	}
	h = strings.ToUpper(h)
	return "&H00" + h[4:6] + h[2:4] + h[0:2]
}

// numpad layout: 2 bottom centre, 5 middle centre, 8 top centre.
func alignment(p types.SubtitlePosition) int {
	switch p {
	case types.PositionTop:
		return 8
	case types.PositionMiddle:
		return 5
	default:
		return 2
	}
}

// EscapeFilterPath prepares a path for use inside a quoted filter option.
// The filter graph unquotes once and the option parser unescapes once more,
// so ':' and '\' carry one backslash and a quote closes, escapes and reopens.
func EscapeFilterPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, ":", `\:`)
	p = strings.ReplaceAll(p, "'", `'\\\''`)
	return p
}

// Filter is the complete -vf value for burning srtPath with style.
func Filter(srtPath string, s types.SubtitleStyle) string {
	return fmt.Sprintf("subtitles=filename='%s':force_style='%s'", EscapeFilterPath(srtPath), ForceStyle(s))
}
