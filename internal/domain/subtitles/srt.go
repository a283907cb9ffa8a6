package subtitles

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/storycut/internal/types"
)

// Cue is one caption on the composed timeline.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// BuildCues lays captions on a cursor that starts at zero and advances by every
// shot's duration, including shots without text.
func BuildCues(shots []types.SyncedShot) []Cue {
	var out []Cue
	var cursor time.Duration
	for _, s := range shots {
		d := dur(s.Duration)
		if text := sanitize(s.SubtitleText); text != "" {
			out = append(out, Cue{Start: cursor, End: cursor + d, Text: text})
		}
		cursor += d
	}
	return out
}

func HasText(shots []types.SyncedShot) bool {
	for _, s := range shots {
		if sanitize(s.SubtitleText) != "" {
			return true
		}
	}
	return false
}

func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for i, c := range cues {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(srtTime(c.Start))
		b.WriteString(" --> ")
		b.WriteString(srtTime(c.End))
		b.WriteString("\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, int(d/time.Millisecond))
}

// sanitize drops blank lines, which would end an SRT block early.
func sanitize(s string) string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
