package ffmpeg

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// decodeDiagnostics turns raw tool output into text. Diagnostics may embed file
// names in the host's legacy encoding, so UTF-8 is tried first, then the
// locale's likely encodings, then a lossy decode that never fails.
func decodeDiagnostics(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	for _, enc := range localEncodings(locale()) {
		s, err := enc.NewDecoder().Bytes(b)
		if err == nil && utf8.Valid(s) && !bytes.ContainsRune(s, utf8.RuneError) {
			return string(s)
		}
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func locale() string {
	for _, k := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(k); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

func localEncodings(loc string) []encoding.Encoding {
	var encs []encoding.Encoding
	switch {
	case strings.HasPrefix(loc, "zh"), strings.Contains(loc, "gb"):
		encs = append(encs, simplifiedchinese.GB18030)
	case strings.HasPrefix(loc, "ja"):
		encs = append(encs, japanese.ShiftJIS)
	case strings.HasPrefix(loc, "ko"):
		encs = append(encs, korean.EUCKR)
	case strings.HasPrefix(loc, "ru"), strings.HasPrefix(loc, "uk"):
		encs = append(encs, charmap.Windows1251)
	}
	return append(encs, charmap.Windows1252)
}
