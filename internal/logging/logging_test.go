package logging

import "testing"

func TestNew(t *testing.T) {
	tests := map[string]struct {
		level, format string
		wantErr       bool
	}{
		"defaults":     {},
		"debug json":   {level: "debug", format: "json"},
		"warn console": {level: "warn", format: "console"},
		"bad level":    {level: "loud", wantErr: true},
		"bad format":   {format: "xml", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			log, err := New(tc.level, tc.format)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			_ = log.Sync()
		})
	}
}
