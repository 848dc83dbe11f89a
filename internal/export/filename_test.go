package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportBaseName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "Matchday 12", "Matchday_12"},
		{"punctuation collapses", "Bad/Name: <pressing>", "Bad_Name_pressing"},
		{"control chars collapse", "half\ttime\nreview", "half_time_review"},
		{"unicode letters kept", "Análisis táctico", "Análisis_táctico"},
		{"edge separators trimmed", "  ..Matchday 12..  ", "Matchday_12"},
		{"kept punctuation", "4-4-2 (v2).final", "4-4-2_(v2).final"},
		{"empty title", "", ""},
		{"nothing usable", "/:<>?*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reportBaseName(tt.title); got != tt.want {
				t.Errorf("reportBaseName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestReportBaseName_CapsLength(t *testing.T) {
	got := reportBaseName(strings.Repeat("a", maxBaseNameLen+20))
	if len([]rune(got)) != maxBaseNameLen {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxBaseNameLen)
	}

	// Truncation must not leave a dangling separator.
	title := strings.Repeat("a", maxBaseNameLen-1) + ".tail"
	if got := reportBaseName(title); strings.HasSuffix(got, ".") {
		t.Errorf("truncated name ends with a separator: %q", got)
	}
}

func TestValidateOutputDir(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "bundle.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{"existing directory", tmp, false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"relative traversal", filepath.Join("..", "outside"), true},
		{"cleanable traversal", tmp + "/../" + filepath.Base(tmp), true},
		{"unclean path", tmp + "/.", true},
		{"missing directory", filepath.Join(tmp, "missing"), true},
		{"regular file", file, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}
