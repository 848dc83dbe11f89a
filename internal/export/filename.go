package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// reportBaseName derives the bundle file base name from a report title. Runs
// of disallowed runes collapse into a single underscore, leading and trailing
// separators are trimmed, and the result is capped at maxBaseNameLen runes.
// An empty result means the caller falls back to a default name.
func reportBaseName(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range title {
		if isFilenameRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteRune('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	name := strings.Trim(b.String(), "._-")
	if runes := []rune(name); len(runes) > maxBaseNameLen {
		name = strings.Trim(string(runes[:maxBaseNameLen]), "._-")
	}
	return name
}

func isFilenameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '-', '_', '.', '(', ')':
		return true
	}
	return false
}

// ValidateOutputDir checks that dir names an existing directory as a clean
// path with no traversal segments. Bundles are written only into directories
// the caller named outright.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("export directory is required")
	}
	for _, seg := range strings.Split(filepath.ToSlash(dir), "/") {
		if seg == ".." {
			return fmt.Errorf("export directory cannot contain path traversal")
		}
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("export directory must be a clean path")
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("export directory does not exist")
	case err != nil:
		return fmt.Errorf("checking export directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("export path is not a directory")
	}
	return nil
}
