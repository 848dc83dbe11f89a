package pack

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration reads a "mm:ss" or "hh:mm:ss" clip duration and returns its
// length in seconds. Malformed values yield 0.
func ParseDuration(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FormatDuration renders seconds as "mm:ss", or "hh:mm:ss" beyond an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TotalDuration sums the durations of clips and formats the result.
func TotalDuration(clips []Clip) string {
	total := 0
	for _, c := range clips {
		total += ParseDuration(c.Duration)
	}
	return FormatDuration(total)
}
