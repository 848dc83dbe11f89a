package pack

import (
	"encoding/json"
	"sort"
	"strings"
)

// NormalizeLabels canonicalizes a label list: whitespace is trimmed, empty
// entries are dropped, duplicates are collapsed case-insensitively keeping
// the last-seen spelling, and the result is sorted by case-folded value.
// The function is idempotent and never returns nil.
func NormalizeLabels(labels []string) []string {
	spelling := make(map[string]string)
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		spelling[strings.ToLower(trimmed)] = trimmed
	}

	out := make([]string, 0, len(spelling))
	for _, v := range spelling {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// LabelsEqual reports whether two label lists are equal after normalization.
func LabelsEqual(a, b []string) bool {
	na, nb := NormalizeLabels(a), NormalizeLabels(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

// NormalizeAnnotation trims an annotation; an absent note is the empty string.
func NormalizeAnnotation(s string) string {
	return strings.TrimSpace(s)
}

// AnnotationsEqual compares annotations post-normalization.
func AnnotationsEqual(a, b string) bool {
	return NormalizeAnnotation(a) == NormalizeAnnotation(b)
}

// CanonicalStrokes produces a deterministic serialization of a stroke list.
// Strokes are stable-sorted by id before encoding, so stroke order is not
// significant for equality (it remains significant for storage and replay).
func CanonicalStrokes(strokes []Stroke) string {
	sorted := make([]Stroke, len(strokes))
	copy(sorted, strokes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Marshal of a fixed struct layout is deterministic.
	data, err := json.Marshal(sorted)
	if err != nil {
		return ""
	}
	return string(data)
}

// StrokesEqual reports whether two stroke lists have matching canonical forms.
func StrokesEqual(a, b []Stroke) bool {
	return CanonicalStrokes(a) == CanonicalStrokes(b)
}
