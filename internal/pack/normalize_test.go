package pack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeLabels(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"empty", nil, []string{}},
		{"trims and drops empties", []string{" press ", "", "  "}, []string{"press"}},
		{"case-insensitive dedup keeps last spelling", []string{"Press", "press", " "}, []string{"press"}},
		{"sorted by folded value", []string{"Transition", "Existing", "High press"}, []string{"Existing", "High press", "Transition"}},
		{"union keeps imported spelling", []string{"Existing", "High press", "High press", "Transition"}, []string{"Existing", "High press", "Transition"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabels(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeLabels() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeLabels_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"Press", "press", " "},
		{"b", "a", "a ", "B"},
		{},
		{"Zonal marking", "counter", "COUNTER"},
	}

	for _, input := range inputs {
		once := NormalizeLabels(input)
		twice := NormalizeLabels(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("normalize not idempotent for %v (-once +twice):\n%s", input, diff)
		}
	}
}

func TestLabelsEqual(t *testing.T) {
	if !LabelsEqual([]string{"press", "counter"}, []string{"Counter ", "PRESS"}) {
		t.Error("lists equal after normalization reported unequal")
	}
	if LabelsEqual([]string{"press"}, []string{"press", "counter"}) {
		t.Error("different label sets reported equal")
	}
}

func TestNormalizeAnnotation(t *testing.T) {
	if got := NormalizeAnnotation("  note \n"); got != "note" {
		t.Errorf("NormalizeAnnotation() = %q, want %q", got, "note")
	}
	if !AnnotationsEqual("  note ", "note") {
		t.Error("annotations equal after trim reported unequal")
	}
	if !AnnotationsEqual("", "   ") {
		t.Error("absent and blank annotations should compare equal")
	}
}

func TestStrokesEqual_OrderInsensitive(t *testing.T) {
	a := []Stroke{
		{ID: "s2", Tool: ToolArrow, Color: "#fff", Width: 2, Points: []Point{{X: 0.1, Y: 0.2}}},
		{ID: "s1", Tool: ToolFreehand, Color: "#f00", Width: 3, Points: []Point{{X: 0.5, Y: 0.5}}},
	}
	b := []Stroke{a[1], a[0]}

	if !StrokesEqual(a, b) {
		t.Error("reordered stroke lists should compare equal")
	}

	changed := []Stroke{a[0], {ID: "s1", Tool: ToolFreehand, Color: "#f00", Width: 4, Points: a[1].Points}}
	if StrokesEqual(a, changed) {
		t.Error("stroke lists with differing width reported equal")
	}
}

func TestCanonicalStrokes_Deterministic(t *testing.T) {
	strokes := []Stroke{
		{ID: "b", Tool: ToolArrow, Color: "#000", Width: 1, Points: []Point{{X: 0, Y: 1}}},
		{ID: "a", Tool: ToolFreehand, Color: "#000", Width: 1, Points: []Point{}},
	}
	if CanonicalStrokes(strokes) != CanonicalStrokes(strokes) {
		t.Error("canonical serialization not stable across calls")
	}
}

func TestCapStrokes(t *testing.T) {
	strokes := make([]Stroke, MaxStrokesPerClip+10)
	for i := range strokes {
		strokes[i] = Stroke{ID: string(rune('a' + i%26))}
	}

	capped := CapStrokes(strokes)
	if len(capped) != MaxStrokesPerClip {
		t.Fatalf("len(capped) = %d, want %d", len(capped), MaxStrokesPerClip)
	}
	// Oldest dropped first: the tail survives.
	if capped[0].ID != strokes[10].ID {
		t.Error("cap should drop the oldest strokes")
	}
	if capped[len(capped)-1].ID != strokes[len(strokes)-1].ID {
		t.Error("cap should preserve the newest stroke")
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"0:45", 45},
		{"12:30", 750},
		{"1:02:03", 3723},
		{"garbage", 0},
		{"-1:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDuration(tt.input); got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}

	if got := FormatDuration(3723); got != "1:02:03" {
		t.Errorf("FormatDuration(3723) = %q, want 1:02:03", got)
	}
	if got := FormatDuration(750); got != "12:30" {
		t.Errorf("FormatDuration(750) = %q, want 12:30", got)
	}
	if got := TotalDuration([]Clip{{Duration: "0:30"}, {Duration: "0:45"}}); got != "1:15" {
		t.Errorf("TotalDuration() = %q, want 1:15", got)
	}
}
