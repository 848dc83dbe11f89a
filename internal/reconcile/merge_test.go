package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/afmlabs/afm-agent/internal/pack"
)

func TestBuildWriteSet_PolicyMix(t *testing.T) {
	d := PackDiff{
		NewClipIDs:         []string{"c3"},
		OverlappingClipIDs: []string{"c1", "c2"},
	}
	dec := Decision{
		Strategy:            StrategyAppend,
		OverlapLabels:       LabelsMerge,
		OverlapAnnotations:  OverlapKeep,
		OverlapTelestration: OverlapReplace,
	}
	p := &pack.ReportPack{
		Labels: map[string][]string{
			"c1": {"High press", "Transition"},
			"c3": {"Set piece"},
		},
		Annotations: map[string]string{
			"c1": "imported note",
			"c3": "new clip note",
		},
		Telestration: map[string][]pack.Stroke{
			"c2": {{ID: "s9", Tool: pack.ToolArrow, Color: "#0f0", Width: 2, Points: []pack.Point{{X: 0.3, Y: 0.3}}}},
		},
	}
	currentLabels := map[string][]string{
		"c1": {"Existing", "High press"},
	}

	ws := BuildWriteSet(d, dec, p, currentLabels)

	if diff := cmp.Diff([]string{"Existing", "High press", "Transition"}, ws.NextLabels["c1"]); diff != "" {
		t.Errorf("merged labels for c1 (-want +got):\n%s", diff)
	}

	for _, id := range ws.AnnotationIDs {
		if id == "c1" || id == "c2" {
			t.Errorf("annotation id %s present despite keep policy", id)
		}
	}
	if diff := cmp.Diff([]string{"c3"}, ws.AnnotationIDs); diff != "" {
		t.Errorf("AnnotationIDs (-want +got):\n%s", diff)
	}
	if ws.NextAnnotations["c3"] != "new clip note" {
		t.Errorf("new clip annotation = %q", ws.NextAnnotations["c3"])
	}

	if diff := cmp.Diff([]string{"c3", "c1", "c2"}, ws.TelestrationIDs); diff != "" {
		t.Errorf("TelestrationIDs (-want +got):\n%s", diff)
	}
	if len(ws.NextTelestration["c2"]) != 1 {
		t.Errorf("c2 telestration should adopt imported strokes")
	}
}

func TestBuildWriteSet_NewClipsAdoptVerbatim(t *testing.T) {
	d := PackDiff{NewClipIDs: []string{"n1"}}
	dec := Decision{
		Strategy:            StrategyAppend,
		OverlapLabels:       LabelsKeep,
		OverlapAnnotations:  OverlapKeep,
		OverlapTelestration: OverlapKeep,
	}
	p := &pack.ReportPack{
		Labels:       map[string][]string{"n1": {"Zonal", "zonal"}},
		Annotations:  map[string]string{},
		Telestration: map[string][]pack.Stroke{},
	}

	ws := BuildWriteSet(d, dec, p, nil)

	// Verbatim adoption: no normalization applied for never-before-seen clips.
	if diff := cmp.Diff([]string{"Zonal", "zonal"}, ws.NextLabels["n1"]); diff != "" {
		t.Errorf("new clip labels (-want +got):\n%s", diff)
	}
	if ws.NextAnnotations["n1"] != "" {
		t.Errorf("missing imported annotation should default to empty")
	}
}

func TestBuildWriteSet_ReplaceLabels(t *testing.T) {
	d := PackDiff{OverlappingClipIDs: []string{"c1"}}
	dec := Decision{
		Strategy:            StrategyReplace,
		OverlapLabels:       LabelsReplace,
		OverlapAnnotations:  OverlapReplace,
		OverlapTelestration: OverlapKeep,
	}
	p := &pack.ReportPack{
		Labels:      map[string][]string{"c1": {"Imported"}},
		Annotations: map[string]string{"c1": "imported"},
	}

	ws := BuildWriteSet(d, dec, p, map[string][]string{"c1": {"Local"}})

	if diff := cmp.Diff([]string{"Imported"}, ws.NextLabels["c1"]); diff != "" {
		t.Errorf("replaced labels (-want +got):\n%s", diff)
	}
	if ws.NextAnnotations["c1"] != "imported" {
		t.Errorf("replaced annotation = %q", ws.NextAnnotations["c1"])
	}
	if len(ws.TelestrationIDs) != 0 {
		t.Errorf("telestration keep policy leaked ids: %v", ws.TelestrationIDs)
	}
}

func TestBuildWriteSet_DoesNotMutateInputs(t *testing.T) {
	currentLabels := map[string][]string{"c1": {"Local"}}
	p := &pack.ReportPack{Labels: map[string][]string{"c1": {"Imported"}}}
	d := PackDiff{OverlappingClipIDs: []string{"c1"}}
	dec := Decision{Strategy: StrategyAppend, OverlapLabels: LabelsMerge, OverlapAnnotations: OverlapKeep, OverlapTelestration: OverlapKeep}

	BuildWriteSet(d, dec, p, currentLabels)

	if diff := cmp.Diff([]string{"Local"}, currentLabels["c1"]); diff != "" {
		t.Errorf("currentLabels mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Imported"}, p.Labels["c1"]); diff != "" {
		t.Errorf("pack labels mutated (-want +got):\n%s", diff)
	}
}

func TestBuildPostImportQueueIDs(t *testing.T) {
	imported := []pack.Clip{{ID: "b"}, {ID: "c"}, {ID: "d"}}

	appendIDs := BuildPostImportQueueIDs([]string{"a", "b"}, imported, StrategyAppend)
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, appendIDs); diff != "" {
		t.Errorf("append queue ids (-want +got):\n%s", diff)
	}

	replaceIDs := BuildPostImportQueueIDs([]string{"a", "b"}, imported, StrategyReplace)
	if diff := cmp.Diff([]string{"b", "c", "d"}, replaceIDs); diff != "" {
		t.Errorf("replace queue ids (-want +got):\n%s", diff)
	}
}

func TestMaterializeQueue_AppendKeepsExistingRecords(t *testing.T) {
	existing := []pack.Clip{{ID: "a", Title: "local a"}, {ID: "b", Title: "local b"}}
	p := &pack.ReportPack{Clips: []pack.Clip{{ID: "b", Title: "imported b"}, {ID: "c", Title: "imported c"}}}

	queue := MaterializeQueue(existing, p, StrategyAppend)

	if len(queue) != 3 {
		t.Fatalf("len(queue) = %d, want 3", len(queue))
	}
	if queue[1].Title != "local b" {
		t.Errorf("append must not replace the existing record for b, got %q", queue[1].Title)
	}
	if queue[2].Title != "imported c" {
		t.Errorf("appended clip record = %q", queue[2].Title)
	}
}

func TestMaterializeQueue_ReplaceAdoptsImported(t *testing.T) {
	existing := []pack.Clip{{ID: "a", Title: "local a"}}
	p := &pack.ReportPack{Clips: []pack.Clip{{ID: "b", Title: "imported b"}}}

	queue := MaterializeQueue(existing, p, StrategyReplace)

	if len(queue) != 1 || queue[0].ID != "b" {
		t.Errorf("replace queue = %+v, want imported order", queue)
	}
}

func TestDecision_Validate(t *testing.T) {
	valid := Decision{Strategy: StrategyAppend, OverlapLabels: LabelsMerge, OverlapAnnotations: OverlapKeep, OverlapTelestration: OverlapReplace}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	invalid := []Decision{
		{Strategy: "upsert", OverlapLabels: LabelsMerge, OverlapAnnotations: OverlapKeep, OverlapTelestration: OverlapKeep},
		{Strategy: StrategyAppend, OverlapLabels: "union", OverlapAnnotations: OverlapKeep, OverlapTelestration: OverlapKeep},
		{Strategy: StrategyAppend, OverlapLabels: LabelsMerge, OverlapAnnotations: "merge", OverlapTelestration: OverlapKeep},
		{Strategy: StrategyAppend, OverlapLabels: LabelsMerge, OverlapAnnotations: OverlapKeep, OverlapTelestration: ""},
	}
	for i, dec := range invalid {
		if err := dec.Validate(); err == nil {
			t.Errorf("Validate() case %d should fail: %+v", i, dec)
		}
	}
}
