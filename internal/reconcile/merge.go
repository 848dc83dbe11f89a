package reconcile

import (
	"fmt"

	"github.com/afmlabs/afm-agent/internal/pack"
)

type Strategy string

const (
	StrategyReplace Strategy = "replace"
	StrategyAppend  Strategy = "append"
)

type LabelPolicy string

const (
	LabelsMerge   LabelPolicy = "merge"
	LabelsReplace LabelPolicy = "replace"
	LabelsKeep    LabelPolicy = "keep"
)

type OverlapPolicy string

const (
	OverlapReplace OverlapPolicy = "replace"
	OverlapKeep    OverlapPolicy = "keep"
)

// Decision is the user's merge policy for one import: how the queue is
// materialized, and per auxiliary store how overlapping clips are handled.
type Decision struct {
	Strategy            Strategy      `json:"strategy"`
	OverlapLabels       LabelPolicy   `json:"overlap_labels"`
	OverlapAnnotations  OverlapPolicy `json:"overlap_annotations"`
	OverlapTelestration OverlapPolicy `json:"overlap_telestration"`
}

func (d Decision) Validate() error {
	switch d.Strategy {
	case StrategyReplace, StrategyAppend:
	default:
		return fmt.Errorf("unknown import strategy %q", d.Strategy)
	}
	switch d.OverlapLabels {
	case LabelsMerge, LabelsReplace, LabelsKeep:
	default:
		return fmt.Errorf("unknown label policy %q", d.OverlapLabels)
	}
	switch d.OverlapAnnotations {
	case OverlapReplace, OverlapKeep:
	default:
		return fmt.Errorf("unknown annotation policy %q", d.OverlapAnnotations)
	}
	switch d.OverlapTelestration {
	case OverlapReplace, OverlapKeep:
	default:
		return fmt.Errorf("unknown telestration policy %q", d.OverlapTelestration)
	}
	return nil
}

// WriteSet is the concrete result of applying a decision to a diff: for each
// auxiliary store, the ids to write and their replacement values. Ids under a
// "keep" policy are excluded entirely.
type WriteSet struct {
	LabelIDs         []string
	NextLabels       map[string][]string
	AnnotationIDs    []string
	NextAnnotations  map[string]string
	TelestrationIDs  []string
	NextTelestration map[string][]pack.Stroke
}

// BuildWriteSet computes the auxiliary writes for an import. New clips adopt
// the imported values verbatim; overlapping clips are gated per store by the
// decision. Inputs are never mutated.
func BuildWriteSet(d PackDiff, dec Decision, p *pack.ReportPack, currentLabels map[string][]string) WriteSet {
	ws := WriteSet{
		LabelIDs:         []string{},
		NextLabels:       map[string][]string{},
		AnnotationIDs:    []string{},
		NextAnnotations:  map[string]string{},
		TelestrationIDs:  []string{},
		NextTelestration: map[string][]pack.Stroke{},
	}

	for _, id := range d.NewClipIDs {
		ws.LabelIDs = append(ws.LabelIDs, id)
		ws.NextLabels[id] = copyLabels(p.Labels[id])
		ws.AnnotationIDs = append(ws.AnnotationIDs, id)
		ws.NextAnnotations[id] = p.Annotations[id]
		ws.TelestrationIDs = append(ws.TelestrationIDs, id)
		ws.NextTelestration[id] = copyStrokes(p.Telestration[id])
	}

	for _, id := range d.OverlappingClipIDs {
		switch dec.OverlapLabels {
		case LabelsMerge:
			merged := append(copyLabels(currentLabels[id]), p.Labels[id]...)
			ws.LabelIDs = append(ws.LabelIDs, id)
			ws.NextLabels[id] = pack.NormalizeLabels(merged)
		case LabelsReplace:
			ws.LabelIDs = append(ws.LabelIDs, id)
			ws.NextLabels[id] = copyLabels(p.Labels[id])
		case LabelsKeep:
		}

		if dec.OverlapAnnotations == OverlapReplace {
			ws.AnnotationIDs = append(ws.AnnotationIDs, id)
			ws.NextAnnotations[id] = p.Annotations[id]
		}

		if dec.OverlapTelestration == OverlapReplace {
			ws.TelestrationIDs = append(ws.TelestrationIDs, id)
			ws.NextTelestration[id] = copyStrokes(p.Telestration[id])
		}
	}

	return ws
}

// BuildPostImportQueueIDs materializes the queue identity an import produces:
// replace yields exactly the imported order, append keeps the existing order
// and adds imported ids not already present, first-seen order, deduplicated.
func BuildPostImportQueueIDs(previousQueueIDs []string, imported []pack.Clip, strategy Strategy) []string {
	if strategy == StrategyReplace {
		out := make([]string, 0, len(imported))
		seen := make(map[string]bool, len(imported))
		for _, c := range imported {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c.ID)
		}
		return out
	}

	out := make([]string, 0, len(previousQueueIDs)+len(imported))
	seen := make(map[string]bool, len(previousQueueIDs))
	for _, id := range previousQueueIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, c := range imported {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c.ID)
	}
	return out
}

// MaterializeQueue builds the post-import clip queue. Replace adopts the
// imported records wholesale; append leaves existing records untouched and
// appends imported clips whose id is not already queued.
func MaterializeQueue(existing []pack.Clip, p *pack.ReportPack, strategy Strategy) []pack.Clip {
	if strategy == StrategyReplace {
		out := make([]pack.Clip, len(p.Clips))
		copy(out, p.Clips)
		return out
	}

	out := make([]pack.Clip, len(existing), len(existing)+len(p.Clips))
	copy(out, existing)
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.ID] = true
	}
	for _, c := range p.Clips {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

func copyLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

func copyStrokes(strokes []pack.Stroke) []pack.Stroke {
	out := make([]pack.Stroke, len(strokes))
	copy(out, strokes)
	return out
}
