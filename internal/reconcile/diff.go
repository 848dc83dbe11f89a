// Package reconcile computes the relationship between the local working set
// and an imported report pack, and turns a user's merge decision into a
// concrete write-set. Everything here is pure: no storage, no mutation of
// inputs.
package reconcile

import (
	"sort"

	"github.com/afmlabs/afm-agent/internal/pack"
)

// WorkingSet is a value snapshot of the user's local state.
type WorkingSet struct {
	Queue        []pack.Clip
	Labels       map[string][]string
	Annotations  map[string]string
	Telestration map[string][]pack.Stroke
}

// QueueIDs returns the queue's clip ids in order.
func (w WorkingSet) QueueIDs() []string {
	ids := make([]string, len(w.Queue))
	for i, c := range w.Queue {
		ids[i] = c.ID
	}
	return ids
}

// PackDiff relates an imported pack to the current working set. All id lists
// are sorted lexicographically so results are deterministic.
type PackDiff struct {
	CurrentClipCount       int      `json:"current_clip_count"`
	ImportedClipCount      int      `json:"imported_clip_count"`
	NewClipIDs             []string `json:"new_clip_ids"`
	OverlappingClipIDs     []string `json:"overlapping_clip_ids"`
	RemovedClipIDs         []string `json:"removed_clip_ids"`
	OverlapNotesChangedIDs []string `json:"overlap_notes_changed_ids"`
}

// Diff computes the three-way id relationship plus, for overlapping clips,
// whether any auxiliary record actually changed under canonical comparison.
func Diff(ws WorkingSet, p *pack.ReportPack) PackDiff {
	current := make(map[string]bool, len(ws.Queue))
	for _, c := range ws.Queue {
		current[c.ID] = true
	}
	imported := make(map[string]bool, len(p.Clips))
	for _, c := range p.Clips {
		imported[c.ID] = true
	}

	d := PackDiff{
		CurrentClipCount:       len(ws.Queue),
		ImportedClipCount:      len(p.Clips),
		NewClipIDs:             []string{},
		OverlappingClipIDs:     []string{},
		RemovedClipIDs:         []string{},
		OverlapNotesChangedIDs: []string{},
	}

	for id := range imported {
		if current[id] {
			d.OverlappingClipIDs = append(d.OverlappingClipIDs, id)
		} else {
			d.NewClipIDs = append(d.NewClipIDs, id)
		}
	}
	for id := range current {
		if !imported[id] {
			d.RemovedClipIDs = append(d.RemovedClipIDs, id)
		}
	}

	for _, id := range d.OverlappingClipIDs {
		if notesChanged(ws, p, id) {
			d.OverlapNotesChangedIDs = append(d.OverlapNotesChangedIDs, id)
		}
	}

	sort.Strings(d.NewClipIDs)
	sort.Strings(d.OverlappingClipIDs)
	sort.Strings(d.RemovedClipIDs)
	sort.Strings(d.OverlapNotesChangedIDs)
	return d
}

// notesChanged reports whether any of the clip's labels, annotation or
// telestration differ between the working set and the pack. Only the fact of
// a change is preserved, not which field changed.
func notesChanged(ws WorkingSet, p *pack.ReportPack, id string) bool {
	if !pack.LabelsEqual(ws.Labels[id], p.Labels[id]) {
		return true
	}
	if !pack.AnnotationsEqual(ws.Annotations[id], p.Annotations[id]) {
		return true
	}
	return !pack.StrokesEqual(ws.Telestration[id], p.Telestration[id])
}
