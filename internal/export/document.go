// Package export turns the local working set into a shareable report pack
// document plus a bundle manifest describing how the pieces travel. Field
// names on the wire are camelCase because the documents are consumed by the
// web frontend and re-imported by other agents.
package export

import (
	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/reconcile"
)

// Document is the exported report pack. Its shape round-trips through the
// import parser unchanged.
type Document struct {
	Title         string                   `json:"title"`
	Notes         string                   `json:"notes"`
	Match         string                   `json:"match"`
	Owner         string                   `json:"owner"`
	TotalDuration string                   `json:"totalDuration"`
	ClipCount     int                      `json:"clipCount"`
	Clips         []pack.Clip              `json:"clips"`
	Labels        map[string][]string      `json:"labels"`
	Annotations   map[string]string        `json:"annotations"`
	Telestration  map[string][]pack.Stroke `json:"telestration"`
}

// Meta is the report header supplied by the caller at export time.
type Meta struct {
	Title string
	Notes string
	Match string
	Owner string
}

// BuildDocument assembles the export document from a working set snapshot.
// Auxiliary maps are filtered to queued clips so a document never carries
// notes for clips it does not contain.
func BuildDocument(meta Meta, ws reconcile.WorkingSet) *Document {
	doc := &Document{
		Title:         meta.Title,
		Notes:         meta.Notes,
		Match:         meta.Match,
		Owner:         meta.Owner,
		TotalDuration: pack.TotalDuration(ws.Queue),
		ClipCount:     len(ws.Queue),
		Clips:         make([]pack.Clip, len(ws.Queue)),
		Labels:        map[string][]string{},
		Annotations:   map[string]string{},
		Telestration:  map[string][]pack.Stroke{},
	}
	copy(doc.Clips, ws.Queue)
	// Nil slices would serialize as null and fail a re-import's shape guard.
	for i := range doc.Clips {
		if doc.Clips[i].Tags == nil {
			doc.Clips[i].Tags = []string{}
		}
		if doc.Clips[i].Overlays == nil {
			doc.Clips[i].Overlays = []pack.Overlay{}
		}
	}

	for _, c := range ws.Queue {
		if labels, ok := ws.Labels[c.ID]; ok {
			doc.Labels[c.ID] = labels
		}
		if note, ok := ws.Annotations[c.ID]; ok && note != "" {
			doc.Annotations[c.ID] = note
		}
		if strokes, ok := ws.Telestration[c.ID]; ok && len(strokes) > 0 {
			doc.Telestration[c.ID] = strokes
		}
	}
	return doc
}
