package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/reconcile"
	"github.com/afmlabs/afm-agent/internal/store"
)

// Workspace is the guarded view over the persisted working set. Every read
// goes through a shape guard and falls back to a safe default when the stored
// value is absent, unreadable or malformed. Writes log failures at debug and
// otherwise proceed, so a broken store degrades the session instead of
// crashing it.
type Workspace struct {
	store  store.Store
	logger *slog.Logger
}

func NewWorkspace(s store.Store, logger *slog.Logger) *Workspace {
	return &Workspace{store: s, logger: logger}
}

func (w *Workspace) readRaw(ctx context.Context, key string) (string, bool) {
	raw, ok, err := w.store.Get(ctx, key)
	if err != nil {
		if w.logger != nil {
			w.logger.Debug("state read failed", "key", key, "error", err)
		}
		return "", false
	}
	return raw, ok
}

func (w *Workspace) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		if w.logger != nil {
			w.logger.Debug("state marshal failed", "key", key, "error", err)
		}
		return
	}
	if err := w.store.Set(ctx, key, string(data)); err != nil {
		if w.logger != nil {
			w.logger.Debug("state write failed", "key", key, "error", err)
		}
	}
}

func (w *Workspace) remove(ctx context.Context, key string) {
	if err := w.store.Delete(ctx, key); err != nil {
		if w.logger != nil {
			w.logger.Debug("state delete failed", "key", key, "error", err)
		}
	}
}

// decodeGuarded unmarshals into a loose value and runs the guard; a false
// guard means the stored document no longer matches the expected shape.
func decodeGuarded[T any](raw string, guard func(any) (T, bool)) (T, bool) {
	var zero T
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return zero, false
	}
	return guard(doc)
}

// decodeTyped is the guard for values whose shape the JSON decoder can
// enforce directly.
func decodeTyped[T any](raw string) (T, bool) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func (w *Workspace) Queue(ctx context.Context) []pack.Clip {
	if raw, ok := w.readRaw(ctx, KeyQueue); ok {
		if clips, ok := decodeGuarded(raw, pack.GuardClipList); ok {
			return clips
		}
		if w.logger != nil {
			w.logger.Debug("stored queue failed shape guard, using empty queue")
		}
	}
	return []pack.Clip{}
}

func (w *Workspace) SetQueue(ctx context.Context, clips []pack.Clip) {
	if clips == nil {
		clips = []pack.Clip{}
	}
	w.write(ctx, KeyQueue, clips)
}

func (w *Workspace) Labels(ctx context.Context) map[string][]string {
	if raw, ok := w.readRaw(ctx, KeyLabels); ok {
		if m, ok := decodeGuarded(raw, pack.GuardLabelMap); ok {
			return m
		}
	}
	return map[string][]string{}
}

func (w *Workspace) SetLabels(ctx context.Context, id string, labels []string) {
	m := w.Labels(ctx)
	m[id] = labels
	w.write(ctx, KeyLabels, m)
}

func (w *Workspace) Annotations(ctx context.Context) map[string]string {
	if raw, ok := w.readRaw(ctx, KeyAnnotations); ok {
		if m, ok := decodeGuarded(raw, pack.GuardAnnotationMap); ok {
			return m
		}
	}
	return map[string]string{}
}

func (w *Workspace) SetAnnotation(ctx context.Context, id, note string) {
	m := w.Annotations(ctx)
	m[id] = note
	w.write(ctx, KeyAnnotations, m)
}

func (w *Workspace) Telestration(ctx context.Context) map[string][]pack.Stroke {
	if raw, ok := w.readRaw(ctx, KeyTelestration); ok {
		if m, ok := decodeGuarded(raw, pack.GuardTelestrationMap); ok {
			return m
		}
	}
	return map[string][]pack.Stroke{}
}

// SetTelestration caps the per-clip stroke list before persisting.
func (w *Workspace) SetTelestration(ctx context.Context, id string, strokes []pack.Stroke) {
	m := w.Telestration(ctx)
	m[id] = pack.CapStrokes(strokes)
	w.write(ctx, KeyTelestration, m)
}

// WorkingSet snapshots the queue and the three auxiliary stores for diffing.
func (w *Workspace) WorkingSet(ctx context.Context) reconcile.WorkingSet {
	return reconcile.WorkingSet{
		Queue:        w.Queue(ctx),
		Labels:       w.Labels(ctx),
		Annotations:  w.Annotations(ctx),
		Telestration: w.Telestration(ctx),
	}
}

// ApplyWriteSet persists the auxiliary writes of one import in bulk, reading
// each map once. Telestration values go through the stroke cap.
func (w *Workspace) ApplyWriteSet(ctx context.Context, set reconcile.WriteSet) {
	if len(set.LabelIDs) > 0 {
		m := w.Labels(ctx)
		for _, id := range set.LabelIDs {
			m[id] = set.NextLabels[id]
		}
		w.write(ctx, KeyLabels, m)
	}
	if len(set.AnnotationIDs) > 0 {
		m := w.Annotations(ctx)
		for _, id := range set.AnnotationIDs {
			m[id] = set.NextAnnotations[id]
		}
		w.write(ctx, KeyAnnotations, m)
	}
	if len(set.TelestrationIDs) > 0 {
		m := w.Telestration(ctx)
		for _, id := range set.TelestrationIDs {
			m[id] = pack.CapStrokes(set.NextTelestration[id])
		}
		w.write(ctx, KeyTelestration, m)
	}
}

func (w *Workspace) Preferences(ctx context.Context) Preferences {
	if raw, ok := w.readRaw(ctx, KeyPreferences); ok {
		if p, ok := decodeTyped[Preferences](raw); ok {
			return p
		}
	}
	return DefaultPreferences()
}

func (w *Workspace) SetPreferences(ctx context.Context, p Preferences) {
	w.write(ctx, KeyPreferences, p)
}

func (w *Workspace) Access(ctx context.Context) AccessFlags {
	if raw, ok := w.readRaw(ctx, KeyAccess); ok {
		if a, ok := decodeTyped[AccessFlags](raw); ok {
			return a
		}
	}
	return DefaultAccess()
}

func (w *Workspace) SetAccess(ctx context.Context, a AccessFlags) {
	w.write(ctx, KeyAccess, a)
}

func (w *Workspace) Searches(ctx context.Context) []SavedSearch {
	if raw, ok := w.readRaw(ctx, KeySearches); ok {
		if s, ok := decodeTyped[[]SavedSearch](raw); ok && s != nil {
			return s
		}
	}
	return []SavedSearch{}
}

func (w *Workspace) SetSearches(ctx context.Context, s []SavedSearch) {
	if s == nil {
		s = []SavedSearch{}
	}
	w.write(ctx, KeySearches, s)
}

func (w *Workspace) Storyboards(ctx context.Context) []Storyboard {
	if raw, ok := w.readRaw(ctx, KeyStoryboards); ok {
		if s, ok := decodeTyped[[]Storyboard](raw); ok && s != nil {
			return s
		}
	}
	return []Storyboard{}
}

func (w *Workspace) SetStoryboards(ctx context.Context, s []Storyboard) {
	if s == nil {
		s = []Storyboard{}
	}
	w.write(ctx, KeyStoryboards, s)
}

func (w *Workspace) Invites(ctx context.Context) []StaffInvite {
	if raw, ok := w.readRaw(ctx, KeyInvites); ok {
		if s, ok := decodeTyped[[]StaffInvite](raw); ok && s != nil {
			return s
		}
	}
	return []StaffInvite{}
}

func (w *Workspace) SetInvites(ctx context.Context, s []StaffInvite) {
	if s == nil {
		s = []StaffInvite{}
	}
	w.write(ctx, KeyInvites, s)
}

func (w *Workspace) LastImport(ctx context.Context) *LastImportMeta {
	if raw, ok := w.readRaw(ctx, KeyLastImport); ok {
		if m, ok := decodeTyped[*LastImportMeta](raw); ok {
			return m
		}
	}
	return nil
}

func (w *Workspace) SetLastImport(ctx context.Context, m *LastImportMeta) {
	if m == nil {
		w.remove(ctx, KeyLastImport)
		return
	}
	w.write(ctx, KeyLastImport, m)
}

// UndoSnapshot returns the armed snapshot or nil when none is armed.
func (w *Workspace) UndoSnapshot(ctx context.Context) *ImportUndoSnapshot {
	if raw, ok := w.readRaw(ctx, KeyUndoSnapshot); ok {
		if s, ok := decodeTyped[*ImportUndoSnapshot](raw); ok {
			return s
		}
	}
	return nil
}

// SetUndoSnapshot arms the single undo slot; a previously armed snapshot is
// silently superseded.
func (w *Workspace) SetUndoSnapshot(ctx context.Context, s *ImportUndoSnapshot) {
	if s == nil {
		w.remove(ctx, KeyUndoSnapshot)
		return
	}
	w.write(ctx, KeyUndoSnapshot, s)
}

// Reset deletes every key in the reserved namespace. Keys outside the
// namespace are never touched.
func (w *Workspace) Reset(ctx context.Context) error {
	keys, err := w.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !store.IsNamespaced(key) {
			continue
		}
		if err := w.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// now is swapped in tests.
var now = time.Now
