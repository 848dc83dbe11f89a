// Package engine drives the import lifecycle: preview, apply, undo and reset.
// Mutating operations are serialized behind a busy flag and wrapped so an
// internal failure surfaces as an error instead of killing the process. Every
// attempted mutation lands in the audit log, failures included.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/reconcile"
	"github.com/afmlabs/afm-agent/internal/state"
)

var (
	// ErrBusy is returned when a mutating operation is already in flight.
	ErrBusy = errors.New("another operation is in progress")

	// ErrNoUndo is returned when no import snapshot is armed.
	ErrNoUndo = errors.New("no import to undo")

	// ErrUndoStale is returned when the queue changed after the import and
	// the caller declined to proceed anyway.
	ErrUndoStale = errors.New("working set changed since the import; undo not confirmed")
)

// Confirmer answers a yes/no prompt before a risky operation proceeds.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type Engine struct {
	ws     *state.Workspace
	logger *slog.Logger
	busy   atomic.Bool
}

func New(ws *state.Workspace, logger *slog.Logger) *Engine {
	return &Engine{ws: ws, logger: logger}
}

// Busy reports whether a mutating operation is in flight.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

func (e *Engine) acquire() error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (e *Engine) release() {
	e.busy.Store(false)
}

// guarded runs fn, converting a panic into an error so a malformed pack or a
// bug in a merge path cannot take the agent down.
func (e *Engine) guarded(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Error("operation panicked", "op", op, "panic", r)
			}
			err = fmt.Errorf("%s: internal failure: %v", op, r)
		}
	}()
	return fn()
}

// Preview parses raw pack bytes and diffs them against the working set
// without mutating anything. It does not take the busy flag.
func (e *Engine) Preview(ctx context.Context, data []byte, filename string) (*pack.ReportPack, reconcile.PackDiff, error) {
	p, err := pack.Parse(data, filename)
	if err != nil {
		return nil, reconcile.PackDiff{}, err
	}
	diff := reconcile.Diff(e.ws.WorkingSet(ctx), p)
	return p, diff, nil
}

// ApplyResult summarizes a completed import.
type ApplyResult struct {
	Diff reconcile.PackDiff
	Meta state.LastImportMeta
}

// Apply imports a pack under the given decision. The undo snapshot is armed
// before the first write so a crash mid-apply still leaves a restorable
// snapshot; arming supersedes any previously armed snapshot.
func (e *Engine) Apply(ctx context.Context, data []byte, filename string, dec reconcile.Decision) (ApplyResult, error) {
	if err := e.acquire(); err != nil {
		return ApplyResult{}, err
	}
	defer e.release()

	var result ApplyResult
	err := e.guarded("import", func() error {
		if err := dec.Validate(); err != nil {
			return err
		}
		p, err := pack.Parse(data, filename)
		if err != nil {
			return err
		}

		working := e.ws.WorkingSet(ctx)
		diff := reconcile.Diff(working, p)
		writeSet := reconcile.BuildWriteSet(diff, dec, p, working.Labels)
		postQueueIDs := reconcile.BuildPostImportQueueIDs(working.QueueIDs(), p.Clips, dec.Strategy)

		e.ws.SetUndoSnapshot(ctx, buildSnapshot(working, p, diff, postQueueIDs, e.ws.LastImport(ctx)))

		e.ws.SetQueue(ctx, reconcile.MaterializeQueue(working.Queue, p, dec.Strategy))
		e.ws.ApplyWriteSet(ctx, writeSet)

		meta := state.LastImportMeta{
			Title:      p.Title,
			Source:     p.Source,
			ImportedAt: now().UTC(),
			NewClips:   len(diff.NewClipIDs),
			Updated:    len(diff.OverlappingClipIDs),
		}
		e.ws.SetLastImport(ctx, &meta)
		e.ws.Record(ctx, "import.apply", fmt.Sprintf("%s: %d new, %d overlapping", p.Title, meta.NewClips, meta.Updated))

		result = ApplyResult{Diff: diff, Meta: meta}
		return nil
	})
	if err != nil {
		e.ws.Record(ctx, "import.apply.fail", err.Error())
	}
	return result, err
}

// buildSnapshot captures the pre-import value of everything the import could
// touch. Aux values are captured verbatim for every affected id, absent
// entries included, so restore is a plain assignment.
func buildSnapshot(working reconcile.WorkingSet, p *pack.ReportPack, diff reconcile.PackDiff, postQueueIDs []string, lastImport *state.LastImportMeta) *state.ImportUndoSnapshot {
	affected := make([]string, 0, len(diff.NewClipIDs)+len(diff.OverlappingClipIDs))
	affected = append(affected, diff.NewClipIDs...)
	affected = append(affected, diff.OverlappingClipIDs...)

	snap := &state.ImportUndoSnapshot{
		CreatedAt:            now().UTC(),
		PackSummary:          p.Title,
		AffectedClipIDs:      affected,
		PostImportQueueIDs:   postQueueIDs,
		PreviousQueue:        working.Queue,
		PreviousLabels:       map[string][]string{},
		PreviousAnnotations:  map[string]string{},
		PreviousTelestration: map[string][]pack.Stroke{},
		PreviousLastImport:   lastImport,
	}
	for _, id := range affected {
		labels := working.Labels[id]
		if labels == nil {
			labels = []string{}
		}
		snap.PreviousLabels[id] = labels
		snap.PreviousAnnotations[id] = working.Annotations[id]
		strokes := working.Telestration[id]
		if strokes == nil {
			strokes = []pack.Stroke{}
		}
		snap.PreviousTelestration[id] = strokes
	}
	return snap
}

// Undo restores the working set captured by the last import. When the queue
// no longer matches the post-import state, the confirmer must approve before
// the restore proceeds. The snapshot is consumed either way once the restore
// runs.
func (e *Engine) Undo(ctx context.Context, confirmer Confirmer) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	err := e.guarded("undo", func() error {
		snap := e.ws.UndoSnapshot(ctx)
		if snap == nil {
			return ErrNoUndo
		}

		currentIDs := e.ws.WorkingSet(ctx).QueueIDs()
		if !equalIDs(currentIDs, snap.PostImportQueueIDs) {
			if confirmer == nil || !confirmer.Confirm("The report queue changed after this import. Undo anyway?") {
				return ErrUndoStale
			}
		}

		e.ws.SetQueue(ctx, snap.PreviousQueue)
		for _, id := range snap.AffectedClipIDs {
			e.ws.SetLabels(ctx, id, snap.PreviousLabels[id])
			e.ws.SetAnnotation(ctx, id, snap.PreviousAnnotations[id])
			e.ws.SetTelestration(ctx, id, snap.PreviousTelestration[id])
		}
		e.ws.SetLastImport(ctx, snap.PreviousLastImport)
		e.ws.SetUndoSnapshot(ctx, nil)
		e.ws.Record(ctx, "import.undo", snap.PackSummary)
		return nil
	})
	if err != nil {
		e.ws.Record(ctx, "import.undo.fail", err.Error())
	}
	return err
}

// Reset clears every persisted key in the reserved namespace after the
// confirmer approves. The audit trail restarts with the reset entry.
func (e *Engine) Reset(ctx context.Context, confirmer Confirmer) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	err := e.guarded("reset", func() error {
		if confirmer == nil || !confirmer.Confirm("Erase all local report data?") {
			return errors.New("reset not confirmed")
		}
		if err := e.ws.Reset(ctx); err != nil {
			return err
		}
		e.ws.Record(ctx, "state.reset", "")
		return nil
	})
	if err != nil {
		e.ws.Record(ctx, "state.reset.fail", err.Error())
	}
	return err
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// now is swapped in tests.
var now = time.Now
