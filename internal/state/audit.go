package state

import (
	"context"

	"github.com/google/uuid"
)

// Record appends an entry to the persisted audit log, newest first, trimming
// the oldest entries past the cap. Best-effort like every other write.
func (w *Workspace) Record(ctx context.Context, action, detail string) {
	entries := w.Audit(ctx)
	entry := AuditEntry{
		ID:     uuid.NewString(),
		Action: action,
		Detail: detail,
		At:     now().UTC(),
	}
	entries = append([]AuditEntry{entry}, entries...)
	if len(entries) > maxAuditEntries {
		entries = entries[:maxAuditEntries]
	}
	w.write(ctx, KeyAudit, entries)
}

// Audit returns the persisted log, newest first.
func (w *Workspace) Audit(ctx context.Context) []AuditEntry {
	if raw, ok := w.readRaw(ctx, KeyAudit); ok {
		if entries, ok := decodeTyped[[]AuditEntry](raw); ok && entries != nil {
			return entries
		}
	}
	return []AuditEntry{}
}
