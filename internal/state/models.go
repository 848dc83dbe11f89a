// Package state owns every persisted key in the reserved namespace and gates
// each read through a typed shape guard. Guard failures substitute the
// caller's default and are never surfaced; writes are best-effort.
package state

import (
	"time"

	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/store"
)

// Persisted keys. Values are JSON text; field names are camelCase because the
// documents are shared with the web frontend.
const (
	KeyPreferences  = store.Namespace + "preferences"
	KeyAccess       = store.Namespace + "access"
	KeyQueue        = store.Namespace + "report.queue"
	KeyLabels       = store.Namespace + "clip.labels"
	KeyAnnotations  = store.Namespace + "clip.annotations"
	KeyTelestration = store.Namespace + "clip.telestration"
	KeySearches     = store.Namespace + "searches"
	KeyStoryboards  = store.Namespace + "storyboards"
	KeyInvites      = store.Namespace + "invites"
	KeyAudit        = store.Namespace + "audit"
	KeyLastImport   = store.Namespace + "lastImport"
	KeyUndoSnapshot = store.Namespace + "undo.import"
)

// maxAuditEntries caps the persisted audit log, newest first.
const maxAuditEntries = 200

type Preferences struct {
	Theme        string `json:"theme"`
	DefaultView  string `json:"defaultView"`
	ClipAutoplay bool   `json:"clipAutoplay"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: "system", DefaultView: "coach", ClipAutoplay: true}
}

type AccessFlags struct {
	CanExport  bool `json:"canExport"`
	CanInvite  bool `json:"canInvite"`
	CanRestore bool `json:"canRestore"`
}

func DefaultAccess() AccessFlags {
	return AccessFlags{CanExport: true, CanInvite: false, CanRestore: true}
}

type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"createdAt"`
}

type Storyboard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ClipIDs   []string  `json:"clipIds"`
	CreatedAt time.Time `json:"createdAt"`
}

type StaffInvite struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	InviteStatusPending = "pending"
	InviteStatusRevoked = "revoked"
)

// LastImportMeta is the banner shown after an import; nil means no import has
// been applied (or the last one was undone).
type LastImportMeta struct {
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"importedAt"`
	NewClips   int       `json:"newClips"`
	Updated    int       `json:"updatedClips"`
}

type AuditEntry struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// ImportUndoSnapshot is the single armed pre-import state. AffectedClipIDs is
// the union of new and overlapping ids from the applied diff, which is the
// complete set any merge policy could have touched, so restoring it is always
// sufficient. PostImportQueueIDs records the queue identity expected right
// after the import, for staleness detection before an undo.
type ImportUndoSnapshot struct {
	CreatedAt            time.Time                `json:"createdAt"`
	PackSummary          string                   `json:"packSummary"`
	AffectedClipIDs      []string                 `json:"affectedClipIds"`
	PostImportQueueIDs   []string                 `json:"postImportQueueIds"`
	PreviousQueue        []pack.Clip              `json:"previousQueue"`
	PreviousLabels       map[string][]string      `json:"previousLabels"`
	PreviousAnnotations  map[string]string        `json:"previousAnnotations"`
	PreviousTelestration map[string][]pack.Stroke `json:"previousTelestration"`
	PreviousLastImport   *LastImportMeta          `json:"previousLastImport"`
}
