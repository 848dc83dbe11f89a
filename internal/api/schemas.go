package api

import (
	"time"

	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/reconcile"
	"github.com/afmlabs/afm-agent/internal/state"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State              string              `json:"state"`
	QueueClipCount     int                 `json:"queue_clip_count"`
	QueueTotalDuration string              `json:"queue_total_duration"`
	UndoArmed          bool                `json:"undo_armed"`
	LastImport         *LastImportResponse `json:"last_import,omitempty"`
	StoreWrites        int                 `json:"store_writes"`
	StoreRemoves       int                 `json:"store_removes"`
}

type LastImportResponse struct {
	Title      string `json:"title"`
	Source     string `json:"source"`
	ImportedAt string `json:"imported_at"`
	NewClips   int    `json:"new_clips"`
	Updated    int    `json:"updated_clips"`
}

type QueueResponse struct {
	Clips         []pack.Clip `json:"clips"`
	TotalDuration string      `json:"total_duration"`
}

type PutQueueRequest struct {
	Clips []pack.Clip `json:"clips"`
}

type PreviewResponse struct {
	Title         string             `json:"title"`
	Match         string             `json:"match"`
	Owner         string             `json:"owner"`
	Source        string             `json:"source"`
	ClipCount     int                `json:"clip_count"`
	TotalDuration string             `json:"total_duration"`
	Diff          reconcile.PackDiff `json:"diff"`
}

type ImportResponse struct {
	Status     string             `json:"status"`
	Diff       reconcile.PackDiff `json:"diff"`
	LastImport LastImportResponse `json:"last_import"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type UndoResponse struct {
	Status string `json:"status"`
}

type ExportRequest struct {
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Match     string `json:"match"`
	Owner     string `json:"owner"`
	OutputDir string `json:"output_dir,omitempty"`
	Share     struct {
		Link          string `json:"link"`
		Permission    string `json:"permission"`
		ExpiresAt     string `json:"expires_at,omitempty"`
		AllowDownload bool   `json:"allow_download"`
	} `json:"share"`
}

type SearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type StoryboardRequest struct {
	Title   string   `json:"title"`
	ClipIDs []string `json:"clip_ids"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuditResponse struct {
	Entries []state.AuditEntry `json:"entries"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func LastImportToResponse(m *state.LastImportMeta) *LastImportResponse {
	if m == nil {
		return nil
	}
	return &LastImportResponse{
		Title:      m.Title,
		Source:     m.Source,
		ImportedAt: m.ImportedAt.Format(time.RFC3339),
		NewClips:   m.NewClips,
		Updated:    m.Updated,
	}
}
