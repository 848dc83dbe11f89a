package api

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/afmlabs/afm-agent/internal/export"
)

func exportPackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
			return
		}
		if !cfg.Workspace.Access(r.Context()).CanExport {
			WriteError(w, http.StatusForbidden, "export is disabled for this workspace", "FORBIDDEN")
			return
		}

		outputDir := req.OutputDir
		if outputDir == "" {
			outputDir = cfg.ExportDir
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to create export directory", "INTERNAL_ERROR")
				return
			}
		} else if err := export.ValidateOutputDir(outputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		working := cfg.Workspace.WorkingSet(r.Context())
		if len(working.Queue) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "report queue is empty", "EMPTY_QUEUE")
			return
		}

		doc := export.BuildDocument(export.Meta{
			Title: req.Title,
			Notes: req.Notes,
			Match: req.Match,
			Owner: req.Owner,
		}, working)

		share := export.ShareSettings{
			Link:          req.Share.Link,
			Permission:    req.Share.Permission,
			ExpiresAt:     req.Share.ExpiresAt,
			AllowDownload: req.Share.AllowDownload,
		}
		if share.Permission == "" {
			share.Permission = export.PermissionView
		}

		result, err := export.WriteBundle(outputDir, doc, share)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export bundle", "INTERNAL_ERROR")
			return
		}
		cfg.Workspace.Record(r.Context(), "export.pack", req.Title)

		WriteJSON(w, http.StatusOK, result)
	}
}
