package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/afmlabs/afm-agent/internal/backup"
	"github.com/afmlabs/afm-agent/internal/engine"
)

func backupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := backup.Snapshot(r.Context(), cfg.Store)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to build backup", "INTERNAL_ERROR")
			return
		}
		cfg.Workspace.Record(r.Context(), "backup.create", "")
		w.Header().Set("Content-Disposition", `attachment; filename="afm-backup.json"`)
		WriteJSON(w, http.StatusOK, payload)
	}
}

// restoreHandler takes the backup document as the body; the confirm flag
// travels as a query parameter so the body stays the raw document.
func restoreHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") != "true" {
			WriteError(w, http.StatusConflict, "restore replaces all local report data; pass confirm=true", "CONFIRM_REQUIRED")
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxPackBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read request body", "BAD_REQUEST")
			return
		}

		payload, err := backup.Parse(data)
		if err != nil {
			var formatErr *backup.FormatError
			if errors.As(err, &formatErr) {
				WriteError(w, http.StatusUnprocessableEntity, formatErr.Message, "INVALID_BACKUP")
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		if err := backup.Restore(r.Context(), cfg.Store, payload); err != nil {
			WriteError(w, http.StatusInternalServerError, "restore failed", "INTERNAL_ERROR")
			return
		}
		cfg.Workspace.Record(r.Context(), "backup.restore", payload.CreatedAt.Format("2006-01-02"))

		WriteJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"restored": len(payload.Entries),
		})
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		confirmer := engine.ConfirmFunc(func(string) bool { return req.Confirm })
		if err := cfg.Engine.Reset(r.Context(), confirmer); err != nil {
			if errors.Is(err, engine.ErrBusy) {
				writeEngineError(w, err)
				return
			}
			WriteError(w, http.StatusConflict, err.Error(), "CONFIRM_REQUIRED")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
