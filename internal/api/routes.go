package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/afmlabs/afm-agent/internal/config"
	"github.com/afmlabs/afm-agent/internal/engine"
	"github.com/afmlabs/afm-agent/internal/pack"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())
	r.Use(LoopbackGuard())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Store, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/queue", getQueueHandler(cfg))
		r.Put("/queue", putQueueHandler(cfg))

		r.Post("/packs/preview", previewHandler(cfg))
		r.Post("/packs/import", importHandler(cfg))
		r.Post("/undo", undoHandler(cfg))

		r.Get("/backup", backupHandler(cfg))
		r.Post("/backup/restore", restoreHandler(cfg))
		r.Post("/reset", resetHandler(cfg))

		r.Post("/export/pack", exportPackHandler(cfg))

		r.Get("/prefs", getPrefsHandler(cfg))
		r.Put("/prefs", putPrefsHandler(cfg))
		r.Get("/access", getAccessHandler(cfg))
		r.Put("/access", putAccessHandler(cfg))

		r.Get("/searches", listSearchesHandler(cfg))
		r.Post("/searches", createSearchHandler(cfg))
		r.Delete("/searches/{id}", deleteSearchHandler(cfg))

		r.Get("/storyboards", listStoryboardsHandler(cfg))
		r.Post("/storyboards", createStoryboardHandler(cfg))

		r.Get("/invites", listInvitesHandler(cfg))
		r.Post("/invites", createInviteHandler(cfg))
		r.Delete("/invites/{id}", revokeInviteHandler(cfg))

		r.Get("/audit", auditHandler(cfg))
		r.Get("/inbox", inboxHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		queue := cfg.Workspace.Queue(ctx)

		state := "idle"
		if cfg.Engine.Busy() {
			state = "busy"
		}

		resp := StatusResponse{
			State:              state,
			QueueClipCount:     len(queue),
			QueueTotalDuration: pack.TotalDuration(queue),
			UndoArmed:          cfg.Workspace.UndoSnapshot(ctx) != nil,
			LastImport:         LastImportToResponse(cfg.Workspace.LastImport(ctx)),
		}
		if cfg.Counters != nil {
			resp.StoreWrites, resp.StoreRemoves = cfg.Counters.Totals()
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func getQueueHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queue := cfg.Workspace.Queue(r.Context())
		WriteJSON(w, http.StatusOK, QueueResponse{
			Clips:         queue,
			TotalDuration: pack.TotalDuration(queue),
		})
	}
}

func putQueueHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PutQueueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		for _, c := range req.Clips {
			if c.ID == "" {
				WriteError(w, http.StatusBadRequest, "clip id is required", "BAD_REQUEST")
				return
			}
		}

		cfg.Workspace.SetQueue(r.Context(), req.Clips)
		cfg.Workspace.Record(r.Context(), "queue.update", "")

		queue := cfg.Workspace.Queue(r.Context())
		WriteJSON(w, http.StatusOK, QueueResponse{
			Clips:         queue,
			TotalDuration: pack.TotalDuration(queue),
		})
	}
}

func auditHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, AuditResponse{Entries: cfg.Workspace.Audit(r.Context())})
	}
}

func inboxHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Inbox == nil {
			WriteJSON(w, http.StatusOK, map[string]any{"events": []any{}})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"events": cfg.Inbox.Recent()})
	}
}

// writeEngineError maps engine and parser failures to HTTP statuses: busy and
// stale-state are conflicts, format problems are unprocessable, anything
// unexpected is internal.
func writeEngineError(w http.ResponseWriter, err error) {
	var formatErr *pack.FormatError
	switch {
	case errors.Is(err, engine.ErrBusy):
		WriteError(w, http.StatusConflict, err.Error(), "BUSY")
	case errors.Is(err, engine.ErrNoUndo):
		WriteError(w, http.StatusConflict, err.Error(), "NO_UNDO")
	case errors.Is(err, engine.ErrUndoStale):
		WriteError(w, http.StatusConflict, err.Error(), "STALE_STATE")
	case errors.As(err, &formatErr):
		code := "INVALID_PACK"
		if formatErr.Kind == pack.ErrKindWrongKind {
			code = "WRONG_KIND"
		}
		WriteError(w, http.StatusUnprocessableEntity, formatErr.Message, code)
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
