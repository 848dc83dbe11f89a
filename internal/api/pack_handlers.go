package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/afmlabs/afm-agent/internal/engine"
	"github.com/afmlabs/afm-agent/internal/pack"
	"github.com/afmlabs/afm-agent/internal/reconcile"
)

// maxPackBytes bounds an uploaded pack payload.
const maxPackBytes = 32 << 20

func readPackBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxPackBytes+1))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read request body", "BAD_REQUEST")
		return nil, false
	}
	if len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "empty pack payload", "BAD_REQUEST")
		return nil, false
	}
	if len(data) > maxPackBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "pack payload too large", "TOO_LARGE")
		return nil, false
	}
	return data, true
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := readPackBody(w, r)
		if !ok {
			return
		}
		filename := r.URL.Query().Get("filename")

		p, diff, err := cfg.Engine.Preview(r.Context(), data, filename)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, PreviewResponse{
			Title:         p.Title,
			Match:         p.Match,
			Owner:         p.Owner,
			Source:        p.Source,
			ClipCount:     len(p.Clips),
			TotalDuration: pack.TotalDuration(p.Clips),
			Diff:          diff,
		})
	}
}

// decisionFromQuery reads the merge decision off the query string so the body
// can stay the raw pack payload.
func decisionFromQuery(r *http.Request) reconcile.Decision {
	q := r.URL.Query()
	return reconcile.Decision{
		Strategy:            reconcile.Strategy(q.Get("strategy")),
		OverlapLabels:       reconcile.LabelPolicy(q.Get("overlap_labels")),
		OverlapAnnotations:  reconcile.OverlapPolicy(q.Get("overlap_annotations")),
		OverlapTelestration: reconcile.OverlapPolicy(q.Get("overlap_telestration")),
	}
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := readPackBody(w, r)
		if !ok {
			return
		}
		filename := r.URL.Query().Get("filename")

		dec := decisionFromQuery(r)
		if err := dec.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		result, err := cfg.Engine.Apply(r.Context(), data, filename, dec)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{
			Status:     "ok",
			Diff:       result.Diff,
			LastImport: *LastImportToResponse(&result.Meta),
		})
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmRequest
		if r.Body != nil {
			// Empty body means confirm=false.
			json.NewDecoder(r.Body).Decode(&req)
		}

		confirmer := engine.ConfirmFunc(func(string) bool { return req.Confirm })
		if err := cfg.Engine.Undo(r.Context(), confirmer); err != nil {
			writeEngineError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, UndoResponse{Status: "ok"})
	}
}
