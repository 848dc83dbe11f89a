package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/afmlabs/afm-agent/internal/state"
)

func getPrefsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Workspace.Preferences(r.Context()))
	}
}

func putPrefsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs state.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		cfg.Workspace.SetPreferences(r.Context(), prefs)
		WriteJSON(w, http.StatusOK, cfg.Workspace.Preferences(r.Context()))
	}
}

func getAccessHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Workspace.Access(r.Context()))
	}
}

func putAccessHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var access state.AccessFlags
		if err := json.NewDecoder(r.Body).Decode(&access); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		cfg.Workspace.SetAccess(r.Context(), access)
		cfg.Workspace.Record(r.Context(), "access.update", "")
		WriteJSON(w, http.StatusOK, cfg.Workspace.Access(r.Context()))
	}
}

func listSearchesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"searches": cfg.Workspace.Searches(r.Context())})
	}
}

func createSearchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" || req.Query == "" {
			WriteError(w, http.StatusBadRequest, "name and query are required", "BAD_REQUEST")
			return
		}

		search := state.SavedSearch{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Query:     req.Query,
			CreatedAt: time.Now().UTC(),
		}
		cfg.Workspace.SetSearches(r.Context(), append(cfg.Workspace.Searches(r.Context()), search))

		WriteJSON(w, http.StatusCreated, search)
	}
}

func deleteSearchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		searches := cfg.Workspace.Searches(r.Context())
		kept := searches[:0]
		found := false
		for _, s := range searches {
			if s.ID == id {
				found = true
				continue
			}
			kept = append(kept, s)
		}
		if !found {
			WriteError(w, http.StatusNotFound, "search not found", "NOT_FOUND")
			return
		}
		cfg.Workspace.SetSearches(r.Context(), kept)

		w.WriteHeader(http.StatusNoContent)
	}
}

func listStoryboardsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"storyboards": cfg.Workspace.Storyboards(r.Context())})
	}
}

func createStoryboardHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StoryboardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
			return
		}

		// Storyboards reference queued clips only.
		queued := map[string]bool{}
		for _, c := range cfg.Workspace.Queue(r.Context()) {
			queued[c.ID] = true
		}
		for _, id := range req.ClipIDs {
			if !queued[id] {
				WriteError(w, http.StatusUnprocessableEntity, "clip "+id+" is not in the queue", "UNKNOWN_CLIP")
				return
			}
		}

		board := state.Storyboard{
			ID:        uuid.NewString(),
			Title:     req.Title,
			ClipIDs:   req.ClipIDs,
			CreatedAt: time.Now().UTC(),
		}
		if board.ClipIDs == nil {
			board.ClipIDs = []string{}
		}
		cfg.Workspace.SetStoryboards(r.Context(), append(cfg.Workspace.Storyboards(r.Context()), board))

		WriteJSON(w, http.StatusCreated, board)
	}
}

func listInvitesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"invites": cfg.Workspace.Invites(r.Context())})
	}
}

func createInviteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Workspace.Access(r.Context()).CanInvite {
			WriteError(w, http.StatusForbidden, "inviting staff is disabled for this workspace", "FORBIDDEN")
			return
		}

		var req InviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Email == "" {
			WriteError(w, http.StatusBadRequest, "email is required", "BAD_REQUEST")
			return
		}
		role := req.Role
		if role == "" {
			role = "analyst"
		}

		invite := state.StaffInvite{
			ID:        uuid.NewString(),
			Email:     req.Email,
			Role:      role,
			Status:    state.InviteStatusPending,
			CreatedAt: time.Now().UTC(),
		}
		cfg.Workspace.SetInvites(r.Context(), append(cfg.Workspace.Invites(r.Context()), invite))
		cfg.Workspace.Record(r.Context(), "invite.create", req.Email)

		WriteJSON(w, http.StatusCreated, invite)
	}
}

func revokeInviteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		invites := cfg.Workspace.Invites(r.Context())
		found := false
		for i := range invites {
			if invites[i].ID == id {
				invites[i].Status = state.InviteStatusRevoked
				found = true
				break
			}
		}
		if !found {
			WriteError(w, http.StatusNotFound, "invite not found", "NOT_FOUND")
			return
		}
		cfg.Workspace.SetInvites(r.Context(), invites)
		cfg.Workspace.Record(r.Context(), "invite.revoke", id)

		w.WriteHeader(http.StatusNoContent)
	}
}
