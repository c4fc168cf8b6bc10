package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team5526/pitcrew/internal/auth"
)

// ==================== Teams ====================

func (h *Handlers) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Teams.ListTeams(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, teams)
}

func (h *Handlers) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	team, err := h.Teams.CreateTeam(r.Context(), req.Number, req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, team)
}

func (h *Handlers) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.Teams.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, team)
}

func (h *Handlers) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	team, err := h.Teams.UpdateTeam(r.Context(), chi.URLParam(r, "teamID"), req.Number, req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, team)
}

func (h *Handlers) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.Teams.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Team deleted")
}

// ==================== Current event ====================

func (h *Handlers) handleGetCurrentEvent(w http.ResponseWriter, r *http.Request) {
	team, err := h.Teams.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"eventKey": team.CurrentEventKey})
}

func (h *Handlers) handleSetCurrentEvent(w http.ResponseWriter, r *http.Request) {
	var req CurrentEventRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.Teams.SetCurrentEvent(r.Context(), chi.URLParam(r, "teamID"), req.EventKey); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Current event updated")
}

// ==================== User profile ====================

func (h *Handlers) handleSetLastTeam(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, Unauthorized("Unauthorized - please log in"))
		return
	}

	var req LastTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.Teams.SetLastTeam(r.Context(), claims.UID, req.TeamID); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Last team updated")
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req SettingUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	// The simulated clock goes through its own validation
	var err error
	if req.Key == "simulate_time" {
		err = h.Settings.SetSimulateTime(r.Context(), req.Value)
	} else {
		err = h.Settings.SetSetting(r.Context(), req.Key, req.Value)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Setting updated")
}

// ==================== QR codes ====================

func (h *Handlers) handleGetPitDisplayQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Settings.PitDisplayQR(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
