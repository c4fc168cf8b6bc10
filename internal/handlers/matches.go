package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// simulateParam returns the requested clock preset. Simulation is a
// development feature and is ignored in production.
func (h *Handlers) simulateParam(r *http.Request) string {
	if h.Production {
		return ""
	}
	return r.URL.Query().Get("simulateTime")
}

func (h *Handlers) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Matches.GetMatchesForEvent(r.Context(),
		chi.URLParam(r, "teamNumber"), chi.URLParam(r, "eventKey"), h.simulateParam(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, matches)
}

func (h *Handlers) handleGetUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	upcoming, err := h.Matches.UpcomingMatchesForEvent(r.Context(),
		chi.URLParam(r, "teamNumber"), chi.URLParam(r, "eventKey"),
		h.simulateParam(r), queryInt(r, "limit", 0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, upcoming)
}

func (h *Handlers) handleGetTeamEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Matches.GetTeamEvents(r.Context(),
		chi.URLParam(r, "teamNumber"), queryInt(r, "year", 0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, events)
}

// handleGetMatchPreparation returns the countdown alert for a registered
// team's next match
func (h *Handlers) handleGetMatchPreparation(w http.ResponseWriter, r *http.Request) {
	status, err := h.Matches.GetPreparationStatus(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, status)
}
