package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
	"github.com/team5526/pitcrew/internal/services"
)

func (h *Handlers) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var input services.CreateInspectionInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, err)
		return
	}

	session, err := h.Inspections.CreateInspection(r.Context(), teamID, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, session)
}

func (h *Handlers) handleListInspections(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	opts := repository.InspectionListOptions{
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
		Status:   models.InspectionStatus(r.URL.Query().Get("status")),
		MatchKey: r.URL.Query().Get("matchKey"),
	}

	sessions, total, err := h.Inspections.ListInspections(r.Context(), teamID, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// Mirror the service's normalization so the envelope reflects the page
	// actually served
	page, limit := opts.Page, opts.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if sessions == nil {
		sessions = []models.InspectionSession{}
	}

	respondOK(w, InspectionListResponse{
		Inspections: sessions,
		Pagination: PaginationResponse{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

// handleGetActiveInspection returns the team's in-progress session, or null
// when the team is idle
func (h *Handlers) handleGetActiveInspection(w http.ResponseWriter, r *http.Request) {
	session, err := h.Inspections.GetActive(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, session)
}

func (h *Handlers) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	session, err := h.Inspections.GetInspection(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, session)
}

func (h *Handlers) handleListMatchInspections(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Inspections.ListForMatch(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "matchKey"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, sessions)
}

func (h *Handlers) handleSaveResponses(w http.ResponseWriter, r *http.Request) {
	var req SaveResponsesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.Inspections.SaveResponses(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "id"), req.Responses)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleFinalizeInspection(w http.ResponseWriter, r *http.Request) {
	var input services.FinalizeInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, err)
		return
	}

	session, err := h.Inspections.FinalizeInspection(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, session)
}

func (h *Handlers) handleCancelInspection(w http.ResponseWriter, r *http.Request) {
	session, err := h.Inspections.CancelInspection(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, session)
}

func (h *Handlers) handleListBatteries(w http.ResponseWriter, r *http.Request) {
	batteries, err := h.Inspections.ListPreviousBatteries(r.Context(),
		chi.URLParam(r, "teamID"), queryInt(r, "limit", 5))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if batteries == nil {
		batteries = []string{}
	}
	respondOK(w, BatteriesResponse{Batteries: batteries})
}
