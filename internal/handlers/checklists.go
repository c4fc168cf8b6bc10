package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team5526/pitcrew/internal/auth"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/services"
)

func (h *Handlers) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", 0)
	templateType := r.URL.Query().Get("type")

	templates, err := h.Checklists.ListTemplates(r.Context(), year, templateType)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, templates)
}

func (h *Handlers) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTemplateInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, err)
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		input.CreatedBy = claims.UID
	}

	tpl, err := h.Checklists.CreateTemplate(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, tpl)
}

func (h *Handlers) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Checklists.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, tpl)
}

func (h *Handlers) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var patch models.TemplatePatch
	if err := decodeJSON(r, &patch); err != nil {
		h.respondError(w, err)
		return
	}

	tpl, err := h.Checklists.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, tpl)
}

func (h *Handlers) handleGetActiveTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Checklists.GetActive(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, tpl)
}

func (h *Handlers) handleSetActiveTemplate(w http.ResponseWriter, r *http.Request) {
	var req SetActiveTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.TemplateID == "" {
		h.respondError(w, BadRequest("templateId is required"))
		return
	}

	if err := h.Checklists.SetActive(r.Context(), req.TemplateID); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Template activated")
}

func (h *Handlers) handleListTemplateVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Checklists.ListVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, versions)
}

// handleValidateResponses dry-runs a response map against a template without
// touching any session
func (h *Handlers) handleValidateResponses(w http.ResponseWriter, r *http.Request) {
	var req SaveResponsesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.Inspections.ValidateResponses(r.Context(), chi.URLParam(r, "id"), req.Responses)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, result)
}
