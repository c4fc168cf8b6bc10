package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Public pages
	r.Get("/login", h.handleLoginPage)
	r.Get("/pit-display", h.handlePitDisplay)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Auth API (public)
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/logout", h.handleLogout)

	// Protected pages
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/", h.handleIndex)
	})

	// Protected API
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Get("/api/auth/check", h.handleAuthCheck)

		// Checklist templates
		r.Get("/api/checklists/templates", h.handleListTemplates)
		r.Post("/api/checklists/templates", h.handleCreateTemplate)
		r.Get("/api/checklists/templates/active", h.handleGetActiveTemplate)
		r.Put("/api/checklists/templates/active", h.handleSetActiveTemplate)
		r.Get("/api/checklists/templates/{id}", h.handleGetTemplate)
		r.Put("/api/checklists/templates/{id}", h.handleUpdateTemplate)
		r.Get("/api/checklists/templates/{id}/versions", h.handleListTemplateVersions)
		r.Post("/api/checklists/templates/{id}/validate", h.handleValidateResponses)

		// Inspections
		r.Post("/api/teams/{teamID}/inspections", h.handleCreateInspection)
		r.Get("/api/teams/{teamID}/inspections", h.handleListInspections)
		r.Get("/api/teams/{teamID}/inspections/active", h.handleGetActiveInspection)
		r.Get("/api/teams/{teamID}/inspections/match/{matchKey}", h.handleListMatchInspections)
		r.Get("/api/teams/{teamID}/inspections/{id}/results", h.handleGetInspection)
		r.Put("/api/teams/{teamID}/inspections/{id}/results", h.handleFinalizeInspection)
		r.Put("/api/teams/{teamID}/inspections/{id}/responses", h.handleSaveResponses)
		r.Delete("/api/teams/{teamID}/inspections/{id}", h.handleCancelInspection)
		r.Get("/api/teams/{teamID}/batteries", h.handleListBatteries)

		// Match schedule
		r.Get("/api/tba/matches/upcoming/{teamNumber}/{eventKey}", h.handleGetUpcomingMatches)
		r.Get("/api/tba/matches/{teamNumber}/{eventKey}", h.handleGetMatches)
		r.Get("/api/tba/events/{teamNumber}", h.handleGetTeamEvents)
		r.Get("/api/teams/{teamID}/match-preparation", h.handleGetMatchPreparation)

		// Team and profile administration
		r.Get("/api/admin/teams", h.handleListTeams)
		r.Post("/api/admin/teams", h.handleCreateTeam)
		r.Get("/api/admin/teams/{teamID}", h.handleGetTeam)
		r.Put("/api/admin/teams/{teamID}", h.handleUpdateTeam)
		r.Delete("/api/admin/teams/{teamID}", h.handleDeleteTeam)
		r.Get("/api/teams/{teamID}/current-event", h.handleGetCurrentEvent)
		r.Put("/api/teams/{teamID}/current-event", h.handleSetCurrentEvent)
		r.Put("/api/user/last-team", h.handleSetLastTeam)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Put("/api/admin/settings", h.handleUpdateSetting)

		// QR codes
		r.Get("/api/admin/pit-display-qr", h.handleGetPitDisplayQR)
	})

	return r
}
