package handlers

import "net/http"

// LoginPageData holds data for the login template
type LoginPageData struct {
	CallbackURL string
}

// PitDisplayPageData holds data for the pit display template
type PitDisplayPageData struct {
	TeamID string
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.Execute(w, nil)
}

func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.Login.Execute(w, LoginPageData{
		CallbackURL: r.URL.Query().Get("callbackUrl"),
	})
}

// handlePitDisplay renders the wall display. It stays public so a pit TV can
// show it without a session.
func (h *Handlers) handlePitDisplay(w http.ResponseWriter, r *http.Request) {
	h.templates.PitDisplay.Execute(w, PitDisplayPageData{
		TeamID: r.URL.Query().Get("team"),
	})
}
