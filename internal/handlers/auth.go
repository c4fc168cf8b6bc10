package handlers

import (
	"net/http"

	"github.com/team5526/pitcrew/internal/auth"
)

// handleLogin exchanges provider tokens for a session cookie pair. The login
// page obtains the tokens client-side and posts them here.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.IDToken == "" {
		h.respondError(w, BadRequest("idToken is required"))
		return
	}

	claims, err := h.Verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		h.respondError(w, err)
		return
	}

	user, err := h.Teams.RecordLogin(r.Context(), claims.UID, claims.DisplayName, claims.Email)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.Cookies.SetSession(w, req.IDToken, req.RefreshToken)
	respondOK(w, user)
}

// handleAuthCheck reports whether the request carries a valid session
func (h *Handlers) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, SessionCheckResponse{Valid: false})
		return
	}

	payload := &SessionPayload{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}
	if user, err := h.Teams.GetUser(r.Context(), claims.UID); err == nil {
		payload.LastTeamID = user.LastTeamID
	}
	respondOK(w, SessionCheckResponse{Valid: true, Payload: payload})
}

// handleLogout clears both session cookies
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	respondSuccess(w, "Logged out")
}
