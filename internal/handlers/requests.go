package handlers

import "github.com/team5526/pitcrew/internal/checklist"

// LoginRequest carries the provider tokens obtained by the login page
type LoginRequest struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// SetActiveTemplateRequest selects the active checklist template
type SetActiveTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

// SaveResponsesRequest carries an incremental response update
type SaveResponsesRequest struct {
	Responses checklist.Responses `json:"responses"`
}

// TeamCreateRequest registers a team
type TeamCreateRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// TeamUpdateRequest updates a team. Empty fields keep their current value.
type TeamUpdateRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// CurrentEventRequest sets the event a team is attending
type CurrentEventRequest struct {
	EventKey string `json:"eventKey"`
}

// LastTeamRequest remembers which team the user is working with
type LastTeamRequest struct {
	TeamID string `json:"teamId"`
}

// SettingUpdateRequest sets one settings key
type SettingUpdateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
