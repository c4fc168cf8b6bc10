package handlers

import "github.com/team5526/pitcrew/internal/models"

// PaginationResponse describes one page of a listing
type PaginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// InspectionListResponse is the paginated inspection listing envelope
type InspectionListResponse struct {
	Inspections []models.InspectionSession `json:"inspections"`
	Pagination  PaginationResponse         `json:"pagination"`
}

// SessionPayload is the authenticated identity returned by the session check
type SessionPayload struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	LastTeamID  string `json:"lastTeamId,omitempty"`
}

// SessionCheckResponse is the auth check envelope
type SessionCheckResponse struct {
	Valid   bool            `json:"valid"`
	Payload *SessionPayload `json:"payload,omitempty"`
}

// BatteriesResponse lists recently used battery identifiers, newest first
type BatteriesResponse struct {
	Batteries []string `json:"batteries"`
}
