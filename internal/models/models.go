package models

import (
	"time"

	"github.com/team5526/pitcrew/internal/checklist"
)

// TemplateType distinguishes match-day checklists from general ones
type TemplateType string

const (
	TemplateMatch   TemplateType = "match"
	TemplateGeneral TemplateType = "general"
)

// ChecklistTemplate is a versioned, reusable checklist definition.
// At most one template system-wide has IsActive = true.
type ChecklistTemplate struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Version     string               `json:"version"`
	Year        int                  `json:"year"`
	Type        TemplateType         `json:"type"`
	Elements    []*checklist.Section `json:"elements"`
	IsActive    bool                 `json:"isActive"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	CreatedBy   string               `json:"createdBy,omitempty"`
	ActivatedAt *time.Time           `json:"activatedAt,omitempty"`
}

// TemplatePatch carries the mutable fields of a template update
type TemplatePatch struct {
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Year        *int                 `json:"year,omitempty"`
	Type        *TemplateType        `json:"type,omitempty"`
	Elements    []*checklist.Section `json:"elements,omitempty"`
}

// InspectionStatus is the lifecycle state of an inspection session
type InspectionStatus string

const (
	StatusInProgress InspectionStatus = "in-progress"
	StatusCompleted  InspectionStatus = "completed"
	StatusFailed     InspectionStatus = "failed"
	StatusAbandoned  InspectionStatus = "abandoned"
	StatusCancelled  InspectionStatus = "cancelled"
)

// Terminal reports whether the status is an end state
func (s InspectionStatus) Terminal() bool {
	return s != StatusInProgress
}

// Valid reports whether the string is a known status
func (s InspectionStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusAbandoned, StatusCancelled:
		return true
	}
	return false
}

// StepResult is one pass/fail outcome recorded when finalizing an inspection
type StepResult struct {
	StepID    string    `json:"stepId"`
	Passed    bool      `json:"passed"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	CheckedBy string    `json:"checkedBy"`
}

// InspectionSession is one in-flight or finished instance of filling out a
// checklist. When MatchKey is set the session is match-bound and subject to
// per-match uniqueness and battery-reuse rules.
type InspectionSession struct {
	ID                     string              `json:"id"`
	TeamID                 string              `json:"teamId"`
	TemplateID             string              `json:"templateId,omitempty"`
	TemplateVersion        string              `json:"templateVersion,omitempty"`
	EventKey               string              `json:"eventKey,omitempty"`
	MatchKey               string              `json:"matchKey,omitempty"`
	BatteryNumber          string              `json:"batteryNumber,omitempty"`
	Inspector              string              `json:"inspector"`
	Notes                  string              `json:"notes,omitempty"`
	StartTime              time.Time           `json:"startTime"`
	EndTime                *time.Time          `json:"endTime,omitempty"`
	Status                 InspectionStatus    `json:"status"`
	Results                []StepResult        `json:"results"`
	Responses              checklist.Responses `json:"responses,omitempty"`
	CriticalFailures       []string            `json:"criticalFailures,omitempty"`
	IsLatest               bool                `json:"isLatest"`
	PreviousBatteryNumbers []string            `json:"previousBatteryNumbers,omitempty"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

// MatchPreparation is the denormalized per-match readiness summary written
// when a match-bound inspection is finalized
type MatchPreparation struct {
	TeamID              string    `json:"teamId"`
	MatchKey            string    `json:"matchKey"`
	InspectionCompleted bool      `json:"inspectionCompleted"`
	InspectionID        string    `json:"inspectionId,omitempty"`
	BatteryNumber       string    `json:"batteryNumber,omitempty"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// Team is a registered FRC team using this instance
type Team struct {
	ID              string `json:"id"`
	Number          string `json:"number"`
	Name            string `json:"name"`
	CurrentEventKey string `json:"currentEventKey,omitempty"`
}

// User is an authenticated user profile
type User struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	LastTeamID  string    `json:"lastTeamId,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamInfo is the enriched per-team view inside a processed match
type TeamInfo struct {
	Number       string   `json:"number"`
	Nickname     string   `json:"nickname"`
	Rank         *int     `json:"rank,omitempty"`
	RankingScore *float64 `json:"rankingScore,omitempty"`
}

// AllianceView is one side of a processed match
type AllianceView struct {
	TeamKeys []string   `json:"team_keys"`
	Teams    []TeamInfo `json:"teams"`
	Score    *int       `json:"score"`
}

// RobotInspection is the inspection summary joined onto a processed match
type RobotInspection struct {
	Completed bool   `json:"completed"`
	Timestamp string `json:"timestamp,omitempty"`
	Battery   string `json:"battery,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ProcessedMatch is the derived, display-ready match record: raw schedule
// data merged with alliance membership, rankings and inspection state.
type ProcessedMatch struct {
	Key           string `json:"key"`
	CompLevel     string `json:"comp_level"`
	MatchNumber   int    `json:"match_number"`
	Time          int64  `json:"time"`
	PredictedTime int64  `json:"predicted_time"`
	ActualTime    int64  `json:"actual_time"`
	IsUpcoming    bool   `json:"isUpcoming"`
	TeamAlliance  string `json:"teamAlliance,omitempty"` // "red", "blue" or empty
	Alliances     struct {
		Red  AllianceView `json:"red"`
		Blue AllianceView `json:"blue"`
	} `json:"alliances"`
	RobotInspection *RobotInspection `json:"robotInspection,omitempty"`
}

// UpcomingMatch is a processed match with its countdown
type UpcomingMatch struct {
	ProcessedMatch
	TimeUntilMatch int64 `json:"timeUntilMatch"` // seconds
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
