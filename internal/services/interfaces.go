package services

import (
	"context"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
	"github.com/team5526/pitcrew/pkg/tba"
)

// TemplateServicer defines the interface for checklist template operations
type TemplateServicer interface {
	CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.ChecklistTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error)
	ListTemplates(ctx context.Context, year int, templateType string) ([]models.ChecklistTemplate, error)
	UpdateTemplate(ctx context.Context, id string, patch models.TemplatePatch) (*models.ChecklistTemplate, error)
	SetActive(ctx context.Context, id string) error
	GetActive(ctx context.Context) (*models.ChecklistTemplate, error)
	ListVersions(ctx context.Context, id string) ([]models.ChecklistTemplate, error)
}

// InspectionServicer defines the interface for inspection session operations
type InspectionServicer interface {
	CreateInspection(ctx context.Context, teamID string, input CreateInspectionInput) (*models.InspectionSession, error)
	GetInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error)
	GetActive(ctx context.Context, teamID string) (*models.InspectionSession, error)
	GetActiveForMatch(ctx context.Context, teamID, matchKey string) (*models.InspectionSession, error)
	ListForMatch(ctx context.Context, teamID, matchKey string) ([]models.InspectionSession, error)
	ListForEvent(ctx context.Context, teamID, eventKey string) ([]models.InspectionSession, error)
	ListInspections(ctx context.Context, teamID string, opts repository.InspectionListOptions) ([]models.InspectionSession, int, error)
	ListPreviousBatteries(ctx context.Context, teamID string, limit int) ([]string, error)
	SaveResponses(ctx context.Context, teamID, id string, responses checklist.Responses) (*checklist.Result, error)
	FinalizeInspection(ctx context.Context, teamID, id string, input FinalizeInput) (*models.InspectionSession, error)
	CancelInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error)
	ValidateResponses(ctx context.Context, templateID string, responses checklist.Responses) (*ValidationReport, error)
	SetBroadcaster(b Broadcaster)
}

// MatchServicer defines the interface for match schedule operations
type MatchServicer interface {
	GetMatches(ctx context.Context, teamID string) ([]models.ProcessedMatch, error)
	GetMatchesForEvent(ctx context.Context, teamNumber, eventKey, simulate string) ([]models.ProcessedMatch, error)
	UpcomingMatches(ctx context.Context, teamID string, limit int) ([]models.UpcomingMatch, error)
	UpcomingMatchesForEvent(ctx context.Context, teamNumber, eventKey, simulate string, limit int) ([]models.UpcomingMatch, error)
	NextMatch(ctx context.Context, teamID string) (*models.UpcomingMatch, error)
	GetPreparationStatus(ctx context.Context, teamID string) (*PreparationStatus, error)
	GetTeamEvents(ctx context.Context, teamNumber string, year int) ([]tba.Event, error)
}

// TeamServicer defines the interface for team and user profile operations
type TeamServicer interface {
	CreateTeam(ctx context.Context, number, name string) (*models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id, number, name string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	SetCurrentEvent(ctx context.Context, teamID, eventKey string) error
	RecordLogin(ctx context.Context, uid, displayName, email string) (*models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SetLastTeam(ctx context.Context, uid, teamID string) error
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetSimulateTime(ctx context.Context) (string, error)
	SetSimulateTime(ctx context.Context, preset string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	PitDisplayQR(ctx context.Context, teamID string) ([]byte, error)
	AllSettings(ctx context.Context) (map[string]interface{}, error)
}

// Ensure concrete types implement interfaces
var (
	_ TemplateServicer   = (*TemplateService)(nil)
	_ InspectionServicer = (*InspectionService)(nil)
	_ MatchServicer      = (*MatchService)(nil)
	_ TeamServicer       = (*TeamService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
)
