package repository

import (
	"context"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
)

// TemplateRepository defines checklist template data operations
type TemplateRepository interface {
	// CreateTemplate writes the live template and its initial version-archive
	// row in one transaction.
	CreateTemplate(ctx context.Context, tpl *models.ChecklistTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error)
	ListTemplates(ctx context.Context, year int, templateType string) ([]models.ChecklistTemplate, error)
	// UpdateTemplate archives the pre-update snapshot and overwrites the live
	// row in one transaction.
	UpdateTemplate(ctx context.Context, updated, archived *models.ChecklistTemplate) error
	// SetActiveTemplate clears every active flag and sets the one for id,
	// in one transaction.
	SetActiveTemplate(ctx context.Context, id string) error
	GetActiveTemplate(ctx context.Context) (*models.ChecklistTemplate, error)
	ListTemplateVersions(ctx context.Context, templateID string) ([]models.ChecklistTemplate, error)
}

// InspectionListOptions filters and paginates inspection listings
type InspectionListOptions struct {
	Page     int
	Limit    int
	Status   models.InspectionStatus
	MatchKey string
}

// InspectionRepository defines inspection session data operations
type InspectionRepository interface {
	// CreateInspection runs the whole session-creation protocol in one
	// transaction: abandons the team's current in-progress session, rejects a
	// still-active match session (ErrMatchInProgress) or a reused battery
	// (ErrBatteryUsed), demotes is_latest on prior match sessions, snapshots
	// the team's recent battery numbers onto the new session and inserts it.
	CreateInspection(ctx context.Context, session *models.InspectionSession) error
	GetInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error)
	GetActiveInspection(ctx context.Context, teamID string) (*models.InspectionSession, error)
	GetActiveMatchInspection(ctx context.Context, teamID, matchKey string) (*models.InspectionSession, error)
	ListMatchInspections(ctx context.Context, teamID, matchKey string) ([]models.InspectionSession, error)
	ListInspections(ctx context.Context, teamID string, opts InspectionListOptions) ([]models.InspectionSession, int, error)
	ListEventInspections(ctx context.Context, teamID, eventKey string) ([]models.InspectionSession, error)
	ListPreviousBatteries(ctx context.Context, teamID string, limit int) ([]string, error)
	UpdateInspectionStatus(ctx context.Context, teamID, id string, status models.InspectionStatus) error
	UpdateInspectionResponses(ctx context.Context, teamID, id string, responses checklist.Responses) error
	// FinalizeInspection updates the finished session and, when prep is
	// non-nil, upserts the match preparation summary in the same transaction.
	FinalizeInspection(ctx context.Context, session *models.InspectionSession, prep *models.MatchPreparation) error
	GetMatchPreparation(ctx context.Context, teamID, matchKey string) (*models.MatchPreparation, error)
}

// TeamRepository defines team data operations
type TeamRepository interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeamByNumber(ctx context.Context, number string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id string) error
	SetCurrentEvent(ctx context.Context, teamID, eventKey string) error
}

// UserRepository defines user profile data operations
type UserRepository interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SetLastTeam(ctx context.Context, uid, teamID string) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	TemplateRepository
	InspectionRepository
	TeamRepository
	UserRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
