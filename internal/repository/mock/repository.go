package mock

import (
	"context"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database
// manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateInspectionError = errors.New("database error")
//	svc := services.NewInspectionService(log, mockRepo)
//	_, err := svc.CreateInspection(ctx, "team-1", input)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Template Errors =====
	CreateTemplateError       error
	GetTemplateError          error
	ListTemplatesError        error
	UpdateTemplateError       error
	SetActiveTemplateError    error
	GetActiveTemplateError    error
	ListTemplateVersionsError error

	// ===== Inspection Errors =====
	CreateInspectionError          error
	GetInspectionError             error
	GetActiveInspectionError       error
	GetActiveMatchInspectionError  error
	ListMatchInspectionsError      error
	ListInspectionsError           error
	ListEventInspectionsError      error
	ListPreviousBatteriesError     error
	UpdateInspectionStatusError    error
	UpdateInspectionResponsesError error
	FinalizeInspectionError        error
	GetMatchPreparationError       error

	// ===== Team/User Errors =====
	CreateTeamError      error
	GetTeamError         error
	GetTeamByNumberError error
	ListTeamsError       error
	UpdateTeamError      error
	DeleteTeamError      error
	SetCurrentEventError error
	UpsertUserError      error
	GetUserError         error
	SetLastTeamError     error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Template Methods =====

func (m *Repository) CreateTemplate(ctx context.Context, tpl *models.ChecklistTemplate) error {
	if m.CreateTemplateError != nil {
		return m.CreateTemplateError
	}
	return m.FullRepository.CreateTemplate(ctx, tpl)
}

func (m *Repository) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	if m.GetTemplateError != nil {
		return nil, m.GetTemplateError
	}
	return m.FullRepository.GetTemplate(ctx, id)
}

func (m *Repository) ListTemplates(ctx context.Context, year int, templateType string) ([]models.ChecklistTemplate, error) {
	if m.ListTemplatesError != nil {
		return nil, m.ListTemplatesError
	}
	return m.FullRepository.ListTemplates(ctx, year, templateType)
}

func (m *Repository) UpdateTemplate(ctx context.Context, updated, archived *models.ChecklistTemplate) error {
	if m.UpdateTemplateError != nil {
		return m.UpdateTemplateError
	}
	return m.FullRepository.UpdateTemplate(ctx, updated, archived)
}

func (m *Repository) SetActiveTemplate(ctx context.Context, id string) error {
	if m.SetActiveTemplateError != nil {
		return m.SetActiveTemplateError
	}
	return m.FullRepository.SetActiveTemplate(ctx, id)
}

func (m *Repository) GetActiveTemplate(ctx context.Context) (*models.ChecklistTemplate, error) {
	if m.GetActiveTemplateError != nil {
		return nil, m.GetActiveTemplateError
	}
	return m.FullRepository.GetActiveTemplate(ctx)
}

func (m *Repository) ListTemplateVersions(ctx context.Context, templateID string) ([]models.ChecklistTemplate, error) {
	if m.ListTemplateVersionsError != nil {
		return nil, m.ListTemplateVersionsError
	}
	return m.FullRepository.ListTemplateVersions(ctx, templateID)
}

// ===== Inspection Methods =====

func (m *Repository) CreateInspection(ctx context.Context, session *models.InspectionSession) error {
	if m.CreateInspectionError != nil {
		return m.CreateInspectionError
	}
	return m.FullRepository.CreateInspection(ctx, session)
}

func (m *Repository) GetInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error) {
	if m.GetInspectionError != nil {
		return nil, m.GetInspectionError
	}
	return m.FullRepository.GetInspection(ctx, teamID, id)
}

func (m *Repository) GetActiveInspection(ctx context.Context, teamID string) (*models.InspectionSession, error) {
	if m.GetActiveInspectionError != nil {
		return nil, m.GetActiveInspectionError
	}
	return m.FullRepository.GetActiveInspection(ctx, teamID)
}

func (m *Repository) GetActiveMatchInspection(ctx context.Context, teamID, matchKey string) (*models.InspectionSession, error) {
	if m.GetActiveMatchInspectionError != nil {
		return nil, m.GetActiveMatchInspectionError
	}
	return m.FullRepository.GetActiveMatchInspection(ctx, teamID, matchKey)
}

func (m *Repository) ListMatchInspections(ctx context.Context, teamID, matchKey string) ([]models.InspectionSession, error) {
	if m.ListMatchInspectionsError != nil {
		return nil, m.ListMatchInspectionsError
	}
	return m.FullRepository.ListMatchInspections(ctx, teamID, matchKey)
}

func (m *Repository) ListInspections(ctx context.Context, teamID string, opts repository.InspectionListOptions) ([]models.InspectionSession, int, error) {
	if m.ListInspectionsError != nil {
		return nil, 0, m.ListInspectionsError
	}
	return m.FullRepository.ListInspections(ctx, teamID, opts)
}

func (m *Repository) ListEventInspections(ctx context.Context, teamID, eventKey string) ([]models.InspectionSession, error) {
	if m.ListEventInspectionsError != nil {
		return nil, m.ListEventInspectionsError
	}
	return m.FullRepository.ListEventInspections(ctx, teamID, eventKey)
}

func (m *Repository) ListPreviousBatteries(ctx context.Context, teamID string, limit int) ([]string, error) {
	if m.ListPreviousBatteriesError != nil {
		return nil, m.ListPreviousBatteriesError
	}
	return m.FullRepository.ListPreviousBatteries(ctx, teamID, limit)
}

func (m *Repository) UpdateInspectionStatus(ctx context.Context, teamID, id string, status models.InspectionStatus) error {
	if m.UpdateInspectionStatusError != nil {
		return m.UpdateInspectionStatusError
	}
	return m.FullRepository.UpdateInspectionStatus(ctx, teamID, id, status)
}

func (m *Repository) UpdateInspectionResponses(ctx context.Context, teamID, id string, responses checklist.Responses) error {
	if m.UpdateInspectionResponsesError != nil {
		return m.UpdateInspectionResponsesError
	}
	return m.FullRepository.UpdateInspectionResponses(ctx, teamID, id, responses)
}

func (m *Repository) FinalizeInspection(ctx context.Context, session *models.InspectionSession, prep *models.MatchPreparation) error {
	if m.FinalizeInspectionError != nil {
		return m.FinalizeInspectionError
	}
	return m.FullRepository.FinalizeInspection(ctx, session, prep)
}

func (m *Repository) GetMatchPreparation(ctx context.Context, teamID, matchKey string) (*models.MatchPreparation, error) {
	if m.GetMatchPreparationError != nil {
		return nil, m.GetMatchPreparationError
	}
	return m.FullRepository.GetMatchPreparation(ctx, teamID, matchKey)
}

// ===== Team/User Methods =====

func (m *Repository) CreateTeam(ctx context.Context, team *models.Team) error {
	if m.CreateTeamError != nil {
		return m.CreateTeamError
	}
	return m.FullRepository.CreateTeam(ctx, team)
}

func (m *Repository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	if m.GetTeamError != nil {
		return nil, m.GetTeamError
	}
	return m.FullRepository.GetTeam(ctx, id)
}

func (m *Repository) GetTeamByNumber(ctx context.Context, number string) (*models.Team, error) {
	if m.GetTeamByNumberError != nil {
		return nil, m.GetTeamByNumberError
	}
	return m.FullRepository.GetTeamByNumber(ctx, number)
}

func (m *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	if m.ListTeamsError != nil {
		return nil, m.ListTeamsError
	}
	return m.FullRepository.ListTeams(ctx)
}

func (m *Repository) UpdateTeam(ctx context.Context, team *models.Team) error {
	if m.UpdateTeamError != nil {
		return m.UpdateTeamError
	}
	return m.FullRepository.UpdateTeam(ctx, team)
}

func (m *Repository) DeleteTeam(ctx context.Context, id string) error {
	if m.DeleteTeamError != nil {
		return m.DeleteTeamError
	}
	return m.FullRepository.DeleteTeam(ctx, id)
}

func (m *Repository) SetCurrentEvent(ctx context.Context, teamID, eventKey string) error {
	if m.SetCurrentEventError != nil {
		return m.SetCurrentEventError
	}
	return m.FullRepository.SetCurrentEvent(ctx, teamID, eventKey)
}

func (m *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	if m.UpsertUserError != nil {
		return m.UpsertUserError
	}
	return m.FullRepository.UpsertUser(ctx, user)
}

func (m *Repository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	return m.FullRepository.GetUser(ctx, uid)
}

func (m *Repository) SetLastTeam(ctx context.Context, uid, teamID string) error {
	if m.SetLastTeamError != nil {
		return m.SetLastTeamError
	}
	return m.FullRepository.SetLastTeam(ctx, uid, teamID)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// Ensure the mock satisfies the full repository interface
var _ repository.FullRepository = (*Repository)(nil)
