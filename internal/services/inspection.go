package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
)

// Broadcaster pushes live updates to connected clients
type Broadcaster interface {
	BroadcastInspectionUpdate(teamID string, session *models.InspectionSession)
	BroadcastMatchAlert(teamID string, payload interface{})
}

// InspectionServiceRepository defines the repository methods needed by InspectionService
type InspectionServiceRepository interface {
	repository.InspectionRepository
	repository.TemplateRepository
}

// InspectionService handles inspection session business logic
type InspectionService struct {
	log         logger.Logger
	repo        InspectionServiceRepository
	broadcaster Broadcaster
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(log logger.Logger, repo InspectionServiceRepository) *InspectionService {
	return &InspectionService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *InspectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateInspectionInput contains the fields for starting a session
type CreateInspectionInput struct {
	TemplateID    string `json:"templateId"`
	EventKey      string `json:"eventKey"`
	MatchKey      string `json:"matchKey"`
	BatteryNumber string `json:"batteryNumber"`
	Inspector     string `json:"inspector"`
	Notes         string `json:"notes"`
}

// CreateInspection starts a new session against a template. When TemplateID
// is empty the active template is used. Any in-progress session the team has
// is silently abandoned; match-bound sessions are additionally subject to the
// per-match and battery-reuse conflict rules.
func (s *InspectionService) CreateInspection(ctx context.Context, teamID string, input CreateInspectionInput) (*models.InspectionSession, error) {
	if teamID == "" {
		return nil, errors.Validation("team id is required")
	}
	if input.Inspector == "" {
		return nil, errors.Validation("inspector is required")
	}

	tpl, err := s.resolveTemplate(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &models.InspectionSession{
		ID:              uuid.NewString(),
		TeamID:          teamID,
		TemplateID:      tpl.ID,
		TemplateVersion: tpl.Version,
		EventKey:        input.EventKey,
		MatchKey:        input.MatchKey,
		BatteryNumber:   input.BatteryNumber,
		Inspector:       input.Inspector,
		Notes:           input.Notes,
		StartTime:       now,
		Status:          models.StatusInProgress,
		IsLatest:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateInspection(ctx, session); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrMatchInProgress):
			return nil, errors.Conflictf("an inspection for match %s is already in progress", input.MatchKey)
		case stderrors.Is(err, repository.ErrBatteryUsed):
			return nil, errors.Conflictf("battery %s was already used in a recent match", input.BatteryNumber)
		default:
			return nil, errors.Persistence("failed to create inspection", err)
		}
	}

	s.log.Info("inspection started",
		"id", session.ID, "team", teamID, "match", input.MatchKey, "template", tpl.ID)
	s.broadcast(teamID, session)
	return session, nil
}

func (s *InspectionService) resolveTemplate(ctx context.Context, templateID string) (*models.ChecklistTemplate, error) {
	if templateID != "" {
		tpl, err := s.repo.GetTemplate(ctx, templateID)
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("template %s not found", templateID)
		}
		if err != nil {
			return nil, errors.Persistence("failed to get template", err)
		}
		return tpl, nil
	}

	tpl, err := s.repo.GetActiveTemplate(ctx)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Validation("no active template to inspect against")
	}
	if err != nil {
		return nil, errors.Persistence("failed to get active template", err)
	}
	return tpl, nil
}

// GetInspection returns one session by id
func (s *InspectionService) GetInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error) {
	session, err := s.repo.GetInspection(ctx, teamID, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("inspection %s not found", id)
	}
	if err != nil {
		return nil, errors.Persistence("failed to get inspection", err)
	}
	return session, nil
}

// GetActive returns the team's current in-progress session, or nil when idle
func (s *InspectionService) GetActive(ctx context.Context, teamID string) (*models.InspectionSession, error) {
	session, err := s.repo.GetActiveInspection(ctx, teamID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("failed to get active inspection", err)
	}
	return session, nil
}

// GetActiveForMatch returns the in-progress session for a match, or nil
func (s *InspectionService) GetActiveForMatch(ctx context.Context, teamID, matchKey string) (*models.InspectionSession, error) {
	session, err := s.repo.GetActiveMatchInspection(ctx, teamID, matchKey)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence("failed to get active match inspection", err)
	}
	return session, nil
}

// ListForMatch returns every session for a match, newest first
func (s *InspectionService) ListForMatch(ctx context.Context, teamID, matchKey string) ([]models.InspectionSession, error) {
	sessions, err := s.repo.ListMatchInspections(ctx, teamID, matchKey)
	if err != nil {
		return nil, errors.Persistence("failed to list match inspections", err)
	}
	return sessions, nil
}

// ListForEvent returns every session recorded at an event
func (s *InspectionService) ListForEvent(ctx context.Context, teamID, eventKey string) ([]models.InspectionSession, error) {
	sessions, err := s.repo.ListEventInspections(ctx, teamID, eventKey)
	if err != nil {
		return nil, errors.Persistence("failed to list event inspections", err)
	}
	return sessions, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListInspections returns a page of sessions plus the total count
func (s *InspectionService) ListInspections(ctx context.Context, teamID string, opts repository.InspectionListOptions) ([]models.InspectionSession, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = defaultPageLimit
	}
	if opts.Limit > maxPageLimit {
		opts.Limit = maxPageLimit
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, 0, errors.Validationf("unknown status: %s", opts.Status)
	}

	sessions, total, err := s.repo.ListInspections(ctx, teamID, opts)
	if err != nil {
		return nil, 0, errors.Persistence("failed to list inspections", err)
	}
	return sessions, total, nil
}

// ListPreviousBatteries returns the team's recently used battery numbers
func (s *InspectionService) ListPreviousBatteries(ctx context.Context, teamID string, limit int) ([]string, error) {
	batteries, err := s.repo.ListPreviousBatteries(ctx, teamID, limit)
	if err != nil {
		return nil, errors.Persistence("failed to list previous batteries", err)
	}
	return batteries, nil
}

// SaveResponses overwrites the session's response map and re-validates it.
// Only in-progress sessions accept edits.
func (s *InspectionService) SaveResponses(ctx context.Context, teamID, id string, responses checklist.Responses) (*checklist.Result, error) {
	session, err := s.GetInspection(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, errors.Conflictf("inspection is %s and no longer accepts responses", session.Status)
	}

	result := s.validateAgainstTemplate(ctx, session, responses)

	if err := s.repo.UpdateInspectionResponses(ctx, teamID, id, responses); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("inspection %s not found", id)
		}
		return nil, errors.Persistence("failed to save responses", err)
	}

	session.Responses = responses
	session.CriticalFailures = result.CriticalFailures
	s.broadcast(teamID, session)
	return &result, nil
}

// FinalizeInput contains the closing fields of a session
type FinalizeInput struct {
	Results       []models.StepResult `json:"results"`
	Responses     checklist.Responses `json:"responses"`
	BatteryNumber string              `json:"batteryNumber"`
	Notes         string              `json:"notes"`
}

// FinalizeInspection closes an in-progress session. When the request carries
// a response map it replaces the session's and unanswered required items
// reject the finalize; a step-results-only finalize skips that check. A
// critical failure or any failed step result forces the failed status. For
// match-bound sessions the match preparation summary is upserted in the same
// transaction.
func (s *InspectionService) FinalizeInspection(ctx context.Context, teamID, id string, input FinalizeInput) (*models.InspectionSession, error) {
	session, err := s.GetInspection(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, errors.Conflictf("inspection is already %s", session.Status)
	}

	if input.Responses != nil {
		session.Responses = input.Responses
	}
	result := s.validateAgainstTemplate(ctx, session, session.Responses)
	if input.Responses != nil && !result.IsComplete {
		return nil, errors.Validation("required checklist items are unanswered")
	}

	session.CriticalFailures = result.CriticalFailures
	failed := len(result.CriticalFailures) > 0
	for _, step := range input.Results {
		if !step.Passed {
			failed = true
			break
		}
	}
	if failed {
		session.Status = models.StatusFailed
	} else {
		session.Status = models.StatusCompleted
	}

	now := time.Now().UTC()
	session.EndTime = &now
	session.UpdatedAt = now
	if input.Results != nil {
		session.Results = input.Results
	}
	if input.BatteryNumber != "" {
		session.BatteryNumber = input.BatteryNumber
	}
	if input.Notes != "" {
		session.Notes = input.Notes
	}
	if session.MatchKey != "" && session.BatteryNumber == "" {
		return nil, errors.Validation("battery number is required for match inspections")
	}

	var prep *models.MatchPreparation
	if session.MatchKey != "" {
		prep = &models.MatchPreparation{
			TeamID:              teamID,
			MatchKey:            session.MatchKey,
			InspectionCompleted: session.Status == models.StatusCompleted,
			InspectionID:        session.ID,
			BatteryNumber:       session.BatteryNumber,
			LastUpdated:         now,
		}
	}

	if err := s.repo.FinalizeInspection(ctx, session, prep); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("inspection %s not found", id)
		}
		return nil, errors.Persistence("failed to finalize inspection", err)
	}

	s.log.Info("inspection finalized",
		"id", id, "team", teamID, "status", session.Status,
		"criticalFailures", len(session.CriticalFailures))
	s.broadcast(teamID, session)
	return session, nil
}

// CancelInspection cancels an in-progress session
func (s *InspectionService) CancelInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error) {
	session, err := s.GetInspection(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, errors.Conflictf("inspection is already %s", session.Status)
	}

	if err := s.repo.UpdateInspectionStatus(ctx, teamID, id, models.StatusCancelled); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("inspection %s not found", id)
		}
		return nil, errors.Persistence("failed to cancel inspection", err)
	}

	session.Status = models.StatusCancelled
	session.UpdatedAt = time.Now().UTC()
	s.log.Info("inspection cancelled", "id", id, "team", teamID)
	s.broadcast(teamID, session)
	return session, nil
}

// ValidationReport is the dry-run validation payload for the checklist UI:
// the raw validation result plus per-section progress and the next item the
// inspector should answer.
type ValidationReport struct {
	checklist.Result
	Progress       []checklist.SectionSummary `json:"progress"`
	TotalItems     int                        `json:"totalItems"`
	NextIncomplete *checklist.Item            `json:"nextIncomplete,omitempty"`
}

// ValidateResponses runs the pure checklist validation against a template
// without touching any session
func (s *InspectionService) ValidateResponses(ctx context.Context, templateID string, responses checklist.Responses) (*ValidationReport, error) {
	tpl, err := s.resolveTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return &ValidationReport{
		Result:         checklist.Validate(tpl.Elements, responses),
		Progress:       checklist.Summarize(tpl.Elements, responses),
		TotalItems:     checklist.CountItems(tpl.Elements),
		NextIncomplete: checklist.NextIncomplete(tpl.Elements, responses),
	}, nil
}

// validateAgainstTemplate validates responses against the session's template.
// A vanished template degrades to an empty tree rather than blocking edits.
func (s *InspectionService) validateAgainstTemplate(ctx context.Context, session *models.InspectionSession, responses checklist.Responses) checklist.Result {
	tpl, err := s.repo.GetTemplate(ctx, session.TemplateID)
	if err != nil {
		s.log.Warn("template lookup failed during validation",
			"template", session.TemplateID, "error", err)
		return checklist.Validate(nil, responses)
	}
	return checklist.Validate(tpl.Elements, responses)
}

func (s *InspectionService) broadcast(teamID string, session *models.InspectionSession) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInspectionUpdate(teamID, session)
	}
}
