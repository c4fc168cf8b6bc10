package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
)

// TeamServiceRepository defines the repository methods needed by TeamService
type TeamServiceRepository interface {
	repository.TeamRepository
	repository.UserRepository
}

// TeamService handles team registration and user profile logic
type TeamService struct {
	log  logger.Logger
	repo TeamServiceRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(log logger.Logger, repo TeamServiceRepository) *TeamService {
	return &TeamService{log: log, repo: repo}
}

// CreateTeam registers a new team
func (s *TeamService) CreateTeam(ctx context.Context, number, name string) (*models.Team, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errors.Validation("team number is required")
	}
	for _, r := range number {
		if !unicode.IsDigit(r) {
			return nil, errors.Validationf("team number must be numeric: %s", number)
		}
	}

	team := &models.Team{
		ID:     uuid.NewString(),
		Number: number,
		Name:   name,
	}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, errors.Persistence("failed to create team", err)
	}

	s.log.Info("team created", "id", team.ID, "number", number)
	return team, nil
}

// GetTeam returns one team by id
func (s *TeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.repo.GetTeam(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("team %s not found", id)
	}
	if err != nil {
		return nil, errors.Persistence("failed to get team", err)
	}
	return team, nil
}

// ListTeams returns all registered teams
func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return nil, errors.Persistence("failed to list teams", err)
	}
	return teams, nil
}

// UpdateTeam updates a team's number and name
func (s *TeamService) UpdateTeam(ctx context.Context, id, number, name string) (*models.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if number != "" {
		team.Number = number
	}
	if name != "" {
		team.Name = name
	}
	if err := s.repo.UpdateTeam(ctx, team); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("team %s not found", id)
		}
		return nil, errors.Persistence("failed to update team", err)
	}
	return team, nil
}

// DeleteTeam removes a team
func (s *TeamService) DeleteTeam(ctx context.Context, id string) error {
	if err := s.repo.DeleteTeam(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("team %s not found", id)
		}
		return errors.Persistence("failed to delete team", err)
	}
	s.log.Info("team deleted", "id", id)
	return nil
}

// SetCurrentEvent records the event a team is attending
func (s *TeamService) SetCurrentEvent(ctx context.Context, teamID, eventKey string) error {
	if err := s.repo.SetCurrentEvent(ctx, teamID, eventKey); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("team %s not found", teamID)
		}
		return errors.Persistence("failed to set current event", err)
	}
	s.log.Info("current event set", "team", teamID, "event", eventKey)
	return nil
}

// RecordLogin refreshes a user's profile after a successful sign-in
func (s *TeamService) RecordLogin(ctx context.Context, uid, displayName, email string) (*models.User, error) {
	if uid == "" {
		return nil, errors.Validation("uid is required")
	}
	user := &models.User{
		UID:         uid,
		DisplayName: displayName,
		Email:       email,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, errors.Persistence("failed to upsert user", err)
	}
	return s.GetUser(ctx, uid)
}

// GetUser returns a user profile by uid
func (s *TeamService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, uid)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("user %s not found", uid)
	}
	if err != nil {
		return nil, errors.Persistence("failed to get user", err)
	}
	return user, nil
}

// SetLastTeam remembers the team a user most recently worked with. The user
// profile row is created on demand, so only the team has to exist.
func (s *TeamService) SetLastTeam(ctx context.Context, uid, teamID string) error {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.repo.SetLastTeam(ctx, uid, teamID); err != nil {
		return errors.Persistence("failed to set last team", err)
	}
	return nil
}
