package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
)

// TemplateService handles checklist template business logic
type TemplateService struct {
	log  logger.Logger
	repo repository.TemplateRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(log logger.Logger, repo repository.TemplateRepository) *TemplateService {
	return &TemplateService{log: log, repo: repo}
}

// CreateTemplateInput contains the fields for a new template
type CreateTemplateInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Year        int                  `json:"year"`
	Type        models.TemplateType  `json:"type"`
	Elements    []*checklist.Section `json:"elements"`
	CreatedBy   string               `json:"-"`
}

// CreateTemplate creates a new template at version 1.0.0 and makes it the
// active one
func (s *TemplateService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.ChecklistTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.Validation("template name is required")
	}
	if input.Type == "" {
		input.Type = models.TemplateGeneral
	}
	if input.Type != models.TemplateMatch && input.Type != models.TemplateGeneral {
		return nil, errors.Validationf("unknown template type: %s", input.Type)
	}
	if input.Year == 0 {
		input.Year = time.Now().UTC().Year()
	}

	now := time.Now().UTC()
	tpl := &models.ChecklistTemplate{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Version:     "1.0.0",
		Year:        input.Year,
		Type:        input.Type,
		Elements:    input.Elements,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.repo.CreateTemplate(ctx, tpl); err != nil {
		return nil, errors.Persistence("failed to create template", err)
	}

	s.log.Info("template created", "id", tpl.ID, "name", tpl.Name, "year", tpl.Year)
	return tpl, nil
}

// GetTemplate returns one template by id
func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	tpl, err := s.repo.GetTemplate(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("template %s not found", id)
	}
	if err != nil {
		return nil, errors.Persistence("failed to get template", err)
	}
	return tpl, nil
}

// ListTemplates returns templates, optionally filtered by year and type
func (s *TemplateService) ListTemplates(ctx context.Context, year int, templateType string) ([]models.ChecklistTemplate, error) {
	if templateType != "" &&
		templateType != string(models.TemplateMatch) &&
		templateType != string(models.TemplateGeneral) {
		return nil, errors.Validationf("unknown template type: %s", templateType)
	}
	templates, err := s.repo.ListTemplates(ctx, year, templateType)
	if err != nil {
		return nil, errors.Persistence("failed to list templates", err)
	}
	return templates, nil
}

// UpdateTemplate applies a patch to a template. The pre-update state is
// archived and the version's patch component is bumped.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, patch models.TemplatePatch) (*models.ChecklistTemplate, error) {
	current, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	archived := *current

	updated := *current
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, errors.Validation("template name cannot be empty")
		}
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Year != nil {
		updated.Year = *patch.Year
	}
	if patch.Type != nil {
		if *patch.Type != models.TemplateMatch && *patch.Type != models.TemplateGeneral {
			return nil, errors.Validationf("unknown template type: %s", *patch.Type)
		}
		updated.Type = *patch.Type
	}
	if patch.Elements != nil {
		updated.Elements = patch.Elements
	}
	updated.Version = incrementVersion(current.Version)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTemplate(ctx, &updated, &archived); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("template %s not found", id)
		}
		return nil, errors.Persistence("failed to update template", err)
	}

	s.log.Info("template updated", "id", id, "version", updated.Version)
	return &updated, nil
}

// SetActive marks one template as the single active one
func (s *TemplateService) SetActive(ctx context.Context, id string) error {
	if err := s.repo.SetActiveTemplate(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("template %s not found", id)
		}
		return errors.Persistence("failed to activate template", err)
	}
	s.log.Info("template activated", "id", id)
	return nil
}

// GetActive returns the currently active template
func (s *TemplateService) GetActive(ctx context.Context) (*models.ChecklistTemplate, error) {
	tpl, err := s.repo.GetActiveTemplate(ctx)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("no active template")
	}
	if err != nil {
		return nil, errors.Persistence("failed to get active template", err)
	}
	return tpl, nil
}

// ListVersions returns a template's archived versions, newest first
func (s *TemplateService) ListVersions(ctx context.Context, id string) ([]models.ChecklistTemplate, error) {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.repo.ListTemplateVersions(ctx, id)
	if err != nil {
		return nil, errors.Persistence("failed to list template versions", err)
	}
	return versions, nil
}

// incrementVersion bumps the patch component of a semver-ish version string.
// Anything that does not parse as major.minor.patch resets to 1.0.0.
func incrementVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "1.0.0"
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	patch, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "1.0.0"
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}
