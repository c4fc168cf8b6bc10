package services

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/repository"
)

// Simulated clock presets. Anything but none shifts the match pipeline's
// notion of now into the event schedule.
const (
	SimulateNone   = "none"
	SimulateStart  = "start"
	SimulateMiddle = "middle"
	SimulateEnd    = "end"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// GetSimulateTime returns the simulated clock preset, defaulting to none
func (s *SettingsService) GetSimulateTime(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, "simulate_time")
	if stderrors.Is(err, repository.ErrNotFound) {
		return SimulateNone, nil
	}
	if err != nil {
		return "", errors.Persistence("failed to get simulate_time", err)
	}
	return value, nil
}

// SetSimulateTime sets the simulated clock preset
func (s *SettingsService) SetSimulateTime(ctx context.Context, preset string) error {
	switch preset {
	case SimulateNone, SimulateStart, SimulateMiddle, SimulateEnd:
	default:
		return errors.Validationf("unknown simulate preset: %s", preset)
	}
	if err := s.repo.SetSetting(ctx, "simulate_time", preset); err != nil {
		return errors.Persistence("failed to set simulate_time", err)
	}
	s.log.Info("simulate time set", "preset", preset)
	return nil
}

// GetSetting retrieves an arbitrary setting. Missing keys return an empty value.
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if stderrors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Persistence("failed to get setting", err)
	}
	return value, nil
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.Validation("setting key is required")
	}
	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		return errors.Persistence("failed to set setting", err)
	}
	return nil
}

// PitDisplayQR renders a QR code PNG pointing at the pit display page,
// scoped to one team when teamID is non-empty. The base URL must be
// configured first.
func (s *SettingsService) PitDisplayQR(ctx context.Context, teamID string) ([]byte, error) {
	base, err := s.GetSetting(ctx, "base_url")
	if err != nil {
		return nil, err
	}
	if base == "" {
		return nil, errors.Validation("base_url setting is not configured")
	}

	displayURL := strings.TrimSuffix(base, "/") + "/pit-display"
	if teamID != "" {
		displayURL += "?team=" + url.QueryEscape(teamID)
	}
	return qrcode.Encode(displayURL, qrcode.Medium, 256)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	simulate, err := s.GetSimulateTime(ctx)
	if err != nil {
		return nil, err
	}
	settings["simulate_time"] = simulate

	return settings, nil
}
