package services

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/models"
	"github.com/team5526/pitcrew/internal/repository"
	"github.com/team5526/pitcrew/pkg/tba"
)

// MatchServiceRepository defines the repository methods needed by MatchService
type MatchServiceRepository interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeamByNumber(ctx context.Context, number string) (*models.Team, error)
	GetMatchPreparation(ctx context.Context, teamID, matchKey string) (*models.MatchPreparation, error)
}

// MatchService builds the enriched match schedule: raw TBA data merged with
// rankings, team nicknames and this team's inspection state.
type MatchService struct {
	log        logger.Logger
	repo       MatchServiceRepository
	tba        tba.Client
	settings   SettingsServicer
	production bool
}

// NewMatchService creates a new MatchService. In production the simulated
// clock is disabled, whatever the stored setting or request says.
func NewMatchService(log logger.Logger, repo MatchServiceRepository, client tba.Client, settings SettingsServicer, production bool) *MatchService {
	return &MatchService{log: log, repo: repo, tba: client, settings: settings, production: production}
}

// teamFetchConcurrency bounds parallel team record lookups against TBA
const teamFetchConcurrency = 4

// GetMatches returns the team's processed schedule for its current event,
// sorted by effective start time ascending.
func (s *MatchService) GetMatches(ctx context.Context, teamID string) ([]models.ProcessedMatch, error) {
	processed, _, err := s.fetchProcessed(ctx, teamID)
	return processed, err
}

// UpcomingMatches returns matches that have not been played yet, each with
// its countdown. A limit of 0 returns all of them.
func (s *MatchService) UpcomingMatches(ctx context.Context, teamID string, limit int) ([]models.UpcomingMatch, error) {
	processed, now, err := s.fetchProcessed(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return upcomingFrom(processed, now, limit), nil
}

func upcomingFrom(processed []models.ProcessedMatch, now int64, limit int) []models.UpcomingMatch {
	var upcoming []models.UpcomingMatch
	for _, m := range processed {
		if !m.IsUpcoming {
			continue
		}
		upcoming = append(upcoming, models.UpcomingMatch{
			ProcessedMatch: m,
			TimeUntilMatch: effectiveTime(m.Time, m.PredictedTime) - now,
		})
		if limit > 0 && len(upcoming) >= limit {
			break
		}
	}
	return upcoming
}

// NextMatch returns the team's next unplayed match, or nil when the schedule
// is exhausted
func (s *MatchService) NextMatch(ctx context.Context, teamID string) (*models.UpcomingMatch, error) {
	upcoming, err := s.UpcomingMatches(ctx, teamID, 1)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, nil
	}
	return &upcoming[0], nil
}

// Alert levels for the pit display countdown
const (
	AlertNone    = "none"
	AlertInfo    = "info"
	AlertWarning = "warning"
	AlertUrgent  = "urgent"
)

// PreparationStatus is the pit-display readiness summary for the next match
type PreparationStatus struct {
	Match               *models.UpcomingMatch `json:"match"`
	AlertLevel          string                `json:"alertLevel"`
	MinutesUntilMatch   int64                 `json:"minutesUntilMatch"`
	InspectionCompleted bool                  `json:"inspectionCompleted"`
	BatteryNumber       string                `json:"batteryNumber,omitempty"`
}

// GetPreparationStatus computes the countdown alert for the team's next match
func (s *MatchService) GetPreparationStatus(ctx context.Context, teamID string) (*PreparationStatus, error) {
	next, err := s.NextMatch(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &PreparationStatus{AlertLevel: AlertNone}, nil
	}

	minutes := next.TimeUntilMatch / 60
	status := &PreparationStatus{
		Match:             next,
		AlertLevel:        alertLevel(minutes),
		MinutesUntilMatch: minutes,
	}
	if next.RobotInspection != nil {
		status.InspectionCompleted = next.RobotInspection.Completed
		status.BatteryNumber = next.RobotInspection.Battery
	}
	return status, nil
}

// alertLevel maps minutes-to-match onto the display alert ladder
func alertLevel(minutes int64) string {
	switch {
	case minutes <= 5:
		return AlertUrgent
	case minutes <= 10:
		return AlertWarning
	case minutes <= 15:
		return AlertInfo
	default:
		return AlertNone
	}
}

// GetTeamEvents returns the TBA events a team attends in a year
func (s *MatchService) GetTeamEvents(ctx context.Context, teamNumber string, year int) ([]tba.Event, error) {
	if teamNumber == "" {
		return nil, errors.Validation("team number is required")
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	events, err := s.tba.FetchTeamEvents(ctx, "frc"+teamNumber, year)
	if err != nil {
		return nil, errors.Upstream("failed to fetch team events", err)
	}
	return events, nil
}

// GetMatchesForEvent returns the processed schedule for an explicit team
// number and event key. The team does not have to be registered; a
// registered team also gets its inspection state joined in. A non-empty
// simulate preset overrides the stored simulate_time setting.
func (s *MatchService) GetMatchesForEvent(ctx context.Context, teamNumber, eventKey, simulate string) ([]models.ProcessedMatch, error) {
	teamID, err := s.resolveTeamID(ctx, teamNumber, eventKey)
	if err != nil {
		return nil, err
	}
	processed, _, err := s.pipeline(ctx, teamID, teamNumber, eventKey, simulate)
	return processed, err
}

// UpcomingMatchesForEvent is GetMatchesForEvent filtered to unplayed
// matches, each with its countdown. A limit of 0 returns all of them.
func (s *MatchService) UpcomingMatchesForEvent(ctx context.Context, teamNumber, eventKey, simulate string, limit int) ([]models.UpcomingMatch, error) {
	teamID, err := s.resolveTeamID(ctx, teamNumber, eventKey)
	if err != nil {
		return nil, err
	}
	processed, now, err := s.pipeline(ctx, teamID, teamNumber, eventKey, simulate)
	if err != nil {
		return nil, err
	}
	return upcomingFrom(processed, now, limit), nil
}

// resolveTeamID maps a team number onto a registered team id when one
// exists. Unregistered teams still get a schedule, just without the
// inspection join.
func (s *MatchService) resolveTeamID(ctx context.Context, teamNumber, eventKey string) (string, error) {
	if teamNumber == "" || eventKey == "" {
		return "", errors.Validation("team number and event key are required")
	}
	team, err := s.repo.GetTeamByNumber(ctx, teamNumber)
	if stderrors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Persistence("failed to look up team", err)
	}
	return team.ID, nil
}

func (s *MatchService) getTeam(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.repo.GetTeam(ctx, teamID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("team %s not found", teamID)
	}
	if err != nil {
		return nil, errors.Persistence("failed to get team", err)
	}
	return team, nil
}

// fetchProcessed runs the enrichment pipeline for a registered team's
// current event and returns the sorted schedule along with the effective
// clock used for upcoming classification.
func (s *MatchService) fetchProcessed(ctx context.Context, teamID string) ([]models.ProcessedMatch, int64, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, 0, err
	}
	if team.CurrentEventKey == "" {
		return nil, 0, errors.Validationf("team %s has no current event", teamID)
	}
	return s.pipeline(ctx, team.ID, team.Number, team.CurrentEventKey, "")
}

// pipeline fetches, enriches and sorts the schedule. An empty teamID skips
// the inspection join.
func (s *MatchService) pipeline(ctx context.Context, teamID, teamNumber, eventKey, simulate string) ([]models.ProcessedMatch, int64, error) {
	teamKey := "frc" + teamNumber

	var matches []tba.Match
	rankings := map[string]tba.Ranking{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.tba.FetchTeamMatches(gctx, teamKey, eventKey)
		if err != nil {
			return errors.Upstream("failed to fetch match schedule", err)
		}
		return nil
	})
	g.Go(func() error {
		r, err := s.tba.FetchEventRankings(gctx, eventKey)
		if err != nil {
			return errors.Upstream("failed to fetch event rankings", err)
		}
		rankings = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	teams, err := s.fetchTeamRecords(ctx, matches)
	if err != nil {
		return nil, 0, err
	}

	now := s.resolveNow(ctx, matches, simulate)

	processed := make([]models.ProcessedMatch, 0, len(matches))
	for _, m := range matches {
		pm := processMatch(m, teamKey, rankings, teams, now)
		if teamID != "" {
			prep, err := s.repo.GetMatchPreparation(ctx, teamID, m.Key)
			if err == nil {
				pm.RobotInspection = &models.RobotInspection{
					Completed: prep.InspectionCompleted,
					Timestamp: prep.LastUpdated.Format(time.RFC3339),
					Battery:   prep.BatteryNumber,
				}
			} else if !stderrors.Is(err, repository.ErrNotFound) {
				return nil, 0, errors.Persistence("failed to get match preparation", err)
			}
		}
		processed = append(processed, pm)
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return effectiveTime(processed[i].Time, processed[i].PredictedTime) <
			effectiveTime(processed[j].Time, processed[j].PredictedTime)
	})
	return processed, now, nil
}

// fetchTeamRecords resolves every distinct team key in the schedule to its
// TBA record, a handful at a time.
func (s *MatchService) fetchTeamRecords(ctx context.Context, matches []tba.Match) (map[string]*tba.Team, error) {
	seen := map[string]bool{}
	var keys []string
	for _, m := range matches {
		for _, key := range append(m.Alliances.Red.TeamKeys, m.Alliances.Blue.TeamKeys...) {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	teams := make(map[string]*tba.Team, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamFetchConcurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			team, err := s.tba.FetchTeam(gctx, key)
			if err != nil {
				return errors.Upstream("failed to fetch team "+key, err)
			}
			mu.Lock()
			teams[key] = team
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return teams, nil
}

// processMatch merges one raw match with rankings and team records
func processMatch(m tba.Match, teamKey string, rankings map[string]tba.Ranking, teams map[string]*tba.Team, now int64) models.ProcessedMatch {
	pm := models.ProcessedMatch{
		Key:           m.Key,
		CompLevel:     m.CompLevel,
		MatchNumber:   m.MatchNumber,
		Time:          m.Time,
		PredictedTime: m.PredictedTime,
		ActualTime:    m.ActualTime,
	}
	pm.IsUpcoming = m.ActualTime == 0 && effectiveTime(m.Time, m.PredictedTime) > now

	// Red is checked first: a team listed on both alliances reports as red
	if containsKey(m.Alliances.Red.TeamKeys, teamKey) {
		pm.TeamAlliance = "red"
	} else if containsKey(m.Alliances.Blue.TeamKeys, teamKey) {
		pm.TeamAlliance = "blue"
	}

	pm.Alliances.Red = buildAllianceView(m.Alliances.Red, rankings, teams)
	pm.Alliances.Blue = buildAllianceView(m.Alliances.Blue, rankings, teams)
	return pm
}

func buildAllianceView(a tba.Alliance, rankings map[string]tba.Ranking, teams map[string]*tba.Team) models.AllianceView {
	view := models.AllianceView{
		TeamKeys: a.TeamKeys,
		Teams:    make([]models.TeamInfo, 0, len(a.TeamKeys)),
		Score:    a.Score,
	}
	for _, key := range a.TeamKeys {
		info := models.TeamInfo{Number: numberFromKey(key), Nickname: key}
		if team, ok := teams[key]; ok && team.Nickname != "" {
			info.Nickname = team.Nickname
		}
		if ranking, ok := rankings[key]; ok {
			rank := ranking.Rank
			score := ranking.RankingScore
			info.Rank = &rank
			info.RankingScore = &score
		}
		view.Teams = append(view.Teams, info)
	}
	return view
}

// effectiveTime prefers the predicted start over the scheduled one
func effectiveTime(scheduled, predicted int64) int64 {
	if predicted > 0 {
		return predicted
	}
	return scheduled
}

// numberFromKey strips the frc prefix from a TBA team key
func numberFromKey(key string) string {
	if len(key) > 3 && key[:3] == "frc" {
		return key[3:]
	}
	return key
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// resolveNow returns the effective clock. The simulate_time setting (or a
// per-request override) shifts it to a point in the event schedule for demos
// and testing: start lands shortly after the first match, middle at the
// schedule midpoint, end shortly before the last match. Production always
// runs on the real clock.
func (s *MatchService) resolveNow(ctx context.Context, matches []tba.Match, override string) int64 {
	realNow := time.Now().Unix()
	if s.production {
		return realNow
	}
	preset := override
	if preset == "" {
		if s.settings == nil {
			return realNow
		}
		stored, err := s.settings.GetSimulateTime(ctx)
		if err != nil {
			return realNow
		}
		preset = stored
	}
	if preset == "" || preset == SimulateNone {
		return realNow
	}
	if len(matches) == 0 {
		return realNow
	}

	minTime := effectiveTime(matches[0].Time, matches[0].PredictedTime)
	maxTime := minTime
	for _, m := range matches[1:] {
		t := effectiveTime(m.Time, m.PredictedTime)
		if t < minTime {
			minTime = t
		}
		if t > maxTime {
			maxTime = t
		}
	}

	const offset = 2 * 60 * 60 // two hours
	switch preset {
	case SimulateStart:
		return minTime + offset
	case SimulateMiddle:
		return minTime + (maxTime-minTime)/2
	case SimulateEnd:
		return maxTime - offset
	default:
		return realNow
	}
}
