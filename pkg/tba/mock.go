package tba

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a mock TBA client for testing
type MockClient struct {
	matches     []Match
	rankings    map[string]Ranking
	teams       map[string]*Team
	events      []Event
	baseURL     string
	matchesErr  error
	rankingsErr error
	teamErr     error
	eventsErr   error

	mu          sync.Mutex
	teamFetches int // counts FetchTeam calls; fetched concurrently
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithMatches sets the matches to return
func WithMatches(matches []Match) MockOption {
	return func(m *MockClient) {
		m.matches = matches
	}
}

// WithMatchesError sets an error to return from FetchTeamMatches
func WithMatchesError(err error) MockOption {
	return func(m *MockClient) {
		m.matchesErr = err
	}
}

// WithRankings sets the ranking map to return
func WithRankings(rankings map[string]Ranking) MockOption {
	return func(m *MockClient) {
		m.rankings = rankings
	}
}

// WithRankingsError sets an error to return from FetchEventRankings
func WithRankingsError(err error) MockOption {
	return func(m *MockClient) {
		m.rankingsErr = err
	}
}

// WithTeams sets the team records to return, keyed by team key
func WithTeams(teams map[string]*Team) MockOption {
	return func(m *MockClient) {
		m.teams = teams
	}
}

// WithTeamError sets an error to return from FetchTeam
func WithTeamError(err error) MockOption {
	return func(m *MockClient) {
		m.teamErr = err
	}
}

// WithEvents sets the events to return
func WithEvents(events []Event) MockOption {
	return func(m *MockClient) {
		m.events = events
	}
}

// WithEventsError sets an error to return from FetchTeamEvents
func WithEventsError(err error) MockOption {
	return func(m *MockClient) {
		m.eventsErr = err
	}
}

// NewMockClient creates a new mock TBA client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		rankings: make(map[string]Ranking),
		teams:    make(map[string]*Team),
		baseURL:  "http://tba.mock",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchTeamMatches returns the configured matches
func (m *MockClient) FetchTeamMatches(ctx context.Context, teamKey, eventKey string) ([]Match, error) {
	if m.matchesErr != nil {
		return nil, m.matchesErr
	}
	return m.matches, nil
}

// FetchEventRankings returns the configured rankings
func (m *MockClient) FetchEventRankings(ctx context.Context, eventKey string) (map[string]Ranking, error) {
	if m.rankingsErr != nil {
		return nil, m.rankingsErr
	}
	return m.rankings, nil
}

// FetchTeam returns the configured team record, or a synthetic record when
// the key is unknown
func (m *MockClient) FetchTeam(ctx context.Context, teamKey string) (*Team, error) {
	m.mu.Lock()
	m.teamFetches++
	m.mu.Unlock()
	if m.teamErr != nil {
		return nil, m.teamErr
	}
	if team, ok := m.teams[teamKey]; ok {
		return team, nil
	}
	return &Team{Key: teamKey, Nickname: fmt.Sprintf("Team %s", teamKey)}, nil
}

// FetchTeamEvents returns the configured events
func (m *MockClient) FetchTeamEvents(ctx context.Context, teamKey string, year int) ([]Event, error) {
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	return m.events, nil
}

// BaseURL returns the mock base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// TeamFetchCount returns how many times FetchTeam was called
func (m *MockClient) TeamFetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamFetches
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
