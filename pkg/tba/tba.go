// Package tba provides a client for The Blue Alliance read API (v3).
package tba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/team5526/pitcrew/internal/logger"
)

// Alliance is one side of a match as reported by TBA
type Alliance struct {
	TeamKeys []string `json:"team_keys"`
	Score    *int     `json:"score"`
}

// Match is a raw match record from the TBA schedule API
type Match struct {
	Key         string `json:"key"`
	CompLevel   string `json:"comp_level"`
	MatchNumber int    `json:"match_number"`
	SetNumber   int    `json:"set_number"`
	EventKey    string `json:"event_key"`
	Alliances   struct {
		Red  Alliance `json:"red"`
		Blue Alliance `json:"blue"`
	} `json:"alliances"`
	Time          int64 `json:"time"`
	PredictedTime int64 `json:"predicted_time"`
	ActualTime    int64 `json:"actual_time"`
}

// Ranking is one team's standing at an event
type Ranking struct {
	TeamKey      string  `json:"team_key"`
	Rank         int     `json:"rank"`
	RankingScore float64 `json:"ranking_score"`
}

// rankingsResponse is the wire shape of the event rankings endpoint
type rankingsResponse struct {
	Rankings []struct {
		TeamKey    string    `json:"team_key"`
		Rank       int       `json:"rank"`
		SortOrders []float64 `json:"sort_orders"`
	} `json:"rankings"`
}

// Team is a team record from TBA
type Team struct {
	Key        string `json:"key"`
	TeamNumber int    `json:"team_number"`
	Nickname   string `json:"nickname"`
	Name       string `json:"name"`
	City       string `json:"city"`
}

// Event is an event record from TBA
type Event struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	EventCode string `json:"event_code"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	City      string `json:"city"`
}

// Client defines the interface for TBA operations
type Client interface {
	// FetchTeamMatches retrieves a team's match schedule for one event
	FetchTeamMatches(ctx context.Context, teamKey, eventKey string) ([]Match, error)
	// FetchEventRankings retrieves the ranking map for an event, keyed by team key
	FetchEventRankings(ctx context.Context, eventKey string) (map[string]Ranking, error)
	// FetchTeam retrieves a single team record
	FetchTeam(ctx context.Context, teamKey string) (*Team, error)
	// FetchTeamEvents retrieves the events a team attends in a given year
	FetchTeamEvents(ctx context.Context, teamKey string, year int) ([]Event, error)
	// BaseURL returns the configured TBA base URL
	BaseURL() string
}

// HTTPClient is a real HTTP client for The Blue Alliance
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new TBA client authenticated with an API key
func NewHTTPClient(baseURL, apiKey string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a TBA client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL, apiKey string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured TBA base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// doGet executes a GET request against a TBA endpoint and decodes the JSON
// response. Non-2xx statuses are returned as errors.
func (c *HTTPClient) doGet(ctx context.Context, endpoint string, response interface{}) error {
	apiURL := c.baseURL + endpoint

	c.log.Debug("TBA request", "method", "GET", "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-TBA-Auth-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TBA request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("TBA returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode TBA response: %w", err)
	}

	return nil
}

// FetchTeamMatches retrieves a team's match schedule for one event
func (c *HTTPClient) FetchTeamMatches(ctx context.Context, teamKey, eventKey string) ([]Match, error) {
	var matches []Match
	endpoint := fmt.Sprintf("/team/%s/event/%s/matches", url.PathEscape(teamKey), url.PathEscape(eventKey))
	if err := c.doGet(ctx, endpoint, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// FetchEventRankings retrieves the ranking map for an event.
// The first sort order is the ranking score in every modern TBA season.
func (c *HTTPClient) FetchEventRankings(ctx context.Context, eventKey string) (map[string]Ranking, error) {
	var resp rankingsResponse
	endpoint := fmt.Sprintf("/event/%s/rankings", url.PathEscape(eventKey))
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	rankings := make(map[string]Ranking, len(resp.Rankings))
	for _, r := range resp.Rankings {
		ranking := Ranking{TeamKey: r.TeamKey, Rank: r.Rank}
		if len(r.SortOrders) > 0 {
			ranking.RankingScore = r.SortOrders[0]
		}
		rankings[r.TeamKey] = ranking
	}
	return rankings, nil
}

// FetchTeam retrieves a single team record
func (c *HTTPClient) FetchTeam(ctx context.Context, teamKey string) (*Team, error) {
	var team Team
	endpoint := fmt.Sprintf("/team/%s", url.PathEscape(teamKey))
	if err := c.doGet(ctx, endpoint, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// FetchTeamEvents retrieves the events a team attends in a given year
func (c *HTTPClient) FetchTeamEvents(ctx context.Context, teamKey string, year int) ([]Event, error) {
	var events []Event
	endpoint := fmt.Sprintf("/team/%s/events/%d", url.PathEscape(teamKey), year)
	if err := c.doGet(ctx, endpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}
