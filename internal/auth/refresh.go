package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
)

// RefreshResult is a renewed session from the token endpoint
type RefreshResult struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	UID          string
}

// Refresher exchanges refresh tokens for fresh id tokens
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// HTTPRefresher talks to the provider's secure token endpoint
type HTTPRefresher struct {
	tokenURL   string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPRefresher creates a refresher for the given token endpoint
func NewHTTPRefresher(tokenURL, apiKey string, log logger.Logger) *HTTPRefresher {
	return &HTTPRefresher{
		tokenURL: tokenURL,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// refreshResponse is the wire shape of the token endpoint
type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// Refresh exchanges a refresh token for a new id token
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := r.tokenURL + "?key=" + url.QueryEscape(r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("token refresh request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.log.Warn("token refresh rejected", "status", resp.StatusCode)
		return nil, errors.Auth(fmt.Sprintf("token refresh rejected: status %d: %s",
			resp.StatusCode, string(body)))
	}

	var decoded refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Upstream("failed to decode refresh response", err)
	}
	if decoded.IDToken == "" {
		return nil, errors.Auth("refresh response carried no id token")
	}

	expiresIn := time.Hour
	if secs, err := strconv.Atoi(decoded.ExpiresIn); err == nil && secs > 0 {
		expiresIn = time.Duration(secs) * time.Second
	}

	return &RefreshResult{
		IDToken:      decoded.IDToken,
		RefreshToken: decoded.RefreshToken,
		ExpiresIn:    expiresIn,
		UID:          decoded.UserID,
	}, nil
}

var _ Refresher = (*HTTPRefresher)(nil)
