package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/team5526/pitcrew/internal/auth"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/services"
	"github.com/team5526/pitcrew/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// TokenVerifier verifies an id token into claims. *auth.Verifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index      *template.Template
	Login      *template.Template
	PitDisplay *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Checklists  services.TemplateServicer
	Inspections services.InspectionServicer
	Matches     services.MatchServicer
	Teams       services.TeamServicer
	Settings    services.SettingsServicer
	Verifier    TokenVerifier
	Cookies     *auth.CookieWriter
	Auth        *auth.Middleware
	Hub         *websocket.Hub
	Log         logger.Logger

	// Production gates development-only features such as time simulation
	Production bool

	templates    *Templates
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	checklists services.TemplateServicer,
	inspections services.InspectionServicer,
	matches services.MatchServicer,
	teams services.TeamServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	verifier TokenVerifier,
	cookies *auth.CookieWriter,
	authMW *auth.Middleware,
	hub *websocket.Hub,
	log logger.Logger,
	production bool,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Checklists:   checklists,
		Inspections:  inspections,
		Matches:      matches,
		Teams:        teams,
		Settings:     settings,
		Verifier:     verifier,
		Cookies:      cookies,
		Auth:         authMW,
		Hub:          hub,
		Log:          log,
		Production:   production,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NewForTesting creates a Handlers instance without loading templates
// (for testing API endpoints)
func NewForTesting(
	checklists services.TemplateServicer,
	inspections services.InspectionServicer,
	matches services.MatchServicer,
	teams services.TeamServicer,
	settings services.SettingsServicer,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Checklists:  checklists,
		Inspections: inspections,
		Matches:     matches,
		Teams:       teams,
		Settings:    settings,
		Cookies:     &auth.CookieWriter{},
		Log:         log,
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Login, err = template.ParseFS(templatesFS, "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}
	if t.PitDisplay, err = template.ParseFS(templatesFS, "pit-display.html"); err != nil {
		return nil, fmt.Errorf("pit display template: %w", err)
	}

	return t, nil
}
