// Package app wires configuration, storage, services, auth and transport
// into a runnable server.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/team5526/pitcrew/internal/auth"
	"github.com/team5526/pitcrew/internal/config"
	"github.com/team5526/pitcrew/internal/handlers"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/internal/repository"
	"github.com/team5526/pitcrew/internal/services"
	"github.com/team5526/pitcrew/internal/websocket"
	"github.com/team5526/pitcrew/pkg/tba"
)

// App holds all application dependencies
type App struct {
	log          logger.Logger
	cfg          *config.Config
	handlers     *handlers.Handlers
	repo         *repository.Repository
	cancelAlerts context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, tbaClient tba.Client, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Services
	settingsService := services.NewSettingsService(log, repo)
	templateService := services.NewTemplateService(log, repo)
	inspectionService := services.NewInspectionService(log, repo)
	matchService := services.NewMatchService(log, repo, tbaClient, settingsService, cfg.IsProduction())
	teamService := services.NewTeamService(log, repo)

	// WebSocket hub feeds the pit displays
	hub := websocket.New(log, matchService)
	hub.Start()
	inspectionService.SetBroadcaster(hub)

	// Match alert countdown, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartMatchAlerts(ctx)

	// Auth stack
	keys := auth.NewHTTPKeyCache(cfg.Auth.PublicKeysURL, cfg.Auth.KeyCacheTTL, log)
	verifier := auth.NewVerifier(cfg.Auth.ProjectID, keys, log)
	refresher := auth.NewHTTPRefresher(cfg.Auth.TokenURL, cfg.Auth.APIKey, log)
	cookies := &auth.CookieWriter{Domain: cfg.Auth.CookieDomain, Secure: cfg.IsProduction()}
	authMW := auth.NewMiddleware(verifier, refresher, cookies, log)
	authMW.Margin = cfg.Auth.RefreshMargin

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		templateService,
		inspectionService,
		matchService,
		teamService,
		settingsService,
		templatesFS,
		staticServer,
		verifier,
		cookies,
		authMW,
		hub,
		log,
		cfg.IsProduction(),
	)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:          log,
		cfg:          cfg,
		handlers:     h,
		repo:         repo,
		cancelAlerts: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelAlerts != nil {
		a.cancelAlerts()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run() error {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		// QR codes need an address other devices can reach
		ip := getPreferredIP(realNetworkProvider{})
		baseURL = fmt.Sprintf("http://%s%s", ip, a.cfg.Addr)
	}
	a.setDefaultBaseURL(baseURL)

	a.log.Info("server starting", "addr", a.cfg.Addr, "url", baseURL)
	return http.ListenAndServe(a.cfg.Addr, a.Router())
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if the current value uses localhost (useless for pit display QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, "base_url")

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, "base_url", baseURL); err != nil {
			a.log.Warn("failed to set default base_url", "error", err)
		} else {
			a.log.Info("default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access. Prefers private
// network addresses and falls back to localhost when nothing suitable exists.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12
func isPrivate172(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
}
