// Package config loads server configuration from a YAML file with
// environment variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TBAConfig configures The Blue Alliance API client
type TBAConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// AuthConfig configures the token verification gate
type AuthConfig struct {
	ProjectID     string        `yaml:"project_id"`
	APIKey        string        `yaml:"api_key"`
	PublicKeysURL string        `yaml:"public_keys_url"`
	TokenURL      string        `yaml:"token_url"`
	RefreshMargin time.Duration `yaml:"refresh_margin"`
	KeyCacheTTL   time.Duration `yaml:"key_cache_ttl"`
	CookieDomain  string        `yaml:"cookie_domain"`
}

// Config holds all server settings
type Config struct {
	Addr        string     `yaml:"addr"`
	DBPath      string     `yaml:"db_path"`
	Environment string     `yaml:"environment"` // "development" or "production"
	BaseURL     string     `yaml:"base_url"`
	LogLevel    string     `yaml:"log_level"`
	LogFile     string     `yaml:"log_file"`
	TBA         TBAConfig  `yaml:"tba"`
	Auth        AuthConfig `yaml:"auth"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Addr:        ":8080",
		DBPath:      "pitcrew.db",
		Environment: "development",
		LogLevel:    "info",
		TBA: TBAConfig{
			BaseURL: "https://www.thebluealliance.com/api/v3",
		},
		Auth: AuthConfig{
			PublicKeysURL: "https://www.googleapis.com/service_accounts/v1/metadata/x509/securetoken@system.gserviceaccount.com",
			TokenURL:      "https://securetoken.googleapis.com/v1/token",
			RefreshMargin: 5 * time.Minute,
			KeyCacheTTL:   time.Hour,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine, run on defaults + env
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values from the environment. Secrets are expected
// to arrive this way in deployments.
func (c *Config) applyEnv() {
	setIfPresent(&c.Addr, "PITCREW_ADDR")
	setIfPresent(&c.DBPath, "PITCREW_DB_PATH")
	setIfPresent(&c.Environment, "PITCREW_ENV")
	setIfPresent(&c.BaseURL, "PITCREW_BASE_URL")
	setIfPresent(&c.LogLevel, "PITCREW_LOG_LEVEL")
	setIfPresent(&c.LogFile, "PITCREW_LOG_FILE")
	setIfPresent(&c.TBA.APIKey, "TBA_API_KEY")
	setIfPresent(&c.Auth.ProjectID, "AUTH_PROJECT_ID")
	setIfPresent(&c.Auth.APIKey, "AUTH_API_KEY")
}

func setIfPresent(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// IsProduction reports whether the server runs in production mode.
// Development-only features (time simulation) are gated on this.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
