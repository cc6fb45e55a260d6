// Package config resolves client settings from defaults, TOML files,
// environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultResourcePath  = "/api/todos"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultTheme         = "classic"
	DefaultWatchSchedule = "@every 30s"

	// ProjectFileName is looked up in the working directory.
	ProjectFileName = "tada.toml"
)

// Themes known to the ui package.
var Themes = []string{"classic", "neon", "mono"}

// Config is the resolved client configuration.
type Config struct {
	// BaseURL is the origin of the todo service.
	BaseURL string `toml:"base_url"`
	// ResourcePath is where the service mounts the collection.
	ResourcePath string `toml:"resource_path"`
	// HTTPTimeout bounds each request; zero leaves the transport default.
	HTTPTimeout time.Duration `toml:"http_timeout"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	// LogFile receives logs; the TUI discards them when empty.
	LogFile string `toml:"log_file"`

	Theme      string `toml:"theme"`
	NoColor    bool   `toml:"no_color"`
	ForceColor bool   `toml:"force_color"`

	// WatchSchedule is a cron spec for `tada watch`.
	WatchSchedule string `toml:"watch_schedule"`

	// Files lists the config files that were applied, in order.
	Files []string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.ResourcePath = DefaultResourcePath
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
	cfg.WatchSchedule = DefaultWatchSchedule
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: missing host", c.BaseURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	if !validTheme(c.Theme) {
		return fmt.Errorf("theme %q: want one of %s", c.Theme, strings.Join(Themes, ", "))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format %q: want text, json or logfmt", c.LogFormat)
	}
	if c.NoColor && c.ForceColor {
		return fmt.Errorf("no_color and force_color are mutually exclusive")
	}
	return nil
}

// HTTPClient returns a client honoring HTTPTimeout.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.HTTPTimeout}
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}
