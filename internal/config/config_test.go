package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate points every lookup location at empty temp dirs and clears
// TADA_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"TADA_BASE_URL", "TADA_RESOURCE_PATH", "TADA_HTTP_TIMEOUT", "TADA_LOG_LEVEL",
		"TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_THEME", "TADA_WATCH_SCHEDULE",
		"TADA_NO_COLOR", "NO_COLOR",
	} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func load(t *testing.T, args ...string) (*Config, *pflag.FlagSet, error) {
	t.Helper()
	fs := pflag.NewFlagSet("tada", pflag.ContinueOnError)
	RegisterFlags(fs)
	cfg, err := Load(fs, args)
	return cfg, fs, err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, _, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.ResourcePath != DefaultResourcePath {
		t.Errorf("ResourcePath: got %q", cfg.ResourcePath)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" || cfg.Theme != "classic" {
		t.Errorf("log/theme defaults: %+v", cfg)
	}
	if cfg.WatchSchedule != DefaultWatchSchedule {
		t.Errorf("WatchSchedule: got %q", cfg.WatchSchedule)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files: got %v, want none", cfg.Files)
	}
}

func TestFileLayering(t *testing.T) {
	dir := isolate(t)
	userFile := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "tada", "config.toml")
	writeFile(t, userFile, `
base_url = "http://user.example:9000"
theme = "neon"
http_timeout = "5s"
`)
	writeFile(t, filepath.Join(dir, ProjectFileName), `
theme = "mono"
resource_path = "v2/todos/"
`)

	cfg, _, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://user.example:9000" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Theme != "mono" {
		t.Errorf("Theme: got %q, want project file to win", cfg.Theme)
	}
	if cfg.ResourcePath != "/v2/todos" {
		t.Errorf("ResourcePath: got %q, want /v2/todos", cfg.ResourcePath)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout: got %v", cfg.HTTPTimeout)
	}
	if len(cfg.Files) != 2 {
		t.Errorf("Files: got %v", cfg.Files)
	}
}

func TestExplicitConfigReplacesDiscovery(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectFileName), `theme = "mono"`)
	other := filepath.Join(t.TempDir(), "other.toml")
	writeFile(t, other, `base_url = "https://todos.example"`)

	cfg, _, err := load(t, "--config", other)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != DefaultTheme {
		t.Errorf("Theme: got %q, project file should be skipped", cfg.Theme)
	}
	if cfg.BaseURL != "https://todos.example" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectFileName), `base_ulr = "http://typo"`)

	_, _, err := load(t)
	if err == nil || !strings.Contains(err.Error(), "base_ulr") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ProjectFileName), `
base_url = "http://file.example"
log_level = "info"
`)
	t.Setenv("TADA_BASE_URL", "http://env.example/")
	t.Setenv("TADA_LOG_LEVEL", "debug")
	t.Setenv("TADA_HTTP_TIMEOUT", "750ms")
	t.Setenv("NO_COLOR", "1")

	cfg, _, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://env.example" {
		t.Errorf("BaseURL: got %q, want trailing slash trimmed env value", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 750*time.Millisecond {
		t.Errorf("HTTPTimeout: got %v", cfg.HTTPTimeout)
	}
	if !cfg.NoColor {
		t.Error("NO_COLOR should disable colors")
	}
}

func TestBadEnvDuration(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_HTTP_TIMEOUT", "soon")
	if _, _, err := load(t); err == nil {
		t.Fatal("expected error for bad TADA_HTTP_TIMEOUT")
	}
}

func TestFlagsOverrideEverything(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_THEME", "neon")
	t.Setenv("NO_COLOR", "1")

	cfg, fs, err := load(t, "--theme", "MONO", "--color", "--timeout", "2s", "ls", "--status", "done")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "mono" {
		t.Errorf("Theme: got %q", cfg.Theme)
	}
	if !cfg.ForceColor || cfg.NoColor {
		t.Errorf("color: force=%v no=%v", cfg.ForceColor, cfg.NoColor)
	}
	if cfg.HTTPTimeout != 2*time.Second {
		t.Errorf("HTTPTimeout: got %v", cfg.HTTPTimeout)
	}
	if got := fs.Args(); len(got) != 3 || got[0] != "ls" || got[2] != "done" {
		t.Errorf("Args: got %v, want subcommand untouched", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		setDefaults(&cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"https", func(c *Config) { c.BaseURL = "https://x.example" }, ""},
		{"no scheme", func(c *Config) { c.BaseURL = "localhost:8080" }, "scheme"},
		{"ftp", func(c *Config) { c.BaseURL = "ftp://x.example" }, "scheme"},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, "host"},
		{"theme", func(c *Config) { c.Theme = "pastel" }, "theme"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }, "http_timeout"},
		{"both color flags", func(c *Config) { c.NoColor, c.ForceColor = true, true }, "exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate: got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TADA_TEST_DIR", "/var/tmp")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/logs/tada.log", filepath.Join(home, "logs", "tada.log")},
		{"$TADA_TEST_DIR/tada.log", "/var/tmp/tada.log"},
		{"relative.log", "relative.log"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
