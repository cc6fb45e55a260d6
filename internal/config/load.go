package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Load resolves configuration from, lowest to highest priority:
//  1. Defaults
//  2. User config file ($XDG_CONFIG_HOME/tada/config.toml or ~/.config/tada/config.toml)
//  3. Project config file (./tada.toml)
//  4. An explicit --config file, which replaces 2 and 3
//  5. Environment variables (TADA_*, plus NO_COLOR)
//  6. Flags registered with RegisterFlags
//
// fs is parsed with args; positional arguments remain in fs.Args().
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	setDefaults(cfg)

	explicit, _ := fs.GetString(flagConfig)
	if explicit != "" {
		path := expandPath(explicit)
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		for _, path := range []string{findUserConfigFile(), findProjectConfigFile()} {
			if path == "" {
				continue
			}
			if err := loadConfigFile(cfg, path); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}

	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.ResourcePath = "/" + strings.Trim(cfg.ResourcePath, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Theme = strings.ToLower(cfg.Theme)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func findUserConfigFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return existing(filepath.Join(dir, "tada", "config.toml"))
}

func findProjectConfigFile() string {
	return existing(ProjectFileName)
}

func existing(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_RESOURCE_PATH"); v != "" {
		cfg.ResourcePath = v
	}
	if v := os.Getenv("TADA_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_WATCH_SCHEDULE"); v != "" {
		cfg.WatchSchedule = v
	}
	if v := os.Getenv("TADA_NO_COLOR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TADA_NO_COLOR: %w", err)
		}
		cfg.NoColor = b
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	return nil
}

// expandPath expands ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
