package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig    = "config"
	flagBaseURL   = "base-url"
	flagResource  = "resource-path"
	flagTimeout   = "timeout"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagLogFile   = "log-file"
	flagTheme     = "theme"
	flagNoColor   = "no-color"
	flagColor     = "color"
)

// RegisterFlags defines the global flags on fs. Parsing stops at the
// first positional argument so subcommands can parse their own flags.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.SetInterspersed(false)
	fs.StringP(flagConfig, "c", "", "Config file (replaces user and project files)")
	fs.String(flagBaseURL, DefaultBaseURL, "Todo service base URL")
	fs.String(flagResource, DefaultResourcePath, "Collection path on the service")
	fs.Duration(flagTimeout, 0, "Per-request HTTP timeout (0 = none)")
	fs.String(flagLogLevel, DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.String(flagLogFormat, DefaultLogFormat, "Log format: text, json, logfmt")
	fs.String(flagLogFile, "", "Write logs to this file")
	fs.String(flagTheme, DefaultTheme, "Theme: classic, neon, mono")
	fs.Bool(flagNoColor, false, "Disable colors")
	fs.Bool(flagColor, false, "Force colors even when not a terminal")
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := map[string]*string{
		flagBaseURL:   &cfg.BaseURL,
		flagResource:  &cfg.ResourcePath,
		flagLogLevel:  &cfg.LogLevel,
		flagLogFormat: &cfg.LogFormat,
		flagLogFile:   &cfg.LogFile,
		flagTheme:     &cfg.Theme,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(flagTimeout) {
		d, err := fs.GetDuration(flagTimeout)
		if err != nil {
			return err
		}
		cfg.HTTPTimeout = d
	}
	if fs.Changed(flagNoColor) {
		v, err := fs.GetBool(flagNoColor)
		if err != nil {
			return err
		}
		cfg.NoColor = v
		if v {
			cfg.ForceColor = false
		}
	}
	if fs.Changed(flagColor) {
		v, err := fs.GetBool(flagColor)
		if err != nil {
			return err
		}
		cfg.ForceColor = v
		if v {
			cfg.NoColor = false
		}
	}
	return nil
}
