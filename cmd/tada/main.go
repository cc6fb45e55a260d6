package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/store/remote"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Root flags (apply to every subcommand)
	fs := pflag.NewFlagSet("tada", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	config.RegisterFlags(fs)

	cfg, err := config.Load(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(cfg.ForceColor, cfg.NoColor)

	// Hand the remaining args to the CLI runner; a bare `tada` on a
	// terminal opens the interactive list.
	rest := fs.Args()
	interactive := ui.IsTerminal(os.Stdout) && ui.IsTerminal(os.Stdin)
	if len(rest) == 0 && interactive {
		rest = []string{"ui"}
	}

	logger, closer, err := newLogger(cfg, len(rest) > 0 && rest[0] == "ui")
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closer.Close()

	client, err := remote.NewClient(remote.ClientConfig{
		BaseURL:      cfg.BaseURL,
		ResourcePath: cfg.ResourcePath,
		HTTPClient:   cfg.HTTPClient(),
		Logger:       logger,
	})
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	cache := query.New(client, logger)
	logger.Debug("starting", "root", client.Root(), "config", cfg.Files)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := cli.Options{
		API:           client,
		Cache:         cache,
		Logger:        logger,
		WatchSchedule: cfg.WatchSchedule,
	}
	if interactive {
		opt.Interactive = func(ctx context.Context) error {
			return tui.Run(ctx, cache, tui.Options{Logger: logger})
		}
	}
	return cli.Run(ctx, rest, opt)
}

// newLogger logs to stderr for subcommands. The interactive list owns
// the terminal, so it only logs to the configured file.
func newLogger(cfg *config.Config, interactive bool) (*log.Logger, io.Closer, error) {
	if interactive || cfg.LogFile != "" {
		return logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	}
	return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), logging.NopCloser, nil
}
