package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/ui"
)

// API is the cache's view of the service plus single-item reads.
type API interface {
	query.API
	Get(ctx context.Context, id int64) (model.Todo, error)
}

// Options wire the runner to its collaborators.
type Options struct {
	// API answers single-item reads (get, edit).
	API API
	// Cache runs list queries and mutations.
	Cache *query.Cache

	Stdout, Stderr io.Writer
	Logger         *log.Logger

	Now      func() time.Time
	Location *time.Location

	// WatchSchedule is the default cron spec for watch.
	WatchSchedule string
	// Interactive starts the TUI for `ui`; nil makes `ui` an error.
	Interactive func(ctx context.Context) error
}

func (o *Options) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.WatchSchedule == "" {
		o.WatchSchedule = "@every 30s"
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}
	cmd, a := args[0], args[1:]
	r := &runner{ctx: ctx, opt: opt}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0
	case "ls", "list":
		return r.doList(a)
	case "search":
		return r.doSearch(a)
	case "get", "show":
		return r.doGet(a)
	case "add":
		return r.doAdd(a)
	case "edit":
		return r.doEdit(a)
	case "done", "toggle":
		return r.doToggle(a)
	case "rm":
		return r.doRemove(a)
	case "watch":
		return r.doWatch(a)
	case "ui":
		if opt.Interactive == nil {
			ui.Fail(opt.Stderr, "ui: interactive mode needs a terminal")
			return 1
		}
		if err := opt.Interactive(ctx); err != nil {
			ui.Fail(opt.Stderr, "ui: "+err.Error())
			return 1
		}
		return 0
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tada - a terminal client for a remote todo service

Usage:
  tada [global flags] <subcommand> [args]

Subcommands:
  ls [--status s] [--search q] [--remote] [-o fmt] [--group]
                     List todos (status: all, active, completed)
  search <text...>   Server-side title search
  get <id>           Show one todo
  add <title...> [--description d] [--due d]
                     Create a todo
  edit <id> [--title t] [--description d] [--due d]
                     Change a todo (--due "" clears it)
  done <id>          Toggle completion
  rm <id>            Delete a todo
  watch [--every spec]
                     Re-list on a cron schedule until interrupted
  ui                 Interactive list (default on a terminal)

Global flags:
  -c, --config file  --base-url url  --timeout dur
  --log-level lvl    --log-format f  --log-file path
  --theme name       --no-color      --color

Due dates: 2006-01-02, "2006-01-02 15:04" or RFC 3339.
Output formats (-o): table, json, yaml.

Examples:
  tada add "Buy milk" --due 2026-10-20
  tada ls --status active
  tada done 2
  tada rm 3
`)
}

type runner struct {
	ctx context.Context
	opt Options
}

func (r *runner) fail(msg string) { ui.Fail(r.opt.Stderr, msg) }

func (r *runner) ok(msg string) { ui.OK(r.opt.Stdout, msg) }

// flags returns a flag set that reports errors on stderr.
func (r *runner) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	return fs
}

// parseID reads a positive todo id.
func parseID(cmd, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %s", cmd, s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s: id must be positive: %s", cmd, s)
	}
	return id, nil
}

// idArg parses the single positional id of cmd, reporting usage errors.
func (r *runner) idArg(cmd string, args []string) (int64, bool) {
	if len(args) != 1 {
		r.fail(fmt.Sprintf("usage: tada %s <id>", cmd))
		return 0, false
	}
	id, err := parseID(cmd, args[0])
	if err != nil {
		r.fail(err.Error())
		return 0, false
	}
	return id, true
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
