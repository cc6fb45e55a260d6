package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listQuery is what ls, search and watch share.
type listQuery struct {
	status string
	search string
	remote bool
	output string
	group  bool
}

func (q *listQuery) bind(fs *pflag.FlagSet) {
	fs.StringVar(&q.status, "status", "all", "all, active or completed")
	fs.StringVar(&q.search, "search", "", "case-insensitive title/description match")
	fs.BoolVar(&q.remote, "remote", false, "filter on the server instead of locally")
	fs.StringVarP(&q.output, "output", "o", "table", "table, json or yaml")
	fs.BoolVar(&q.group, "group", false, "group output by pending/done")
}

// key picks the cache key: the full list unless the server is asked
// to narrow it.
func (q *listQuery) key(status model.Status) query.Key {
	switch {
	case !q.remote:
		return query.All()
	case q.search != "":
		return query.Search(q.search)
	case status == model.StatusActive:
		return query.ByStatus(false)
	case status == model.StatusCompleted:
		return query.ByStatus(true)
	}
	return query.All()
}

func (r *runner) doList(args []string) int {
	var q listQuery
	fs := r.flags("ls")
	q.bind(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		r.fail("usage: tada ls [flags]")
		return 2
	}
	return r.list(q)
}

func (r *runner) doSearch(args []string) int {
	q := listQuery{remote: true}
	fs := r.flags("search")
	fs.StringVarP(&q.output, "output", "o", "table", "table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	q.status = "all"
	q.search = joinArgs(fs.Args())
	if q.search == "" {
		r.fail("usage: tada search <text...>")
		return 2
	}
	return r.list(q)
}

func (r *runner) list(q listQuery) int {
	status, err := model.ParseStatus(q.status)
	if err != nil {
		r.fail(err.Error())
		return 2
	}
	f, err := parseFormat(q.output)
	if err != nil {
		r.fail(err.Error())
		return 2
	}
	return r.show(q, status, f)
}

// show loads q and prints it in format.
func (r *runner) show(q listQuery, status model.Status, f format) int {
	snap := r.opt.Cache.Load(r.ctx, q.key(status))
	if snap.State == query.Error {
		r.fail("load: " + snap.Err.Error())
		return 1
	}
	todos := model.Filter(snap.Todos, status, q.search)

	if f != formatTable {
		if err := encode(r.opt.Stdout, f, todos); err != nil {
			r.fail("encode: " + err.Error())
			return 1
		}
		return 0
	}
	r.panel(todos, q.group)
	return 0
}

// panel prints the framed table: header, progress, items.
func (r *runner) panel(todos []model.Todo, group bool) {
	t := ui.Current()
	done, pending := model.Stats(todos)

	var lines []string
	lines = append(lines, ui.Header("Todos", todos))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(done, done+pending, 28)))
	lines = append(lines, "")

	now := r.opt.Now()
	if group {
		lines = append(lines, groupLines(todos, now)...)
	} else {
		lines = append(lines, flatLines(todos, now)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	ui.Panel(r.opt.Stdout, lines)
}

const lineWidth = 96

func flatLines(todos []model.Todo, now time.Time) []string {
	if len(todos) == 0 {
		return []string{ui.Current().Muted.Render("No todos found")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		out = append(out, ui.TodoLine(td, lineWidth, now))
	}
	return out
}

func groupLines(todos []model.Todo, now time.Time) []string {
	t := ui.Current()
	pend := model.Filter(todos, model.StatusActive, "")
	done := model.Filter(todos, model.StatusCompleted, "")

	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, now)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, now)...)
	}
	return lines
}
