package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/store/remote"
	"github.com/Makepad-fr/tada/internal/ui"
)

func (r *runner) doGet(args []string) int {
	var output string
	fs := r.flags("get")
	fs.StringVarP(&output, "output", "o", "table", "table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	id, ok := r.idArg("get", fs.Args())
	if !ok {
		return 2
	}
	f, err := parseFormat(output)
	if err != nil {
		r.fail(err.Error())
		return 2
	}

	todo, err := r.opt.API.Get(r.ctx, id)
	if err != nil {
		return r.remoteFail("get", id, err)
	}
	if f != formatTable {
		if err := encode(r.opt.Stdout, f, todo); err != nil {
			r.fail("encode: " + err.Error())
			return 1
		}
		return 0
	}
	ui.Panel(r.opt.Stdout, r.detailLines(todo))
	return 0
}

func (r *runner) detailLines(td model.Todo) []string {
	t := ui.Current()
	now := r.opt.Now()
	lines := []string{ui.TodoLine(td, lineWidth, now)}
	if td.Description != "" {
		lines = append(lines, "", td.Description)
	}
	lines = append(lines, "")
	stamp := func(label string, ts *model.Time) {
		if ts == nil {
			return
		}
		local := ts.In(r.opt.Location).Format("2006-01-02 15:04")
		lines = append(lines, t.Muted.Render(fmt.Sprintf("%-8s %s (%s)", label, local, ui.Relative(ts.Time, now))))
	}
	stamp("Due", td.DueDate)
	stamp("Created", td.CreatedAt)
	stamp("Updated", td.UpdatedAt)
	return lines
}

func (r *runner) doAdd(args []string) int {
	var desc, due string
	fs := r.flags("add")
	fs.StringVarP(&desc, "description", "d", "", "longer text")
	fs.StringVar(&due, "due", "", "due date")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	title := joinArgs(fs.Args())
	if title == "" {
		r.fail("usage: tada add <title...>")
		return 2
	}

	f := form.New(r.opt.Location)
	f.Values = form.Values{Title: title, Description: desc, Due: due}
	draft, err := f.Submit(r.opt.Now())
	if err != nil {
		return r.invalid("add", err)
	}

	created, err := r.opt.Cache.Mutate(r.ctx, query.Create(draft))
	if err != nil {
		r.fail("add: " + err.Error())
		return 1
	}
	r.ok(fmt.Sprintf("added #%d", created.ID))
	return 0
}

func (r *runner) doEdit(args []string) int {
	var title, desc, due string
	fs := r.flags("edit")
	fs.StringVarP(&title, "title", "t", "", "new title")
	fs.StringVarP(&desc, "description", "d", "", "new description")
	fs.StringVar(&due, "due", "", `new due date ("" clears it)`)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	id, ok := r.idArg("edit", fs.Args())
	if !ok {
		return 2
	}
	if !fs.Changed("title") && !fs.Changed("description") && !fs.Changed("due") {
		r.fail("edit: nothing to change (use --title, --description or --due)")
		return 2
	}

	current, err := r.opt.API.Get(r.ctx, id)
	if err != nil {
		return r.remoteFail("edit", id, err)
	}
	f := form.FromTodo(current, r.opt.Location)
	if fs.Changed("title") {
		f.Values.Title = title
	}
	if fs.Changed("description") {
		f.Values.Description = desc
	}
	if fs.Changed("due") {
		f.Values.Due = due
	}
	todo, err := f.Submit(r.opt.Now())
	if err != nil {
		return r.invalid("edit", err)
	}

	if _, err := r.opt.Cache.Mutate(r.ctx, query.Update(id, todo)); err != nil {
		return r.remoteFail("edit", id, err)
	}
	r.ok(fmt.Sprintf("updated #%d", id))
	return 0
}

func (r *runner) doToggle(args []string) int {
	id, ok := r.idArg("done", args)
	if !ok {
		return 2
	}
	todo, err := r.opt.Cache.Mutate(r.ctx, query.Toggle(id))
	if err != nil {
		return r.remoteFail("done", id, err)
	}
	if todo.Completed {
		r.ok(fmt.Sprintf("completed #%d", id))
	} else {
		r.ok(fmt.Sprintf("reopened #%d", id))
	}
	return 0
}

func (r *runner) doRemove(args []string) int {
	id, ok := r.idArg("rm", args)
	if !ok {
		return 2
	}
	if _, err := r.opt.Cache.Mutate(r.ctx, query.Delete(id)); err != nil {
		return r.remoteFail("rm", id, err)
	}
	r.ok(fmt.Sprintf("removed #%d", id))
	return 0
}

// invalid prints one line per failing field and returns the usage code.
func (r *runner) invalid(cmd string, err error) int {
	var ve *form.ValidationError
	if !errors.As(err, &ve) {
		r.fail(cmd + ": " + err.Error())
		return 1
	}
	for _, field := range form.Fields {
		if msg, ok := ve.Fields[field]; ok {
			r.fail(fmt.Sprintf("%s: %s", cmd, msg))
		}
	}
	return 2
}

func (r *runner) remoteFail(cmd string, id int64, err error) int {
	if remote.IsNotFound(err) {
		r.fail(fmt.Sprintf("%s: todo #%d not found", cmd, id))
		fmt.Fprintln(r.opt.Stderr, ui.Current().Muted.Render("Hint: run `tada ls` to see valid ids"))
		return 1
	}
	r.fail(cmd + ": " + strings.TrimSpace(err.Error()))
	return 1
}
