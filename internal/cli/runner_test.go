package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/store/remote"
	"github.com/Makepad-fr/tada/internal/store/remote/remotetest"
	"github.com/Makepad-fr/tada/internal/ui"
)

var _ API = (*remote.Client)(nil)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type harness struct {
	opt            Options
	stdout, stderr *bytes.Buffer
	server         *remotetest.Server
}

func newHarness(t *testing.T, seed ...model.Todo) *harness {
	t.Helper()
	ui.SetColorForcing(false, true)
	ui.SetTheme("mono")
	t.Cleanup(func() { ui.SetTheme("classic") })

	server := remotetest.NewServer(t, seed...)
	logger := log.New(io.Discard)
	client, err := remote.NewClient(remote.ClientConfig{BaseURL: server.URL, Logger: logger})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, server: server}
	h.opt = Options{
		API:      client,
		Cache:    query.New(client, logger),
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Run(context.Background(), args, h.opt)
}

func (h *harness) count(method string) int {
	n := 0
	for _, r := range h.server.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func TestUsage(t *testing.T) {
	h := newHarness(t)

	if code := h.run(); code != 2 {
		t.Errorf("no args: code %d, want 2", code)
	}
	if code := h.run("help"); code != 0 || !strings.Contains(h.stdout.String(), "Subcommands:") {
		t.Errorf("help: code %d, out %q", code, h.stdout.String())
	}
	if code := h.run("frobnicate"); code != 2 || !strings.Contains(h.stderr.String(), "unknown subcommand: frobnicate") {
		t.Errorf("unknown: code %d, err %q", code, h.stderr.String())
	}
	if code := h.run("ls", "--status", "someday"); code != 2 {
		t.Errorf("bad status: code %d, want 2", code)
	}
	if code := h.run("ls", "-o", "xml"); code != 2 {
		t.Errorf("bad format: code %d, want 2", code)
	}
	if code := h.run("ls", "--nope"); code != 2 {
		t.Errorf("bad flag: code %d, want 2", code)
	}
}

func TestListTable(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk"}, model.Todo{Title: "Pay rent", Completed: true})

	if code := h.run("ls"); code != 0 {
		t.Fatalf("ls: code %d, stderr %q", code, h.stderr.String())
	}
	out := h.stdout.String()
	for _, want := range []string{"Todos", "[ ] #1 Buy milk", "[x] #2 Pay rent", "Total 2", " 50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	if code := h.run("ls"); code != 0 {
		t.Fatalf("code %d", code)
	}
	if !strings.Contains(h.stdout.String(), "No todos found") {
		t.Errorf("empty ls:\n%s", h.stdout.String())
	}
}

func TestListLocalFilters(t *testing.T) {
	h := newHarness(t,
		model.Todo{Title: "Buy milk"},
		model.Todo{Title: "Pay rent", Completed: true},
		model.Todo{Title: "Call mom", Description: "ask about milk"},
	)

	h.run("ls", "--status", "completed")
	if out := h.stdout.String(); !strings.Contains(out, "#2 Pay rent") || strings.Contains(out, "#1 Buy milk") {
		t.Errorf("completed:\n%s", out)
	}

	h.run("ls", "--search", "MILK")
	out := h.stdout.String()
	if !strings.Contains(out, "#1 Buy milk") || !strings.Contains(out, "#3 Call mom") || strings.Contains(out, "Pay rent") {
		t.Errorf("search:\n%s", out)
	}

	for _, r := range h.server.Requests() {
		if r.Path != "/api/todos" {
			t.Errorf("local filtering should only list all, saw %s %s", r.Method, r.Path)
		}
	}
}

func TestListGroup(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk"})
	h.run("ls", "--group")
	out := h.stdout.String()
	if !strings.Contains(out, "Pending") || !strings.Contains(out, "Done") || !strings.Contains(out, "(none)") {
		t.Errorf("group:\n%s", out)
	}
}

func TestListRemote(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk"}, model.Todo{Title: "Pay rent", Completed: true})

	if code := h.run("ls", "--remote", "--status", "completed", "-o", "json"); code != 0 {
		t.Fatalf("code %d: %s", code, h.stderr.String())
	}
	var got []model.Todo
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, h.stdout.String())
	}
	if len(got) != 1 || got[0].Title != "Pay rent" {
		t.Errorf("got %+v", got)
	}

	reqs := h.server.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/todos/status" || last.RawQuery != "completed=true" {
		t.Errorf("request = %s?%s", last.Path, last.RawQuery)
	}
}

func TestSearchEncodesQuery(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Test & Query"}, model.Todo{Title: "Other"})

	if code := h.run("search", "Test", "&", "Query"); code != 0 {
		t.Fatalf("code %d: %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "Test & Query") || strings.Contains(h.stdout.String(), "Other") {
		t.Errorf("search output:\n%s", h.stdout.String())
	}
	reqs := h.server.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/todos/search" || last.RawQuery != "title=Test%20%26%20Query" {
		t.Errorf("request = %s?%s", last.Path, last.RawQuery)
	}

	if code := h.run("search"); code != 2 {
		t.Errorf("empty search: code %d, want 2", code)
	}
}

func TestListYAML(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk", Description: "2 litres"})
	if code := h.run("ls", "-o", "yaml"); code != 0 {
		t.Fatalf("code %d", code)
	}
	out := h.stdout.String()
	for _, want := range []string{"- id: 1", "title: Buy milk", "description: 2 litres", "completed: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestLoadFailure(t *testing.T) {
	h := newHarness(t)
	h.server.FailNext(http.MethodGet, http.StatusInternalServerError)
	if code := h.run("ls"); code != 1 || !strings.Contains(h.stderr.String(), "load:") {
		t.Errorf("code %d, stderr %q", code, h.stderr.String())
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	code := h.run("add", "Buy", "milk", "--description", "2 litres", "--due", "2026-10-20")
	if code != 0 {
		t.Fatalf("add: code %d, stderr %q", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "added #1") {
		t.Errorf("stdout %q", h.stdout.String())
	}
	todos := h.server.Todos()
	if len(todos) != 1 {
		t.Fatalf("server has %d todos", len(todos))
	}
	got := todos[0]
	want := time.Date(2026, 10, 20, 23, 59, 0, 0, time.UTC)
	if got.Title != "Buy milk" || got.Description != "2 litres" || got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Errorf("created %+v", got)
	}
}

func TestAddValidation(t *testing.T) {
	h := newHarness(t)

	if code := h.run("add"); code != 2 {
		t.Errorf("no title: code %d, want 2", code)
	}
	code := h.run("add", "Late", "--due", "2026-10-01", "--description", strings.Repeat("x", 501))
	if code != 2 {
		t.Fatalf("invalid add: code %d, want 2", code)
	}
	errOut := h.stderr.String()
	for _, want := range []string{"Description cannot exceed 500 characters", "Due date cannot be in the past"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q: %q", want, errOut)
		}
	}
	if n := h.count(http.MethodPost); n != 0 {
		t.Errorf("invalid add sent %d POSTs", n)
	}
}

func TestEdit(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Old", Description: "keep me", Completed: true})

	if code := h.run("edit", "1", "--title", "New"); code != 0 {
		t.Fatalf("edit: code %d, stderr %q", code, h.stderr.String())
	}
	got := h.server.Todos()[0]
	if got.Title != "New" || got.Description != "keep me" || !got.Completed {
		t.Errorf("after edit %+v", got)
	}

	if code := h.run("edit", "1"); code != 2 {
		t.Errorf("edit without changes: code %d, want 2", code)
	}
	if code := h.run("edit", "1", "--title", "  "); code != 2 || !strings.Contains(h.stderr.String(), "Title is required") {
		t.Errorf("blank title: code %d, stderr %q", code, h.stderr.String())
	}
	if code := h.run("edit", "42", "--title", "x"); code != 1 || !strings.Contains(h.stderr.String(), "todo #42 not found") {
		t.Errorf("missing: code %d, stderr %q", code, h.stderr.String())
	}
}

func TestToggleAndRemove(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "A"})

	if code := h.run("done", "1"); code != 0 || !strings.Contains(h.stdout.String(), "completed #1") {
		t.Errorf("first toggle: code %d, out %q", code, h.stdout.String())
	}
	if code := h.run("done", "1"); code != 0 || !strings.Contains(h.stdout.String(), "reopened #1") {
		t.Errorf("second toggle: code %d, out %q", code, h.stdout.String())
	}
	if code := h.run("rm", "1"); code != 0 || !strings.Contains(h.stdout.String(), "removed #1") {
		t.Errorf("rm: code %d, out %q", code, h.stdout.String())
	}
	if len(h.server.Todos()) != 0 {
		t.Error("todo still on the server")
	}

	if code := h.run("done", "abc"); code != 2 || !strings.Contains(h.stderr.String(), "not a number") {
		t.Errorf("bad id: code %d, stderr %q", code, h.stderr.String())
	}
	if code := h.run("rm"); code != 2 {
		t.Errorf("rm without id: code %d", code)
	}
	if code := h.run("rm", "1"); code != 1 || !strings.Contains(h.stderr.String(), "not found") {
		t.Errorf("rm missing: code %d, stderr %q", code, h.stderr.String())
	}
}

func TestGet(t *testing.T) {
	stamp := model.NewTime(testNow.Add(-48 * time.Hour))
	h := newHarness(t, model.Todo{Title: "Buy milk", Description: "2 litres", CreatedAt: stamp, UpdatedAt: stamp})

	if code := h.run("get", "1"); code != 0 {
		t.Fatalf("get: code %d", code)
	}
	out := h.stdout.String()
	for _, want := range []string{"#1 Buy milk", "2 litres", "Created", "2026-10-15 12:00 (2 days ago)"} {
		if !strings.Contains(out, want) {
			t.Errorf("get missing %q:\n%s", want, out)
		}
	}

	if code := h.run("get", "1", "-o", "json"); code != 0 {
		t.Fatalf("get json: code %d", code)
	}
	var got model.Todo
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil || got.ID != 1 {
		t.Errorf("decoded %+v, err %v", got, err)
	}

	if code := h.run("get", "9"); code != 1 {
		t.Errorf("missing: code %d, want 1", code)
	}
}

func TestGetAndEditReadOneTodo(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk"}, model.Todo{Title: "Walk dog"})

	if code := h.run("get", "2"); code != 0 {
		t.Fatalf("get: code %d, stderr %q", code, h.stderr.String())
	}
	if code := h.run("edit", "2", "--title", "Walk cat"); code != 0 {
		t.Fatalf("edit: code %d, stderr %q", code, h.stderr.String())
	}

	var reads []string
	for _, r := range h.server.Requests() {
		if r.Method == http.MethodGet && r.Path == "/api/todos/2" {
			reads = append(reads, r.Path)
		}
	}
	if len(reads) != 2 {
		t.Errorf("single-item reads: got %v, want one per command", reads)
	}
	if got := h.server.Todos()[1].Title; got != "Walk cat" {
		t.Errorf("title after edit: got %q", got)
	}
}

func TestWatch(t *testing.T) {
	h := newHarness(t, model.Todo{Title: "Buy milk"})

	if code := h.run("watch", "--every", "not a schedule"); code != 2 {
		t.Errorf("bad schedule: code %d, want 2", code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	h.stdout.Reset()
	code := Run(ctx, []string{"watch", "--every", "@every 1h"}, h.opt)
	if code != 0 {
		t.Fatalf("watch: code %d, stderr %q", code, h.stderr.String())
	}
	if n := strings.Count(h.stdout.String(), "#1 Buy milk"); n != 1 {
		t.Errorf("watch rendered %d times before the first tick, want 1", n)
	}
}

func TestInteractive(t *testing.T) {
	h := newHarness(t)
	if code := h.run("ui"); code != 1 {
		t.Errorf("ui without terminal: code %d, want 1", code)
	}

	called := false
	h.opt.Interactive = func(context.Context) error { called = true; return nil }
	if code := h.run("ui"); code != 0 || !called {
		t.Errorf("ui: code %d, called %v", code, called)
	}
}
