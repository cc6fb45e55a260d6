// Package tui is the interactive todo list: a bubbletea program over the
// query cache. All I/O runs in commands; Update is the only place cache
// state changes.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/ui"
)

// fetchResultMsg carries a completed list fetch.
type fetchResultMsg struct {
	res query.Result
}

// mutationResultMsg is sent when an asynchronous mutation call completes.
type mutationResultMsg struct {
	res query.MutationResult
}

// Options tune a Model. Zero values pick sensible defaults.
type Options struct {
	Logger *log.Logger
	// Now is the clock used for due-date checks and relative times.
	Now func() time.Time
	// Location interprets due dates typed without a zone.
	Location *time.Location
	// Initial size until the first tea.WindowSizeMsg.
	Width, Height int
}

// Model is the bubbletea model of the todo list.
type Model struct {
	ctx    context.Context
	cache  *query.Cache
	logger *log.Logger
	now    func() time.Time
	loc    *time.Location

	list     list.Model
	spinner  spinner.Model
	search   textinput.Model
	help     help.Model
	spinning bool

	snap    query.Snapshot
	loaded  bool
	visible []model.Todo

	status    model.Status
	searching bool

	form *formView
	// pending counts mutations in flight.
	pending     int
	mutationErr string

	width, height int
}

// New builds the model; Init issues the first fetch.
func New(ctx context.Context, cache *query.Cache, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	t := ui.Current()

	l := list.New(nil, itemDelegate{now: opts.Now}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = t.Help
	l.SetStatusBarItemName("todo", "todos")

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(t.Accent))

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search title or description..."
	ti.CharLimit = 200

	h := help.New()
	h.Styles.ShortKey = t.Accent
	h.Styles.ShortDesc = t.Help

	m := Model{
		ctx:     ctx,
		cache:   cache,
		logger:  opts.Logger,
		now:     opts.Now,
		loc:     opts.Location,
		list:    l,
		spinner: sp,
		search:  ti,
		help:    h,
		width:   opts.Width,
		height:  opts.Height,
	}
	m.resize()
	return m
}

// Init mounts the list: the All query goes to Loading and its fetch is
// issued immediately.
func (m Model) Init() tea.Cmd {
	req := m.cache.Begin(query.All())
	return tea.Batch(m.spinner.Tick, m.fetch(req))
}

func (m Model) fetch(req query.Request) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return fetchResultMsg{res: req.Run(ctx)}
	}
}

func (m *Model) mutate(mut query.Mutation) tea.Cmd {
	m.pending++
	m.mutationErr = ""
	ctx, cache := m.ctx, m.cache
	return tea.Batch(m.startSpinner(), func() tea.Msg {
		return mutationResultMsg{res: cache.Run(ctx, mut)}
	})
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) busy() bool {
	return m.snap.Loading() || m.pending > 0
}

// refresh re-reads the snapshot and re-derives the visible list.
func (m *Model) refresh() tea.Cmd {
	m.snap = m.cache.Snapshot(query.All())
	if m.snap.State == query.Success {
		m.loaded = true
	}
	m.visible = model.Filter(m.snap.Todos, m.status, m.search.Value())
	return m.list.SetItems(toItems(m.visible))
}

func (m *Model) resize() {
	m.list.SetSize(m.width-4, max(m.height-10, 3))
	m.help.Width = m.width - 4
	m.search.Width = m.width - 8
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

// Update and View implement Bubble Tea's Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		m.spinning = true
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchResultMsg:
		if !m.cache.Apply(msg.res) {
			m.logger.Debug("stale fetch dropped", "key", msg.res.Key, "gen", msg.res.Generation)
		}
		cmd := m.refresh()
		return m, cmd

	case mutationResultMsg:
		return m.settle(msg.res)

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// settle feeds a finished mutation to the cache. Success invalidates
// and refetches; failure leaves the cache and the rendered list as they
// were and shows the error inline.
func (m Model) settle(res query.MutationResult) (tea.Model, tea.Cmd) {
	m.pending--
	reqs := m.cache.Settle(res)
	fromForm := m.form != nil && m.form.submitting &&
		(res.Mutation.Name == "create" || res.Mutation.Name == "update")

	if res.Err != nil {
		msg := fmt.Sprintf("%s failed: %v", res.Mutation.Name, res.Err)
		if fromForm {
			m.form.submitting = false
			m.form.err = msg
		} else {
			m.mutationErr = msg
		}
		return m, nil
	}

	if fromForm {
		m.form = nil
	}
	cmds := []tea.Cmd{m.startSpinner()}
	for _, req := range reqs {
		cmds = append(cmds, m.fetch(req))
	}
	cmds = append(cmds, m.refresh())
	cmd := tea.Batch(cmds...)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Toggle):
		if td, ok := m.selected(); ok {
			cmd := m.mutate(query.Toggle(td.ID))
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if td, ok := m.selected(); ok {
			cmd := m.mutate(query.Delete(td.ID))
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.Add):
		m.form = newFormView(form.New(m.loc), m.width)
		return m, nil

	case key.Matches(msg, keys.Edit):
		if td, ok := m.selected(); ok {
			m.form = newFormView(form.FromTodo(td, m.loc), m.width)
		}
		return m, nil

	case key.Matches(msg, keys.Refetch):
		m.mutationErr = ""
		req := m.cache.Begin(query.All())
		cmd := tea.Batch(m.startSpinner(), m.fetch(req), m.refresh())
		return m, cmd

	case key.Matches(msg, keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, keys.Status):
		m.status = m.status.Next()
		cmd := m.refresh()
		return m, cmd

	case msg.Type == tea.KeyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
			cmd := m.refresh()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		cmd := m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	cmd = tea.Batch(cmd, m.refresh())
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	result, cmd := m.form.update(msg, now)
	switch result {
	case formCancel:
		m.form = nil
		return m, nil
	case formSubmit:
		todo, ok := m.form.submit(now)
		if !ok {
			return m, nil
		}
		if m.form.state.Editing {
			cmd := m.mutate(query.Update(todo.ID, todo))
			return m, cmd
		}
		cmd := m.mutate(query.Create(todo))
		return m, cmd
	}
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	var sections []string

	header := ui.Header("Todos", m.snap.Todos)
	done, _ := model.Stats(m.snap.Todos)
	if len(m.snap.Todos) > 0 {
		header += "   " + t.Muted.Render(ui.ProgressBar(done, len(m.snap.Todos), 16))
	}
	sections = append(sections, header, m.tabsView())

	if m.searching || m.search.Value() != "" {
		sections = append(sections, m.search.View())
	}

	if m.form != nil {
		sections = append(sections, m.form.view(), m.help.ShortHelpView(keys.formHelp()))
		return ui.PanelString(strings.Join(sections, "\n"))
	}

	sections = append(sections, "", m.bodyView(), "")
	if line := m.statusLine(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.help.ShortHelpView(keys.listHelp()))
	return ui.PanelString(strings.Join(sections, "\n"))
}

func (m Model) tabsView() string {
	t := ui.Current()
	statuses := []model.Status{model.StatusAll, model.StatusActive, model.StatusCompleted}
	tabs := make([]string, len(statuses))
	for i, s := range statuses {
		label := strings.ToUpper(s.String()[:1]) + s.String()[1:]
		if s == m.status {
			tabs[i] = t.Selected.Render(" " + label + " ")
		} else {
			tabs[i] = t.Muted.Render(" " + label + " ")
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) bodyView() string {
	t := ui.Current()
	switch {
	case !m.loaded && m.snap.State == query.Error:
		return t.Error.Render("Error: "+m.snap.Err.Error()) + "\n" + t.Help.Render("press r to retry")
	case !m.loaded:
		return m.spinner.View() + " Loading todos..."
	case len(m.visible) == 0:
		return t.Muted.Render("No todos found")
	}
	return m.list.View()
}

func (m Model) statusLine() string {
	t := ui.Current()
	switch {
	case m.mutationErr != "":
		return t.Error.Render(m.mutationErr)
	case m.loaded && m.snap.State == query.Error:
		return t.Error.Render("Refresh failed: " + m.snap.Err.Error())
	case m.loaded && m.busy():
		return m.spinner.View() + t.Muted.Render(" Syncing...")
	}
	return ""
}
