package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listItem adapts model.Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Title }

// itemDelegate renders each todo on a single line.
type itemDelegate struct {
	now func() time.Time
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	now := d.now()

	line := ui.TodoLine(it.todo, 0, now)
	var extra string
	if it.todo.Description != "" {
		extra += " · " + it.todo.Description
	}
	if it.todo.UpdatedAt != nil {
		extra += " · updated " + ui.Relative(it.todo.UpdatedAt.Time, now)
	}
	if extra != "" {
		line += t.Muted.Render(extra)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, ui.Truncate(prefix+line, m.Width()))
}

func toItems(todos []model.Todo) []list.Item {
	items := make([]list.Item, len(todos))
	for i, td := range todos {
		items[i] = listItem{todo: td}
	}
	return items
}
