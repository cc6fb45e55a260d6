package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// formView is the create/edit overlay. The widgets hold the text; the
// form.Form holds touched state and errors.
type formView struct {
	state *form.Form
	focus int

	title textinput.Model
	desc  textarea.Model
	due   textinput.Model

	// submitting is set while the save request is in flight.
	submitting bool
	// err is the last failed save, shown under the fields.
	err string
}

func newFormView(state *form.Form, width int) *formView {
	f := &formView{state: state}

	f.title = textinput.New()
	f.title.Prompt = "> "
	f.title.Placeholder = "What needs doing?"
	f.title.CharLimit = form.MaxTitle * 2
	f.title.SetValue(state.Values.Title)

	f.desc = textarea.New()
	f.desc.Placeholder = "Details (optional)"
	f.desc.ShowLineNumbers = false
	f.desc.CharLimit = form.MaxDescription * 2
	f.desc.SetHeight(3)
	if width > 8 {
		f.desc.SetWidth(width - 8)
	}
	f.desc.SetValue(state.Values.Description)

	f.due = textinput.New()
	f.due.Prompt = "> "
	f.due.Placeholder = "2006-01-02 15:04"
	f.due.SetValue(state.Values.Due)

	f.title.Focus()
	return f
}

func (f *formView) field() form.Field { return form.Fields[f.focus] }

func (f *formView) last() bool { return f.focus == len(form.Fields)-1 }

// move shifts focus by delta, touching the field being left.
func (f *formView) move(delta int, now time.Time) tea.Cmd {
	f.state.Touch(f.field(), now)
	f.blurAll()
	f.focus = (f.focus + delta + len(form.Fields)) % len(form.Fields)
	switch f.field() {
	case form.FieldTitle:
		return f.title.Focus()
	case form.FieldDescription:
		return f.desc.Focus()
	default:
		return f.due.Focus()
	}
}

func (f *formView) blurAll() {
	f.title.Blur()
	f.desc.Blur()
	f.due.Blur()
}

// result tells the model what the key did.
type formResult int

const (
	formContinue formResult = iota
	formCancel
	formSubmit
)

func (f *formView) update(msg tea.KeyMsg, now time.Time) (formResult, tea.Cmd) {
	if f.submitting {
		return formContinue, nil
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		return formCancel, nil
	case key.Matches(msg, keys.Submit):
		return formSubmit, nil
	case key.Matches(msg, keys.Next):
		return formContinue, f.move(1, now)
	case key.Matches(msg, keys.Prev):
		return formContinue, f.move(-1, now)
	case msg.Type == tea.KeyEnter && f.field() != form.FieldDescription:
		if f.last() {
			return formSubmit, nil
		}
		return formContinue, f.move(1, now)
	}

	var cmd tea.Cmd
	switch f.field() {
	case form.FieldTitle:
		f.title, cmd = f.title.Update(msg)
		f.state.Set(form.FieldTitle, f.title.Value(), now)
	case form.FieldDescription:
		f.desc, cmd = f.desc.Update(msg)
		f.state.Set(form.FieldDescription, f.desc.Value(), now)
	default:
		f.due, cmd = f.due.Update(msg)
		f.state.Set(form.FieldDue, f.due.Value(), now)
	}
	return formContinue, cmd
}

// submit validates and returns the todo to save, or false when the
// form has errors.
func (f *formView) submit(now time.Time) (model.Todo, bool) {
	f.err = ""
	todo, err := f.state.Submit(now)
	if err != nil {
		return model.Todo{}, false
	}
	f.submitting = true
	return todo, true
}

func (f *formView) view() string {
	t := ui.Current()
	var b strings.Builder

	heading := "New todo"
	if f.state.Editing {
		heading = "Edit todo"
	}
	b.WriteString(t.Title.Render(heading) + "\n")

	row := func(label string, field form.Field, input string) {
		b.WriteString(t.Accent.Render(label) + "\n" + input + "\n")
		if msg := f.state.Visible(field); msg != "" {
			b.WriteString(t.Error.Render(msg) + "\n")
		}
	}
	row("Title", form.FieldTitle, f.title.View())
	row("Description", form.FieldDescription, f.desc.View())
	row("Due", form.FieldDue, f.due.View())

	switch {
	case f.submitting:
		b.WriteString(t.Muted.Render("Saving…"))
	case f.err != "":
		b.WriteString(t.Error.Render(f.err))
	}
	return ui.PanelString(strings.TrimRight(b.String(), "\n"))
}
