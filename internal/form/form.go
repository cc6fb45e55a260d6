// Package form models the create/edit todo form apart from any
// rendering: raw values, which fields the user has visited, and the
// errors the declarative rules produce.
package form

import (
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

// Field names a form input. The values double as JSON property names
// in the validation schema.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldDue         Field = "dueDate"
)

// Fields in tab order.
var Fields = []Field{FieldTitle, FieldDescription, FieldDue}

// DueLayouts are accepted for the due date, tried in order. Layouts
// without a zone are read in the caller's location.
var DueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	dateOnly,
}

const dateOnly = "2006-01-02"

// Values are the raw user inputs.
type Values struct {
	Title       string
	Description string
	Due         string
}

// Get returns the raw value of f.
func (v Values) Get(f Field) string {
	switch f {
	case FieldTitle:
		return v.Title
	case FieldDescription:
		return v.Description
	case FieldDue:
		return v.Due
	}
	return ""
}

// Set replaces the raw value of f.
func (v *Values) Set(f Field, s string) {
	switch f {
	case FieldTitle:
		v.Title = s
	case FieldDescription:
		v.Description = s
	case FieldDue:
		v.Due = s
	}
}

// ValidationError carries one message per failing field.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range Fields {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return "invalid todo: " + strings.Join(parts, "; ")
}

// Form is the whole form state. The zero value is an empty create form.
type Form struct {
	Values  Values
	Touched map[Field]bool
	Errors  map[Field]string

	// Editing is set when the form was seeded from an existing todo.
	Editing bool
	// base is the todo being edited; fields the form does not show
	// (completed, id) are carried over from it.
	base model.Todo
	// loc is where zone-less due dates are interpreted.
	loc *time.Location
}

// New returns an empty create form interpreting due dates in loc
// (time.Local when nil).
func New(loc *time.Location) *Form {
	if loc == nil {
		loc = time.Local
	}
	return &Form{Touched: map[Field]bool{}, Errors: map[Field]string{}, loc: loc}
}

// FromTodo returns an edit form seeded from t.
func FromTodo(t model.Todo, loc *time.Location) *Form {
	f := New(loc)
	f.Editing = true
	f.base = t
	f.Values = Values{Title: t.Title, Description: t.Description}
	if t.DueDate != nil {
		f.Values.Due = t.DueDate.In(f.loc).Format("2006-01-02 15:04")
	}
	return f
}

// Base returns the todo an edit form was seeded from.
func (f *Form) Base() model.Todo { return f.base }

// Set updates a value and re-validates.
func (f *Form) Set(field Field, value string, now time.Time) {
	f.Values.Set(field, value)
	f.Validate(now)
}

// Touch marks a field as visited (blurred) and re-validates.
func (f *Form) Touch(field Field, now time.Time) {
	if f.Touched == nil {
		f.Touched = map[Field]bool{}
	}
	f.Touched[field] = true
	f.Validate(now)
}

// Validate recomputes Errors for every field regardless of Touched.
func (f *Form) Validate(now time.Time) bool {
	errs, err := Check(f.Values, now, f.location())
	if err != nil {
		// The schema is compiled from a constant; surface it on the title.
		errs = map[Field]string{FieldTitle: err.Error()}
	}
	f.Errors = errs
	return len(errs) == 0
}

// Visible returns the message to show for field: only touched fields
// display errors.
func (f *Form) Visible(field Field) string {
	if !f.Touched[field] {
		return ""
	}
	return f.Errors[field]
}

// Submit touches every field, validates, and on success returns the
// todo to send. For an edit form the result keeps the original id and
// completion state.
func (f *Form) Submit(now time.Time) (model.Todo, error) {
	if f.Touched == nil {
		f.Touched = map[Field]bool{}
	}
	for _, field := range Fields {
		f.Touched[field] = true
	}
	if !f.Validate(now) {
		return model.Todo{}, &ValidationError{Fields: copyErrors(f.Errors)}
	}

	out := f.base
	out.Title = strings.TrimSpace(f.Values.Title)
	out.Description = strings.TrimSpace(f.Values.Description)
	out.DueDate = nil
	if due := strings.TrimSpace(f.Values.Due); due != "" {
		t, _ := ParseDue(due, f.location())
		out.DueDate = model.NewTime(t)
	}
	return out, nil
}

func (f *Form) location() *time.Location {
	if f.loc == nil {
		return time.Local
	}
	return f.loc
}

// Check runs every rule over v and returns one message per failing
// field. The error is non-nil only if the rules themselves are broken.
func Check(v Values, now time.Time, loc *time.Location) (map[Field]string, error) {
	v.Title = strings.TrimSpace(v.Title)
	v.Description = strings.TrimSpace(v.Description)

	errs, err := checkText(v)
	if err != nil {
		return nil, err
	}
	if msg := checkDue(v.Due, now, loc); msg != "" {
		errs[FieldDue] = msg
	}
	return errs, nil
}

func checkDue(raw string, now time.Time, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	due, err := ParseDue(raw, loc)
	if err != nil {
		return "Due date must look like 2006-01-02 or 2006-01-02 15:04"
	}
	if due.Before(now) {
		return "Due date cannot be in the past"
	}
	return ""
}

// ParseDue parses raw with the first matching DueLayouts entry. A
// date without a time means 23:59 that day.
func ParseDue(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range DueLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		if layout == dateOnly {
			t = t.Add(23*time.Hour + 59*time.Minute)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", raw)
}

func copyErrors(in map[Field]string) map[Field]string {
	out := make(map[Field]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
