package model

// Todo is the domain model for a todo entry as the remote service
// stores it. ID, CreatedAt and UpdatedAt are assigned server-side.
type Todo struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool   `json:"completed" yaml:"completed"`
	DueDate     *Time  `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CreatedAt   *Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   *Time  `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// HasID reports whether the server has assigned an identifier yet.
func (t Todo) HasID() bool { return t.ID > 0 }

// Draft returns a copy stripped of everything the server owns, which
// is the body a create request carries.
func (t Todo) Draft() Todo {
	t.ID = 0
	t.CreatedAt = nil
	t.UpdatedAt = nil
	return t
}

// Stats counts completed and pending todos.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
