package model

import (
	"fmt"
	"strings"
)

// Status narrows a list by completion.
type Status int

const (
	StatusAll Status = iota
	StatusActive
	StatusCompleted
)

var statusNames = [...]string{"all", "active", "completed"}

func (s Status) String() string {
	if s < StatusAll || s > StatusCompleted {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Next cycles all -> active -> completed -> all.
func (s Status) Next() Status {
	return (s + 1) % Status(len(statusNames))
}

// Matches reports whether a todo passes the status predicate.
func (s Status) Matches(t Todo) bool {
	switch s {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// ParseStatus accepts "all", "active" or "completed" in any case. The
// empty string means all.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	}
	return StatusAll, fmt.Errorf("unknown status %q (want all, active or completed)", s)
}

// MatchesSearch is a case-insensitive substring test against the
// title and, when set, the description. Empty search matches all.
func MatchesSearch(t Todo, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), q)
}

// Filter returns the todos passing both the status and the search
// predicate, in input order. A nil input yields an empty slice.
func Filter(todos []Todo, status Status, search string) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if status.Matches(t) && MatchesSearch(t, search) {
			out = append(out, t)
		}
	}
	return out
}
