package query

import (
	"context"
	"strconv"

	"github.com/Makepad-fr/tada/internal/model"
)

// API is the slice of the remote client the cache needs.
type API interface {
	ListAll(ctx context.Context) ([]model.Todo, error)
	ListByStatus(ctx context.Context, completed bool) ([]model.Todo, error)
	Search(ctx context.Context, title string) ([]model.Todo, error)
	Create(ctx context.Context, draft model.Todo) (model.Todo, error)
	Update(ctx context.Context, id int64, todo model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (model.Todo, error)
}

type keyKind int

const (
	kindAll keyKind = iota
	kindStatus
	kindSearch
)

// Key names one logical query. All keys live in the "todos" scope and
// are invalidated together after a mutation.
type Key struct {
	kind      keyKind
	completed bool
	title     string
}

// All is the whole collection; the UI mounts this one.
func All() Key { return Key{kind: kindAll} }

// ByStatus lets the server filter by completion.
func ByStatus(completed bool) Key { return Key{kind: kindStatus, completed: completed} }

// Search lets the server match titles.
func Search(title string) Key { return Key{kind: kindSearch, title: title} }

func (k Key) String() string {
	switch k.kind {
	case kindStatus:
		return "todos/status?completed=" + strconv.FormatBool(k.completed)
	case kindSearch:
		return "todos/search?title=" + strconv.Quote(k.title)
	default:
		return "todos"
	}
}

func (k Key) fetch(ctx context.Context, api API) ([]model.Todo, error) {
	switch k.kind {
	case kindStatus:
		return api.ListByStatus(ctx, k.completed)
	case kindSearch:
		return api.Search(ctx, k.title)
	default:
		return api.ListAll(ctx)
	}
}
