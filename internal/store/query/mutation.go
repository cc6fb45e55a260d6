package query

import (
	"context"

	"github.com/Makepad-fr/tada/internal/model"
)

// Mutation is one write against the remote store.
type Mutation struct {
	// Name is a short verb for logs and status lines.
	Name string
	// ID is the target todo, zero for create.
	ID  int64
	run func(ctx context.Context, api API) (model.Todo, error)
}

// Create posts a new todo.
func Create(draft model.Todo) Mutation {
	return Mutation{Name: "create", run: func(ctx context.Context, api API) (model.Todo, error) {
		return api.Create(ctx, draft)
	}}
}

// Update replaces todo id.
func Update(id int64, todo model.Todo) Mutation {
	return Mutation{Name: "update", ID: id, run: func(ctx context.Context, api API) (model.Todo, error) {
		return api.Update(ctx, id, todo)
	}}
}

// Delete removes todo id.
func Delete(id int64) Mutation {
	return Mutation{Name: "delete", ID: id, run: func(ctx context.Context, api API) (model.Todo, error) {
		return model.Todo{ID: id}, api.Delete(ctx, id)
	}}
}

// Toggle flips completion of todo id.
func Toggle(id int64) Mutation {
	return Mutation{Name: "toggle", ID: id, run: func(ctx context.Context, api API) (model.Todo, error) {
		return api.Toggle(ctx, id)
	}}
}

// MutationResult is what Run produced.
type MutationResult struct {
	Mutation Mutation
	Todo     model.Todo
	Err      error
}

// Run performs m against the API without touching cache state.
func (c *Cache) Run(ctx context.Context, m Mutation) MutationResult {
	todo, err := m.run(ctx, c.api)
	return MutationResult{Mutation: m, Todo: todo, Err: err}
}

// Settle applies the invalidation rule: a failed write changes
// nothing and returns nil; a successful one invalidates every key and
// returns the refetches to run. The mounted All key is always among
// them.
func (c *Cache) Settle(res MutationResult) []Request {
	if res.Err != nil {
		c.logger.Warn("mutation failed", "op", res.Mutation.Name, "id", res.Mutation.ID, "err", res.Err)
		return nil
	}
	c.logger.Debug("mutation applied", "op", res.Mutation.Name, "id", res.Todo.ID)

	c.mu.Lock()
	if _, ok := c.entries[All()]; !ok {
		c.entries[All()] = &entry{}
	}
	c.mu.Unlock()
	return c.Invalidate()
}

// Mutate runs m, settles it and performs the refetches synchronously.
// Refetch failures land in the cache, not in the returned error.
func (c *Cache) Mutate(ctx context.Context, m Mutation) (model.Todo, error) {
	res := c.Run(ctx, m)
	for _, req := range c.Settle(res) {
		c.Apply(req.Run(ctx))
	}
	return res.Todo, res.Err
}
