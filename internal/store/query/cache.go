// Package query keeps the last fetched todo collections in memory and
// re-fetches them after every successful write.
//
// Each Key moves through Idle -> Loading -> (Success | Error). A fetch
// is split in three so the caller decides where I/O happens:
//
//	req := cache.Begin(query.All())   // state: Loading, generation++
//	res := req.Run(ctx)               // network, no cache access
//	cache.Apply(res)                  // stored only if still the latest
//
// Apply drops results whose generation is older than the key's current
// one, so a superseded fetch can never overwrite a newer result no
// matter which finishes first. Writes never touch cached data: a
// failed mutation leaves everything as it was, and a successful one
// sends every key back to Loading (see Settle).
package query

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
)

// State of one logical query.
type State int

const (
	Idle State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot is a read-only view of one key. In the Error state Todos
// still holds the last successful result, if any.
type Snapshot struct {
	Key        Key
	State      State
	Todos      []model.Todo
	Err        error
	Generation uint64
}

// Loading reports whether the key is waiting on a fetch.
func (s Snapshot) Loading() bool { return s.State == Loading }

// Request is one issued fetch. Run it anywhere; hand the Result back
// to Apply.
type Request struct {
	Key        Key
	Generation uint64
	api        API
}

// Run performs the fetch. It never touches cache state.
func (r Request) Run(ctx context.Context) Result {
	todos, err := r.Key.fetch(ctx, r.api)
	return Result{Key: r.Key, Generation: r.Generation, Todos: todos, Err: err}
}

// Result is the outcome of a Request.
type Result struct {
	Key        Key
	Generation uint64
	Todos      []model.Todo
	Err        error
}

type entry struct {
	state State
	todos []model.Todo
	err   error
	gen   uint64
}

// Cache holds one entry per Key. It is safe for concurrent use; the
// TUI only touches it from its update loop.
type Cache struct {
	api    API
	logger *log.Logger

	mu      sync.Mutex
	entries map[Key]*entry
}

// New returns an empty cache backed by api. A nil logger means log.Default().
func New(api API, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		api:     api,
		logger:  logger,
		entries: make(map[Key]*entry),
	}
}

// Begin marks key as Loading and issues a new generation for it.
// Results of any earlier Request for the same key become stale.
func (c *Cache) Begin(key Key) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked(key)
}

func (c *Cache) beginLocked(key Key) Request {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.gen++
	e.state = Loading
	return Request{Key: key, Generation: e.gen, api: c.api}
}

// Apply stores res if it answers the latest Request for its key and
// reports whether it did.
func (c *Cache) Apply(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[res.Key]
	if !ok || res.Generation != e.gen {
		c.logger.Debug("discarding stale result", "key", res.Key, "generation", res.Generation)
		return false
	}
	if res.Err != nil {
		e.state = Error
		e.err = res.Err
		c.logger.Warn("fetch failed", "key", res.Key, "err", res.Err)
		return true
	}
	e.state = Success
	e.err = nil
	e.todos = res.Todos
	c.logger.Debug("fetched", "key", res.Key, "count", len(res.Todos))
	return true
}

// Snapshot returns the current view of key. Unknown keys are Idle.
func (c *Cache) Snapshot(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key, State: Idle}
	}
	return Snapshot{
		Key:        key,
		State:      e.state,
		Todos:      append([]model.Todo(nil), e.todos...),
		Err:        e.err,
		Generation: e.gen,
	}
}

// Keys lists every key the cache has seen, ordered by name.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keysLocked()
}

func (c *Cache) keysLocked() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Invalidate sends every known key back to Loading and returns the
// fetches that refresh them.
func (c *Cache) Invalidate() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.keysLocked()
	reqs := make([]Request, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, c.beginLocked(k))
	}
	return reqs
}

// Load fetches key synchronously and returns the resulting snapshot.
func (c *Cache) Load(ctx context.Context, key Key) Snapshot {
	req := c.Begin(key)
	c.Apply(req.Run(ctx))
	return c.Snapshot(key)
}
