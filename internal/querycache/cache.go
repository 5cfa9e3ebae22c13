package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// keySep joins key segments in the canonical string form. The unit
// separator cannot appear in entity names or encoded params, so distinct
// tuples never collide.
const keySep = "\x1f"

// Key identifies one cache entry: the entity name followed by the
// request parameters, compared by value.
type Key []string

func NewKey(entity string, params ...string) Key {
	return append(Key{entity}, params...)
}

func (k Key) Entity() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

func (k Key) String() string { return strings.Join(k, keySep) }

// EntryState is a read-only view of one entry's bookkeeping.
type EntryState struct {
	Status        Status
	Stale         bool
	LastFetchedAt time.Time
}

type entry struct {
	data          any
	hasData       bool
	status        Status
	err           error
	stale         bool
	lastFetchedAt time.Time
	// generation is bumped on every invalidation; a fetch started
	// before the bump cannot clear the stale mark when it lands.
	generation uint64
}

// Cache is the only shared mutable resource between view components.
// Reads go through Fetch, writes happen exclusively by invalidation;
// nothing mutates cached data in place.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	epoch   uint64
	group   singleflight.Group
	subs    map[string]map[chan struct{}]struct{}
	deps    map[string][]string
	log     *zap.Logger
}

func New(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]*entry),
		subs:    make(map[string]map[chan struct{}]struct{}),
		deps:    Dependents(),
		log:     log,
	}
}

// Fetch returns the cached value for key when fresh; otherwise it runs
// fn, caches the result and returns it. Concurrent callers with an equal
// key share one in-flight request; invalidation forgets the flight, so a
// read issued after a mutation's invalidation starts a fresh one instead
// of receiving the pre-mutation result.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	ks := key.String()
	if v, ok := c.fresh(ks); ok {
		return v.(T), nil
	}

	epoch, gen := c.beginFetch(ks)
	v, err, _ := c.group.Do(ks, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		c.finishError(ks, epoch, err)
		var zero T
		return zero, err
	}
	c.finishSuccess(ks, epoch, gen, v)
	c.notify(key.Entity())
	return v.(T), nil
}

// Peek returns the cached value even when stale, for use as placeholder
// data while a refetch is in flight.
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		var zero T
		return zero, false
	}
	return e.data.(T), true
}

func (c *Cache) State(key Key) EntryState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return EntryState{Status: StatusIdle}
	}
	return EntryState{Status: e.status, Stale: e.stale, LastFetchedAt: e.lastFetchedAt}
}

// Invalidate marks every entry belonging to the named entities as stale.
// The next read of a stale key refetches instead of serving the cached
// value; the cached value remains available via Peek. Matched in-flight
// requests are forgotten so later readers do not join a flight that
// started before the invalidation.
func (c *Cache) Invalidate(entities ...string) {
	c.mu.Lock()
	var matched []string
	for _, entity := range entities {
		prefix := entity + keySep
		for ks, e := range c.entries {
			if ks == entity || strings.HasPrefix(ks, prefix) {
				e.stale = true
				e.generation++
				matched = append(matched, ks)
			}
		}
	}
	c.mu.Unlock()

	for _, ks := range matched {
		c.group.Forget(ks)
	}
	for _, entity := range entities {
		c.notify(entity)
	}
}

// InvalidateWithDependents performs the single invalidation pass a
// mutation triggers: the entity itself plus every entity whose derived
// aggregates depend on it, per the Dependents table.
func (c *Cache) InvalidateWithDependents(entity string) {
	targets := append([]string{entity}, c.deps[entity]...)
	c.log.Debug("cache invalidation", zap.String("entity", entity), zap.Strings("targets", targets))
	c.Invalidate(targets...)
}

// Clear drops every entry. Logout uses this as the in-process equivalent
// of a full page reload. The epoch bump makes results from fetches still
// in flight land in the void instead of resurrecting pre-logout data.
func (c *Cache) Clear() {
	c.mu.Lock()
	dropped := c.entries
	c.entries = make(map[string]*entry)
	c.epoch++
	entities := make([]string, 0, len(c.subs))
	for entity := range c.subs {
		entities = append(entities, entity)
	}
	c.mu.Unlock()

	for ks := range dropped {
		c.group.Forget(ks)
	}
	for _, entity := range entities {
		c.notify(entity)
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Subscribe delivers a wake-up whenever any entry of the entity is
// invalidated or refilled. The returned cancel stops delivery; callers
// must cancel on unmount so results stop being applied.
func (c *Cache) Subscribe(entity string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	if c.subs[entity] == nil {
		c.subs[entity] = make(map[chan struct{}]struct{})
	}
	c.subs[entity][ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs[entity], ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Cache) notify(entity string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.subs[entity] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *Cache) fresh(ks string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ks]
	if !ok || !e.hasData || e.stale || e.status != StatusSuccess {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) ensureLocked(ks string) *entry {
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{}
		c.entries[ks] = e
	}
	return e
}

func (c *Cache) beginFetch(ks string) (epoch, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(ks)
	e.status = StatusLoading
	return c.epoch, e.generation
}

func (c *Cache) finishSuccess(ks string, epoch, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The cache was cleared while the fetch was in flight; the result
	// belongs to a session that no longer exists.
	if epoch != c.epoch {
		return
	}
	e := c.ensureLocked(ks)
	e.err = nil
	e.status = StatusSuccess
	e.lastFetchedAt = time.Now()
	if gen == e.generation {
		e.data = v
		e.hasData = true
		e.stale = false
		return
	}
	// A result from before an invalidation serves as placeholder data at
	// most; it never displaces a fresh value and never clears the stale
	// mark.
	if e.stale || !e.hasData {
		e.data = v
		e.hasData = true
		e.stale = true
	}
}

func (c *Cache) finishError(ks string, epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	e := c.ensureLocked(ks)
	e.err = err
	e.status = StatusError
}
