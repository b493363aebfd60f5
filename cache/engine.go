// Package cache holds fetched API payloads on the client side. Every write
// and invalidation bumps a version counter so observers know when to look
// again.
package cache

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is one cached payload. Entries are replaced, never mutated.
type Entry struct {
	Key       string
	Data      any
	Timestamp time.Time
	// Revision is the engine version produced by the write that stored
	// this entry; it identifies the payload.
	Revision uint64
	// Seq is the request sequence the payload came from.
	Seq uint64
}

type Engine struct {
	mu      sync.Mutex
	store   *gocache.Cache
	version uint64
	changed chan struct{}

	// seq numbers requests and writes. watermark holds, per key, the
	// newest seq that was applied or invalidated; floor does the same for
	// every key at once.
	seq       uint64
	watermark map[string]uint64
	floor     uint64

	now func() time.Time
}

func New() *Engine {
	return &Engine{
		store:     gocache.New(gocache.NoExpiration, 0),
		changed:   make(chan struct{}),
		watermark: map[string]uint64{},
		now:       time.Now,
	}
}

func (e *Engine) Get(key string) (Entry, bool) {
	v, found := e.store.Get(key)
	if !found {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Set stores data under key with the current time.
func (e *Engine) Set(key string, data any) Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	return e.put(key, e.seq, data)
}

// Begin hands out the sequence number of a request for key. Pass it to
// Commit with the response.
func (e *Engine) Begin(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	if _, ok := e.watermark[key]; !ok {
		e.watermark[key] = e.floor
	}
	return e.seq
}

// Commit stores the response of request seq unless something newer was
// applied to key, or key was invalidated, after the request began. A
// discarded response leaves the version untouched.
func (e *Engine) Commit(key string, seq uint64, data any) (Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq <= e.floor || seq <= e.watermark[key] {
		current, _ := e.Get(key)
		return current, false
	}
	return e.put(key, seq, data), true
}

func (e *Engine) put(key string, seq uint64, data any) Entry {
	e.watermark[key] = seq
	e.bump()
	entry := Entry{
		Key:       key,
		Data:      data,
		Timestamp: e.now(),
		Revision:  e.version,
		Seq:       seq,
	}
	e.store.Set(key, entry, gocache.NoExpiration)
	return entry
}

// Invalidate removes the given keys, or everything when called without
// keys. The version is bumped once per call.
func (e *Engine) Invalidate(keys ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(keys) == 0 {
		e.store.Flush()
		e.floor = e.seq
		e.watermark = map[string]uint64{}
	} else {
		for _, key := range keys {
			e.store.Delete(key)
			e.watermark[key] = e.seq
		}
	}
	e.bump()
}

// InvalidateFamily removes prefix and every key extending it with "/" or
// "?". The version is bumped once.
func (e *Engine) InvalidateFamily(prefix string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.store.Items() {
		if InFamily(prefix, key) {
			e.store.Delete(key)
		}
	}
	for key := range e.watermark {
		if InFamily(prefix, key) {
			e.watermark[key] = e.seq
		}
	}
	e.watermark[prefix] = e.seq
	e.bump()
}

// InFamily reports whether key is prefix or extends it with "/" or "?".
func InFamily(prefix, key string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) {
		return true
	}
	next := key[len(prefix)]
	return next == '/' || next == '?'
}

func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Changed returns a channel that is closed at the next version bump.
func (e *Engine) Changed() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changed
}

// Len is the number of stored entries.
func (e *Engine) Len() int {
	return e.store.ItemCount()
}

func (e *Engine) bump() {
	e.version++
	close(e.changed)
	e.changed = make(chan struct{})
}
