// Package keylock serializes work on individual entities within a process.
package keylock

import (
	"context"
	"sort"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Locker hands out per-key locks. Entries are dropped once nobody holds or
// waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

func (l *Locker) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// Lock acquires every key in sorted order, so two callers locking
// overlapping sets cannot deadlock. Duplicates and empty keys are ignored.
// The returned func releases all of them.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	entries := make([]*entry, 0, len(keys))

	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-entries[i].ch
			l.releaseEntry(held[i], entries[i])
		}
	}

	for _, key := range keys {
		e := l.acquireEntry(key)
		select {
		case e.ch <- struct{}{}:
			held = append(held, key)
			entries = append(entries, e)
		case <-ctx.Done():
			l.releaseEntry(key, e)
			unlock()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(unlock) }, nil
}

func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Key builds a namespaced lock key such as "team:<id>".
func Key(kind string, id interface{ String() string }) string {
	return kind + ":" + id.String()
}
