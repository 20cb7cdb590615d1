// Package joblock provides a named, expiring lock used to keep a batch job
// from running twice at once, in-process or across instances.
package joblock

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/arena/go/internal/apperrors"
)

// ReleaseFunc gives a held lock back.
type ReleaseFunc func(ctx context.Context) error

// Locker acquires job locks. TryAcquire never blocks; when the key is held
// elsewhere it returns apperrors.ErrSyncInProgress.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// Memory is a process-local Locker. Held keys expire after their ttl so a
// crashed holder cannot wedge the job.
type Memory struct {
	mu    sync.Mutex
	clock clockwork.Clock
	held  map[string]lease
	seq   uint64
}

type lease struct {
	token   uint64
	expires time.Time
}

// NewMemory creates an in-process locker.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{clock: clock, held: make(map[string]lease)}
}

// TryAcquire takes key for ttl if it is free or expired.
func (m *Memory) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if l, ok := m.held[key]; ok && now.Before(l.expires) {
		return nil, apperrors.ErrSyncInProgress
	}

	m.seq++
	token := m.seq
	m.held[key] = lease{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if l, ok := m.held[key]; ok && l.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
