package gamename

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/catalog"
)

// Live keeps a normalizer built from the registry's current games and
// rebuilds it once it is older than ttl. A ttl of zero rebuilds on every call.
type Live struct {
	registry catalog.Registry
	ttl      time.Duration
	clock    clockwork.Clock

	mu       sync.Mutex
	current  *Normalizer
	loadedAt time.Time
}

// NewLive creates a Live normalizer over registry.
func NewLive(registry catalog.Registry, ttl time.Duration, clock clockwork.Clock) *Live {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Live{registry: registry, ttl: ttl, clock: clock}
}

// Current returns the cached normalizer, rebuilding it when stale. If the
// rebuild fails and an older table exists, the older table is served.
func (l *Live) Current(ctx context.Context) (*Normalizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil && l.ttl > 0 && l.clock.Since(l.loadedAt) < l.ttl {
		return l.current, nil
	}
	n, err := l.reload(ctx)
	if err != nil {
		if l.current == nil {
			return nil, err
		}
		log.Warn().Err(err).Msg("game registry unavailable, serving previous table")
		return l.current, nil
	}
	return n, nil
}

// Refresh rebuilds the normalizer now.
func (l *Live) Refresh(ctx context.Context) (*Normalizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reload(ctx)
}

func (l *Live) reload(ctx context.Context) (*Normalizer, error) {
	n, err := Load(ctx, l.registry)
	if err != nil {
		return nil, err
	}
	l.current = n
	l.loadedAt = l.clock.Now()
	return n, nil
}
