package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSerializesSameKey(t *testing.T) {
	l := New()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "team:1", "user:1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "only one holder at a time")
	assert.Empty(t, l.locks, "entries should be released")
}

func TestLockOverlappingSetsInAnyOrder(t *testing.T) {
	l := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "a", "b")
			if assert.NoError(t, err) {
				unlock()
			}
		}()
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "b", "a")
			if assert.NoError(t, err) {
				unlock()
			}
		}()
	}
	wg.Wait()
}

func TestLockHonoursContext(t *testing.T) {
	l := New()

	unlock, err := l.Lock(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	again()
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("7b0d8a5e-0a8f-4f45-9f4c-0a0f2f0b1c2d")
	assert.Equal(t, "team:7b0d8a5e-0a8f-4f45-9f4c-0a0f2f0b1c2d", Key("team", id))
}
