package joblock

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/apperrors"
)

func TestMemoryTryAcquire(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	l := NewMemory(clock)

	release, err := l.TryAcquire(ctx, "roster-sync", time.Minute)
	require.NoError(t, err)

	_, err = l.TryAcquire(ctx, "roster-sync", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrSyncInProgress, "second acquire should fail while held")

	other, err := l.TryAcquire(ctx, "other-job", time.Minute)
	require.NoError(t, err, "different keys are independent")
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.TryAcquire(ctx, "roster-sync", time.Minute)
	require.NoError(t, err, "released lock can be taken again")
	require.NoError(t, again(ctx))
}

func TestMemoryLeaseExpires(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	l := NewMemory(clock)

	stale, err := l.TryAcquire(ctx, "roster-sync", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	fresh, err := l.TryAcquire(ctx, "roster-sync", time.Minute)
	require.NoError(t, err, "expired lease should be taken over")

	require.NoError(t, stale(ctx))
	_, err = l.TryAcquire(ctx, "roster-sync", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrSyncInProgress, "stale release must not free the new holder's lock")

	require.NoError(t, fresh(ctx))
}
