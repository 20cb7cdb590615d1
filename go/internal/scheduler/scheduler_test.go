package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/rostersync"
)

type recordingSyncer struct {
	calls int
	admin bool
}

func (r *recordingSyncer) Trigger(ctx context.Context) (*rostersync.Result, error) {
	r.calls++
	r.admin = authz.RequireAdmin(ctx) == nil
	return &rostersync.Result{Success: true}, nil
}

func TestRunTriggersAsSystem(t *testing.T) {
	syncer := &recordingSyncer{}
	s := New("@every 1h", syncer)

	s.run(context.Background())

	assert.Equal(t, 1, syncer.calls)
	assert.True(t, syncer.admin)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("not a schedule", &recordingSyncer{})
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	s := New("0 3 * * *", &recordingSyncer{})
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
