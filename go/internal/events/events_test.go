package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("nats down")
}

func TestEmitRecordsPayload(t *testing.T) {
	rec := &Recorder{}
	teamID := uuid.New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	Emit(context.Background(), rec, TeamCreated, teamID, map[string]string{"name": "Sentinels"}, now)

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, TeamCreated, got[0].Type)
	assert.Equal(t, teamID, got[0].AggregateID)
	assert.Equal(t, now, got[0].OccurredAt)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, "Sentinels", payload["name"])
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := &failingPublisher{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, TeamDeleted, uuid.New(), nil, time.Now())
	})
	assert.Equal(t, 1, pub.calls)

	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, TeamDeleted, uuid.New(), nil, time.Now())
	})
}
