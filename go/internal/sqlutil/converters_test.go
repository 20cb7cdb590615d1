package sqlutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct {
	IGN string `json:"ign"`
}

func TestNullRawMessageRoundTrip(t *testing.T) {
	var empty []slot
	null, err := ToNullRawMessage(empty)
	require.NoError(t, err)
	assert.False(t, null.Valid, "nil slice should be stored as NULL")

	value, err := ToNullRawMessage([]slot{{IGN: "Ace"}})
	require.NoError(t, err)
	require.True(t, value.Valid)

	var decoded []slot
	require.NoError(t, FromNullRawMessage(value, &decoded))
	assert.Equal(t, []slot{{IGN: "Ace"}}, decoded)

	decoded = nil
	require.NoError(t, FromNullRawMessage(null, &decoded))
	assert.Nil(t, decoded)
}

func TestNullUUID(t *testing.T) {
	assert.Nil(t, FromNullUUID(ToNullUUID(nil)))

	id := uuid.New()
	got := FromNullUUID(ToNullUUID(&id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}
