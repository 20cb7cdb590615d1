package sqlutil

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/arena/go/internal/apperrors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", fmt.Errorf("failed to get team: %w", sql.ErrNoRows), apperrors.ErrNotFound},
		{"bad conn", driver.ErrBadConn, apperrors.ErrStoreUnavailable},
		{"conn done", sql.ErrConnDone, apperrors.ErrStoreUnavailable},
		{"connection failure", &pq.Error{Code: "08006"}, apperrors.ErrStoreUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, apperrors.ErrStoreUnavailable},
		{"serialization failure", &pq.Error{Code: "40001"}, apperrors.ErrStaleWrite},
		{"unique violation", &pq.Error{Code: "23505", Constraint: "teams_slug_key"}, apperrors.ErrValidation},
		{"already classified", apperrors.NotFound("team", uuid.Nil), apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}
}

func TestClassifyPassesThroughUnknownErrors(t *testing.T) {
	assert.NoError(t, Classify(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, Classify(plain))

	syntax := &pq.Error{Code: "42601"}
	assert.Equal(t, error(syntax), Classify(syntax))
}
