package sqlutil

import (
	"database/sql"
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and sql.Null* types

// ToNullUUID converts a Go UUID pointer to uuid.NullUUID
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{Valid: false}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// FromNullUUID converts uuid.NullUUID to Go UUID pointer
func FromNullUUID(val uuid.NullUUID) *uuid.UUID {
	if !val.Valid {
		return nil
	}
	id := val.UUID
	return &id
}

// ToSqlString converts a Go string to sql.NullString, empty meaning NULL
func ToSqlString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}

// ToNullRawMessage JSON-encodes v into a JSONB column value; a nil slice,
// map or pointer becomes NULL
func ToNullRawMessage(v any) (pqtype.NullRawMessage, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (isNillable(rv.Kind()) && rv.IsNil()) {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

// FromNullRawMessage decodes a JSONB column into out, leaving out untouched when NULL
func FromNullRawMessage(val pqtype.NullRawMessage, out any) error {
	if !val.Valid || len(val.RawMessage) == 0 {
		return nil
	}
	return json.Unmarshal(val.RawMessage, out)
}

func isNillable(k reflect.Kind) bool {
	switch k {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return true
	}
	return false
}
