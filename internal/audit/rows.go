package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/innerfold/parts-service/internal/registry/recordstore"
)

// Row decoding helpers. Audit rows come back through the generic record
// store, so values arrive as whatever the backend's driver produced:
// time.Time or RFC 3339 strings for timestamps, bool or integers for
// booleans, string or []byte for JSON columns. Historical rows must always
// decode, so every helper degrades instead of failing.

func rowString(row recordstore.Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func rowStringPtr(row recordstore.Row, key string) *string {
	if v, ok := row[key]; ok && v != nil {
		if s := rowString(row, key); s != "" {
			return &s
		}
	}
	return nil
}

func rowBool(row recordstore.Row, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v == "true" || v == "1"
	}
	return false
}

func rowTime(row recordstore.Row, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rowUUID(row recordstore.Row, key string) uuid.UUID {
	id, err := uuid.Parse(rowString(row, key))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// rowJSONMap decodes a JSON-object column. Missing, null, or malformed
// values yield nil.
func rowJSONMap(row recordstore.Row, key string) map[string]any {
	raw := rowString(row, key)
	if raw == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// jsonColumn encodes a map for storage in a text column. Nil maps become
// nil pointers, which store as SQL NULL.
func jsonColumn(m map[string]any) *string {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
