package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// The analysis backend serialises datetimes with or without an offset. Naive
// values are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp decodes the backend datetime formats and encodes RFC 3339.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses raw using the accepted layouts.
func ParseTimestamp(raw string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unsupported timestamp %q", raw)
}

// UnmarshalJSON accepts a string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON renders RFC 3339 in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
