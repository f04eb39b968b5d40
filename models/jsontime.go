package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSONTime wraps time.Time so request payloads can carry either a full
// ISO-8601 timestamp or a bare calendar date.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseJSONTime parses s using the accepted ISO-8601 layouts.
func ParseJSONTime(s string) (JSONTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return JSONTime(t.UTC()), nil
		}
	}
	return JSONTime{}, fmt.Errorf("JSONTime: cannot parse %q as ISO-8601", s)
}

// UnmarshalJSON accepts RFC3339 with or without fractions, zone-less
// timestamps and "2006-01-02" dates.
func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("JSONTime: expected string: %w", err)
	}
	t, err := ParseJSONTime(s)
	if err != nil {
		return err
	}
	*jt = t
	return nil
}

// MarshalJSON always emits full RFC3339 ("…Z").
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).UTC().Format(time.RFC3339))
}

// Time returns the wrapped value.
func (jt JSONTime) Time() time.Time {
	return time.Time(jt)
}

// Ptr converts an optional JSONTime to an optional time.Time.
func (jt *JSONTime) Ptr() *time.Time {
	if jt == nil {
		return nil
	}
	t := time.Time(*jt)
	return &t
}
