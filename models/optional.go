package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OptionalID is a tri-state reference in an update payload: the key can be
// omitted, set to null/"" to clear the reference, or set to an ID.
type OptionalID struct {
	Set   bool
	Value *uuid.UUID
}

// OmittedID is the zero OptionalID: the payload did not mention the field.
var OmittedID = OptionalID{}

// ClearID is an explicit null.
var ClearID = OptionalID{Set: true}

// SomeID is an explicit reference to id.
func SomeID(id uuid.UUID) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

// Clears reports whether the payload explicitly removes the reference.
func (o OptionalID) Clears() bool {
	return o.Set && o.Value == nil
}

// UnmarshalJSON is only invoked when the key is present, which is how an
// omitted field is told apart from an explicit null.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected string or null: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", s, err)
	}
	o.Value = &id
	return nil
}

// MarshalJSON emits null or the ID string.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value.String())
}

// OptionalTime is the date counterpart of OptionalID: omitted, null/"" to
// clear, or any layout ParseJSONTime accepts.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// SomeTime is an explicit date.
func SomeTime(t time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: &t}
}

// ClearTime is an explicit null.
var ClearTime = OptionalTime{Set: true}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected date string or null: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	jt, err := ParseJSONTime(s)
	if err != nil {
		return err
	}
	o.Value = jt.Ptr()
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return JSONTime(*o.Value).MarshalJSON()
}
