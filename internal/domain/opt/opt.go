// Package opt models a field that was either provided (Some) or not (None).
//
// Write paths use it to tell "the caller sent an empty string" apart from
// "the caller did not send this field at all". When an input is flattened
// into a document, None fields become the Absent marker, which
// normalize.SanitizeForPersist erases before anything reaches the store.
package opt

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// absentMarker is the type of Absent. It is unexported so the only value of
// it is the Absent variable.
type absentMarker struct{}

// Absent stands in for a value that was not provided. It must never be
// persisted.
var Absent any = absentMarker{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absentMarker)
	return ok
}

// Value holds a T that is either present or absent. The zero Value is absent.
type Value[T any] struct {
	v  T
	ok bool
}

// Some returns a present Value holding v.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Present reports whether a value was provided.
func (o Value[T]) Present() bool { return o.ok }

// Or returns the held value, or def when absent.
func (o Value[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Any returns the held value, or Absent.
func (o Value[T]) Any() any {
	if o.ok {
		return o.v
	}
	return Absent
}

// IsZero lets encoding/json's omitzero drop absent values.
func (o Value[T]) IsZero() bool { return !o.ok }

// MarshalJSON encodes the held value, or null when absent.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON treats null as absent; any other value is present, including
// "" and false.
func (o *Value[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Value[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (o *Value[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		*o = Value[T]{}
		return nil
	}
	var v T
	if err := n.Decode(&v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
