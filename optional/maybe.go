// Package optional provides a tri-state value for configuration fields
// where "unset" and "explicitly the zero value" must be distinguished.
package optional

import "encoding/json"

// Maybe holds a value that may or may not have been set. The zero value
// of Maybe[T] is unset.
type Maybe[T any] struct {
	value T
	set   bool
}

// Of returns a Maybe with the given value set.
func Of[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, set: true}
}

// Value returns the held value and whether it was set.
func (m Maybe[T]) Value() (T, bool) {
	return m.value, m.set
}

// Null reports whether the value is unset.
func (m Maybe[T]) Null() bool {
	return !m.set
}

// ValueOr returns the held value, or fallback if unset.
func (m Maybe[T]) ValueOr(fallback T) T {
	if !m.set {
		return fallback
	}
	return m.value
}

// UnmarshalJSON implements json.Unmarshaler. A missing key leaves the
// Maybe unset; json.Unmarshal only calls this when the key is present.
func (m *Maybe[T]) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.value); err != nil {
		return err
	}
	m.set = true
	return nil
}

// MarshalJSON implements json.Marshaler. An unset Maybe encodes as null.
func (m Maybe[T]) MarshalJSON() ([]byte, error) {
	if !m.set {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}
