package catalog

import "encoding/json"

// Field remembers whether a JSON key was present at all.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// Null builds a Field that was sent as an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Present builds a Field that was sent with v.
func Present[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}
