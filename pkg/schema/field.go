// Package schema provides reflection-free typed field wrappers. A record
// struct composes Field and List values and exposes accessors over them;
// every write runs the field's validator, and a rejected write leaves the
// field untouched.
package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation reports a field assignment that failed type,
// cardinality, or enum-membership validation. It never escapes the record
// that owns the field; treat it as a programming error.
var ErrSchemaViolation = errors.New("schema violation")

// Validator judges a candidate value for a field. A nil error accepts.
type Validator[T any] func(T) error

// Any accepts every value of T. The static type already carries the
// constraint for plain bool/string fields.
func Any[T any]() Validator[T] {
	return func(T) error { return nil }
}

// Enum accepts only the listed members.
func Enum[T comparable](members ...T) Validator[T] {
	set := make(map[T]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return func(v T) error {
		if !set[v] {
			return fmt.Errorf("%w: %v not in enum", ErrSchemaViolation, v)
		}
		return nil
	}
}

// Field holds either no value or exactly one validated value of T.
type Field[T any] struct {
	check Validator[T]
	val   *T
}

// NewField constructs an unset field with the given validator.
func NewField[T any](check Validator[T]) Field[T] {
	return Field[T]{check: check}
}

// NewFieldDefault constructs a field preset to def. The default itself must
// pass validation; an invalid default is a construction-time error, not a
// first-use one.
func NewFieldDefault[T any](check Validator[T], def T) (Field[T], error) {
	f := Field[T]{check: check}
	if err := f.Set(def); err != nil {
		return Field[T]{}, err
	}
	return f, nil
}

// MustField is NewFieldDefault for statically-known defaults; it panics on
// an invalid default.
func MustField[T any](check Validator[T], def T) Field[T] {
	f, err := NewFieldDefault(check, def)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate judges v without assigning it.
func (f *Field[T]) Validate(v T) error {
	if f.check == nil {
		return nil
	}
	return f.check(v)
}

// Get returns the value and whether one is set.
func (f *Field[T]) Get() (T, bool) {
	if f.val == nil {
		var zero T
		return zero, false
	}
	return *f.val, true
}

// Or returns the value, or fallback if unset.
func (f *Field[T]) Or(fallback T) T {
	if f.val == nil {
		return fallback
	}
	return *f.val
}

// Set validates and assigns v. On rejection the prior value is unchanged.
func (f *Field[T]) Set(v T) error {
	if err := f.Validate(v); err != nil {
		return err
	}
	f.val = &v
	return nil
}

// Clear unsets the field.
func (f *Field[T]) Clear() {
	f.val = nil
}
