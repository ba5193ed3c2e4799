package schema

import "fmt"

// List is a repeated field: a homogeneous ordered sequence of validated
// values. Insertion order is significant and duplicates are allowed; every
// element-wise write (append, index assignment, wholesale replace) runs the
// element validator and leaves the list unchanged on rejection.
type List[T any] struct {
	check Validator[T]
	vals  []T
}

// NewList constructs an empty list with the given element validator.
func NewList[T any](check Validator[T]) List[T] {
	return List[T]{check: check}
}

// NewListDefault constructs a list preset to def, validating every element
// at construction time.
func NewListDefault[T any](check Validator[T], def []T) (List[T], error) {
	l := List[T]{check: check}
	if err := l.Replace(def); err != nil {
		return List[T]{}, err
	}
	return l, nil
}

// Validate judges a single candidate element.
func (l *List[T]) Validate(v T) error {
	if l.check == nil {
		return nil
	}
	return l.check(v)
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.vals)
}

// At returns the element at index i.
func (l *List[T]) At(i int) T {
	return l.vals[i]
}

// Values returns a copy of the elements in order.
func (l *List[T]) Values() []T {
	out := make([]T, len(l.vals))
	copy(out, l.vals)
	return out
}

// Append validates v and adds it at the end.
func (l *List[T]) Append(v T) error {
	if err := l.Validate(v); err != nil {
		return err
	}
	l.vals = append(l.vals, v)
	return nil
}

// SetAt validates v and assigns it at index i.
func (l *List[T]) SetAt(i int, v T) error {
	if i < 0 || i >= len(l.vals) {
		return fmt.Errorf("%w: index %d out of range", ErrSchemaViolation, i)
	}
	if err := l.Validate(v); err != nil {
		return err
	}
	l.vals[i] = v
	return nil
}

// Replace swaps the whole sequence for vs, validating every element first
// so a rejected replace leaves the prior sequence intact.
func (l *List[T]) Replace(vs []T) error {
	for _, v := range vs {
		if err := l.Validate(v); err != nil {
			return err
		}
	}
	l.vals = make([]T, len(vs))
	copy(l.vals, vs)
	return nil
}
