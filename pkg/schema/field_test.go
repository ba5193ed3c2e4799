package schema

import (
	"errors"
	"testing"
)

type color int

const (
	red color = iota
	green
	blue
)

func TestFieldSetGet(t *testing.T) {
	f := NewField(Any[string]())

	if _, ok := f.Get(); ok {
		t.Error("fresh field must be unset")
	}
	if err := f.Set("hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := f.Get()
	if !ok || v != "hello" {
		t.Errorf("Get() = %q, %v; want hello, true", v, ok)
	}
	f.Clear()
	if _, ok := f.Get(); ok {
		t.Error("cleared field must be unset")
	}
}

func TestEnumFieldRejectsNonMember(t *testing.T) {
	f := NewField(Enum(red, green, blue))

	if err := f.Set(green); err != nil {
		t.Fatalf("Set(green) failed: %v", err)
	}
	err := f.Set(color(42))
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("Set(42) error = %v, want ErrSchemaViolation", err)
	}
	// Rejected assignment leaves the prior value unchanged.
	v, ok := f.Get()
	if !ok || v != green {
		t.Errorf("after rejected Set, Get() = %v, %v; want green, true", v, ok)
	}
}

func TestFieldDefaultValidatedAtConstruction(t *testing.T) {
	if _, err := NewFieldDefault(Enum(red, green, blue), color(42)); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("invalid default error = %v, want ErrSchemaViolation", err)
	}

	f, err := NewFieldDefault(Enum(red, green, blue), blue)
	if err != nil {
		t.Fatalf("valid default rejected: %v", err)
	}
	if v, ok := f.Get(); !ok || v != blue {
		t.Errorf("default not applied: %v, %v", v, ok)
	}
}

func TestMustFieldPanicsOnInvalidDefault(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustField with invalid default must panic")
		}
	}()
	MustField(Enum(red), green)
}

func TestFieldOr(t *testing.T) {
	f := NewField(Any[bool]())
	if f.Or(true) != true {
		t.Error("Or on unset field must return fallback")
	}
	if err := f.Set(false); err != nil {
		t.Fatal(err)
	}
	if f.Or(true) != false {
		t.Error("Or on set field must return the value")
	}
}

func TestListAppendAndSetAt(t *testing.T) {
	l := NewList(Enum(red, green, blue))

	if err := l.Append(red); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(red); err != nil {
		t.Fatal(err) // duplicates allowed
	}
	if err := l.Append(color(9)); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("Append(9) error = %v, want ErrSchemaViolation", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	if err := l.SetAt(1, blue); err != nil {
		t.Fatal(err)
	}
	if err := l.SetAt(0, color(9)); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("SetAt invalid error = %v, want ErrSchemaViolation", err)
	}
	if err := l.SetAt(5, red); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("SetAt out of range error = %v, want ErrSchemaViolation", err)
	}

	got := l.Values()
	if len(got) != 2 || got[0] != red || got[1] != blue {
		t.Errorf("Values() = %v, want [red blue]", got)
	}
}

func TestListReplaceAtomic(t *testing.T) {
	l := NewList(Enum(red, green))
	if err := l.Replace([]color{red, green}); err != nil {
		t.Fatal(err)
	}

	// A replace with one bad element must not modify the list at all.
	if err := l.Replace([]color{green, color(7)}); !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("Replace error = %v, want ErrSchemaViolation", err)
	}
	got := l.Values()
	if len(got) != 2 || got[0] != red || got[1] != green {
		t.Errorf("after rejected Replace, Values() = %v, want [red green]", got)
	}
}

func TestListDefaultValidatedAtConstruction(t *testing.T) {
	if _, err := NewListDefault(Enum(red), []color{red, blue}); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("invalid list default error = %v, want ErrSchemaViolation", err)
	}
	l, err := NewListDefault(Enum(red, blue), []color{blue})
	if err != nil {
		t.Fatalf("valid list default rejected: %v", err)
	}
	if l.Len() != 1 || l.At(0) != blue {
		t.Errorf("list default not applied: %v", l.Values())
	}
}

func TestValuesIsACopy(t *testing.T) {
	l := NewList(Any[string]())
	if err := l.Append("a"); err != nil {
		t.Fatal(err)
	}
	vs := l.Values()
	vs[0] = "mutated"
	if l.At(0) != "a" {
		t.Error("mutating Values() result must not affect the list")
	}
}
