package caf

import (
	"fmt"
	"reflect"
)

// Visitor receives a Number in its natural kind. Exactly one Visit method is
// called per deserialization.
type Visitor[T any] interface {
	// Expecting describes what the visitor wants, for error messages.
	Expecting() string
	VisitFloat64(v float64) (T, error)
	VisitUint64(v uint64) (T, error)
	VisitInt64(v int64) (T, error)
}

// DeserializeAny hands the number to v in its natural kind, checking float,
// then unsigned, then signed. A number written as "3" therefore reaches
// VisitUint64 even when the caller wants a float.
func DeserializeAny[T any](n *Number, v Visitor[T]) (T, error) {
	switch {
	case n.kind == NumberFloat:
		return v.VisitFloat64(n.f)
	case n.kind == NumberUint:
		return v.VisitUint64(n.u)
	default:
		return v.VisitInt64(n.i)
	}
}

// Unexpected describes the number for a type mismatch against expected.
func (n *Number) Unexpected(expected string) *UnexpectedTypeError {
	return &UnexpectedTypeError{Kind: n.kind, Text: n.Text(), Expected: expected}
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

type float interface {
	~float32 | ~float64
}

// signedVisitor narrows to a signed integer type. Floats are rejected and
// out-of-range integers fail.
type signedVisitor[T integer] struct {
	n    *Number
	name string
}

func (v signedVisitor[T]) Expecting() string { return v.name }

func (v signedVisitor[T]) VisitFloat64(float64) (T, error) {
	return 0, v.n.Unexpected(v.name)
}

func (v signedVisitor[T]) VisitUint64(u uint64) (T, error) {
	t := T(u)
	if t < 0 || uint64(t) != u {
		return 0, &InvalidValueError{Kind: v.n.kind, Text: v.n.Text(), Expected: v.name}
	}
	return t, nil
}

func (v signedVisitor[T]) VisitInt64(i int64) (T, error) {
	t := T(i)
	if int64(t) != i {
		return 0, &InvalidValueError{Kind: v.n.kind, Text: v.n.Text(), Expected: v.name}
	}
	return t, nil
}

// unsignedVisitor narrows to an unsigned integer type.
type unsignedVisitor[T unsigned] struct {
	n    *Number
	name string
}

func (v unsignedVisitor[T]) Expecting() string { return v.name }

func (v unsignedVisitor[T]) VisitFloat64(float64) (T, error) {
	return 0, v.n.Unexpected(v.name)
}

func (v unsignedVisitor[T]) VisitUint64(u uint64) (T, error) {
	t := T(u)
	if uint64(t) != u {
		return 0, &InvalidValueError{Kind: v.n.kind, Text: v.n.Text(), Expected: v.name}
	}
	return t, nil
}

func (v unsignedVisitor[T]) VisitInt64(i int64) (T, error) {
	if i < 0 {
		return 0, &InvalidValueError{Kind: v.n.kind, Text: v.n.Text(), Expected: v.name}
	}
	return v.VisitUint64(uint64(i))
}

// floatVisitor accepts every kind.
type floatVisitor[T float] struct {
	name string
}

func (v floatVisitor[T]) Expecting() string { return v.name }

func (v floatVisitor[T]) VisitFloat64(f float64) (T, error) {
	return T(f), nil
}

func (v floatVisitor[T]) VisitUint64(u uint64) (T, error) {
	return T(u), nil
}

func (v floatVisitor[T]) VisitInt64(i int64) (T, error) {
	return T(i), nil
}

// Int8 deserializes the number as an int8.
func (n *Number) Int8() (int8, error) {
	return DeserializeAny[int8](n, signedVisitor[int8]{n, "i8"})
}

// Int16 deserializes the number as an int16.
func (n *Number) Int16() (int16, error) {
	return DeserializeAny[int16](n, signedVisitor[int16]{n, "i16"})
}

// Int32 deserializes the number as an int32.
func (n *Number) Int32() (int32, error) {
	return DeserializeAny[int32](n, signedVisitor[int32]{n, "i32"})
}

// Int64 deserializes the number as an int64.
func (n *Number) Int64() (int64, error) {
	return DeserializeAny[int64](n, signedVisitor[int64]{n, "i64"})
}

// Uint8 deserializes the number as a uint8.
func (n *Number) Uint8() (uint8, error) {
	return DeserializeAny[uint8](n, unsignedVisitor[uint8]{n, "u8"})
}

// Uint16 deserializes the number as a uint16.
func (n *Number) Uint16() (uint16, error) {
	return DeserializeAny[uint16](n, unsignedVisitor[uint16]{n, "u16"})
}

// Uint32 deserializes the number as a uint32.
func (n *Number) Uint32() (uint32, error) {
	return DeserializeAny[uint32](n, unsignedVisitor[uint32]{n, "u32"})
}

// Uint64 deserializes the number as a uint64.
func (n *Number) Uint64() (uint64, error) {
	return DeserializeAny[uint64](n, unsignedVisitor[uint64]{n, "u64"})
}

// Float32 deserializes the number as a float32.
func (n *Number) Float32() (float32, error) {
	return DeserializeAny[float32](n, floatVisitor[float32]{"f32"})
}

// Float64 deserializes the number as a float64.
func (n *Number) Float64() (float64, error) {
	return DeserializeAny[float64](n, floatVisitor[float64]{"f64"})
}

// Bool always fails: a number is never a bool.
func (n *Number) Bool() (bool, error) {
	return false, n.Unexpected("a boolean")
}

// Str always fails: a number is never a string.
func (n *Number) Str() (string, error) {
	return "", n.Unexpected("a string")
}

// Decode stores the number into the numeric variable target points to,
// narrowing through the same visitors as the typed accessors. Targets of
// any other kind fail with an *UnexpectedTypeError.
func (n *Number) Decode(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		v, err := DeserializeAny[int64](n, signedVisitor[int64]{n, elem.Type().String()})
		if err != nil {
			return err
		}
		if elem.OverflowInt(v) {
			return &InvalidValueError{Kind: n.kind, Text: n.Text(), Expected: elem.Type().String()}
		}
		elem.SetInt(v)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		v, err := DeserializeAny[uint64](n, unsignedVisitor[uint64]{n, elem.Type().String()})
		if err != nil {
			return err
		}
		if elem.OverflowUint(v) {
			return &InvalidValueError{Kind: n.kind, Text: n.Text(), Expected: elem.Type().String()}
		}
		elem.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := DeserializeAny[float64](n, floatVisitor[float64]{elem.Type().String()})
		if err != nil {
			return err
		}
		elem.SetFloat(v)
	case reflect.Interface:
		// Natural kind, the same thing DeserializeAny hands out.
		var v any
		switch n.kind {
		case NumberFloat:
			v = n.f
		case NumberUint:
			v = n.u
		default:
			v = n.i
		}
		if !reflect.TypeOf(v).AssignableTo(elem.Type()) {
			return n.Unexpected(elem.Type().String())
		}
		elem.Set(reflect.ValueOf(v))
	default:
		return n.Unexpected(elem.Type().String())
	}
	return nil
}
