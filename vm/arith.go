package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned by Div and Mod when the divisor
	// coerces to zero.
	ErrDivisionByZero = errors.New("usecode: division by zero")
	// ErrArityMismatch is returned when an operator combines two arrays of
	// different sizes.
	ErrArityMismatch = errors.New("usecode: array size mismatch")
)

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// String returns the operator symbol.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

func (op Op) apply(a, b int64) (int64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a % b, nil
	default:
		return 0, fmt.Errorf("usecode: unknown operator %d", op)
	}
}

// ---------------------------------------------------------------------------
// Compound assignment
// ---------------------------------------------------------------------------

// Operate is the compound assignment v op= w.
//
// Scalars combine as integers after coercion: strings by their leading
// numeral, pointers by their masked address, class values as 0. If either
// side is an array the result is an array: two arrays combine pairwise and
// must have the same size, a scalar is broadcast against every element.
// On error v is left unchanged.
func (v *Value) Operate(op Op, w Value) error {
	res, err := operate(op, *v, w)
	if err != nil {
		return err
	}
	v.Release()
	*v = res
	return nil
}

// AddAssign is v += w.
func (v *Value) AddAssign(w Value) error { return v.Operate(OpAdd, w) }

// SubAssign is v -= w.
func (v *Value) SubAssign(w Value) error { return v.Operate(OpSub, w) }

// MulAssign is v *= w.
func (v *Value) MulAssign(w Value) error { return v.Operate(OpMul, w) }

// DivAssign is v /= w.
func (v *Value) DivAssign(w Value) error { return v.Operate(OpDiv, w) }

// ModAssign is v %= w.
func (v *Value) ModAssign(w Value) error { return v.Operate(OpMod, w) }

// operate computes a op b into a fresh value without touching a or b.
func operate(op Op, a, b Value) (Value, error) {
	switch {
	case a.typ == ArrayType && b.typ == ArrayType:
		if len(a.aval) != len(b.aval) {
			return Value{}, fmt.Errorf("%w: %d %s %d elements", ErrArityMismatch, len(a.aval), op, len(b.aval))
		}
		out := make([]Value, len(a.aval))
		for i := range a.aval {
			e, err := operate(op, a.aval[i], b.aval[i])
			if err != nil {
				releaseAll(out[:i])
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = e
		}
		return Value{typ: ArrayType, aval: out, defined: true}, nil

	case a.typ == ArrayType:
		out := make([]Value, len(a.aval))
		for i := range a.aval {
			e, err := operate(op, a.aval[i], b)
			if err != nil {
				releaseAll(out[:i])
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = e
		}
		return Value{typ: ArrayType, aval: out, defined: true}, nil

	case b.typ == ArrayType:
		out := make([]Value, len(b.aval))
		for i := range b.aval {
			e, err := operate(op, a, b.aval[i])
			if err != nil {
				releaseAll(out[:i])
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = e
		}
		return Value{typ: ArrayType, aval: out, defined: true}, nil
	}

	n, err := op.apply(a.scalarInt(), b.scalarInt())
	if err != nil {
		return Value{}, err
	}
	return FromInt(n), nil
}

func releaseAll(vals []Value) {
	for i := range vals {
		vals[i].Release()
	}
}

// ---------------------------------------------------------------------------
// Binary operators
// ---------------------------------------------------------------------------

// Add returns a + b.
func Add(a, b Value) (Value, error) { return operate(OpAdd, a, b) }

// Sub returns a - b.
func Sub(a, b Value) (Value, error) { return operate(OpSub, a, b) }

// Mul returns a * b.
func Mul(a, b Value) (Value, error) { return operate(OpMul, a, b) }

// Div returns a / b, truncating toward zero.
func Div(a, b Value) (Value, error) { return operate(OpDiv, a, b) }

// Mod returns a % b with the sign of a.
func Mod(a, b Value) (Value, error) { return operate(OpMod, a, b) }
