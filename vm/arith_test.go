package vm

import (
	"errors"
	"testing"
)

func TestIntArithmetic(t *testing.T) {
	tests := []struct {
		op   Op
		a, b int64
		want int64
	}{
		{OpAdd, 2, 3, 5},
		{OpSub, 2, 3, -1},
		{OpMul, -4, 3, -12},
		{OpDiv, 7, 2, 3},
		{OpDiv, -7, 2, -3},
		{OpMod, 7, 3, 1},
		{OpMod, -7, 3, -1},
	}
	for _, tt := range tests {
		v := FromInt(tt.a)
		if err := v.Operate(tt.op, FromInt(tt.b)); err != nil {
			t.Errorf("%d %s %d: unexpected error %v", tt.a, tt.op, tt.b, err)
			continue
		}
		if !v.IsInt() || v.IntValue() != tt.want {
			t.Errorf("%d %s %d = %v, want %d", tt.a, tt.op, tt.b, v, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, op := range []Op{OpDiv, OpMod} {
		_, err := operate(op, FromInt(5), FromInt(0))
		if !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("5 %s 0: err = %v, want ErrDivisionByZero", op, err)
		}
	}

	v := FromInt(5)
	if err := v.DivAssign(FromString("zero")); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("5 / \"zero\": err = %v, want ErrDivisionByZero", err)
	}
	if v.IntValue() != 5 {
		t.Errorf("operand changed on error: %v", v)
	}

	arr := FromValues(FromInt(1), FromInt(2))
	if _, err := Div(arr, FromValues(FromInt(1), FromInt(0))); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("elementwise division by zero: err = %v", err)
	}
}

func TestStringCoercion(t *testing.T) {
	forty2, err := Add(FromString("42"), FromInt(1))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Add(FromInt(42), FromInt(1))
	if !forty2.Equal(want) {
		t.Errorf("\"42\" + 1 = %v, want %v", forty2, want)
	}

	abc, err := Mul(FromString("abc"), FromInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if !abc.Equal(FromInt(0)) {
		t.Errorf("\"abc\" * 10 = %v, want 0", abc)
	}

	v := FromInt(10)
	if err := v.SubAssign(FromString("  7 apples")); err != nil {
		t.Fatal(err)
	}
	if v.IntValue() != 3 {
		t.Errorf("10 - \"  7 apples\" = %v, want 3", v)
	}
}

func TestPointerCoercion(t *testing.T) {
	obj := &testObject{}
	p := FromObject(obj)
	got, err := Add(p, FromInt(0))
	if err != nil {
		t.Fatal(err)
	}
	want := p.NeedInt()
	if got.IntValue() != want {
		t.Errorf("ptr + 0 = %d, want %d", got.IntValue(), want)
	}
	if want < 0 || want > PointerMask {
		t.Errorf("pointer coercion %d outside mask range", want)
	}
}

func TestElementwiseArithmetic(t *testing.T) {
	a := FromValues(FromInt(1), FromInt(2), FromString("3"))
	b := FromValues(FromInt(10), FromInt(20), FromInt(30))
	sum, err := Add(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if sum.ArraySize() != 3 {
		t.Fatalf("sum size = %d, want 3", sum.ArraySize())
	}
	for i := 0; i < 3; i++ {
		e, _ := Add(a.Elem(i), b.Elem(i))
		if !sum.Elem(i).Equal(e) {
			t.Errorf("sum[%d] = %v, want %v", i, sum.Elem(i), e)
		}
	}
	if !a.Elem(0).Equal(FromInt(1)) {
		t.Error("binary operator changed its left operand")
	}
}

func TestArityMismatch(t *testing.T) {
	a := FromValues(FromInt(1), FromInt(2))
	b := FromValues(FromInt(1))
	if _, err := Add(a, b); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("err = %v, want ErrArityMismatch", err)
	}
	if err := a.MulAssign(b); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("compound err = %v, want ErrArityMismatch", err)
	}
	if a.ArraySize() != 2 {
		t.Error("left operand changed on error")
	}
}

func TestBroadcast(t *testing.T) {
	arr := FromValues(FromInt(1), FromInt(2), FromInt(3))

	right, err := Mul(arr, FromInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if want := FromValues(FromInt(2), FromInt(4), FromInt(6)); !right.Equal(want) {
		t.Errorf("arr * 2 = %v, want %v", right, want)
	}

	left, err := Sub(FromInt(10), arr)
	if err != nil {
		t.Fatal(err)
	}
	if want := FromValues(FromInt(9), FromInt(8), FromInt(7)); !left.Equal(want) {
		t.Errorf("10 - arr = %v, want %v", left, want)
	}
}

func TestCompoundAssignChangesVariant(t *testing.T) {
	v := FromString("5")
	if err := v.AddAssign(FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if !v.IsInt() || v.IntValue() != 6 {
		t.Errorf("\"5\" += 1 gave %v, want 6", v)
	}

	u := Undefined()
	if err := u.ModAssign(FromInt(4)); err != nil {
		t.Fatal(err)
	}
	if u.IsUndefined() {
		t.Error("result of arithmetic should be defined")
	}

	s := FromInt(2)
	if err := s.AddAssign(FromValues(FromInt(1), FromInt(2))); err != nil {
		t.Fatal(err)
	}
	if !s.IsArray() || s.ArraySize() != 2 {
		t.Errorf("scalar += array should give an array, got %v", s)
	}
}
