package vm

import (
	"testing"
)

func TestClassNewAndFields(t *testing.T) {
	cls := &ClassSymbol{Name: "Potion", Vars: []string{"color", "strength", "owner"}}
	var v Value
	v.ClassNew(cls, cls.NumVars())

	if v.Type() != ClassObjType {
		t.Fatalf("type = %s, want classobj", v.Type())
	}
	if n := v.ClassVarCount(); n != 3 {
		t.Errorf("ClassVarCount = %d, want 3", n)
	}
	if v.ClassPtr() != cls {
		t.Error("ClassPtr should return the template")
	}

	fields := []Value{FromString("red"), FromInt(7), FromValues(FromInt(1))}
	for i, f := range fields {
		if !v.SetClassVar(i, f) {
			t.Errorf("SetClassVar(%d) failed", i)
		}
	}
	for i, f := range fields {
		if got := v.NthClassVar(i); !got.Equal(f) {
			t.Errorf("NthClassVar(%d) = %v, want %v", i, got, f)
		}
	}

	v.ClassDelete()
	if n := v.ClassVarCount(); n != 0 {
		t.Errorf("ClassVarCount after delete = %d, want 0", n)
	}
	if !v.IsUndefined() {
		t.Error("deleted class object should be undefined")
	}
}

func TestClassVarOutOfRange(t *testing.T) {
	var v Value
	v.ClassNew(&ClassSymbol{Name: "Empty"}, 1)

	for _, n := range []int{-1, 1, 100} {
		if got := v.NthClassVar(n); !got.IsUndefined() {
			t.Errorf("NthClassVar(%d) = %v, want undefined", n, got)
		}
		if v.SetClassVar(n, FromInt(1)) {
			t.Errorf("SetClassVar(%d) should fail", n)
		}
		if _, ok := v.ClassVar(n); ok {
			t.Errorf("ClassVar(%d) should fail", n)
		}
	}

	scalar := FromInt(3)
	if got := scalar.NthClassVar(0); !got.IsUndefined() {
		t.Errorf("NthClassVar on a scalar = %v", got)
	}
	if scalar.ClassPtr() != nil || scalar.ClassVarCount() != 0 {
		t.Error("scalar has no class")
	}
	scalar.ClassDelete()
	if !scalar.Equal(FromInt(3)) {
		t.Error("ClassDelete on a non-class value should do nothing")
	}
}

func TestClassVarInPlace(t *testing.T) {
	var v Value
	v.ClassNew(&ClassSymbol{Name: "Counter"}, 1)
	f, ok := v.ClassVar(0)
	if !ok {
		t.Fatal("ClassVar(0) failed")
	}
	f.Set(FromInt(1))
	if err := f.AddAssign(FromInt(2)); err != nil {
		t.Fatal(err)
	}
	if got := v.NthClassVar(0).IntValue(); got != 3 {
		t.Errorf("field = %d, want 3", got)
	}
}

func TestNthClassVarIsACopy(t *testing.T) {
	obj := &testObject{}
	var inst Value
	inst.ClassNew(&ClassSymbol{Name: "P"}, 2)
	inst.SetClassVar(0, FromValues(FromInt(5), FromInt(6)))
	inst.SetClassVar(1, FromObject(obj))

	f := inst.NthClassVar(0)
	if err := f.MulAssign(FromInt(2)); err != nil {
		t.Fatal(err)
	}
	f.Release()
	if got := inst.NthClassVar(0); !got.Equal(FromValues(FromInt(5), FromInt(6))) {
		t.Errorf("field 0 = %v, want [5, 6]", got)
	}

	p := inst.NthClassVar(1)
	p.Release()
	if obj.destroyed || obj.refs != 1 {
		t.Errorf("refs = %d, want 1 after releasing a field copy", obj.refs)
	}
	inst.Release()
	if !obj.destroyed {
		t.Error("object should be destroyed with the instance")
	}
}

func TestClassObjectEquality(t *testing.T) {
	cls := &ClassSymbol{Name: "Pair"}
	var a, b, c Value
	a.ClassNew(cls, 2)
	b.ClassNew(cls, 2)
	c.ClassNew(&ClassSymbol{Name: "Pair"}, 2)

	if !a.Equal(b) {
		t.Error("fresh instances of one template should be equal")
	}
	if a.Equal(c) {
		t.Error("instances of different templates should differ")
	}
	a.SetClassVar(1, FromInt(5))
	if a.Equal(b) {
		t.Error("instances with different fields should differ")
	}

	d := a.Clone()
	d.SetClassVar(1, FromInt(6))
	if a.NthClassVar(1).IntValue() != 5 {
		t.Error("Clone should deep copy fields")
	}
}
