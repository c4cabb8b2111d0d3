package vm

import "fmt"

// ---------------------------------------------------------------------------
// Element access
// ---------------------------------------------------------------------------

// Elem returns a copy of element i of an array. A non-array gives
// Integer(0). The index is not checked. The caller owns the result and
// should Release it if it may hold an object share; use Index to update
// the element in place.
func (v Value) Elem(i int) Value {
	if v.typ != ArrayType {
		return FromInt(0)
	}
	return v.aval[i].Clone()
}

// Index returns a pointer to element i for in-place update. It panics if v
// is not an array or i is out of range.
func (v *Value) Index(i int) *Value {
	if v.typ != ArrayType {
		panic(fmt.Sprintf("Value.Index: not an array (%s)", v.typ))
	}
	return &v.aval[i]
}

// PutElem assigns a copy of w to element i. The index is not checked.
func (v *Value) PutElem(i int, w Value) {
	v.aval[i].Set(w)
}

// Elem0 returns element 0 of a non-empty array, a fresh Integer(0) for an
// empty array, and v itself for anything else.
func (v *Value) Elem0() *Value {
	if v.typ != ArrayType {
		return v
	}
	if len(v.aval) == 0 {
		z := FromInt(0)
		return &z
	}
	return &v.aval[0]
}

// ---------------------------------------------------------------------------
// Array operations
// ---------------------------------------------------------------------------

// Resize grows or shrinks an array to n elements. Existing elements keep
// their index, dropped ones are released and new ones are undefined. It
// returns the new size, or -1 if v is not an array.
func (v *Value) Resize(n int) int {
	if v.typ != ArrayType {
		return -1
	}
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(v.aval):
		releaseAll(v.aval[n:])
		clear(v.aval[n:])
		v.aval = v.aval[:n]
	case n > len(v.aval):
		v.aval = append(v.aval, make([]Value, n-len(v.aval))...)
	}
	return len(v.aval)
}

// FindElem returns the index of the first element equal to w, or -1.
func (v Value) FindElem(w Value) int {
	if v.typ != ArrayType {
		return -1
	}
	for i := range v.aval {
		if v.aval[i].Equal(w) {
			return i
		}
	}
	return -1
}

// promote turns v into an array so elements can be added to it. An
// undefined value becomes an empty array and any other scalar becomes a
// one-element array holding it.
func (v *Value) promote() {
	if v.typ == ArrayType {
		return
	}
	if !v.defined {
		v.Release()
		*v = Value{typ: ArrayType, aval: []Value{}, defined: true}
		return
	}
	old := *v
	*v = Value{typ: ArrayType, aval: []Value{old}, defined: true}
}

// Concat appends the elements of w, or w itself if it is not an array, to
// v. A scalar v is first turned into an array. It returns v.
func (v *Value) Concat(w Value) *Value {
	var add []Value
	if w.typ == ArrayType {
		add = make([]Value, len(w.aval))
		for i := range w.aval {
			add[i] = w.aval[i].Clone()
		}
	} else {
		add = []Value{w.Clone()}
	}
	v.promote()
	v.aval = append(v.aval, add...)
	return v
}

// Append adds each of vals as a new integer element.
func (v *Value) Append(vals ...int64) {
	v.promote()
	for _, n := range vals {
		v.aval = append(v.aval, FromInt(n))
	}
}

// PushBack adds one integer element.
func (v *Value) PushBack(n int64) {
	v.Append(n)
}

// AddValues inserts w at index, or all of w's elements if w is an array,
// shifting later elements up. An index past the end pads with undefined
// elements. A scalar v is first turned into an array. It returns the
// number of values inserted.
func (v *Value) AddValues(index int, w Value) int {
	var add []Value
	if w.typ == ArrayType {
		add = make([]Value, len(w.aval))
		for i := range w.aval {
			add[i] = w.aval[i].Clone()
		}
	} else {
		add = []Value{w.Clone()}
	}
	v.promote()
	if index < 0 {
		index = 0
	}
	if index > len(v.aval) {
		v.aval = append(v.aval, make([]Value, index-len(v.aval))...)
	}
	out := make([]Value, 0, len(v.aval)+len(add))
	out = append(out, v.aval[:index]...)
	out = append(out, add...)
	out = append(out, v.aval[index:]...)
	v.aval = out
	return len(add)
}

// StealArray moves the array held by w into v without copying elements,
// leaving w an undefined empty array. If w is not an array it is copied
// into v instead.
func (v *Value) StealArray(w *Value) {
	if v == w {
		return
	}
	if w.typ != ArrayType {
		v.Set(*w)
		return
	}
	elems := w.aval
	*w = Value{typ: ArrayType, aval: []Value{}}
	v.Release()
	*v = Value{typ: ArrayType, aval: elems, defined: true}
}
