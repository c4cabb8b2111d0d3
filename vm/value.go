package vm

// Value is the runtime value every usecode instruction reads and writes.
//
// Exactly one payload is live at a time, selected by the type tag:
//   - IntType:      ival
//   - StringType:   sval
//   - ArrayType:    aval
//   - PointerType:  ptr (a shared handle, possibly null)
//   - ClassSymType: cls
//   - ClassObjType: inst
//
// The zero Value is an undefined Integer(0). Plain Go assignment of a Value
// aliases array storage and does not take a new share of a referenced
// object; use Set, Move or Clone for value semantics, and Release when a
// Value leaves its owning scope.
type Value struct {
	typ     ValueType
	ival    int64
	sval    string
	aval    []Value
	ptr     Handle
	cls     *ClassSymbol
	inst    *classInstance
	defined bool
}

// ValueType identifies which representation a Value currently holds.
type ValueType uint8

const (
	IntType      ValueType = 0
	StringType   ValueType = 1
	ArrayType    ValueType = 2
	PointerType  ValueType = 3
	ClassSymType ValueType = 4 // reference to a class template
	ClassObjType ValueType = 5 // instance of a class template
)

// String returns the name of the type.
func (t ValueType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	case ArrayType:
		return "array"
	case PointerType:
		return "pointer"
	case ClassSymType:
		return "class"
	case ClassObjType:
		return "classobj"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// Undefined returns a value that was never assigned: Integer(0) with the
// undefined flag set. It is the same as the zero Value.
func Undefined() Value {
	return Value{}
}

// FromInt creates a defined integer value.
func FromInt(i int64) Value {
	return Value{typ: IntType, ival: i, defined: true}
}

// FromString creates a defined string value.
func FromString(s string) Value {
	return Value{typ: StringType, sval: s, defined: true}
}

// NewArray creates an array of size undefined elements. If elem0 is not
// nil and the array is non-empty, element 0 is set to a copy of it.
func NewArray(size int, elem0 *Value) Value {
	if size < 0 {
		size = 0
	}
	v := Value{typ: ArrayType, aval: make([]Value, size), defined: true}
	if elem0 != nil && size > 0 {
		v.aval[0] = elem0.Clone()
	}
	return v
}

// FromValues creates an array of vals. The array takes ownership of the
// values passed in.
func FromValues(vals ...Value) Value {
	elems := make([]Value, len(vals))
	copy(elems, vals)
	return Value{typ: ArrayType, aval: elems, defined: true}
}

// FromObject creates a pointer value referring to obj, acquiring a share of
// it. A nil obj gives a null pointer value.
func FromObject(obj GameObject) Value {
	return Value{typ: PointerType, ptr: Share(obj), defined: true}
}

// FromHandle creates a pointer value that takes over the share held by h.
func FromHandle(h Handle) Value {
	return Value{typ: PointerType, ptr: h, defined: true}
}

// FromClassSymbol creates a reference to a class template. The value holds
// no fields.
func FromClassSymbol(cls *ClassSymbol) Value {
	return Value{typ: ClassSymType, cls: cls, defined: true}
}

// ---------------------------------------------------------------------------
// Lifetime
// ---------------------------------------------------------------------------

// Release frees the active payload: array elements and class fields are
// released recursively and a held object share is given back. The value
// is left undefined.
func (v *Value) Release() {
	switch v.typ {
	case ArrayType:
		for i := range v.aval {
			v.aval[i].Release()
		}
	case PointerType:
		v.ptr.Release()
	case ClassObjType:
		if v.inst != nil {
			v.inst.release()
		}
	}
	*v = Value{}
}

// Clone returns a deep copy of v. Arrays and class fields are copied
// element by element and a referenced object gains one more share.
func (v Value) Clone() Value {
	switch v.typ {
	case ArrayType:
		c := v
		c.aval = make([]Value, len(v.aval))
		for i := range v.aval {
			c.aval[i] = v.aval[i].Clone()
		}
		return c
	case PointerType:
		c := v
		c.ptr = v.ptr.Clone()
		return c
	case ClassObjType:
		c := v
		if v.inst != nil {
			c.inst = v.inst.clone()
		}
		return c
	default:
		return v
	}
}

// Set is copy assignment: v becomes a deep copy of w, including its
// undefined flag. The copy is taken before the old payload is released, so
// assigning a value to itself or to one of its own elements is safe.
func (v *Value) Set(w Value) {
	c := w.Clone()
	v.Release()
	*v = c
}

// Move is move assignment: the payload of w is transferred to v without
// copying and w is left undefined.
func (v *Value) Move(w *Value) {
	if v == w {
		return
	}
	moved := *w
	*w = Value{}
	v.Release()
	*v = moved
}

// MarkUndefined sets the undefined flag, keeping the payload. Decoders use
// it to restore a flag carried alongside the value.
func (v *Value) MarkUndefined() {
	v.defined = false
}

// SetString makes v a defined string value.
func (v *Value) SetString(s string) {
	v.Release()
	*v = FromString(s)
}

// SetObject makes v a pointer to obj, acquiring a share. A nil obj makes v
// a null pointer.
func (v *Value) SetObject(obj GameObject) {
	v.SetHandle(Share(obj))
}

// SetHandle makes v a pointer value owning the share held by h.
func (v *Value) SetHandle(h Handle) {
	if v.typ == PointerType && v.ptr.Same(h) {
		// Already hold a share of this object; drop the extra one.
		h.Release()
		v.defined = true
		return
	}
	v.Release()
	*v = FromHandle(h)
}

// ---------------------------------------------------------------------------
// Type queries
// ---------------------------------------------------------------------------

// Type returns the active representation.
func (v Value) Type() ValueType { return v.typ }

// IsArray reports whether v holds an array.
func (v Value) IsArray() bool { return v.typ == ArrayType }

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.typ == IntType }

// IsPtr reports whether v holds an object pointer (possibly null).
func (v Value) IsPtr() bool { return v.typ == PointerType }

// IsUndefined reports whether v was never assigned a real value.
func (v Value) IsUndefined() bool { return !v.defined }

// ArraySize returns the number of elements, or 0 if v is not an array.
func (v Value) ArraySize() int {
	if v.typ != ArrayType {
		return 0
	}
	return len(v.aval)
}

// ---------------------------------------------------------------------------
// Truthiness
// ---------------------------------------------------------------------------

// IsFalse reports whether v counts as false in a condition: zero integers,
// null pointers and empty arrays. Strings and class values are never false.
func (v Value) IsFalse() bool {
	switch v.typ {
	case IntType:
		return v.ival == 0
	case PointerType:
		return v.ptr.IsNull()
	case ArrayType:
		return len(v.aval) == 0
	default:
		return false
	}
}

// IsTrue is the negation of IsFalse.
func (v Value) IsTrue() bool { return !v.IsFalse() }

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

// Equal reports structural equality. Values of different types are never
// equal. Integers and strings compare by content, arrays element by
// element, pointers and class symbols by identity, and class objects by
// template identity plus field equality. The undefined flag is ignored.
func (v Value) Equal(w Value) bool {
	if v.typ != w.typ {
		return false
	}
	switch v.typ {
	case IntType:
		return v.ival == w.ival
	case StringType:
		return v.sval == w.sval
	case ArrayType:
		return equalValues(v.aval, w.aval)
	case PointerType:
		return v.ptr.Same(w.ptr)
	case ClassSymType:
		return v.cls == w.cls
	case ClassObjType:
		if v.inst == nil || w.inst == nil {
			return v.inst == w.inst
		}
		return v.inst.class == w.inst.class && equalValues(v.inst.fields, w.inst.fields)
	default:
		return false
	}
}

// NotEqual is the negation of Equal.
func (v Value) NotEqual(w Value) bool { return !v.Equal(w) }

func equalValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
