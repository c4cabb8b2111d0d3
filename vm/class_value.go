package vm

// ---------------------------------------------------------------------------
// Class values: templates and instances
// ---------------------------------------------------------------------------
//
// A ClassSymbol is owned by the interpreter's class registry. Values only
// hold it by pointer and compare it by identity.
//
// A class object is a fixed-size record: the template it was built from
// plus its fields. Scripts address fields from 0; the field count is fixed
// by ClassNew and storage is only freed by ClassDelete.

// ClassSymbol describes a record layout defined by usecode.
type ClassSymbol struct {
	Name string
	Vars []string // field names, in slot order
}

// NumVars returns the number of fields an instance of c carries.
func (c *ClassSymbol) NumVars() int {
	if c == nil {
		return 0
	}
	return len(c.Vars)
}

type classInstance struct {
	class  *ClassSymbol
	fields []Value
}

func (ci *classInstance) clone() *classInstance {
	c := &classInstance{class: ci.class, fields: make([]Value, len(ci.fields))}
	for i := range ci.fields {
		c.fields[i] = ci.fields[i].Clone()
	}
	return c
}

func (ci *classInstance) release() {
	for i := range ci.fields {
		ci.fields[i].Release()
	}
	ci.fields = nil
}

// ClassNew turns v into an instance of cls with nvars undefined fields,
// releasing whatever v held before.
func (v *Value) ClassNew(cls *ClassSymbol, nvars int) {
	if nvars < 0 {
		nvars = 0
	}
	v.Release()
	*v = Value{
		typ:     ClassObjType,
		inst:    &classInstance{class: cls, fields: make([]Value, nvars)},
		defined: true,
	}
}

// ClassDelete releases the fields of a class object and leaves v
// undefined. It does nothing if v is not a class object.
func (v *Value) ClassDelete() {
	if v.typ != ClassObjType {
		return
	}
	v.Release()
}

// ClassVar returns a pointer to field n for in-place update. It returns
// false if v is not a class object or n is out of range.
func (v *Value) ClassVar(n int) (*Value, bool) {
	if v.typ != ClassObjType || v.inst == nil || n < 0 || n >= len(v.inst.fields) {
		return nil, false
	}
	return &v.inst.fields[n], true
}

// NthClassVar returns a copy of field n. Out-of-range access or a
// non-class value gives an undefined value rather than a fault. Use
// ClassVar to update the field in place.
func (v Value) NthClassVar(n int) Value {
	if v.typ != ClassObjType || v.inst == nil || n < 0 || n >= len(v.inst.fields) {
		return Value{}
	}
	return v.inst.fields[n].Clone()
}

// SetClassVar assigns a copy of w to field n. It reports false, changing
// nothing, when the field does not exist.
func (v *Value) SetClassVar(n int, w Value) bool {
	f, ok := v.ClassVar(n)
	if !ok {
		return false
	}
	f.Set(w)
	return true
}

// ClassVarCount returns the number of fields, or 0 if v is not a class
// object.
func (v Value) ClassVarCount() int {
	if v.typ != ClassObjType || v.inst == nil {
		return 0
	}
	return len(v.inst.fields)
}

// ClassPtr returns the template of a class object, or nil.
func (v Value) ClassPtr() *ClassSymbol {
	if v.typ != ClassObjType || v.inst == nil {
		return nil
	}
	return v.inst.class
}

// ClassSym returns the template referenced by a class symbol value, or nil.
func (v Value) ClassSym() *ClassSymbol {
	if v.typ != ClassSymType {
		return nil
	}
	return v.cls
}
