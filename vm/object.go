package vm

import (
	"reflect"
)

// GameObject is an entity owned outside the interpreter that pointer values
// refer to. Ownership is shared: every holder calls Retain once when it
// takes a share and Release once when it gives it back. The object is
// destroyed by its owner when the last share is released.
//
// Implementations must be pointer types so identity is well defined.
type GameObject interface {
	Retain()
	Release()
}

// Handle is one share of a GameObject. The zero Handle is null.
//
// Copying a Handle struct does not take a new share; use Clone for that.
type Handle struct {
	obj GameObject
}

// Share acquires a new share of obj. A nil obj gives a null handle.
func Share(obj GameObject) Handle {
	if obj == nil || isNilObject(obj) {
		return Handle{}
	}
	obj.Retain()
	return Handle{obj: obj}
}

// Get returns the referenced object, or nil for a null handle.
func (h Handle) Get() GameObject {
	return h.obj
}

// IsNull reports whether h refers to nothing.
func (h Handle) IsNull() bool {
	return h.obj == nil
}

// Clone acquires another share of the same object.
func (h Handle) Clone() Handle {
	if h.obj == nil {
		return Handle{}
	}
	h.obj.Retain()
	return Handle{obj: h.obj}
}

// Release gives back the share and makes h null. Releasing a null handle
// does nothing.
func (h *Handle) Release() {
	if h.obj == nil {
		return
	}
	obj := h.obj
	h.obj = nil
	obj.Release()
}

// Same reports whether h and other refer to the same object. Two null
// handles are the same.
func (h Handle) Same(other Handle) bool {
	return h.obj == other.obj
}

// Addr returns the address of the referenced object, or 0 for null.
func (h Handle) Addr() uintptr {
	if h.obj == nil {
		return 0
	}
	rv := reflect.ValueOf(h.obj)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		return rv.Pointer()
	default:
		return 0
	}
}

// PointerMask keeps the numeric form of an object reference in a small,
// non-negative range. Scripts use it for comparisons and hashing only.
const PointerMask = 0x7ffffff

// PointerInt returns the masked numeric identity of the referenced object.
func (h Handle) PointerInt() int64 {
	return int64(h.Addr() & PointerMask)
}

func isNilObject(obj GameObject) bool {
	rv := reflect.ValueOf(obj)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
