// Package dist encodes usecode values as canonical CBOR so they can be
// exported to tools or sent between processes.
package dist

import (
	"errors"
	"fmt"

	"github.com/chazu/usecode/vm"
	"github.com/fxamacker/cbor/v2"
)

// Node is the CBOR form of a vm.Value.
type Node struct {
	Type      uint8  `cbor:"1,keyasint"`
	Undefined bool   `cbor:"2,keyasint,omitempty"`
	Int       int64  `cbor:"3,keyasint,omitempty"`
	Str       string `cbor:"4,keyasint,omitempty"`
	Elems     []Node `cbor:"5,keyasint,omitempty"` // array elements or class fields
	Class     string `cbor:"6,keyasint,omitempty"` // template name
}

// ClassResolver maps a template name back to the registry's symbol.
type ClassResolver func(name string) *vm.ClassSymbol

var (
	// ErrObjectRef is returned when a non-null object pointer is exported.
	ErrObjectRef = errors.New("dist: object references cannot be exported")
	// ErrUnknownClass is returned when a class name does not resolve.
	ErrUnknownClass = errors.New("dist: unknown class")
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ToNode converts v to its exportable form. Null pointers export as an
// empty pointer node; any other pointer fails with ErrObjectRef.
func ToNode(v vm.Value) (Node, error) {
	n := Node{Type: uint8(v.Type()), Undefined: v.IsUndefined()}
	switch v.Type() {
	case vm.IntType:
		n.Int = v.IntValue()
	case vm.StringType:
		n.Str, _ = v.Str()
	case vm.ArrayType:
		elems, err := toNodes(v.ArraySize(), v.Elem)
		if err != nil {
			return Node{}, err
		}
		n.Elems = elems
	case vm.PointerType:
		if v.PtrValue() != nil {
			return Node{}, ErrObjectRef
		}
	case vm.ClassSymType:
		if c := v.ClassSym(); c != nil {
			n.Class = c.Name
		}
	case vm.ClassObjType:
		if c := v.ClassPtr(); c != nil {
			n.Class = c.Name
		}
		elems, err := toNodes(v.ClassVarCount(), v.NthClassVar)
		if err != nil {
			return Node{}, err
		}
		n.Elems = elems
	default:
		return Node{}, fmt.Errorf("dist: unknown value type %d", v.Type())
	}
	return n, nil
}

func toNodes(count int, at func(int) vm.Value) ([]Node, error) {
	out := make([]Node, count)
	for i := range out {
		v := at(i)
		e, err := ToNode(v)
		v.Release()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// FromNode rebuilds a value, including its undefined flag. Class symbols
// and class objects are resolved through classes, which may be nil if the
// node holds none.
func FromNode(n Node, classes ClassResolver) (vm.Value, error) {
	v, err := fromNode(n, classes)
	if err != nil {
		return vm.Value{}, err
	}
	if n.Undefined {
		v.MarkUndefined()
	}
	return v, nil
}

func fromNode(n Node, classes ClassResolver) (vm.Value, error) {
	switch vm.ValueType(n.Type) {
	case vm.IntType:
		return vm.FromInt(n.Int), nil
	case vm.StringType:
		return vm.FromString(n.Str), nil
	case vm.ArrayType:
		v := vm.NewArray(len(n.Elems), nil)
		for i := range n.Elems {
			e, err := FromNode(n.Elems[i], classes)
			if err != nil {
				v.Release()
				return vm.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			v.Index(i).Move(&e)
		}
		return v, nil
	case vm.PointerType:
		return vm.FromObject(nil), nil
	case vm.ClassSymType:
		cls, err := resolve(n.Class, classes)
		if err != nil {
			return vm.Value{}, err
		}
		return vm.FromClassSymbol(cls), nil
	case vm.ClassObjType:
		cls, err := resolve(n.Class, classes)
		if err != nil {
			return vm.Value{}, err
		}
		var v vm.Value
		v.ClassNew(cls, len(n.Elems))
		for i := range n.Elems {
			e, err := FromNode(n.Elems[i], classes)
			if err != nil {
				v.Release()
				return vm.Value{}, fmt.Errorf("field %d: %w", i, err)
			}
			f, _ := v.ClassVar(i)
			f.Move(&e)
		}
		return v, nil
	default:
		return vm.Value{}, fmt.Errorf("dist: unknown value type %d", n.Type)
	}
}

func resolve(name string, classes ClassResolver) (*vm.ClassSymbol, error) {
	if classes == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	cls := classes(name)
	if cls == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return cls, nil
}

// MarshalValue serializes a value to CBOR bytes.
func MarshalValue(v vm.Value) ([]byte, error) {
	n, err := ToNode(v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(n)
}

// UnmarshalValue deserializes a value from CBOR bytes.
func UnmarshalValue(data []byte, classes ClassResolver) (vm.Value, error) {
	var n Node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return vm.Value{}, fmt.Errorf("dist: unmarshal value: %w", err)
	}
	return FromNode(n, classes)
}

// MarshalValues serializes a set of named values as one CBOR map.
func MarshalValues(vals map[string]vm.Value) ([]byte, error) {
	nodes := make(map[string]Node, len(vals))
	for name, v := range vals {
		n, err := ToNode(v)
		if err != nil {
			return nil, fmt.Errorf("dist: %s: %w", name, err)
		}
		nodes[name] = n
	}
	return cborEncMode.Marshal(nodes)
}

// UnmarshalValues deserializes a map written by MarshalValues.
func UnmarshalValues(data []byte, classes ClassResolver) (map[string]vm.Value, error) {
	var nodes map[string]Node
	if err := cbor.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("dist: unmarshal values: %w", err)
	}
	out := make(map[string]vm.Value, len(nodes))
	for name, n := range nodes {
		v, err := FromNode(n, classes)
		if err != nil {
			for _, done := range out {
				done.Release()
			}
			return nil, fmt.Errorf("dist: %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
