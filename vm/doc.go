// Package vm implements the runtime value of the usecode interpreter.
//
// This package contains:
//   - the Value type: integers, strings, arrays, object pointers, class
//     symbols and class objects behind one tagged representation
//   - arithmetic, comparison and truthiness rules used by every opcode
//   - the NeedInt coercion rule
//   - array and class object operations
//   - shared ownership of external game objects (GameObject, Handle)
//   - the save/restore encoding for persisted values
package vm
