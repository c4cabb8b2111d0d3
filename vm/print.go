package vm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// shortArrayLimit is how many elements Print shows in short form.
const shortArrayLimit = 8

// String returns a readable form of v for logs and debugging.
func (v Value) String() string {
	var sb strings.Builder
	v.Print(&sb, false)
	return sb.String()
}

// Print writes a readable form of v to w. In short form, arrays longer
// than a few elements are cut off with "...".
func (v Value) Print(w io.Writer, short bool) {
	switch v.typ {
	case IntType:
		if !v.defined {
			io.WriteString(w, "<undefined>")
			return
		}
		io.WriteString(w, strconv.FormatInt(v.ival, 10))
	case StringType:
		io.WriteString(w, strconv.Quote(v.sval))
	case ArrayType:
		io.WriteString(w, "[")
		for i := range v.aval {
			if short && i == shortArrayLimit {
				io.WriteString(w, ", ...")
				break
			}
			if i > 0 {
				io.WriteString(w, ", ")
			}
			v.aval[i].Print(w, short)
		}
		io.WriteString(w, "]")
	case PointerType:
		if v.ptr.IsNull() {
			io.WriteString(w, "<null>")
			return
		}
		fmt.Fprintf(w, "<obj 0x%07x>", v.ptr.PointerInt())
	case ClassSymType:
		fmt.Fprintf(w, "<class %s>", className(v.cls))
	case ClassObjType:
		io.WriteString(w, className(v.ClassPtr()))
		io.WriteString(w, "{")
		for i := 0; i < v.ClassVarCount(); i++ {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			v.inst.fields[i].Print(w, short)
		}
		io.WriteString(w, "}")
	}
}

func className(c *ClassSymbol) string {
	if c == nil {
		return "?"
	}
	return c.Name
}
