package vm

import (
	"strconv"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("usecode.vm")

// diagnostics gates advisory logging about likely accessor misuse.
var diagnostics atomic.Bool

// SetDiagnostics turns accessor misuse diagnostics on or off. They are off
// by default and never change the result of an operation.
func SetDiagnostics(on bool) {
	diagnostics.Store(on)
}

// DiagnosticsEnabled reports whether misuse diagnostics are on.
func DiagnosticsEnabled() bool {
	return diagnostics.Load()
}

// suspiciousInt is the magnitude above which an integer probably came from
// an object reference rather than script arithmetic.
const suspiciousInt = 0x10000

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// IntValue returns the integer payload, or 0 if v is not an integer.
func (v Value) IntValue() int64 {
	if diagnostics.Load() {
		if v.typ == PointerType || (v.typ == IntType && (v.ival > suspiciousInt || v.ival < -suspiciousInt)) {
			log.Debugf("probable attempt at getting int value of pointer (type %s, value %d)", v.typ, v.ival)
		}
	}
	if v.typ != IntType {
		return 0
	}
	return v.ival
}

// Str returns the string payload of a string value. Undefined values and
// empty arrays read as the empty string. For anything else ok is false,
// which callers use to tell "not a string" apart from "".
func (v Value) Str() (s string, ok bool) {
	switch {
	case v.typ == StringType:
		return v.sval, true
	case !v.defined:
		return "", true
	case v.typ == ArrayType && len(v.aval) == 0:
		return "", true
	default:
		return "", false
	}
}

// PtrValue returns the referenced object of a pointer value, or nil.
func (v Value) PtrValue() GameObject {
	if v.typ != PointerType {
		return nil
	}
	return v.ptr.Get()
}

// Handle returns a new share of the object a pointer value refers to. The
// caller owns the returned handle. Non-pointer values give a null handle.
func (v Value) Handle() Handle {
	if v.typ != PointerType {
		return Handle{}
	}
	return v.ptr.Clone()
}

// NeedInt is the single rule for coercing any value to a number:
//   - anything Str accepts is parsed as a leading decimal numeral
//   - a non-empty array coerces through its element 0
//   - a pointer gives its masked address
//   - everything else gives IntValue
func (v Value) NeedInt() int64 {
	if s, ok := v.Str(); ok {
		return ParseLeadingInt(s)
	}
	if v.typ == ArrayType && len(v.aval) > 0 {
		return v.aval[0].NeedInt()
	}
	if v.typ == PointerType {
		return v.ptr.PointerInt()
	}
	return v.IntValue()
}

// scalarInt coerces a non-array operand for arithmetic.
func (v Value) scalarInt() int64 {
	switch v.typ {
	case IntType:
		return v.ival
	case StringType:
		return ParseLeadingInt(v.sval)
	case PointerType:
		return v.ptr.PointerInt()
	default:
		return 0
	}
}

// ParseLeadingInt parses the decimal numeral at the start of s, ignoring
// leading white space and anything after the digits. A string without a
// leading numeral gives 0. Out-of-range numerals saturate.
func ParseLeadingInt(s string) int64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	// ParseInt returns the saturated bound along with ErrRange.
	n, _ := strconv.ParseInt(s[start:i], 10, 64)
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
