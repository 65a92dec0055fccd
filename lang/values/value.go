// Package values implements the tagged runtime value model executed by the
// virtual machine: numbers and booleans are plain Go values copied on
// assignment, while strings and arrays are shared through a
// reference-counted handle (see Array and String) and functions share a
// single FunctionPointer.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the interface implemented by every value the machine can push on
// the stack.
type Value interface {
	// String returns the canonical textual form of the value, as written by
	// the IoWrite/IoAppend opcodes.
	String() string
	// Type names the runtime type, used in TypeMismatch error messages.
	Type() string
	// Truth reports the value's boolean reading (zero numbers and empty
	// strings/arrays read as false). The machine's conditional jump does
	// not use it: it accepts only a Bool.
	Truth() Bool
}

// Bool is the boolean value type.
type Bool bool

func (b Bool) String() string {
	if b {
		return "t"
	}
	return "f"
}
func (b Bool) Type() string { return "bool" }
func (b Bool) Truth() Bool  { return b }

// Integer is the 64-bit signed integer value type. Arithmetic on Integer
// follows two's-complement wraparound semantics, matching Go's own int64
// overflow behavior.
type Integer int64

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) Type() string   { return "integer" }
func (i Integer) Truth() Bool    { return i != 0 }

// Float is the 64-bit floating point value type.
type Float float64

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f Float) Type() string   { return "float" }
func (f Float) Truth() Bool    { return f != 0 }

// String is a shared, immutable handle to a UTF-8 string. Values of this
// type alias their underlying data: cloning a String (LoadArg/LoadLocal of a
// string slot) shares the same handle rather than copying bytes.
type String struct {
	h *stringHandle
}

type stringHandle struct {
	refs int32
	data string
}

// NewString returns a new String value wrapping s, with a reference count
// of 1.
func NewString(s string) String {
	return String{h: &stringHandle{refs: 1, data: s}}
}

// Retain increments the reference count and returns the same handle,
// modelling the sharing that occurs when a String is cloned onto the stack
// by LoadArg/LoadLocal or passed as a call argument.
func (s String) Retain() String {
	if s.h != nil {
		s.h.refs++
	}
	return s
}

// Release decrements the reference count. It is called whenever a value
// handle goes out of scope (a stack slot is popped or overwritten). Go's
// garbage collector, not this counter, is what actually reclaims memory;
// the counter exists so that "no live alias" is a checkable invariant, per
// the language's no-cycle-collector design.
func (s String) Release() {
	if s.h != nil {
		s.h.refs--
	}
}

// Refs returns the current reference count, for debugging and tests.
func (s String) Refs() int32 {
	if s.h == nil {
		return 0
	}
	return s.h.refs
}

func (s String) Raw() string { return s.h.data }
func (s String) String() string {
	return s.h.data
}
func (s String) Type() string { return "string" }
func (s String) Truth() Bool  { return len(s.h.data) > 0 }

// Array is a shared, mutable-through-any-alias list of Values.
type Array struct {
	h *arrayHandle
}

type arrayHandle struct {
	refs  int32
	elems []Value
}

// NewArray returns a new Array value wrapping elems, with a reference count
// of 1. Callers should not retain elems after the call.
func NewArray(elems []Value) Array {
	return Array{h: &arrayHandle{refs: 1, elems: elems}}
}

func (a Array) Retain() Array {
	if a.h != nil {
		a.h.refs++
	}
	return a
}

func (a Array) Release() {
	if a.h != nil {
		a.h.refs--
	}
}

func (a Array) Refs() int32 {
	if a.h == nil {
		return 0
	}
	return a.h.refs
}

// Len returns the number of elements in the array.
func (a Array) Len() int { return len(a.h.elems) }

// Index returns the element at i. The caller must ensure 0 <= i < Len().
func (a Array) Index(i int) Value { return a.h.elems[i] }

// Elems returns the underlying slice. Callers must not retain a reference
// past the lifetime of the VM step that obtained it without also retaining
// the Array handle.
func (a Array) Elems() []Value { return a.h.elems }

func (a Array) Type() string  { return "array" }
func (a Array) Truth() Bool   { return len(a.h.elems) > 0 }
func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range a.h.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatElem(e))
	}
	sb.WriteByte(']')
	return sb.String()
}

// formatElem renders an array element, quoting strings the way a literal
// would read, matching the conventional "debug" rendering of compound
// values nested inside an array's textual form.
func formatElem(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(s.Raw())
	}
	return v.String()
}

// FunctionPointer is the compile-time record describing a compiled function
// literal: its entry address in the instruction stream and the argument/local
// slot counts needed to size its call frame.
type FunctionPointer struct {
	EntryIndex int
	NumArgs    int
	NumLocals  int
}

// Function is a shared handle to a FunctionPointer. Function literals are
// compiled once; every evaluation of the same literal (e.g. inside a loop
// body, or passed around as a value) shares the same FunctionPointer.
type Function struct {
	Ptr *FunctionPointer
}

func NewFunction(ptr *FunctionPointer) Function { return Function{Ptr: ptr} }

func (f Function) String() string {
	return fmt.Sprintf("<function %d>", f.Ptr.EntryIndex)
}
func (f Function) Type() string { return "function" }
func (f Function) Truth() Bool  { return true }

// IsNumber reports whether v is an Integer or a Float.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Integer, Float:
		return true
	default:
		return false
	}
}
