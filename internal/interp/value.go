package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nexuslang/nexus/internal/ast"
)

// Value is the tagged union every NexusLang runtime value satisfies
// (spec.md §3): integer, float, string, boolean, null, array, mapping,
// function (user-defined or intrinsic), and opaque host handles.
type Value interface {
	isValue()
}

// Int is a 64-bit two's-complement integer (spec.md's Open Question on
// integer width, resolved here: fixed 64-bit, matching the .nxb wire
// format's i64 constant-pool tag). Arithmetic is plain int64 arithmetic and
// wraps on overflow at 64 bits.
type Int int64

func (Int) isValue() {}

// Float is an IEEE-754 double.
type Float float64

func (Float) isValue() {}

// Str is a UTF-8 string.
type Str string

func (Str) isValue() {}

// Bool is true or false.
type Bool bool

func (Bool) isValue() {}

// NullValue is the sole null value.
type NullValue struct{}

func (NullValue) isValue() {}

// Null is the shared null instance.
var Null = NullValue{}

// Array is an ordered, mutable, heterogeneous sequence.
type Array struct {
	Elements []Value
}

func (*Array) isValue() {}

// NewArray wraps a slice of values as an Array.
func NewArray(elems []Value) *Array {
	return &Array{Elements: elems}
}

// Mapping is an insertion-ordered, string-keyed collection.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func (*Mapping) isValue() {}

// NewMapping builds an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Get returns the value bound to key, if any.
func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set binds key to v, appending key to the insertion order the first time
// it's seen.
func (m *Mapping) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Keys returns the mapping's keys in insertion order.
func (m *Mapping) Keys() []string {
	return m.keys
}

// Len reports the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// RangeValue is the lazy integer sequence `a..b` produces (spec.md §3):
// half-open, Start inclusive and End exclusive, materialized only when a
// for-loop actually walks it.
type RangeValue struct {
	Start int64
	End   int64
}

func (*RangeValue) isValue() {}

// Function is a user-defined closure: its declaration plus the environment
// frame active when it was declared.
type Function struct {
	Name    string
	Params  []ast.Param
	Body    *ast.Block
	Closure *Environment
}

func (*Function) isValue() {}

// IntrinsicFunc is the Go-side implementation of a host intrinsic callable
// from NexusLang as an ordinary function value (print, now, get_trait).
type IntrinsicFunc func(interp *Interpreter, args []Value, named map[string]Value, pos ast.Position) (Value, error)

// Intrinsic is a host-provided function value, named and pooled distinctly
// from user functions so the bytecode compiler can tag CALL_INTRINSIC sites.
type Intrinsic struct {
	Name string
	Fn   IntrinsicFunc
}

func (*Intrinsic) isValue() {}

// Handle is an opaque host handle (a voice id, a knowledge record) that the
// language can pass around but not introspect.
type Handle struct {
	Kind string
	Data interface{}
}

func (*Handle) isValue() {}

// Truthy implements the truthiness table from spec.md §4.3: false, null,
// zero, empty string, empty array, and empty mapping are falsy; everything
// else is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case NullValue:
		return false
	case Int:
		return x != 0
	case Float:
		return x != 0
	case Str:
		return len(x) != 0
	case *Array:
		return len(x.Elements) != 0
	case *Mapping:
		return x.Len() != 0
	default:
		return true
	}
}

// TypeName renders a value's runtime type name for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "string"
	case Bool:
		return "bool"
	case NullValue:
		return "null"
	case *Array:
		return "array"
	case *Mapping:
		return "mapping"
	case *Function, *Intrinsic:
		return "function"
	case *Handle:
		return "handle"
	case *RangeValue:
		return "range"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equals implements structural equality for strings, arrays, and mappings;
// reference identity is never observable (spec.md §4.3).
func Equals(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Float:
			return Float(x) == y
		}
		return false
	case Float:
		switch y := b.(type) {
		case Int:
			return x == Float(y)
		case Float:
			return x == y
		}
		return false
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equals(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			yv, ok := y.Get(k)
			if !ok || !Equals(x.values[k], yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Render produces the textual form print()/say() uses.
func Render(v Value) string {
	switch x := v.(type) {
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Str:
		return string(x)
	case Bool:
		if x {
			return "true"
		}
		return "false"
	case NullValue:
		return "null"
	case *Array:
		parts := make([]string, len(x.Elements))
		for i, e := range x.Elements {
			parts[i] = renderNested(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Mapping:
		parts := make([]string, 0, x.Len())
		for _, k := range x.keys {
			parts = append(parts, k+": "+renderNested(x.values[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Function:
		return fmt.Sprintf("<function %s>", x.Name)
	case *Intrinsic:
		return fmt.Sprintf("<intrinsic %s>", x.Name)
	case *Handle:
		return fmt.Sprintf("<%s>", x.Kind)
	case *RangeValue:
		return fmt.Sprintf("%d..%d", x.Start, x.End)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func renderNested(v Value) string {
	if s, ok := v.(Str); ok {
		return strconv.Quote(string(s))
	}
	return Render(v)
}
