// Package types implements ADAN's type lattice (spec.md ch.3). VSLC's ir/symtab.go only ever
// distinguished {int, float}; this is a from-scratch sum type wide enough for spec.md's full lattice,
// since no VSLC file had one to generalize from.
package types

import "fmt"

// Kind tags the variant of a Type.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Char
	String
	Void
	Null
	Array
	Pointer
	Unknown
)

var kindNames = [...]string{
	"int", "float", "bool", "char", "string", "void", "null", "array", "pointer", "unknown",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Type is a tagged variant over ADAN's primitive, array, and pointer types. Array and Pointer carry an
// Elem; every other Kind leaves Elem nil.
type Type struct {
	Kind Kind
	Elem *Type // Element type for Array and Pointer; nil otherwise.
}

// Primitive type singletons, safe to share because Type is immutable once constructed.
var (
	TInt     = Type{Kind: Int}
	TFloat   = Type{Kind: Float}
	TBool    = Type{Kind: Bool}
	TChar    = Type{Kind: Char}
	TString  = Type{Kind: String}
	TVoid    = Type{Kind: Void}
	TNull    = Type{Kind: Null}
	TUnknown = Type{Kind: Unknown}
)

// ArrayOf returns the array-of-elem type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: Array, Elem: &e}
}

// PointerTo returns the pointer-to-elem type.
func PointerTo(elem Type) Type {
	e := elem
	return Type{Kind: Pointer, Elem: &e}
}

// Equal reports whether two types are identical: same Kind and, for Array/Pointer, recursively equal
// element types (spec.md ch.3).
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Array, Pointer:
		if a.Elem == nil || b.Elem == nil {
			return a.Elem == b.Elem
		}
		return Equal(*a.Elem, *b.Elem)
	default:
		return true
	}
}

// IsNumeric reports whether t is one of ADAN's numeric types (spec.md ch.3: "Numeric types are
// {int, float}").
func IsNumeric(t Type) bool {
	return t.Kind == Int || t.Kind == Float
}

// IsReferenceShaped reports whether t is a type null is assignable to (spec.md ch.3: "Null is
// assignable to any reference-shaped type").
func IsReferenceShaped(t Type) bool {
	return t.Kind == String || t.Kind == Array
}

// AssignableTo reports whether a value of type src may be assigned to (or used to initialize) a
// variable of type dst, without implicit numeric coercion (spec.md ch.3, ch.4.6).
func AssignableTo(src, dst Type) bool {
	if src.Kind == Null && IsReferenceShaped(dst) {
		return true
	}
	return Equal(src, dst)
}

// String renders a human readable type name, used in diagnostic messages.
func (t Type) String() string {
	switch t.Kind {
	case Array:
		return fmt.Sprintf("array of %s", t.Elem.String())
	case Pointer:
		return fmt.Sprintf("pointer to %s", t.Elem.String())
	default:
		return t.Kind.String()
	}
}
