package emit

import (
	"fmt"

	"github.com/pkg/errors"

	"adanc/src/types"
)

// valueType renders the LLVM type of a value of ADAN type t: what a load produces, what a
// constant or function parameter/return carries. array-of-T and pointer-to-T both decay to a
// plain T* (spec.md ch.3 gives "array of T" no static length, so there is no concrete [N x T] to
// name at this level - see fnEmitter.emitAlloca for the one place a literal's length does appear).
func valueType(t types.Type) string {
	switch t.Kind {
	case types.Int:
		return "i64"
	case types.Float:
		return "double"
	case types.Bool:
		return "i1"
	case types.Char:
		return "i8"
	case types.String:
		return "i8*"
	case types.Void:
		return "void"
	case types.Array, types.Pointer:
		return valueType(*t.Elem) + "*"
	default:
		// Null and Unknown never reach emission as a declared variable/parameter type (sema
		// resolves Unknown away and Null only ever appears as a value, not a declared type); i8*
		// is the safe, reference-shaped fallback if one somehow does.
		return "i8*"
	}
}

// slotType is the LLVM type of a pointer to a stack slot or global holding a value of ADAN type t:
// what Block.CreateAlloca's result, and every OpLoad/OpStore pointer operand, is typed as.
func slotType(t types.Type) string {
	return valueType(t) + "*"
}

func bitWidth(k types.Kind) int {
	switch k {
	case types.Bool:
		return 1
	case types.Char:
		return 8
	case types.Int:
		return 64
	default:
		return 0
	}
}

// castOp picks the LLVM conversion mnemonic between two distinct primitive ADAN types (spec.md
// ch.4.6: "cast is explicit, required between any two distinct primitive types"). Integer-family
// widening is zero-extended: ADAN has no signed/unsigned distinction in its type lattice (ch.3
// lists plain int/char/bool, no separate unsigned kinds), so there is no sign bit to preserve.
func castOp(from, to types.Type) (string, error) {
	fromFloat := from.Kind == types.Float
	toFloat := to.Kind == types.Float
	switch {
	case fromFloat && !toFloat:
		return "fptosi", nil
	case !fromFloat && toFloat:
		return "sitofp", nil
	case fromFloat && toFloat:
		return "", errors.Errorf("cast: float to float is not a distinct-type cast")
	default:
		fw, tw := bitWidth(from.Kind), bitWidth(to.Kind)
		switch {
		case fw == tw:
			return "bitcast", nil
		case fw < tw:
			return "zext", nil
		default:
			return "trunc", nil
		}
	}
}
