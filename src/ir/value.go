// value.go defines the operand side of the IR: anything that can be read as the input to an
// instruction. Generalizes lir.Value (ir/lir/value.go): there, every instruction kind implements
// Value directly; here Instr plays that role uniformly (see instr.go), and this file adds the
// free-standing constant kinds the builder API in spec.md §4.7 requires ("constants are created
// free-standing, not tied to a block, and reused by reference").
package ir

import (
	"fmt"

	"adanc/src/types"
	"adanc/src/util/xtoa"
)

// Value is anything an instruction can take as an operand: a constant, a Global, a Param, or
// another Instr's result.
type Value interface {
	Type() types.Type
	String() string
}

// IntConst is a free-standing integer literal value.
type IntConst struct{ Val int64 }

func (c IntConst) Type() types.Type { return types.TInt }
func (c IntConst) String() string   { return xtoa.ItoA(int(c.Val)) }

// FloatConst is a free-standing floating point literal value.
type FloatConst struct{ Val float64 }

func (c FloatConst) Type() types.Type { return types.TFloat }
func (c FloatConst) String() string   { return xtoa.FtoA(c.Val) }

// BoolConst is a free-standing boolean literal value.
type BoolConst struct{ Val bool }

func (c BoolConst) Type() types.Type { return types.TBool }
func (c BoolConst) String() string {
	if c.Val {
		return "true"
	}
	return "false"
}

// CharConst is a free-standing character literal value, rendered as its codepoint (LLVM has no
// native char type; ADAN chars lower to i8).
type CharConst struct{ Val rune }

func (c CharConst) Type() types.Type { return types.TChar }
func (c CharConst) String() string   { return xtoa.ItoA(int(c.Val)) }

// NullConst is the null literal. Its Typ records the reference-shaped type it was typed against
// (string or array), matching types.IsReferenceShaped in package types.
type NullConst struct{ Typ types.Type }

func (c NullConst) Type() types.Type { return c.Typ }
func (c NullConst) String() string   { return "null" }

// stringVal renders n as a decimal-quoted Go string for debug printing; the LLVM emitter does its
// own hex-escaping independently (spec.md §4.9).
func stringVal(s string) string {
	return fmt.Sprintf("%q", s)
}
