package emit

import (
	"fmt"

	"github.com/pkg/errors"

	"adanc/src/ir"
	"adanc/src/types"
	"adanc/src/util/xtoa"
)

// fnEmitter renders one function's worth of instructions. Its value→name map is populated lazily,
// in emission order, from its own counter - never from ir.Instr/ir.Param's own internally-assigned
// ids - so the emitted names do not depend on how the builder happened to number things (spec.md
// ch.4.9: "temporaries are numbered lazily at emission time via a per-emitter value→name map").
// Also used standalone (by emitGlobal) to render a single literal outside of any function.
type fnEmitter struct {
	names  map[ir.Value]string
	next   int
	rawSeq int // counter for internal-only names (decayed array allocas) never looked up by nameOf.
}

func newFnEmitter() *fnEmitter {
	return &fnEmitter{names: make(map[ir.Value]string, 16)}
}

// nameOf returns v's emitted register name, assigning the next free one on first use.
func (fe *fnEmitter) nameOf(v ir.Value) string {
	if n, ok := fe.names[v]; ok {
		return n
	}
	n := fmt.Sprintf("%%v%d", fe.next)
	fe.next++
	fe.names[v] = n
	return n
}

func (fe *fnEmitter) rawName() string {
	n := fmt.Sprintf("%%raw%d", fe.rawSeq)
	fe.rawSeq++
	return n
}

// literalText renders v's bare value text, with no type prefix (used inside an already-typed
// context: a binop/icmp/call operand list, a ret, a global initializer).
func (fe *fnEmitter) literalText(v ir.Value) (string, error) {
	switch c := v.(type) {
	case ir.IntConst:
		return xtoa.ItoA(int(c.Val)), nil
	case ir.FloatConst:
		return xtoa.FtoA(c.Val), nil
	case ir.BoolConst:
		if c.Val {
			return "true", nil
		}
		return "false", nil
	case ir.CharConst:
		return xtoa.ItoA(int(c.Val)), nil
	case ir.NullConst:
		return "null", nil
	case *ir.Global:
		return "@" + mangle(c.Name), nil
	case *ir.Instr, *ir.Param:
		return fe.nameOf(v), nil
	default:
		return "", errors.Errorf("emit: unrenderable value %T", v)
	}
}

// typed renders "<llvm-type> <value>", the operand shape most instructions use: v's own ADAN type
// is the type of the value it carries.
func (fe *fnEmitter) typed(v ir.Value) (string, error) {
	text, err := fe.literalText(v)
	if err != nil {
		return "", err
	}
	return valueType(v.Type()) + " " + text, nil
}

// slotOperand renders an OpLoad source / OpStore destination: v is an *ir.Instr (OpAlloca) or
// *ir.Global, a pointer to a slot holding a value of ADAN type pointee - one level of indirection
// more than typed gives, since v.Type() reports the slot's pointee type, not v's own LLVM type.
func (fe *fnEmitter) slotOperand(v ir.Value, pointee types.Type) (string, error) {
	text, err := fe.literalText(v)
	if err != nil {
		return "", err
	}
	return slotType(pointee) + " " + text, nil
}
