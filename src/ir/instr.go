package ir

import (
	"fmt"

	"adanc/src/types"
)

// Op identifies what kind of operation an Instr performs. Generalizes lir's one-struct-per-kind
// instruction hierarchy (DataInstruction, LoadInstruction, StoreInstruction, BranchInstruction,
// FunctionCallInstruction in ir/lir/*.go) into a single tagged-variant struct, the same way
// package ast already generalizes VSLC's parse tree (ast.Node.Kind plays the role
// lir.InstructionType plays per-struct): Go doesn't need a distinct type per opcode to avoid
// duplication, and a flat Op tag lets ValidateModule and the emitter switch uniformly.
type Op int

const (
	OpAlloca Op = iota
	OpLoad
	OpStore
	OpBinop
	OpCmp
	OpCall
	OpCast
	OpArrayIndex
	OpArrayLen
	OpPhi
	OpRet
	OpRetVoid
	OpBr
	OpCBr
)

var opNames = [...]string{
	"alloca", "load", "store", "binop", "icmp", "call", "cast", "arrayindex", "arraylen", "phi",
	"ret", "ret void", "br", "cbr",
}

func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opNames) {
		return "unknown"
	}
	return opNames[o]
}

// IsTerminator reports whether Op closes a block (spec.md §4.7: "emit-ret, emit-br, emit-cbr are
// the only instructions that terminate a block").
func (o Op) IsTerminator() bool {
	return o == OpRet || o == OpRetVoid || o == OpBr || o == OpCBr
}

// Instr is a single IR instruction, either producing a value (id != 0, usable as a Value operand
// of a later instruction) or a side-effecting/terminating statement (Store, Ret*, Br, CBr).
type Instr struct {
	block *Block
	id    int // 0 means "does not produce a usable value".

	Op       Op
	Typ      types.Type // result type; meaningful when id != 0.
	Operands []Value    // operand values; meaning depends on Op (see each CreateX constructor).
	Callee   *Function  // OpCall target.
	Then     *Block     // OpCBr true-branch / OpBr destination.
	Else     *Block     // OpCBr false-branch.
	BinOp    string     // operator symbol for OpBinop ("+","-","*","/","%","&","|","^","<<",">>").
	Pred     string     // comparison predicate for OpCmp ("eq","ne","lt","le","gt","ge").
	VarName  string     // source-level name, for OpAlloca (debug/emission readability only).
	ArrLen   int        // element count for an OpAlloca backing an array literal; 0 if not applicable.
}

func (in *Instr) Type() types.Type { return in.Typ }

// String renders in's virtual register name ("%v<n>") when it produces a value, or its mnemonic
// otherwise (terminators and stores have no result to name).
func (in *Instr) String() string {
	if in.id != 0 {
		return fmt.Sprintf("%%v%d", in.id)
	}
	return in.Op.String()
}

// Id returns the instruction's function-local identifier. Zero for instructions with no result.
func (in *Instr) Id() int { return in.id }
