package ir

import (
	"fmt"
	"strings"

	"adanc/src/types"
)

// Block is a basic block: a straight-line instruction sequence closed by exactly one terminator.
// Generalizes lir.Block (ir/lir/block.go): same id/Name/instructions/term shape, but the
// CreateConditionalBranch-style "panic on misuse" builder methods of lir (block.go, branch.go) are
// replaced with error returns, per spec.md §9's "replace exceptions/long-jumps with
// result-or-diagnostic" direction.
type Block struct {
	Func         *Function
	id           int
	Label        string
	Instructions []*Instr
	Term         *Instr // nil until a terminator has been emitted.
}

func (b *Block) Name() string { return b.Label }

// append validates that b is still open, assigns the instruction an id if it produces a value, and
// appends it to b.Instructions.
func (b *Block) append(in *Instr, producesValue bool) (*Instr, error) {
	if b.Term != nil {
		return nil, fmt.Errorf("function %s, block %s: cannot emit %s into a block already terminated by %s",
			b.Func.Name, b.Name(), in.Op, b.Term.Op)
	}
	in.block = b
	if producesValue {
		in.id = b.Func.nextID()
	}
	b.Instructions = append(b.Instructions, in)
	if in.Op.IsTerminator() {
		b.Term = in
	}
	return in, nil
}

// CreateAlloca emits a stack-local variable declaration. Per spec.md §4.8, the lowerer always
// emits these at the start of the function's entry block; Block does not enforce that placement
// itself, since the invariant is the lowerer's responsibility to maintain, not the builder's to
// police.
func (b *Block) CreateAlloca(typ types.Type, name string) (*Instr, error) {
	return b.append(&Instr{Op: OpAlloca, Typ: typ, VarName: name}, true)
}

// CreateLoad emits a load from src, which must be an OpAlloca Instr or a *Global.
func (b *Block) CreateLoad(src Value) (*Instr, error) {
	return b.append(&Instr{Op: OpLoad, Typ: src.Type(), Operands: []Value{src}}, true)
}

// CreateStore emits a store of val into dst, which must be an OpAlloca Instr or a *Global. It is an
// error for val's type not to match dst's (spec.md §4.7: "load/store pointee-type equality").
func (b *Block) CreateStore(val Value, dst Value) (*Instr, error) {
	if !types.Equal(val.Type(), dst.Type()) {
		return nil, fmt.Errorf("function %s, block %s: store type mismatch: storing %s into %s",
			b.Func.Name, b.Name(), val.Type(), dst.Type())
	}
	return b.append(&Instr{Op: OpStore, Operands: []Value{val, dst}}, false)
}

// CreateBinop emits an arithmetic or bitwise binary instruction. resultType is supplied by the
// caller (the lowerer, which already has the semantic analyzer's annotated type for the
// expression) rather than recomputed here, since package ir has no type-lattice rules of its own.
func (b *Block) CreateBinop(op string, lhs, rhs Value, resultType types.Type) (*Instr, error) {
	return b.append(&Instr{Op: OpBinop, Typ: resultType, Operands: []Value{lhs, rhs}, BinOp: op}, true)
}

// CreateCmp emits a comparison instruction; its result is always bool.
func (b *Block) CreateCmp(pred string, lhs, rhs Value) (*Instr, error) {
	return b.append(&Instr{Op: OpCmp, Typ: types.TBool, Operands: []Value{lhs, rhs}, Pred: pred}, true)
}

// CreateCall emits a call to target with the given in-order arguments.
func (b *Block) CreateCall(target *Function, args []Value) (*Instr, error) {
	if len(args) != len(target.Params) {
		return nil, fmt.Errorf("function %s, block %s: call to %s expects %d arguments, got %d",
			b.Func.Name, b.Name(), target.Name, len(target.Params), len(args))
	}
	producesValue := target.Ret.Kind != types.Void
	return b.append(&Instr{Op: OpCall, Typ: target.Ret, Operands: args, Callee: target}, producesValue)
}

// CreateCast emits a conversion of val to typ.
func (b *Block) CreateCast(val Value, typ types.Type) (*Instr, error) {
	return b.append(&Instr{Op: OpCast, Typ: typ, Operands: []Value{val}}, true)
}

// CreateArrayIndex emits an element-address computation into arr at index idx.
func (b *Block) CreateArrayIndex(arr Value, idx Value, elemType types.Type) (*Instr, error) {
	return b.append(&Instr{Op: OpArrayIndex, Typ: elemType, Operands: []Value{arr, idx}}, true)
}

// CreateArrayLen emits the length of arr.
func (b *Block) CreateArrayLen(arr Value) (*Instr, error) {
	return b.append(&Instr{Op: OpArrayLen, Typ: types.TInt, Operands: []Value{arr}}, true)
}

// CreateRet terminates b with a return of val.
func (b *Block) CreateRet(val Value) (*Instr, error) {
	return b.append(&Instr{Op: OpRet, Typ: val.Type(), Operands: []Value{val}}, false)
}

// CreateRetVoid terminates b with a bare return.
func (b *Block) CreateRetVoid() (*Instr, error) {
	return b.append(&Instr{Op: OpRetVoid, Typ: types.TVoid}, false)
}

// CreateBr terminates b with an unconditional jump to dst.
func (b *Block) CreateBr(dst *Block) (*Instr, error) {
	return b.append(&Instr{Op: OpBr, Then: dst}, false)
}

// CreateCBr terminates b with a conditional jump: to thn if cond is true, to els otherwise.
func (b *Block) CreateCBr(cond Value, thn, els *Block) (*Instr, error) {
	if !types.Equal(cond.Type(), types.TBool) {
		return nil, fmt.Errorf("function %s, block %s: conditional branch condition must be bool, got %s",
			b.Func.Name, b.Name(), cond.Type())
	}
	return b.append(&Instr{Op: OpCBr, Operands: []Value{cond}, Then: thn, Else: els}, false)
}

// String renders a debug dump of the block; see Module.String.
func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Name())
	for _, in := range b.Instructions {
		sb.WriteByte('\t')
		sb.WriteString(instrString(in))
		sb.WriteByte('\n')
	}
	if b.Term == nil {
		fmt.Fprintf(&sb, "\t; error: block %s has no terminator\n", b.Name())
	}
	return sb.String()
}

// instrString renders the full "<result> = <op> <operands>" textual form of an instruction for
// debug dumps; package emit has its own, LLVM-mnemonic-accurate renderer.
func instrString(in *Instr) string {
	lhs := ""
	if in.id != 0 {
		lhs = in.String() + " = "
	}
	switch in.Op {
	case OpAlloca:
		return fmt.Sprintf("%salloca %s ; %s", lhs, in.Typ, in.VarName)
	case OpLoad:
		return fmt.Sprintf("%sload %s", lhs, in.Operands[0])
	case OpStore:
		return fmt.Sprintf("store %s, %s", in.Operands[0], in.Operands[1])
	case OpBinop:
		return fmt.Sprintf("%s%s %s, %s", lhs, in.BinOp, in.Operands[0], in.Operands[1])
	case OpCmp:
		return fmt.Sprintf("%sicmp %s %s, %s", lhs, in.Pred, in.Operands[0], in.Operands[1])
	case OpCall:
		return fmt.Sprintf("%scall @%s(...)", lhs, in.Callee.Name)
	case OpCast:
		return fmt.Sprintf("%scast %s to %s", lhs, in.Operands[0], in.Typ)
	case OpArrayIndex:
		return fmt.Sprintf("%sindex %s[%s]", lhs, in.Operands[0], in.Operands[1])
	case OpArrayLen:
		return fmt.Sprintf("%slen %s", lhs, in.Operands[0])
	case OpRet:
		return fmt.Sprintf("ret %s", in.Operands[0])
	case OpRetVoid:
		return "ret void"
	case OpBr:
		return fmt.Sprintf("br %s", in.Then.Name())
	case OpCBr:
		return fmt.Sprintf("cbr %s, %s, %s", in.Operands[0], in.Then.Name(), in.Else.Name())
	default:
		return in.Op.String()
	}
}
