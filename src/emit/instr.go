package emit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"adanc/src/ir"
	"adanc/src/types"
)

// icmpPred maps the lowerer's predicate tags to LLVM's signed-integer icmp mnemonics.
var icmpPred = map[string]string{
	"eq": "eq", "ne": "ne", "lt": "slt", "le": "sle", "gt": "sgt", "ge": "sge",
}

// fcmpPred maps the same tags to LLVM's ordered floating-point fcmp mnemonics ("ordered": NaN
// compares false, matching the comparison semantics a numeric-literal-only source language expects
// with no documented NaN behavior of its own).
var fcmpPred = map[string]string{
	"eq": "oeq", "ne": "one", "lt": "olt", "le": "ole", "gt": "ogt", "ge": "oge",
}

// binopMnemonic maps a BinOp symbol and its (already type-checked) result kind to an LLVM opcode.
func binopMnemonic(op string, k types.Kind) (string, error) {
	isFloat := k == types.Float
	switch op {
	case "+":
		if isFloat {
			return "fadd", nil
		}
		return "add", nil
	case "-":
		if isFloat {
			return "fsub", nil
		}
		return "sub", nil
	case "*":
		if isFloat {
			return "fmul", nil
		}
		return "mul", nil
	case "/":
		if isFloat {
			return "fdiv", nil
		}
		return "sdiv", nil
	case "%":
		if isFloat {
			return "frem", nil
		}
		return "srem", nil
	case "&":
		return "and", nil
	case "|":
		return "or", nil
	case "^":
		return "xor", nil
	case "<<":
		return "shl", nil
	case ">>":
		return "ashr", nil
	default:
		return "", errors.Errorf("emit: unknown binary operator %q", op)
	}
}

// renderInstr renders one instruction's "<result> = <op> ..." (or bare, for a non-value-producing
// instruction) text line, without indentation; emitFunction adds the two-space indent.
func (fe *fnEmitter) renderInstr(in *ir.Instr) (string, error) {
	switch in.Op {
	case ir.OpAlloca:
		return fe.emitAlloca(in)
	case ir.OpLoad:
		if in.Typ.Kind == types.Array {
			// An array value is already its own decayed pointer (see
			// Function.CreateEntryAllocaArray's doc comment), so "loading" one is an identity:
			// alias the result name onto the operand's rather than emit a redundant instruction.
			fe.names[in] = fe.nameOf(in.Operands[0])
			return fmt.Sprintf("; %s aliases array value %s (no load needed under decay)", fe.nameOf(in), fe.nameOf(in.Operands[0])), nil
		}
		src, err := fe.slotOperand(in.Operands[0], in.Typ)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = load %s, %s", fe.nameOf(in), valueType(in.Typ), src), nil
	case ir.OpStore:
		if in.Operands[1].Type().Kind == types.Array {
			return "; store into array-typed slot is a no-op under decay representation (whole-array assignment is unsupported)", nil
		}
		val, err := fe.typed(in.Operands[0])
		if err != nil {
			return "", err
		}
		dst, err := fe.slotOperand(in.Operands[1], in.Operands[1].Type())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("store %s, %s", val, dst), nil
	case ir.OpBinop:
		return fe.emitBinop(in)
	case ir.OpCmp:
		return fe.emitCmp(in)
	case ir.OpCall:
		return fe.emitCall(in)
	case ir.OpCast:
		return fe.emitCast(in)
	case ir.OpArrayIndex:
		arr, err := fe.typed(in.Operands[0])
		if err != nil {
			return "", err
		}
		idx, err := fe.typed(in.Operands[1])
		if err != nil {
			return "", err
		}
		elem := valueType(in.Typ)
		return fmt.Sprintf("%s = getelementptr %s, %s, %s", fe.nameOf(in), elem, arr, idx), nil
	case ir.OpArrayLen:
		// No caller lowers an OpArrayLen today (ADAN has no length-returning syntax); a decayed
		// T* array carries no length to read. Kept as a valid, harmless placeholder rather than an
		// error, so a module built by some future caller still validates and emits.
		return fmt.Sprintf("%s = add i64 0, 0 ; array length unavailable for a decayed array pointer", fe.nameOf(in)), nil
	case ir.OpRet:
		val, err := fe.typed(in.Operands[0])
		if err != nil {
			return "", err
		}
		return "ret " + val, nil
	case ir.OpRetVoid:
		return "ret void", nil
	case ir.OpBr:
		return fmt.Sprintf("br label %%%s", blockLabel(in.Then)), nil
	case ir.OpCBr:
		cond, err := fe.typed(in.Operands[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("br %s, label %%%s, label %%%s", cond, blockLabel(in.Then), blockLabel(in.Else)), nil
	case ir.OpPhi:
		return "", errors.Errorf("emit: phi emission is not implemented (lowering routes every join through an alloca instead)")
	default:
		return "", errors.Errorf("emit: unknown instruction %s", in.Op)
	}
}

// emitAlloca renders a plain scalar/pointer-decay alloca directly, or - for an array literal's
// backing store (ArrLen > 0) - a concretely-sized [N x T] alloca followed by a getelementptr that
// decays it to the T* every other use of the array value expects (see ir.Function.
// CreateEntryAllocaArray's doc comment for why the length has to be carried this way).
func (fe *fnEmitter) emitAlloca(in *ir.Instr) (string, error) {
	if in.ArrLen == 0 {
		return fmt.Sprintf("%s = alloca %s", fe.nameOf(in), valueType(in.Typ)), nil
	}
	elem := valueType(*in.Typ.Elem)
	raw := fe.rawName()
	arrTy := fmt.Sprintf("[%d x %s]", in.ArrLen, elem)
	decay := fmt.Sprintf("%s = alloca %s\n  %s = getelementptr %s, %s* %s, i64 0, i64 0",
		raw, arrTy, fe.nameOf(in), arrTy, arrTy, raw)
	return decay, nil
}

func (fe *fnEmitter) emitBinop(in *ir.Instr) (string, error) {
	mnem, err := binopMnemonic(in.BinOp, in.Typ.Kind)
	if err != nil {
		return "", err
	}
	lhs, err := fe.literalText(in.Operands[0])
	if err != nil {
		return "", err
	}
	rhs, err := fe.literalText(in.Operands[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s %s %s, %s", fe.nameOf(in), mnem, valueType(in.Typ), lhs, rhs), nil
}

func (fe *fnEmitter) emitCmp(in *ir.Instr) (string, error) {
	operandType := in.Operands[0].Type()
	lhs, err := fe.literalText(in.Operands[0])
	if err != nil {
		return "", err
	}
	rhs, err := fe.literalText(in.Operands[1])
	if err != nil {
		return "", err
	}
	if operandType.Kind == types.Float {
		pred, ok := fcmpPred[in.Pred]
		if !ok {
			return "", errors.Errorf("emit: unknown comparison predicate %q", in.Pred)
		}
		return fmt.Sprintf("%s = fcmp %s %s %s, %s", fe.nameOf(in), pred, valueType(operandType), lhs, rhs), nil
	}
	pred, ok := icmpPred[in.Pred]
	if !ok {
		return "", errors.Errorf("emit: unknown comparison predicate %q", in.Pred)
	}
	return fmt.Sprintf("%s = icmp %s %s %s, %s", fe.nameOf(in), pred, valueType(operandType), lhs, rhs), nil
}

func (fe *fnEmitter) emitCall(in *ir.Instr) (string, error) {
	args := make([]string, len(in.Operands))
	for i1, a := range in.Operands {
		t, err := fe.typed(a)
		if err != nil {
			return "", err
		}
		args[i1] = t
	}
	callee := "@" + mangle(in.Callee.Name)
	if in.Typ.Kind == types.Void {
		return fmt.Sprintf("call void %s(%s)", callee, strings.Join(args, ", ")), nil
	}
	return fmt.Sprintf("%s = call %s %s(%s)", fe.nameOf(in), valueType(in.Typ), callee, strings.Join(args, ", ")), nil
}

func (fe *fnEmitter) emitCast(in *ir.Instr) (string, error) {
	src := in.Operands[0]
	mnem, err := castOp(src.Type(), in.Typ)
	if err != nil {
		return "", err
	}
	val, err := fe.literalText(src)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s %s %s to %s", fe.nameOf(in), mnem, valueType(src.Type()), val, valueType(in.Typ)), nil
}
