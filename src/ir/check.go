package ir

import (
	"github.com/pkg/errors"

	"adanc/src/types"
)

// ValidateModule walks every function and block in m and reports the first structural invariant
// it violates. Generalizes ir.ValidateTree's walk-and-collect-errors shape (ir/validate.go) to the
// Module/Function/Block/Instr IR (spec.md §4.7): unlike ValidateTree, which folds type-checking
// into the same walk, type-checking here already happened in package sema before lowering, so
// ValidateModule only re-checks structural invariants the builder itself could have been misused
// to violate (a lowerer bug, not a source-program error).
func ValidateModule(m *Module) error {
	seen := make(map[string]bool, len(m.Functions))
	for _, f := range m.Functions {
		if seen[f.Name] {
			return errors.Errorf("module %s: function %q defined more than once", m.Name, f.Name)
		}
		seen[f.Name] = true

		if f.External || len(f.Blocks) == 0 {
			continue
		}
		for _, b := range f.Blocks {
			if err := validateBlock(f, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBlock(f *Function, b *Block) error {
	if b.Term == nil {
		return errors.Errorf("function %s: block %s has no terminator", f.Name, b.Name())
	}
	for i1, in := range b.Instructions {
		if in.Op.IsTerminator() && i1 != len(b.Instructions)-1 {
			return errors.Errorf("function %s: block %s has a terminator before its last instruction", f.Name, b.Name())
		}
		if in.Op == OpStore {
			val, dst := in.Operands[0], in.Operands[1]
			if !types.Equal(val.Type(), dst.Type()) {
				return errors.Errorf("function %s: block %s: store type mismatch: %s into %s",
					f.Name, b.Name(), val.Type(), dst.Type())
			}
		}
	}
	switch b.Term.Op {
	case OpRet:
		if !types.Equal(b.Term.Operands[0].Type(), f.Ret) {
			return errors.Errorf("function %s: block %s: return value type %s does not match function return type %s",
				f.Name, b.Name(), b.Term.Operands[0].Type(), f.Ret)
		}
	case OpRetVoid:
		if f.Ret.Kind != types.Void {
			return errors.Errorf("function %s: block %s: bare return in function declared to return %s", f.Name, b.Name(), f.Ret)
		}
	}
	return nil
}
