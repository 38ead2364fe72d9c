// Package emit implements spec.md ch.4.9: rendering an *ir.Module to a textual LLVM-IR document.
//
// New relative to VSLC, which never had a text emitter of its own - its only "backend" is the
// direct-to-assembler arm/riscv packages (backend/arm, backend/riscv), generating target machine
// code straight off the parse tree. Built in backend/asm.go's sibling util.Writer style
// (Ins1/Ins2/Ins3/LoadStore/Label: one exported method per line-shape, called in sequence rather
// than assembled via a template), generalized from target-assembler mnemonics to LLVM-IR mnemonics.
// Unlike util.Writer, emitter appends directly to one strings.Builder: spec.md ch.5 fixes the
// pipeline as single-threaded, so there is no multi-goroutine fan-in left to buffer.
package emit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"adanc/src/ir"
)

// Emit renders m as a complete LLVM-IR text document. Emitting the same module twice produces
// byte-identical output (spec.md ch.8's emitter-idempotence property): nothing here consults
// anything but m itself and the per-call counters declared below.
func Emit(m *ir.Module) (string, error) {
	e := &emitter{}
	e.write("; ModuleID = '%s'\n", mangle(m.Name))
	for _, g := range m.Globals {
		if err := e.emitGlobal(g); err != nil {
			return "", err
		}
	}
	if len(m.Globals) > 0 {
		e.write("\n")
	}
	for i1, f := range m.Functions {
		if i1 > 0 {
			e.write("\n")
		}
		if err := e.emitFunction(f); err != nil {
			return "", err
		}
	}
	return e.sb.String(), nil
}

// emitter accumulates the output document. Value numbering (nameOf) is scoped per function via
// fnEmitter, never carried over from one function to the next.
type emitter struct {
	sb strings.Builder
}

func (e *emitter) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.sb, format, args...)
}

// emitGlobal renders a module-level Global: an interned string constant or a mutable package
// variable (spec.md ch.4.9: "emit each string-carrying global as a private constant [N x i8]
// c\"...\", where N includes the trailing NUL and special bytes are hex-escaped").
func (e *emitter) emitGlobal(g *ir.Global) error {
	name := "@" + mangle(g.Name)
	if g.IsConst {
		text, n := escapeString(g.StrVal)
		e.write("%s = private unnamed_addr constant [%d x i8] c\"%s\"\n", name, n, text)
		return nil
	}
	fe := newFnEmitter()
	init := "zeroinitializer"
	if g.Init != nil {
		text, err := fe.literalText(g.Init)
		if err != nil {
			return err
		}
		init = text
	}
	e.write("%s = global %s %s\n", name, valueType(g.Typ), init)
	return nil
}

// emitFunction renders a single function: a declare line for an external/blockless signature, or a
// full define with every block, per spec.md ch.4.9.
func (e *emitter) emitFunction(f *ir.Function) error {
	params := make([]string, len(f.Params))
	fe := newFnEmitter()
	for i1, p := range f.Params {
		params[i1] = fmt.Sprintf("%s %s", valueType(p.Typ), fe.nameOf(p))
	}
	sig := fmt.Sprintf("@%s(%s)", mangle(f.Name), strings.Join(params, ", "))

	if f.External || len(f.Blocks) == 0 {
		e.write("declare %s %s\n", valueType(f.Ret), sig)
		return nil
	}

	e.write("define %s %s {\n", valueType(f.Ret), sig)
	for _, b := range f.Blocks {
		e.write("%s:\n", blockLabel(b))
		for _, in := range b.Instructions {
			line, err := fe.renderInstr(in)
			if err != nil {
				return errors.Wrapf(err, "function %s", f.Name)
			}
			e.write("  %s\n", line)
		}
	}
	e.write("}\n")
	return nil
}

// blockLabel is the label an OpBr/OpCBr targets and a "<label>:" line introduces. CreateBlock turns
// an empty label into "block<N>" from Function.vseq; a non-empty label is kept as given and is not
// checked for uniqueness (the lowerer only passes "entry" or ""). Labels are not mangled here.
func blockLabel(b *ir.Block) string { return b.Name() }
