package ir

import (
	"fmt"
	"strings"

	"adanc/src/types"
)

// Param is a function parameter, assigned a unique id when the Function is created (spec.md §4.7:
// "create a parameter on a function... assigns a unique parameter id"). Generalizes lir.Param
// (ir/lir/function.go).
type Param struct {
	Func *Function
	id   int
	Name string
	Typ  types.Type
}

func (p *Param) Type() types.Type { return p.Typ }
func (p *Param) String() string   { return fmt.Sprintf("%%%s", p.Name) }

// Function is a single ADAN function lowered to IR. A Function with no Blocks is an external
// declaration (spec.md §4.8: "external calls lower to calls against function handles whose block
// list is empty"). Generalizes lir.Function (ir/lir/function.go): same owning-module back-pointer
// and per-function id/vseq counters, narrowed to the instruction model in instr.go.
type Function struct {
	Module   *Module
	Name     string
	Ret      types.Type
	Params   []*Param
	Blocks   []*Block
	External bool

	vseq int // next free temporary/block id, local to this function.
}

// CreateBlock appends a new, empty basic block to the function and returns it.
func (f *Function) CreateBlock(label string) *Block {
	id := f.vseq
	f.vseq++
	if label == "" {
		label = fmt.Sprintf("block%d", id)
	}
	b := &Block{Func: f, id: id, Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// CreateEntryAlloca hoists a stack slot into the function's entry block, regardless of which block
// is currently being built (spec.md §4.8: "all allocas are emitted at the start of the function's
// entry block for simplicity"). Unlike Block.CreateAlloca, this bypasses the terminator check: an
// alloca hoisted this way is logically emitted before the entry block's existing instructions ever
// ran, so it is never "too late" regardless of how much of the function has already been lowered.
func (f *Function) CreateEntryAlloca(typ types.Type, name string) *Instr {
	return f.createEntryAlloca(typ, name, 0)
}

// CreateEntryAllocaArray is CreateEntryAlloca for an array literal, additionally recording the
// element count backing the slot. package ir carries no static array length in types.Type itself
// (spec.md ch.3's "array of T" has no length component), so an array literal's concrete size would
// otherwise be lost between lowering and emission; ArrLen is how the lowerer hands it to the
// emitter without widening types.Type to carry something the type lattice itself has no use for.
func (f *Function) CreateEntryAllocaArray(typ types.Type, name string, length int) *Instr {
	return f.createEntryAlloca(typ, name, length)
}

func (f *Function) createEntryAlloca(typ types.Type, name string, arrLen int) *Instr {
	entry := f.Blocks[0]
	in := &Instr{Op: OpAlloca, Typ: typ, VarName: name, ArrLen: arrLen, block: entry, id: f.nextID()}
	entry.Instructions = append(entry.Instructions, in)
	return in
}

// EntryBlock returns the function's first block, or nil if none has been created yet.
func (f *Function) EntryBlock() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

func (f *Function) nextID() int {
	id := f.vseq
	f.vseq++
	return id
}

// String renders a debug dump of the function; see Module.String.
func (f *Function) String() string {
	var sb strings.Builder
	params := make([]string, len(f.Params))
	for i1, p := range f.Params {
		params[i1] = fmt.Sprintf("%s %s", p.Typ, p)
	}
	if f.External || len(f.Blocks) == 0 {
		fmt.Fprintf(&sb, "declare %s @%s(%s)\n", f.Ret, f.Name, strings.Join(params, ", "))
		return sb.String()
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", "))
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}
