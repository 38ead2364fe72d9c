// asm.go is target-specific assembly generation, out of scope per spec.md ch.1: "target-architecture-
// specific assembly generation (the repository contains stubs; LLVM text is the actual code-generation
// target)". GenerateAssembler itself is kept as a documented stub rather than deleted outright, so a
// caller that reaches for -arch gets a clear explanation instead of VSLC's silent no-op.
package backend

import (
	"fmt"

	"adanc/src/util"
)

// GenerateAssembler reports that direct target-architecture codegen is unsupported; src/emit's textual
// LLVM IR, finished by an external clang/llvm-as toolchain, is the only supported backend (spec.md
// ch.1, ch.6). Unlike VSLC's version, which silently returned nil for every architecture, this always
// fails loudly - the arm/riscv/lir packages VSLC built direct codegen from are gone (see DESIGN.md),
// not kept around as a dead code path. backend/regfile is the only piece of that scaffolding left, and
// it is not reached from here.
func GenerateAssembler(opt util.Options) error {
	if opt.Arch == "" {
		return fmt.Errorf("backend: no architecture requested")
	}
	return fmt.Errorf("backend: direct assembly generation for %q is unsupported; use LLVM text emission (omit -arch)", opt.Arch)
}
