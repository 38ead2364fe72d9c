// Package lower implements spec.md ch.4.8: translates the semantically-analyzed AST (package ast,
// annotated by package sema) into package ir's typed IR.
//
// New relative to VSLC, which lowers straight from its parse tree into go-llvm's own builder inside
// ir/llvm/transform.go - adanc needs a separate lowering stage because it owns its IR instead of
// borrowing LLVM's. Built in the style of transform.go's control-flow lowering (if/while/for
// diamond construction via paired then/else/join blocks, entry-block alloca hoisting) but targeting
// ir.Builder-shaped methods on ir.Block instead of llvm.Builder. Context replaces
// transform.go's package-level mutable "globals symTab" with an explicit value threaded through
// every call, per spec.md ch.9's direction against package-level mutable state.
package lower

import (
	"github.com/pkg/errors"

	"adanc/src/ast"
	"adanc/src/ir"
	"adanc/src/sema"
	"adanc/src/types"
)

// binding is what a source-level name is bound to in the lowerer's variable environment: either a
// stack slot (an OpAlloca Instr, loaded/stored through) or a Global.
type binding struct {
	slot ir.Value // an *ir.Instr (OpAlloca) or *ir.Global.
}

// Context carries the lowerer's per-function mutable state: the function and block currently being
// built, and the variable environment mapping source names to their storage (spec.md ch.4.8). It is
// always passed explicitly - never package-level - so multiple functions could in principle be
// lowered independently (even though the driver, like the rest of the pipeline, does so
// sequentially per spec.md ch.5).
type Context struct {
	Module *ir.Module
	Func   *ir.Function
	Block  *ir.Block

	vars      map[string]binding
	globals   map[string]*ir.Global
	loopExits []*ir.Block // exit block of each enclosing loop, innermost last, for break.
	loopConts []*ir.Block // continuation block of each enclosing loop, innermost last, for continue.
}

// Lower builds an ir.Module from prog, an AST that has already been walked by sema.Analyzer.Analyze
// with no errors (spec.md ch.4.6/ch.7: "if any error diagnostic exists after semantic analysis, the
// compiler stops before lowering" - enforced by the driver, not by this package). sigs is the
// function signature registry sema.Analyzer.Signatures populated, used to pre-declare every
// function (including ones only reachable via an import) before any body is lowered, so forward
// references and mutual recursion resolve the same way they did during analysis.
func Lower(moduleName string, prog *ast.Node, sigs map[string]sema.Signature) (*ir.Module, error) {
	m := ir.NewModule(moduleName)
	c := &Context{Module: m, globals: make(map[string]*ir.Global, 8)}

	bodies := make(map[string]*ast.Node, len(prog.Children))
	for _, d := range prog.Children {
		if d.Kind == ast.FuncDecl {
			name, _ := d.Data.(string)
			bodies[name] = d
		}
	}

	// Pre-declare every known signature (spec.md ch.4.8: "external calls lower to calls against
	// function handles whose block list is empty"). A signature with no matching body in this
	// translation unit is an external declaration - either an imported library function or a
	// built-in runtime symbol sema already validated exists.
	for name, sig := range sigs {
		_, err := m.CreateFunction(name, sig.Return, sig.Params, bodies[name] == nil)
		if err != nil {
			return nil, err
		}
	}

	// Globals are registered before any function body is lowered, so a function may reference a
	// global declared later in source order (mirroring sema.Analyzer.Analyze's own two-pass hoist
	// then walk, for the same forward-reference reason).
	for _, d := range prog.Children {
		if d.Kind == ast.VarDecl {
			if err := c.lowerGlobalVarDecl(d); err != nil {
				return nil, err
			}
		}
	}

	for _, d := range prog.Children {
		if d.Kind == ast.FuncDecl {
			name, _ := d.Data.(string)
			f, _ := m.Function(name)
			if err := c.lowerFunctionBody(f, d); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (c *Context) lowerGlobalVarDecl(n *ast.Node) error {
	name, _ := n.Data.(string)
	typ := n.Children[0].Data.(types.Type)
	var init ir.Value = zeroValue(typ)
	if len(n.Children) > 1 {
		v, err := c.lowerConstExpr(n.Children[1])
		if err != nil {
			return err
		}
		init = v
	}
	g, err := c.Module.CreateGlobal(name, typ, init)
	if err != nil {
		return err
	}
	c.globals[name] = g
	return nil
}

// lowerConstExpr lowers a global initializer, which spec.md restricts to the literal forms
// zeroValue already renders (a fuller constant-expression evaluator is future work the single
// worked example in spec.md never exercises).
func (c *Context) lowerConstExpr(n *ast.Node) (ir.Value, error) {
	switch n.Kind {
	case ast.IntLiteral:
		return ir.IntConst{Val: n.Data.(int64)}, nil
	case ast.FloatLiteral:
		return ir.FloatConst{Val: n.Data.(float64)}, nil
	case ast.BoolLiteral:
		return ir.BoolConst{Val: n.Data.(bool)}, nil
	case ast.StringLiteral:
		return c.Module.CreateString(n.Data.(string)), nil
	case ast.NullLiteral:
		return ir.NullConst{Typ: n.Type}, nil
	default:
		return nil, errors.Errorf("line %d: global initializer must be a literal", n.Line)
	}
}

// zeroValue is the default value lowering a declaration without an initializer falls back to.
func zeroValue(t types.Type) ir.Value {
	switch t.Kind {
	case types.Int, types.Char:
		return ir.IntConst{Val: 0}
	case types.Float:
		return ir.FloatConst{Val: 0}
	case types.Bool:
		return ir.BoolConst{Val: false}
	default:
		return ir.NullConst{Typ: t}
	}
}

// lowerFunctionBody lowers d's body into f. Unused for external declarations (Lower never calls
// this for a signature with no body).
func (c *Context) lowerFunctionBody(f *ir.Function, d *ast.Node) error {
	c.Func = f
	c.vars = make(map[string]binding, len(f.Params)+8)
	c.Block = f.CreateBlock("entry")

	params := d.Children[1 : len(d.Children)-1]
	for i1, p := range params {
		name, _ := p.Data.(string)
		ptyp := p.Children[0].Data.(types.Type)
		slot := f.CreateEntryAlloca(ptyp, name)
		if _, err := c.Block.CreateStore(f.Params[i1], slot); err != nil {
			return err
		}
		c.vars[name] = binding{slot: slot}
	}

	body := d.Children[len(d.Children)-1]
	if err := c.lowerBlock(body); err != nil {
		return err
	}

	if c.Block.Term == nil {
		return c.emitImplicitReturn(f.Ret)
	}
	return nil
}

// emitImplicitReturn closes a fallen-off-the-end function body, per spec.md ch.4.7: "if the last
// block has no terminator, it emits an implicit ret void ... otherwise ret 0 / 0.0 / null matching
// the return type."
func (c *Context) emitImplicitReturn(ret types.Type) error {
	if ret.Kind == types.Void {
		_, err := c.Block.CreateRetVoid()
		return err
	}
	_, err := c.Block.CreateRet(zeroValue(ret))
	return err
}

func (c *Context) lowerBlock(n *ast.Node) error {
	for _, stmt := range n.Children {
		if err := c.lowerStmt(stmt); err != nil {
			return err
		}
		if c.Block.Term != nil {
			// Unreachable code after a terminator (e.g. statements after a return) is dropped;
			// the Block itself rejects emitting further instructions once it is terminated.
			break
		}
	}
	return nil
}
