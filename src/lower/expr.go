package lower

import (
	"github.com/pkg/errors"

	"adanc/src/ast"
	"adanc/src/ir"
	"adanc/src/types"
)

// lowerExpr lowers an expression node to a value handle (spec.md ch.4.8: "expression lowering
// returns a value handle"). The node's Type, annotated by package sema, is trusted without
// re-checking - by the time lowering runs, analysis has already guaranteed the program is
// well-typed.
func (c *Context) lowerExpr(n *ast.Node) (ir.Value, error) {
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
	case ast.Identifier:
		return c.lowerIdentifier(n)
	case ast.Grouping:
		return c.lowerExpr(n.Children[0])
	case ast.Call:
		return c.lowerCall(n)
	case ast.Binary:
		return c.lowerBinary(n)
	case ast.Comparison:
		return c.lowerComparison(n)
	case ast.Logical:
		return c.lowerLogical(n)
	case ast.Unary:
		return c.lowerUnary(n)
	case ast.IncDec:
		return c.lowerIncDec(n)
	case ast.Cast:
		return c.lowerCast(n)
	case ast.ArrayLiteral:
		return c.lowerArrayLiteral(n)
	case ast.ArrayAccess:
		return c.lowerArrayAccess(n)
	case ast.Ternary:
		return c.lowerTernary(n)
	default:
		return nil, errors.Errorf("line %d: lower: unexpected expression %s", n.Line, n.Kind)
	}
}

// lookupSlot resolves name to its storage: a local/parameter stack slot or a module global. Names
// always resolve, since sema has already rejected any program referencing an unknown symbol.
func (c *Context) lookupSlot(name string) (ir.Value, error) {
	if b, ok := c.vars[name]; ok {
		return b.slot, nil
	}
	if g, ok := c.globals[name]; ok {
		return g, nil
	}
	return nil, errors.Errorf("lower: undefined variable %q reached lowering unresolved", name)
}

func (c *Context) lowerIdentifier(n *ast.Node) (ir.Value, error) {
	name, _ := n.Data.(string)
	slot, err := c.lookupSlot(name)
	if err != nil {
		return nil, err
	}
	return c.Block.CreateLoad(slot)
}

func (c *Context) lowerCall(n *ast.Node) (ir.Value, error) {
	name, _ := n.Data.(string)
	target, ok := c.Module.Function(name)
	if !ok {
		return nil, errors.Errorf("line %d: lower: call to undeclared function %q reached lowering", n.Line, name)
	}
	args := make([]ir.Value, len(n.Children))
	for i1, a := range n.Children {
		v, err := c.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i1] = v
	}
	in, err := c.Block.CreateCall(target, args)
	if err != nil {
		return nil, err
	}
	if target.Ret.Kind == types.Void {
		return ir.NullConst{Typ: types.TVoid}, nil // Never consulted: a void call cannot be an expression operand per sema.
	}
	return in, nil
}

func (c *Context) lowerBinary(n *ast.Node) (ir.Value, error) {
	op, _ := n.Data.(string)
	lhs, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	rhs, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	return c.Block.CreateBinop(op, lhs, rhs, n.Type)
}

var cmpPredicates = map[string]string{
	"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
}

func (c *Context) lowerComparison(n *ast.Node) (ir.Value, error) {
	op, _ := n.Data.(string)
	lhs, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	rhs, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	pred, ok := cmpPredicates[op]
	if !ok {
		return nil, errors.Errorf("line %d: lower: unknown comparison operator %q", n.Line, op)
	}
	return c.Block.CreateCmp(pred, lhs, rhs)
}

// lowerLogical short-circuits && and || via a cbr diamond, rather than always evaluating both
// operands (spec.md ch.9's resolved Open Question: short-circuit evaluation is observable whenever
// the unevaluated side has a side effect, so both-sides-always-evaluated is not an option).
func (c *Context) lowerLogical(n *ast.Node) (ir.Value, error) {
	op, _ := n.Data.(string)
	lhs, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}

	rhsBlock := c.Func.CreateBlock("")
	join := c.Func.CreateBlock("")
	result := c.Func.CreateEntryAlloca(types.TBool, "")

	entry := c.Block
	if op == "&&" {
		if _, err := entry.CreateStore(lhs, result); err != nil {
			return nil, err
		}
		if _, err := entry.CreateCBr(lhs, rhsBlock, join); err != nil {
			return nil, err
		}
	} else {
		if _, err := entry.CreateStore(lhs, result); err != nil {
			return nil, err
		}
		if _, err := entry.CreateCBr(lhs, join, rhsBlock); err != nil {
			return nil, err
		}
	}

	c.Block = rhsBlock
	rhs, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateStore(rhs, result); err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateBr(join); err != nil {
		return nil, err
	}

	c.Block = join
	return c.Block.CreateLoad(result)
}

func (c *Context) lowerUnary(n *ast.Node) (ir.Value, error) {
	op, _ := n.Data.(string)
	operand, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		zero := zeroValue(operand.Type())
		return c.Block.CreateBinop("-", zero, operand, n.Type)
	case "!":
		return c.Block.CreateCmp("eq", operand, ir.BoolConst{Val: false})
	case "~":
		return c.Block.CreateBinop("^", operand, ir.IntConst{Val: -1}, n.Type)
	default:
		return nil, errors.Errorf("line %d: lower: unknown unary operator %q", n.Line, op)
	}
}

// lowerIncDec desugars "x++"/"--x"/etc. into a load-add-store sequence, yielding the
// pre-decrement value for a postfix operator and the post-decrement value for a prefix one,
// matching the source-language convention the "pre"/"post" tag on the AST node records.
func (c *Context) lowerIncDec(n *ast.Node) (ir.Value, error) {
	tag, _ := n.Data.(string)
	isPost := len(tag) >= 4 && tag[:4] == "post"
	delta := int64(1)
	if tag == "pre--" || tag == "post--" {
		delta = -1
	}

	slot, err := c.lowerAssignTarget(n.Children[0])
	if err != nil {
		return nil, err
	}
	old, err := c.Block.CreateLoad(slot)
	if err != nil {
		return nil, err
	}
	next, err := c.Block.CreateBinop("+", old, ir.IntConst{Val: delta}, n.Type)
	if err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateStore(next, slot); err != nil {
		return nil, err
	}
	if isPost {
		return old, nil
	}
	return next, nil
}

func (c *Context) lowerCast(n *ast.Node) (ir.Value, error) {
	target, _ := n.Data.(types.Type)
	val, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if types.Equal(val.Type(), target) {
		return val, nil
	}
	return c.Block.CreateCast(val, target)
}

func (c *Context) lowerArrayLiteral(n *ast.Node) (ir.Value, error) {
	elemType := types.TUnknown
	if n.Type.Kind == types.Array && n.Type.Elem != nil {
		elemType = *n.Type.Elem
	}
	slot := c.Func.CreateEntryAllocaArray(n.Type, "", len(n.Children))
	for i1, elemExpr := range n.Children {
		val, err := c.lowerExpr(elemExpr)
		if err != nil {
			return nil, err
		}
		addr, err := c.Block.CreateArrayIndex(slot, ir.IntConst{Val: int64(i1)}, elemType)
		if err != nil {
			return nil, err
		}
		if _, err := c.Block.CreateStore(val, addr); err != nil {
			return nil, err
		}
	}
	return c.Block.CreateLoad(slot)
}

func (c *Context) lowerArrayAccess(n *ast.Node) (ir.Value, error) {
	arr, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	idx, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	addr, err := c.Block.CreateArrayIndex(arr, idx, n.Type)
	if err != nil {
		return nil, err
	}
	return c.Block.CreateLoad(addr)
}

// lowerTernary lowers "cond ? then : else" the same diamond-and-join way lowerLogical does, since
// both branches may have side effects and only one may run.
func (c *Context) lowerTernary(n *ast.Node) (ir.Value, error) {
	cond, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	thenBlock := c.Func.CreateBlock("")
	elseBlock := c.Func.CreateBlock("")
	join := c.Func.CreateBlock("")
	result := c.Func.CreateEntryAlloca(n.Type, "")

	if _, err := c.Block.CreateCBr(cond, thenBlock, elseBlock); err != nil {
		return nil, err
	}

	c.Block = thenBlock
	thenVal, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateStore(thenVal, result); err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateBr(join); err != nil {
		return nil, err
	}

	c.Block = elseBlock
	elseVal, err := c.lowerExpr(n.Children[2])
	if err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateStore(elseVal, result); err != nil {
		return nil, err
	}
	if _, err := c.Block.CreateBr(join); err != nil {
		return nil, err
	}

	c.Block = join
	return c.Block.CreateLoad(result)
}
