package lower

import (
	"github.com/pkg/errors"

	"adanc/src/ast"
	"adanc/src/ir"
	"adanc/src/types"
)

func (c *Context) lowerStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.VarDecl:
		return c.lowerVarDecl(n)
	case ast.ReturnStmt:
		return c.lowerReturn(n)
	case ast.ExprStmt:
		_, err := c.lowerExpr(n.Children[0])
		return err
	case ast.AssignStmt:
		return c.lowerAssign(n)
	case ast.IfStmt:
		return c.lowerIf(n)
	case ast.WhileStmt:
		return c.lowerWhile(n)
	case ast.ForStmt:
		return c.lowerFor(n)
	case ast.BreakStmt:
		return c.lowerBreak(n)
	case ast.ContinueStmt:
		return c.lowerContinue(n)
	case ast.Block:
		return c.lowerBlock(n)
	case ast.Grouping:
		return nil // Omitted for-loop clause or a parse-error placeholder; nothing to lower.
	default:
		return errors.Errorf("line %d: lower: unexpected statement %s", n.Line, n.Kind)
	}
}

// lowerVarDecl emits the entry-block alloca spec.md ch.4.8 requires, binds the name, and - if
// there is an initializer - emits the store.
func (c *Context) lowerVarDecl(n *ast.Node) error {
	name, _ := n.Data.(string)
	typ := n.Children[0].Data.(types.Type)
	slot := c.Func.CreateEntryAlloca(typ, name)
	c.vars[name] = binding{slot: slot}

	if len(n.Children) > 1 {
		val, err := c.lowerExpr(n.Children[1])
		if err != nil {
			return err
		}
		if _, err := c.Block.CreateStore(val, slot); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) lowerReturn(n *ast.Node) error {
	if len(n.Children) == 0 {
		_, err := c.Block.CreateRetVoid()
		return err
	}
	val, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return err
	}
	_, err = c.Block.CreateRet(val)
	return err
}

// lowerAssign emits a store into the assignment target (spec.md ch.4.8: "do not read the old
// value"), desugaring compound assignment operators (+=, -=, ...) into a load-compute-store
// sequence since package ir has no dedicated compound-store instruction.
func (c *Context) lowerAssign(n *ast.Node) error {
	op, _ := n.Data.(string)
	target := n.Children[0]
	slot, err := c.lowerAssignTarget(target)
	if err != nil {
		return err
	}
	val, err := c.lowerExpr(n.Children[1])
	if err != nil {
		return err
	}
	if op != "=" {
		cur, err := c.Block.CreateLoad(slot)
		if err != nil {
			return err
		}
		val, err = c.Block.CreateBinop(compoundOp(op), cur, val, target.Type)
		if err != nil {
			return err
		}
	}
	_, err = c.Block.CreateStore(val, slot)
	return err
}

// compoundOp strips the trailing "=" a compound assignment operator's token text carries
// (frontend.Kind.String() renders "+=" for PlusEq, etc.) down to the plain binary operator symbol.
func compoundOp(op string) string {
	return op[:len(op)-1]
}

func (c *Context) lowerAssignTarget(n *ast.Node) (ir.Value, error) {
	switch n.Kind {
	case ast.Identifier:
		name, _ := n.Data.(string)
		return c.lookupSlot(name)
	case ast.ArrayAccess:
		arr, err := c.lowerExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		idx, err := c.lowerExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		in, err := c.Block.CreateArrayIndex(arr, idx, n.Type)
		return in, err
	default:
		return nil, errors.Errorf("line %d: lower: invalid assignment target %s", n.Line, n.Kind)
	}
}

// lowerIf lowers a conditional into a cbr over a then-block and an optional else-block, joining
// back to a shared continuation block unless a branch already terminated itself with a return
// (spec.md ch.4.8: "if lowers to a condition, cbr, two branch blocks, and a join block").
func (c *Context) lowerIf(n *ast.Node) error {
	cond, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return err
	}
	thenBlock := c.Func.CreateBlock("")
	join := c.Func.CreateBlock("")

	var elseBlock *ir.Block
	elseTarget := join
	if len(n.Children) > 2 {
		elseBlock = c.Func.CreateBlock("")
		elseTarget = elseBlock
	}
	if _, err := c.Block.CreateCBr(cond, thenBlock, elseTarget); err != nil {
		return err
	}

	c.Block = thenBlock
	if err := c.lowerBlock(n.Children[1]); err != nil {
		return err
	}
	if c.Block.Term == nil {
		if _, err := c.Block.CreateBr(join); err != nil {
			return err
		}
	}

	if elseBlock != nil {
		c.Block = elseBlock
		elseNode := n.Children[2]
		if elseNode.Kind == ast.IfStmt {
			err = c.lowerIf(elseNode)
		} else {
			err = c.lowerBlock(elseNode)
		}
		if err != nil {
			return err
		}
		if c.Block.Term == nil {
			if _, err := c.Block.CreateBr(join); err != nil {
				return err
			}
		}
	}

	c.Block = join
	return nil
}

// lowerWhile lowers to header/body/exit with a backedge (spec.md ch.4.8).
func (c *Context) lowerWhile(n *ast.Node) error {
	header := c.Func.CreateBlock("")
	body := c.Func.CreateBlock("")
	exit := c.Func.CreateBlock("")

	if _, err := c.Block.CreateBr(header); err != nil {
		return err
	}

	c.Block = header
	cond, err := c.lowerExpr(n.Children[0])
	if err != nil {
		return err
	}
	if _, err := c.Block.CreateCBr(cond, body, exit); err != nil {
		return err
	}

	c.Block = body
	c.pushLoop(exit, header)
	err = c.lowerBlock(n.Children[1])
	c.popLoop()
	if err != nil {
		return err
	}
	if c.Block.Term == nil {
		if _, err := c.Block.CreateBr(header); err != nil {
			return err
		}
	}

	c.Block = exit
	return nil
}

// lowerFor desugars to while with an initializer and a step, per spec.md ch.4.8. The step runs at
// the end of each iteration (after the body, before re-testing the condition), so the loop's
// continue target is a dedicated step block rather than the header, matching the C for-loop
// semantics this for-statement's syntax was modeled on.
func (c *Context) lowerFor(n *ast.Node) error {
	if isPresent(n.Children[0]) {
		if err := c.lowerStmt(n.Children[0]); err != nil {
			return err
		}
	}

	header := c.Func.CreateBlock("")
	body := c.Func.CreateBlock("")
	step := c.Func.CreateBlock("")
	exit := c.Func.CreateBlock("")

	if _, err := c.Block.CreateBr(header); err != nil {
		return err
	}

	c.Block = header
	if isPresent(n.Children[1]) {
		cond, err := c.lowerExpr(n.Children[1])
		if err != nil {
			return err
		}
		if _, err := c.Block.CreateCBr(cond, body, exit); err != nil {
			return err
		}
	} else {
		if _, err := c.Block.CreateBr(body); err != nil {
			return err
		}
	}

	c.Block = body
	c.pushLoop(exit, step)
	err := c.lowerBlock(n.Children[3])
	c.popLoop()
	if err != nil {
		return err
	}
	if c.Block.Term == nil {
		if _, err := c.Block.CreateBr(step); err != nil {
			return err
		}
	}

	c.Block = step
	if isPresent(n.Children[2]) {
		if _, err := c.lowerExpr(n.Children[2]); err != nil {
			return err
		}
	}
	if _, err := c.Block.CreateBr(header); err != nil {
		return err
	}

	c.Block = exit
	return nil
}

// isPresent reports whether a for-statement clause was actually written, versus being the
// omitted-clause placeholder the parser's orNil inserts (an empty Grouping node).
func isPresent(n *ast.Node) bool {
	return !(n.Kind == ast.Grouping && len(n.Children) == 0)
}

func (c *Context) pushLoop(exit, cont *ir.Block) {
	c.loopExits = append(c.loopExits, exit)
	c.loopConts = append(c.loopConts, cont)
}

func (c *Context) popLoop() {
	c.loopExits = c.loopExits[:len(c.loopExits)-1]
	c.loopConts = c.loopConts[:len(c.loopConts)-1]
}

func (c *Context) lowerBreak(n *ast.Node) error {
	if len(c.loopExits) == 0 {
		return errors.Errorf("line %d: lower: break outside of loop", n.Line)
	}
	_, err := c.Block.CreateBr(c.loopExits[len(c.loopExits)-1])
	return err
}

func (c *Context) lowerContinue(n *ast.Node) error {
	if len(c.loopConts) == 0 {
		return errors.Errorf("line %d: lower: continue outside of loop", n.Line)
	}
	_, err := c.Block.CreateBr(c.loopConts[len(c.loopConts)-1])
	return err
}
