package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanc/src/ast"
	"adanc/src/ir"
	"adanc/src/lower"
	"adanc/src/sema"
	"adanc/src/types"
)

// fn builds a "fun <name>(<params>): <ret> { <body...> }" FuncDecl node, mirroring how
// sema's own tests hand-build small ASTs instead of going through the parser.
func fn(name string, ret types.Type, params []*ast.Node, body ...*ast.Node) *ast.Node {
	children := append([]*ast.Node{ast.NewData(ast.TypeRef, 1, 1, ret)}, params...)
	children = append(children, ast.New(ast.Block, 1, 1, body...))
	return ast.NewData(ast.FuncDecl, 1, 1, name, children...)
}

func param(name string, typ types.Type) *ast.Node {
	return ast.NewData(ast.Param, 1, 1, name, ast.NewData(ast.TypeRef, 1, 1, typ))
}

func sig(name string, ret types.Type, params ...types.Type) sema.Signature {
	return sema.Signature{Name: name, Return: ret, Params: params}
}

func TestLowerSimpleReturn(t *testing.T) {
	ret := ast.New(ast.ReturnStmt, 2, 1, ast.NewData(ast.IntLiteral, 2, 1, int64(5)))
	prog := ast.New(ast.Program, 1, 1, fn("main", types.TInt, nil, ret))

	m, err := lower.Lower("t", prog, map[string]sema.Signature{"main": sig("main", types.TInt)})
	require.NoError(t, err)
	require.NoError(t, ir.ValidateModule(m))

	f, ok := m.Function("main")
	require.True(t, ok)
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, ir.OpRet, f.Blocks[0].Term.Op)
}

func TestLowerImplicitVoidReturn(t *testing.T) {
	prog := ast.New(ast.Program, 1, 1, fn("main", types.TVoid, nil))

	m, err := lower.Lower("t", prog, map[string]sema.Signature{"main": sig("main", types.TVoid)})
	require.NoError(t, err)
	require.NoError(t, ir.ValidateModule(m))

	f, _ := m.Function("main")
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, ir.OpRetVoid, f.Blocks[0].Term.Op)
}

func TestLowerIfElseJoins(t *testing.T) {
	cond := ast.NewData(ast.BoolLiteral, 2, 1, true)
	thenRet := ast.New(ast.ReturnStmt, 3, 1, ast.NewData(ast.IntLiteral, 3, 1, int64(1)))
	elseRet := ast.New(ast.ReturnStmt, 4, 1, ast.NewData(ast.IntLiteral, 4, 1, int64(2)))
	ifStmt := ast.New(ast.IfStmt, 2, 1, cond,
		ast.New(ast.Block, 3, 1, thenRet),
		ast.New(ast.Block, 4, 1, elseRet))
	body := fn("main", types.TInt, nil, ifStmt)
	prog := ast.New(ast.Program, 1, 1, body)

	m, err := lower.Lower("t", prog, map[string]sema.Signature{"main": sig("main", types.TInt)})
	require.NoError(t, err)
	require.NoError(t, ir.ValidateModule(m))

	f, _ := m.Function("main")
	// entry (cbr), then (ret), else (ret), join (unreachable but still present and terminated).
	require.Len(t, f.Blocks, 4)
	for _, b := range f.Blocks {
		assert.NotNil(t, b.Term, "block %s must be terminated", b.Name())
	}
}

func TestLowerWhileWithBreak(t *testing.T) {
	cond := ast.NewData(ast.BoolLiteral, 2, 1, true)
	brk := ast.New(ast.BreakStmt, 3, 1)
	loop := ast.New(ast.WhileStmt, 2, 1, cond, ast.New(ast.Block, 3, 1, brk))
	ret := ast.New(ast.ReturnStmt, 4, 1)
	body := fn("main", types.TVoid, nil, loop, ret)
	prog := ast.New(ast.Program, 1, 1, body)

	m, err := lower.Lower("t", prog, map[string]sema.Signature{"main": sig("main", types.TVoid)})
	require.NoError(t, err)
	assert.NoError(t, ir.ValidateModule(m))
}

func TestLowerExternalCall(t *testing.T) {
	arg := ast.NewData(ast.IntLiteral, 2, 1, int64(1))
	call := ast.NewData(ast.Call, 2, 1, "helper", arg)
	ret := ast.New(ast.ReturnStmt, 3, 1)
	body := fn("main", types.TVoid, nil, ast.New(ast.ExprStmt, 2, 1, call), ret)
	prog := ast.New(ast.Program, 1, 1, body)

	sigs := map[string]sema.Signature{
		"main":   sig("main", types.TVoid),
		"helper": sig("helper", types.TVoid, types.TInt),
	}
	m, err := lower.Lower("t", prog, sigs)
	require.NoError(t, err)
	require.NoError(t, ir.ValidateModule(m))

	helper, ok := m.Function("helper")
	require.True(t, ok)
	assert.True(t, helper.External)
	assert.Empty(t, helper.Blocks)
}

func TestLowerVarDeclAndAssign(t *testing.T) {
	decl := ast.NewData(ast.VarDecl, 2, 1, "x", ast.NewData(ast.TypeRef, 2, 1, types.TInt),
		ast.NewData(ast.IntLiteral, 2, 1, int64(1)))
	target := ast.NewData(ast.Identifier, 3, 1, "x")
	assign := ast.NewData(ast.AssignStmt, 3, 1, "=", target, ast.NewData(ast.IntLiteral, 3, 1, int64(2)))
	ret := ast.New(ast.ReturnStmt, 4, 1)
	prog := ast.New(ast.Program, 1, 1, fn("main", types.TVoid, nil, decl, assign, ret))

	m, err := lower.Lower("t", prog, map[string]sema.Signature{"main": sig("main", types.TVoid)})
	require.NoError(t, err)
	assert.NoError(t, ir.ValidateModule(m))
}
