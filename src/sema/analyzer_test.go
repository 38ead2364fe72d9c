package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanc/src/ast"
	"adanc/src/diag"
	"adanc/src/sema"
	"adanc/src/types"
)

// programReturning builds a minimal "fun main(): i32 { return <expr>; }" AST around a single return expression,
// for tests that only care about expression type-checking.
func programReturning(expr *ast.Node) *ast.Node {
	ret := ast.New(ast.ReturnStmt, 1, 1, expr)
	body := ast.New(ast.Block, 1, 1, ret)
	fn := ast.NewData(ast.FuncDecl, 1, 1, "main",
		ast.NewData(ast.TypeRef, 1, 1, types.TInt),
		body,
	)
	return ast.New(ast.Program, 1, 1, fn)
}

func analyze(t *testing.T, prog *ast.Node) *diag.Sink {
	t.Helper()
	sink := diag.New(false, false, false)
	a := sema.NewAnalyzer(sink, nil, nil, nil)
	a.Analyze("test.adan", prog)
	return sink
}

func TestAnalyzeValidReturn(t *testing.T) {
	prog := programReturning(ast.NewData(ast.IntLiteral, 1, 1, int64(1)))
	sink := analyze(t, prog)
	assert.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Records())
}

func TestAnalyzeReturnTypeMismatch(t *testing.T) {
	prog := programReturning(ast.NewData(ast.StringLiteral, 1, 1, "oops"))
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "return type mismatch")
}

func TestAnalyzeUnknownSymbol(t *testing.T) {
	prog := programReturning(ast.NewData(ast.Identifier, 1, 1, "undeclared"))
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "unknown symbol")
}

func TestAnalyzeMissingReturn(t *testing.T) {
	fn := ast.NewData(ast.FuncDecl, 1, 1, "main",
		ast.NewData(ast.TypeRef, 1, 1, types.TInt),
		ast.New(ast.Block, 1, 1),
	)
	prog := ast.New(ast.Program, 1, 1, fn)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "missing return")
}

func TestAnalyzeBreakOutsideLoop(t *testing.T) {
	fn := ast.NewData(ast.FuncDecl, 1, 1, "main",
		ast.NewData(ast.TypeRef, 1, 1, types.TVoid),
		ast.New(ast.Block, 1, 1, ast.New(ast.BreakStmt, 2, 1)),
	)
	prog := ast.New(ast.Program, 1, 1, fn)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "break outside of loop")
}

func TestAnalyzeCallArgumentCount(t *testing.T) {
	callee := ast.NewData(ast.FuncDecl, 1, 1, "helper",
		ast.NewData(ast.TypeRef, 1, 1, types.TVoid),
		ast.New(ast.Block, 1, 1),
	)
	call := ast.NewData(ast.Call, 3, 1, "helper", ast.NewData(ast.IntLiteral, 3, 1, int64(1)))
	caller := ast.NewData(ast.FuncDecl, 3, 1, "main",
		ast.NewData(ast.TypeRef, 3, 1, types.TVoid),
		ast.New(ast.Block, 3, 1, ast.New(ast.ExprStmt, 3, 1, call)),
	)
	prog := ast.New(ast.Program, 1, 1, callee, caller)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "expects 0 arguments, got 1")
}

func TestAnalyzeDivisionByZeroLiteral(t *testing.T) {
	div := ast.NewData(ast.Binary, 2, 1, "/",
		ast.NewData(ast.IntLiteral, 2, 1, int64(4)),
		ast.NewData(ast.IntLiteral, 2, 1, int64(0)))
	prog := programReturning(div)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "division by zero")
}

func TestAnalyzeMixedNumericArithmeticRejected(t *testing.T) {
	add := ast.NewData(ast.Binary, 2, 1, "+",
		ast.NewData(ast.IntLiteral, 2, 1, int64(1)),
		ast.NewData(ast.FloatLiteral, 2, 1, 1.5))
	prog := programReturning(add)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "operator + not defined for")
}

// TestAnalyzeSameNumericArithmeticAccepted uses a void-returning function so the arithmetic's own
// result type (float) needs no relation to the function's declared return type.
func TestAnalyzeSameNumericArithmeticAccepted(t *testing.T) {
	add := ast.NewData(ast.Binary, 2, 1, "+",
		ast.NewData(ast.FloatLiteral, 2, 1, 1.0),
		ast.NewData(ast.FloatLiteral, 2, 1, 1.5))
	fn := ast.NewData(ast.FuncDecl, 1, 1, "main",
		ast.NewData(ast.TypeRef, 1, 1, types.TVoid),
		ast.New(ast.Block, 1, 1, ast.New(ast.ExprStmt, 2, 1, add)),
	)
	sink := analyze(t, ast.New(ast.Program, 1, 1, fn))
	assert.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Records())
}

func TestAnalyzeHeterogeneousArrayLiteral(t *testing.T) {
	lit := ast.New(ast.ArrayLiteral, 1, 1,
		ast.NewData(ast.IntLiteral, 1, 1, int64(1)),
		ast.NewData(ast.StringLiteral, 1, 1, "x"))
	fn := ast.NewData(ast.FuncDecl, 1, 1, "main",
		ast.NewData(ast.TypeRef, 1, 1, types.TVoid),
		ast.New(ast.Block, 1, 1, ast.New(ast.ExprStmt, 1, 1, lit)),
	)
	prog := ast.New(ast.Program, 1, 1, fn)
	sink := analyze(t, prog)
	require.True(t, sink.HasErrors())
	assert.Contains(t, sink.Records()[0].Message, "heterogeneous array literal")
}

func TestScopeStackShadowingAndLookup(t *testing.T) {
	st := sema.NewScopeStack()
	_, ok := st.Declare("x", types.TInt, nil)
	require.True(t, ok)

	st.Push()
	_, ok = st.Declare("x", types.TFloat, nil) // Shadowing an outer binding is fine.
	assert.True(t, ok)
	sym, found := st.Lookup("x")
	require.True(t, found)
	assert.Equal(t, types.TFloat, sym.Type)
	st.Pop()

	sym, found = st.Lookup("x")
	require.True(t, found)
	assert.Equal(t, types.TInt, sym.Type)

	_, ok = st.Declare("x", types.TBool, nil) // Same-scope redeclaration is refused.
	assert.False(t, ok)
}
