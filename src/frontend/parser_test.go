package frontend

import (
	"testing"

	"adanc/src/ast"
	"adanc/src/diag"
	"adanc/src/types"
)

// parse is the shared test helper: parse src and hand back both the resulting tree and the sink that
// recorded any diagnostics, mirroring TestLexer's bare newLexer(..., nil) call where no diagnostics are
// expected, but letting error-recovery tests inspect what was reported.
func parse(src string) (*ast.Node, *diag.Sink) {
	sink := diag.New(false, false, false)
	tree := NewParser("test.adan", src, sink).Parse()
	return tree, sink
}

func TestParseFuncDecl(t *testing.T) {
	tree, sink := parse(`fun add(a: i32, b: i32): i32 {
	return a + b;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	if len(tree.Children) != 1 {
		t.Fatalf("got %d top-level decls, want 1", len(tree.Children))
	}
	fn := tree.Children[0]
	if fn.Kind != ast.FuncDecl {
		t.Fatalf("kind = %s, want FuncDecl", fn.Kind)
	}
	if fn.Data.(string) != "add" {
		t.Errorf("name = %q, want %q", fn.Data, "add")
	}
	if fn.IsEntry {
		t.Errorf("IsEntry = true, want false (declared with fun, not program)")
	}
	// children: TypeRef(ret), Param(a), Param(b), Block
	if len(fn.Children) != 4 {
		t.Fatalf("got %d children, want 4 (ret type, 2 params, body)", len(fn.Children))
	}
	if fn.Children[0].Kind != ast.TypeRef || fn.Children[0].Data.(types.Type) != types.TInt {
		t.Errorf("return type = %v, want i32 TypeRef", fn.Children[0])
	}
	for i, name := range []string{"a", "b"} {
		p := fn.Children[1+i]
		if p.Kind != ast.Param || p.Data.(string) != name {
			t.Errorf("param %d = %v, want %q", i, p, name)
		}
	}
	body := fn.Children[3]
	if body.Kind != ast.Block || len(body.Children) != 1 {
		t.Fatalf("body = %v, want a single-statement Block", body)
	}
	ret := body.Children[0]
	if ret.Kind != ast.ReturnStmt || len(ret.Children) != 1 {
		t.Fatalf("statement = %v, want ReturnStmt with an expression", ret)
	}
	expr := ret.Children[0]
	if expr.Kind != ast.Binary || expr.Data.(string) != "+" {
		t.Errorf("return expression = %v, want a + Binary", expr)
	}
}

func TestParseEntryPoint(t *testing.T) {
	tree, sink := parse(`program main(): void {
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	fn := tree.Children[0]
	if !fn.IsEntry {
		t.Errorf("IsEntry = false, want true (declared with program)")
	}
}

func TestParseVarDecl(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = 1 + 2;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	decl := tree.Children[0].Children[1].Children[0]
	if decl.Kind != ast.VarDecl || decl.Data.(string) != "x" {
		t.Fatalf("decl = %v, want VarDecl x", decl)
	}
	if len(decl.Children) != 2 {
		t.Fatalf("got %d children, want type + initializer", len(decl.Children))
	}
	if decl.Children[0].Data.(types.Type) != types.TInt {
		t.Errorf("type = %v, want i32", decl.Children[0].Data)
	}
	init := decl.Children[1]
	if init.Kind != ast.Binary || init.Data.(string) != "+" {
		t.Errorf("initializer = %v, want a + Binary", init)
	}
}

func TestParseIfElse(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	if (1) {
		return;
	} else if (2) {
		return;
	} else {
		return;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	ifStmt := tree.Children[0].Children[1].Children[0]
	if ifStmt.Kind != ast.IfStmt || len(ifStmt.Children) != 3 {
		t.Fatalf("if = %v, want IfStmt with cond, then, else", ifStmt)
	}
	elseIf := ifStmt.Children[2]
	if elseIf.Kind != ast.IfStmt || len(elseIf.Children) != 3 {
		t.Fatalf("else-branch = %v, want a chained IfStmt with its own else", elseIf)
	}
}

func TestParseWhile(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	while (1) {
		break;
		continue;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	loop := tree.Children[0].Children[1].Children[0]
	if loop.Kind != ast.WhileStmt || len(loop.Children) != 2 {
		t.Fatalf("loop = %v, want WhileStmt with cond and body", loop)
	}
	body := loop.Children[1]
	if len(body.Children) != 2 || body.Children[0].Kind != ast.BreakStmt || body.Children[1].Kind != ast.ContinueStmt {
		t.Fatalf("body = %v, want break then continue", body)
	}
}

func TestParseFor(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	for (set i: i32 = 0; i < 10; i++) {
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	loop := tree.Children[0].Children[1].Children[0]
	if loop.Kind != ast.ForStmt || len(loop.Children) != 4 {
		t.Fatalf("loop = %v, want ForStmt with init, cond, post, body", loop)
	}
	if loop.Children[0].Kind != ast.VarDecl {
		t.Errorf("init = %v, want VarDecl", loop.Children[0])
	}
	if loop.Children[1].Kind != ast.Comparison {
		t.Errorf("cond = %v, want Comparison", loop.Children[1])
	}
	if loop.Children[2].Kind != ast.IncDec || loop.Children[2].Data.(string) != "post"+PlusPlus.String() {
		t.Errorf("post = %v, want post-increment IncDec", loop.Children[2])
	}
}

func TestParseForOmittedClauses(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	for (;;) {
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	loop := tree.Children[0].Children[1].Children[0]
	for i, name := range []string{"init", "cond", "post"} {
		clause := loop.Children[i]
		if clause.Kind != ast.Grouping || len(clause.Children) != 0 {
			t.Errorf("%s = %v, want the empty-Grouping placeholder", name, clause)
		}
	}
}

// TestParseExprPrecedence confirms + binds looser than *, within one left-associative level.
func TestParseExprPrecedence(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = 1 + 2 * 3;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	expr := tree.Children[0].Children[1].Children[0].Children[1]
	if expr.Kind != ast.Binary || expr.Data.(string) != "+" {
		t.Fatalf("root = %v, want +", expr)
	}
	rhs := expr.Children[1]
	if rhs.Kind != ast.Binary || rhs.Data.(string) != "*" {
		t.Fatalf("rhs = %v, want a nested * Binary", rhs)
	}
}

// TestParseExponentRightAssoc confirms ** is right-associative, unlike every other binary operator.
func TestParseExponentRightAssoc(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = 2 ** 3 ** 2;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	root := tree.Children[0].Children[1].Children[0].Children[1]
	if root.Kind != ast.Binary || root.Data.(string) != "**" {
		t.Fatalf("root = %v, want **", root)
	}
	if root.Children[0].Kind != ast.IntLiteral || root.Children[0].Data.(int64) != 2 {
		t.Errorf("lhs = %v, want literal 2", root.Children[0])
	}
	rhs := root.Children[1]
	if rhs.Kind != ast.Binary || rhs.Data.(string) != "**" {
		t.Fatalf("rhs = %v, want a nested ** Binary (right-associative)", rhs)
	}
}

func TestParseUnaryAndIncDec(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = -1;
	++x;
	x--;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	body := tree.Children[0].Children[1]
	neg := body.Children[0].Children[1]
	if neg.Kind != ast.Unary || neg.Data.(string) != "-" {
		t.Errorf("initializer = %v, want unary -", neg)
	}
	pre := body.Children[1].Children[0]
	if pre.Kind != ast.IncDec || pre.Data.(string) != "pre"+PlusPlus.String() {
		t.Errorf("stmt 1 = %v, want pre-increment", pre)
	}
	post := body.Children[2].Children[0]
	if post.Kind != ast.IncDec || post.Data.(string) != "post"+MinusMinus.String() {
		t.Errorf("stmt 2 = %v, want post-decrement", post)
	}
}

func TestParseCast(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: f64 = (f64) 1;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	cast := tree.Children[0].Children[1].Children[0].Children[1]
	if cast.Kind != ast.Cast || cast.Data.(types.Type) != types.TFloat {
		t.Fatalf("cast = %v, want a Cast to f64", cast)
	}
	if len(cast.Children) != 1 || cast.Children[0].Kind != ast.IntLiteral {
		t.Errorf("operand = %v, want literal 1", cast.Children)
	}
}

func TestParseGroupingNotMistakenForCast(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = (1 + 2);
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	grp := tree.Children[0].Children[1].Children[0].Children[1]
	if grp.Kind != ast.Grouping {
		t.Fatalf("expr = %v, want Grouping, not Cast", grp)
	}
}

func TestParseArrayLiteralAndAccess(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set xs: i32[] = [1, 2, 3];
	set y: i32 = xs[0];
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	body := tree.Children[0].Children[1]
	decl := body.Children[0]
	if decl.Children[0].Data.(types.Type).Kind != types.Array {
		t.Fatalf("type = %v, want an array type", decl.Children[0].Data)
	}
	lit := decl.Children[1]
	if lit.Kind != ast.ArrayLiteral || len(lit.Children) != 3 {
		t.Fatalf("literal = %v, want 3-element ArrayLiteral", lit)
	}
	access := body.Children[1].Children[1]
	if access.Kind != ast.ArrayAccess || len(access.Children) != 2 {
		t.Fatalf("access = %v, want ArrayAccess(array, index)", access)
	}
}

func TestParseCallWithArgs(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	add(1, 2);
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	call := tree.Children[0].Children[1].Children[0].Children[0]
	if call.Kind != ast.Call || call.Data.(string) != "add" || len(call.Children) != 2 {
		t.Fatalf("call = %v, want Call(add, 1, 2)", call)
	}
}

func TestParseAssignAndCompoundAssign(t *testing.T) {
	tree, sink := parse(`fun f(): void {
	set x: i32 = 0;
	x = 1;
	x += 2;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	body := tree.Children[0].Children[1]
	plain := body.Children[1]
	if plain.Kind != ast.AssignStmt || plain.Data.(string) != "=" {
		t.Fatalf("stmt 1 = %v, want plain assignment", plain)
	}
	compound := body.Children[2]
	if compound.Kind != ast.AssignStmt || compound.Data.(string) != "+=" {
		t.Fatalf("stmt 2 = %v, want += assignment", compound)
	}
}

func TestParseImport(t *testing.T) {
	tree, sink := parse(`import "adan/io";
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	imp := tree.Children[0]
	if imp.Kind != ast.Import || imp.Data.(string) != "adan/io" {
		t.Fatalf("import = %v, want Import(adan/io)", imp)
	}
}

// TestParseSyntaxErrorRecovers confirms a malformed declaration reports a diagnostic and resynchronizes
// at the next top-level token (spec.md ch.4.5), rather than aborting the whole parse: the well-formed
// declaration following the broken one must still appear in the tree.
func TestParseSyntaxErrorRecovers(t *testing.T) {
	tree, sink := parse(`fun (): i32 {
	return 1;
}
fun g(): i32 {
	return 2;
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the missing function name")
	}
	var names []string
	for _, d := range tree.Children {
		if d.Kind == ast.FuncDecl {
			names = append(names, d.Data.(string))
		}
	}
	found := false
	for _, n := range names {
		if n == "g" {
			found = true
		}
	}
	if !found {
		t.Fatalf("decls after the syntax error = %v, want g to still be parsed", names)
	}
}

// TestParseUnexpectedTopLevelTokenRecovers confirms a stray token at top level is reported and skipped
// without halting the parser (spec.md ch.4.5's default branch of parseTopDecl).
func TestParseUnexpectedTopLevelTokenRecovers(t *testing.T) {
	tree, sink := parse(`123;
fun g(): void {
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the stray top-level token")
	}
	if len(tree.Children) != 1 || tree.Children[0].Data.(string) != "g" {
		t.Fatalf("decls = %v, want only g to survive", tree.Children)
	}
}

// TestParseUnrecognizedCharacterDoesNotHang guards the lexer/parser seam: an unrecognized character used
// to make the lexer cache one Error token forever, and since Error wasn't in syncSet, Parser.sync() spun
// on that same token without end. Parse must now terminate, report a diagnostic, and still recover the
// well-formed declaration that follows.
func TestParseUnrecognizedCharacterDoesNotHang(t *testing.T) {
	tree, sink := parse(`@
fun g(): void {
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the unrecognized character")
	}
	if len(tree.Children) != 1 || tree.Children[0].Data.(string) != "g" {
		t.Fatalf("decls = %v, want only g to survive", tree.Children)
	}
}
