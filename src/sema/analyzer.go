// analyzer.go implements the semantic analyzer of spec.md ch.4.6: walks the AST produced by the parser,
// resolving symbols, checking types, and annotating every expression node with its resolved type.
// Grounded on VSLC's ir/validate.go (src/ir/validate.go): its lutExp/lutAssign binary and assignment
// compatibility checks become computeBinaryType (a switch over operator and operand types) and
// types.AssignableTo, covering ADAN's full lattice (spec.md ch.3), and its recursive tree-walking
// validate/validateExpr/validateAssign shape becomes analyzeStmt/exprType/analyzeAssign,
// generalized from a raw Node.Typ switch into typed ast.Kind dispatch over a scope stack it owns
// directly instead of threading a util.Stack argument through every call.
package sema

import (
	"adanc/src/ast"
	"adanc/src/diag"
	"adanc/src/types"
	"adanc/src/util"
)

// Signature is the function signature registry entry of spec.md ch.3: "A set of {name, return type,
// ordered parameter types}."
type Signature struct {
	Name    string
	Return  types.Type
	Params  []types.Type
	IsEntry bool
}

// ParseFunc parses source text into an AST, used by the analyzer to re-parse an imported library's
// source (spec.md ch.4.6). Accepting it as a constructor parameter, rather than importing package
// frontend directly, keeps frontend -> sema a one-way dependency (the parser already uses sema.ScopeStack
// for its own parse-time symbol tracking).
type ParseFunc func(file, source string) *ast.Node

// ReadFunc reads the source text backing a resolved import path.
type ReadFunc func(path string) (string, error)

// Analyzer is the semantic analyzer of spec.md ch.4.6, holding the symbol table stack, the function
// signature registry, and the diagnostics sink every other stage of analysis reports to.
type Analyzer struct {
	Sink  *diag.Sink
	Scope *ScopeStack

	funcs map[string]Signature

	search *util.SearchPath
	parse  ParseFunc
	read   ReadFunc
	loaded map[string]bool

	file string
}

// NewAnalyzer returns an analyzer ready to analyze a freshly parsed program. search/parse/read may be nil
// if the program under analysis has no imports to resolve (spec.md ch.4.6's import loading is optional
// per translation unit).
func NewAnalyzer(sink *diag.Sink, search *util.SearchPath, parse ParseFunc, read ReadFunc) *Analyzer {
	return &Analyzer{
		Sink:   sink,
		Scope:  NewScopeStack(),
		funcs:  make(map[string]Signature, 16),
		search: search,
		parse:  parse,
		read:   read,
		loaded: make(map[string]bool, 8),
	}
}

// Signatures returns the function signature registry populated by Analyze, for the lowerer to consult
// when resolving call targets (spec.md ch.3: "consulted at call sites").
func (a *Analyzer) Signatures() map[string]Signature {
	return a.funcs
}

// Analyze walks the program AST, resolving symbols and annotating expression types (spec.md ch.4.6).
// file names the translation unit, for diagnostic positions.
func (a *Analyzer) Analyze(file string, prog *ast.Node) {
	a.file = file

	// Pass 1: imports and top-level signatures, so forward references and mutual recursion across
	// top-level declarations resolve regardless of source order.
	for _, d := range prog.Children {
		switch d.Kind {
		case ast.Import:
			a.loadImport(d)
		case ast.FuncDecl:
			a.hoistFunc(d)
		case ast.VarDecl:
			a.declareGlobal(d)
		}
	}

	// Pass 2: function bodies.
	for _, d := range prog.Children {
		if d.Kind == ast.FuncDecl {
			a.analyzeFunc(d)
		}
	}
}

func (a *Analyzer) errorf(n *ast.Node, format string, args ...interface{}) {
	a.Sink.Errorf(a.file, n.Line, n.Col, diag.Semantic, format, args...)
}

func (a *Analyzer) warnf(n *ast.Node, format string, args ...interface{}) {
	a.Sink.Warnf(a.file, n.Line, n.Col, diag.Semantic, format, args...)
}

// loadImport resolves an import statement's path and merges the imported file's top-level function
// signatures into the registry (spec.md ch.4.6: "loads imported library declarations by re-parsing their
// source"). A missing search/parse/read collaborator, or a resolution failure, is reported once and
// otherwise ignored, so analysis of the importing file can still proceed.
func (a *Analyzer) loadImport(n *ast.Node) {
	raw, _ := n.Data.(string)
	path := util.NormalizeImport(raw)
	if a.loaded[path] {
		return
	}
	a.loaded[path] = true

	if a.search == nil || a.parse == nil || a.read == nil {
		a.errorf(n, "cannot resolve import %q: no search path configured", path)
		return
	}
	resolved, err := a.search.Resolve(path)
	if err != nil {
		a.errorf(n, "%s", err)
		return
	}
	src, err := a.read(resolved)
	if err != nil {
		a.errorf(n, "could not read %q: %s", resolved, err)
		return
	}
	imported := a.parse(resolved, src)
	for _, d := range imported.Children {
		if d.Kind == ast.FuncDecl {
			a.hoistFunc(d)
		}
	}
}

// hoistFunc registers a function's signature and declares its name at file scope, without walking its
// body (pass 1 of Analyze).
func (a *Analyzer) hoistFunc(d *ast.Node) {
	name, _ := d.Data.(string)
	if name == "" {
		return
	}
	retType := d.Children[0].Data.(types.Type)
	params := d.Children[1 : len(d.Children)-1]
	sig := Signature{Name: name, Return: retType, IsEntry: d.IsEntry}
	for _, p := range params {
		sig.Params = append(sig.Params, p.Children[0].Data.(types.Type))
	}
	if _, dup := a.funcs[name]; dup {
		a.errorf(d, "duplicate function %q", name)
		return
	}
	a.funcs[name] = sig
	if sym, ok := a.Scope.Declare(name, retType, d); !ok {
		a.errorf(d, "duplicate symbol %q", name)
	} else {
		sym.Type = retType
	}
}

func (a *Analyzer) declareGlobal(d *ast.Node) {
	name, _ := d.Data.(string)
	typ := d.Children[0].Data.(types.Type)
	if _, ok := a.Scope.Declare(name, typ, d); !ok {
		a.errorf(d, "duplicate symbol %q", name)
	}
	if len(d.Children) > 1 {
		a.checkAssignable(d, typ, a.exprType(d.Children[1]))
	}
}

func (a *Analyzer) analyzeFunc(d *ast.Node) {
	name, _ := d.Data.(string)
	retType := d.Children[0].Data.(types.Type)

	a.Scope.Push()
	a.Scope.Current().ReturnType = retType
	params := d.Children[1 : len(d.Children)-1]
	for _, p := range params {
		pname, _ := p.Data.(string)
		ptyp := p.Children[0].Data.(types.Type)
		if _, ok := a.Scope.Declare(pname, ptyp, p); !ok {
			a.errorf(p, "duplicate parameter %q in function %q", pname, name)
		}
	}

	body := d.Children[len(d.Children)-1]
	a.analyzeBlock(body)

	if retType.Kind != types.Void && !a.pathsReturn(body) {
		a.errorf(d, "missing return: function %q must return %s on every path", name, retType)
	}

	a.checkUnused(a.Scope.Current())
	a.Scope.Pop()
}

// checkUnused emits a warning for every declared-but-unused local (spec.md ch.3's symbol entry carries a
// usage count expressly to support this).
func (a *Analyzer) checkUnused(sc *Scope) {
	for name, sym := range sc.symbols {
		if sym.UseCount == 0 && sym.Decl != nil {
			a.warnf(sym.Decl, "%q declared and not used", name)
		}
	}
}

func (a *Analyzer) analyzeBlock(n *ast.Node) {
	a.Scope.Push()
	for _, stmt := range n.Children {
		a.analyzeStmt(stmt)
	}
	a.checkUnused(a.Scope.Current())
	a.Scope.Pop()
}

func (a *Analyzer) analyzeStmt(n *ast.Node) {
	switch n.Kind {
	case ast.VarDecl:
		a.analyzeVarDecl(n)
	case ast.ReturnStmt:
		a.analyzeReturn(n)
	case ast.IfStmt:
		a.exprType(n.Children[0])
		a.analyzeBlock(n.Children[1])
		if len(n.Children) > 2 {
			if n.Children[2].Kind == ast.IfStmt {
				a.analyzeStmt(n.Children[2])
			} else {
				a.analyzeBlock(n.Children[2])
			}
		}
	case ast.WhileStmt:
		a.exprType(n.Children[0])
		a.Scope.Current().LoopDepth++
		a.analyzeBlock(n.Children[1])
		a.Scope.Current().LoopDepth--
	case ast.ForStmt:
		a.Scope.Push()
		a.analyzeStmt(n.Children[0])
		a.exprType(n.Children[1])
		a.exprType(n.Children[2])
		a.Scope.Current().LoopDepth++
		a.analyzeBlock(n.Children[3])
		a.Scope.Current().LoopDepth--
		a.Scope.Pop()
	case ast.BreakStmt, ast.ContinueStmt:
		if a.Scope.Current().LoopDepth == 0 {
			kind := "break"
			if n.Kind == ast.ContinueStmt {
				kind = "continue"
			}
			a.errorf(n, "%s outside of loop", kind)
		}
	case ast.Block:
		a.analyzeBlock(n)
	case ast.AssignStmt:
		a.analyzeAssign(n)
	case ast.ExprStmt:
		a.exprType(n.Children[0])
	case ast.Grouping:
		// Placeholder node from a parse error or an omitted for-loop clause; nothing to check.
	default:
		a.errorf(n, "unexpected statement %s", n.Kind)
	}
}

func (a *Analyzer) analyzeVarDecl(n *ast.Node) {
	name, _ := n.Data.(string)
	typ := n.Children[0].Data.(types.Type)
	var initType types.Type
	hasInit := len(n.Children) > 1
	if hasInit {
		initType = a.exprType(n.Children[1])
	}
	if _, ok := a.Scope.Declare(name, typ, n); !ok {
		a.errorf(n, "duplicate symbol %q", name)
	}
	if hasInit {
		a.checkAssignable(n, typ, initType)
	}
}

func (a *Analyzer) analyzeReturn(n *ast.Node) {
	want := a.Scope.Current().ReturnType
	if len(n.Children) == 0 {
		if want.Kind != types.Void {
			a.errorf(n, "return with no value in function returning %s", want)
		}
		return
	}
	got := a.exprType(n.Children[0])
	if want.Kind == types.Void {
		a.errorf(n, "void function must not return a value")
		return
	}
	if !types.AssignableTo(got, want) {
		a.errorf(n, "return type mismatch: expected %s, got %s", want, got)
	}
}

func (a *Analyzer) analyzeAssign(n *ast.Node) {
	target := n.Children[0]
	value := n.Children[1]
	valType := a.exprType(value)

	var targetType types.Type
	switch target.Kind {
	case ast.Identifier:
		name, _ := target.Data.(string)
		sym, ok := a.Scope.Lookup(name)
		if !ok {
			a.errorf(target, "unknown symbol %q", name)
			return
		}
		sym.UseCount++
		target.Entry = sym
		targetType = sym.Type
	case ast.ArrayAccess:
		targetType = a.exprType(target)
	default:
		a.errorf(n, "invalid assignment target")
		return
	}
	target.Type = targetType

	op, _ := n.Data.(string)
	if op != "=" {
		if !types.IsNumeric(targetType) {
			a.errorf(n, "compound assignment %s not defined for %s", op, targetType)
			return
		}
	}
	a.checkAssignable(n, targetType, valType)
}

func (a *Analyzer) checkAssignable(n *ast.Node, dst, src types.Type) {
	if !types.AssignableTo(src, dst) {
		a.errorf(n, "type mismatch: cannot assign %s to %s", src, dst)
	}
}

// exprType computes and annotates the type of an expression node, reporting any semantic errors found
// along the way (spec.md ch.4.6: "each expression node annotated with a fully resolved type").
func (a *Analyzer) exprType(n *ast.Node) types.Type {
	t := a.computeType(n)
	n.Type = t
	return t
}

func (a *Analyzer) computeType(n *ast.Node) types.Type {
	switch n.Kind {
	case ast.IntLiteral:
		return types.TInt
	case ast.FloatLiteral:
		return types.TFloat
	case ast.StringLiteral:
		return types.TString
	case ast.BoolLiteral:
		return types.TBool
	case ast.NullLiteral:
		return types.TNull
	case ast.Identifier:
		name, _ := n.Data.(string)
		sym, ok := a.Scope.Lookup(name)
		if !ok {
			a.errorf(n, "unknown symbol %q", name)
			return types.TUnknown
		}
		sym.UseCount++
		n.Entry = sym
		return sym.Type
	case ast.Grouping:
		return a.exprType(n.Children[0])
	case ast.Call:
		return a.computeCallType(n)
	case ast.Binary:
		return a.computeBinaryType(n)
	case ast.Comparison:
		a.computeBinaryType(n)
		return types.TBool
	case ast.Logical:
		lt := a.exprType(n.Children[0])
		rt := a.exprType(n.Children[1])
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			a.errorf(n, "logical operator requires bool operands, got %s and %s", lt, rt)
		}
		return types.TBool
	case ast.Unary:
		return a.computeUnaryType(n)
	case ast.IncDec:
		t := a.exprType(n.Children[0])
		if !types.IsNumeric(t) {
			a.errorf(n, "increment/decrement requires a numeric operand, got %s", t)
		}
		return t
	case ast.Cast:
		target, _ := n.Data.(types.Type)
		src := a.exprType(n.Children[0])
		if !isValidCast(src, target) {
			a.errorf(n, "invalid cast from %s to %s", src, target)
		}
		return target
	case ast.ArrayLiteral:
		return a.computeArrayLiteralType(n)
	case ast.ArrayAccess:
		return a.computeArrayAccessType(n)
	case ast.Ternary:
		a.exprType(n.Children[0])
		thenT := a.exprType(n.Children[1])
		elseT := a.exprType(n.Children[2])
		if !types.Equal(thenT, elseT) {
			a.errorf(n, "ternary branches have different types: %s and %s", thenT, elseT)
		}
		return thenT
	default:
		a.errorf(n, "unexpected expression %s", n.Kind)
		return types.TUnknown
	}
}

func (a *Analyzer) computeCallType(n *ast.Node) types.Type {
	name, _ := n.Data.(string)
	sig, ok := a.funcs[name]
	if !ok {
		a.errorf(n, "call to undeclared function %q", name)
		for _, arg := range n.Children {
			a.exprType(arg)
		}
		return types.TUnknown
	}
	if len(n.Children) != len(sig.Params) {
		a.errorf(n, "function %q expects %d arguments, got %d", name, len(sig.Params), len(n.Children))
	}
	for i, arg := range n.Children {
		at := a.exprType(arg)
		if i < len(sig.Params) && !types.AssignableTo(at, sig.Params[i]) {
			a.errorf(arg, "argument %d to %q: expected %s, got %s", i+1, name, sig.Params[i], at)
		}
	}
	return sig.Return
}

// isBitwiseOp reports whether op is one of the integer-only bitwise/shift operators, mirroring VSLC's
// lutExp (src/ir/validate.go) generalized to ADAN's {int, float} numeric pair.
func isBitwiseOp(op string) bool {
	switch op {
	case "&", "|", "^", "<<", ">>", ">>>":
		return true
	}
	return false
}

func (a *Analyzer) computeBinaryType(n *ast.Node) types.Type {
	op, _ := n.Data.(string)
	lt := a.exprType(n.Children[0])
	rt := a.exprType(n.Children[1])

	if op == "+" && lt.Kind == types.String && rt.Kind == types.String {
		return types.TString
	}

	if isBitwiseOp(op) {
		if lt.Kind != types.Int || rt.Kind != types.Int {
			a.errorf(n, "operator %s requires int operands, got %s and %s", op, lt, rt)
			return types.TUnknown
		}
		return types.TInt
	}

	if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
		a.errorf(n, "operator %s not defined for %s and %s", op, lt, rt)
		return types.TUnknown
	}
	if !types.Equal(lt, rt) {
		a.errorf(n, "operator %s not defined for %s and %s", op, lt, rt)
		return types.TUnknown
	}
	if op == "%" && (lt.Kind == types.Float || rt.Kind == types.Float) {
		a.errorf(n, "operator %% not defined for float operands")
		return types.TUnknown
	}
	if (op == "/" || op == "%") && DivisionByZero(n) {
		a.errorf(n, "division by zero")
	}
	if lt.Kind == types.Float || rt.Kind == types.Float {
		return types.TFloat
	}
	return types.TInt
}

func (a *Analyzer) computeUnaryType(n *ast.Node) types.Type {
	op, _ := n.Data.(string)
	t := a.exprType(n.Children[0])
	switch op {
	case "-":
		if !types.IsNumeric(t) {
			a.errorf(n, "unary - not defined for %s", t)
		}
		return t
	case "!":
		if t.Kind != types.Bool {
			a.errorf(n, "unary ! requires bool, got %s", t)
		}
		return types.TBool
	case "~":
		if t.Kind != types.Int {
			a.errorf(n, "unary ~ requires int, got %s", t)
		}
		return types.TInt
	default:
		a.errorf(n, "unknown unary operator %s", op)
		return types.TUnknown
	}
}

func (a *Analyzer) computeArrayLiteralType(n *ast.Node) types.Type {
	if len(n.Children) == 0 {
		return types.ArrayOf(types.TUnknown)
	}
	elem := a.exprType(n.Children[0])
	for _, c := range n.Children[1:] {
		t := a.exprType(c)
		if !types.Equal(t, elem) {
			a.errorf(n, "heterogeneous array literal: %s and %s", elem, t)
		}
	}
	return types.ArrayOf(elem)
}

func (a *Analyzer) computeArrayAccessType(n *ast.Node) types.Type {
	arr := a.exprType(n.Children[0])
	idx := a.exprType(n.Children[1])
	if idx.Kind != types.Int {
		a.errorf(n, "array index must be int, got %s", idx)
	}
	if arr.Kind != types.Array {
		a.errorf(n, "cannot index non-array type %s", arr)
		return types.TUnknown
	}
	return *arr.Elem
}

// isValidCast reports whether src can be explicitly cast to dst: numeric-to-numeric, numeric-to-char
// and back, or any type to itself.
func isValidCast(src, dst types.Type) bool {
	if types.Equal(src, dst) {
		return true
	}
	numericOrChar := func(t types.Type) bool {
		return types.IsNumeric(t) || t.Kind == types.Char
	}
	return numericOrChar(src) && numericOrChar(dst)
}

// DivisionByZero reports whether n is a binary division/modulo with a literal zero divisor (spec.md
// ch.7: "division-by-zero on literal").
func DivisionByZero(n *ast.Node) bool {
	if n.Kind != ast.Binary {
		return false
	}
	op, _ := n.Data.(string)
	if op != "/" && op != "%" {
		return false
	}
	rhs := n.Children[1]
	switch v := rhs.Data.(type) {
	case int64:
		return rhs.Kind == ast.IntLiteral && v == 0
	case float64:
		return rhs.Kind == ast.FloatLiteral && v == 0
	}
	return false
}

// pathsReturn reports whether every control-flow path through n ends in a return (spec.md ch.4.6's
// missing-return check).
func (a *Analyzer) pathsReturn(n *ast.Node) bool {
	switch n.Kind {
	case ast.ReturnStmt:
		return true
	case ast.Block:
		for _, c := range n.Children {
			if a.pathsReturn(c) {
				return true
			}
		}
		return false
	case ast.IfStmt:
		if len(n.Children) < 3 {
			return false // No else branch: the fall-through path does not return.
		}
		return a.pathsReturn(n.Children[1]) && a.pathsReturn(n.Children[2])
	default:
		return false
	}
}
