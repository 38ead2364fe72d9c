// parser.go implements the recursive-descent LL(2) parser of spec.md ch.4.5, replacing VSLC's
// goyacc-generated LALR parser (frontend/tree.go) entirely — spec.md mandates hand-written recursive
// descent with panic-mode recovery, which a grammar-file-generated parser cannot provide without
// regenerating goyacc tables for a different grammar. The two-token lookahead, synchronizing-token
// recovery, and allow-undefined-symbols parse-time scope tracking are grounded on
// original_source/src/frontend/parser/parser.c and parser_utils.c (parser_enter_scope/parser_use_symbol/
// allow_undefined_symbols), generalized from that file's single flat hash table into the nested
// sema.ScopeStack (spec.md ch.4.4).
package frontend

import (
	"adanc/src/ast"
	"adanc/src/diag"
	"adanc/src/sema"
	"adanc/src/types"
)

// syncSet is the set of token kinds the parser resynchronizes on after a syntax error (spec.md ch.4.5:
// "synchronize: advance until the next top-level synchronizing token").
var syncSet = map[Kind]bool{
	Fun: true, Program: true, Import: true, Set: true, Return: true, RBrace: true, Semicolon: true, EOF: true,
}

// Parser turns a token stream into an AST with two tokens of lookahead cached ahead of the current
// position (spec.md ch.4.5).
type Parser struct {
	file string
	lex  *lexer
	sink *diag.Sink

	tok1, tok2 Token

	scopes                *sema.ScopeStack
	AllowUndefinedSymbols bool // Set by the semantic analyzer when re-parsing an imported library's source.

	recovering bool
	panicked   bool
}

// NewParser returns a parser over src, reporting diagnostics to sink under the given file name.
func NewParser(file, src string, sink *diag.Sink) *Parser {
	p := &Parser{
		file:   file,
		lex:    newLexer(file, src, sink),
		sink:   sink,
		scopes: sema.NewScopeStack(),
	}
	p.tok1 = p.lex.Next()
	p.tok2 = p.lex.Next()
	return p
}

// advance consumes and returns the current token, pulling a fresh one into the second lookahead slot.
func (p *Parser) advance() Token {
	cur := p.tok1
	p.tok1 = p.tok2
	p.tok2 = p.lex.Next()
	return cur
}

// expect consumes the current token if it matches kind, else records a diagnostic and enters recovery.
func (p *Parser) expect(kind Kind) (Token, bool) {
	if p.tok1.Kind == kind {
		p.recovering = false
		return p.advance(), true
	}
	p.errorf("expected %s, found %s", kind, p.describe(p.tok1))
	return Token{}, false
}

func (p *Parser) describe(t Token) string {
	if t.Kind == Identifier || t.Kind == IntLit || t.Kind == FloatLit || t.Kind == StringLit {
		return t.Val
	}
	return t.Kind.String()
}

// errorf records one diagnostic at the current token (spec.md ch.4.5: "records one diagnostic at the
// current token, enters recovery mode").
func (p *Parser) errorf(format string, args ...interface{}) {
	if p.recovering {
		return
	}
	p.recovering = true
	p.sink.Errorf(p.file, p.tok1.Line, p.tok1.Col, diag.Parser, format, args...)
}

// sync advances past tokens until the next synchronizing token (spec.md ch.4.5).
func (p *Parser) sync() {
	for !syncSet[p.tok1.Kind] {
		p.advance()
	}
}

// declare records name in the current parse-time scope, for recursive/forward-reference visibility; it
// never reports diagnostics itself (duplicate-symbol detection is the semantic analyzer's job, spec.md
// ch.7).
func (p *Parser) declare(name string, typ types.Type, site *ast.Node) {
	p.scopes.Declare(name, typ, site)
}

// use resolves name against the parse-time scope stack, mirroring parser_use_symbol's early return when
// allow_undefined_symbols is set (original_source/parser_utils.c). It returns the bound symbol, if any;
// an unresolved use is not an error here, since the semantic analyzer performs the authoritative check
// with a fresh, complete scope (spec.md ch.4.6).
func (p *Parser) use(name string) *ast.Symbol {
	if p.AllowUndefinedSymbols {
		return nil
	}
	sym, _ := p.scopes.Lookup(name)
	return sym
}

// Parse parses a complete source file into a Program node (spec.md ch.4.5: "program := { top-decl } EOF").
// A critical failure while parsing a single declaration enters panic mode and halts parsing of further
// statements (spec.md ch.4.5), recovering at the Program level so the rest of the pipeline still sees a
// (partial) AST and the accumulated diagnostics.
func (p *Parser) Parse() *ast.Node {
	prog := ast.New(ast.Program, 1, 1)
	for p.tok1.Kind != EOF && !p.panicked {
		decl := p.parseDeclGuarded()
		if decl != nil {
			prog.Children = append(prog.Children, decl)
		}
	}
	return prog
}

func (p *Parser) parseDeclGuarded() (decl *ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked = true
			p.sink.Report(diag.Diagnostic{
				File: p.file, Line: p.tok1.Line, Column: p.tok1.Col,
				Message: "internal parser failure, halting", Severity: diag.Critical, Category: diag.Parser,
			})
			decl = nil
		}
	}()
	return p.parseTopDecl()
}

func (p *Parser) parseTopDecl() *ast.Node {
	switch p.tok1.Kind {
	case Fun, Program:
		return p.parseFuncDecl()
	case Set:
		return p.parseVarDecl()
	case Import:
		return p.parseImportStmt()
	default:
		p.errorf("expected a function, variable, or import declaration, found %s", p.describe(p.tok1))
		p.sync()
		switch p.tok1.Kind {
		case Fun, Program, Set, Import, EOF:
		default:
			p.advance() // Step past the ";", "}" or "return" sync stopped on, so Parse's loop makes progress.
		}
		return nil
	}
}

func (p *Parser) parseImportStmt() *ast.Node {
	tok := p.advance() // "import"
	path, ok := p.expect(StringLit)
	if !ok {
		p.sync()
		return nil
	}
	p.expect(Semicolon)
	return ast.NewData(ast.Import, tok.Line, tok.Col, path.Val)
}

func (p *Parser) parseFuncDecl() *ast.Node {
	kw := p.advance() // "fun" | "program"
	entry := kw.Kind == Program
	name, ok := p.expect(Identifier)
	if !ok {
		p.sync()
		return nil
	}

	p.declare(name.Val, types.TUnknown, nil)

	if _, ok := p.expect(LParen); !ok {
		p.sync()
		return nil
	}

	p.scopes.Push()
	var params []*ast.Node
	if p.tok1.Kind != RParen {
		params = append(params, p.parseParam())
		for p.tok1.Kind == Comma {
			p.advance()
			params = append(params, p.parseParam())
		}
	}
	p.expect(RParen)
	p.expect(Colon)
	retType := p.parseType()
	p.scopes.Current().ReturnType = retType

	body := p.parseBlock()
	p.scopes.Pop()

	children := append([]*ast.Node{ast.NewData(ast.TypeRef, kw.Line, kw.Col, retType)}, params...)
	children = append(children, body)
	fn := ast.NewData(ast.FuncDecl, kw.Line, kw.Col, name.Val, children...)
	fn.IsEntry = entry
	return fn
}

func (p *Parser) parseParam() *ast.Node {
	name, ok := p.expect(Identifier)
	if !ok {
		return ast.New(ast.Param, p.tok1.Line, p.tok1.Col)
	}
	p.expect(Colon)
	typ := p.parseType()
	p.declare(name.Val, typ, nil)
	return ast.NewData(ast.Param, name.Line, name.Col, name.Val, ast.NewData(ast.TypeRef, name.Line, name.Col, typ))
}

// parseType parses one of the primitive type keywords, or an array/pointer modifier over one
// (spec.md ch.4.5's grammar lists the bare primitive keywords; array/pointer types are part of the
// richer type surface ch.3's Type data model allows).
func (p *Parser) parseType() types.Type {
	var base types.Type
	switch p.tok1.Kind {
	case KwI32, KwI64, KwU32, KwU64:
		base = types.TInt
		p.advance()
	case KwF64:
		base = types.TFloat
		p.advance()
	case KwString:
		base = types.TString
		p.advance()
	case KwBool:
		base = types.TBool
		p.advance()
	case KwChar:
		base = types.TChar
		p.advance()
	case KwVoid:
		base = types.TVoid
		p.advance()
	default:
		p.errorf("expected a type, found %s", p.describe(p.tok1))
		return types.TUnknown
	}
	for p.tok1.Kind == LBracket {
		p.advance()
		p.expect(RBracket)
		base = types.ArrayOf(base)
	}
	return base
}

func (p *Parser) parseBlock() *ast.Node {
	open, ok := p.expect(LBrace)
	if !ok {
		return ast.New(ast.Block, p.tok1.Line, p.tok1.Col)
	}
	p.scopes.Push()
	blk := ast.New(ast.Block, open.Line, open.Col)
	for p.tok1.Kind != RBrace && p.tok1.Kind != EOF && !p.panicked {
		s := p.parseStatement()
		if s != nil {
			blk.Children = append(blk.Children, s)
		}
	}
	p.expect(RBrace)
	p.scopes.Pop()
	return blk
}

func (p *Parser) parseStatement() *ast.Node {
	switch p.tok1.Kind {
	case Set:
		return p.parseVarDecl()
	case Return:
		return p.parseReturnStmt()
	case If:
		return p.parseIfStmt()
	case While:
		return p.parseWhileStmt()
	case For:
		return p.parseForStmt()
	case Break:
		tok := p.advance()
		p.expect(Semicolon)
		return ast.New(ast.BreakStmt, tok.Line, tok.Col)
	case Continue:
		tok := p.advance()
		p.expect(Semicolon)
		return ast.New(ast.ContinueStmt, tok.Line, tok.Col)
	case LBrace:
		return p.parseBlock()
	case EOF, RBrace:
		return nil
	default:
		return p.parseExprStmt()
	}
}

// parseVarDecl parses "set IDENT : type [ = expression ] ;" (spec.md ch.4.5's var-decl production).
func (p *Parser) parseVarDecl() *ast.Node {
	tok := p.advance() // "set"
	name, ok := p.expect(Identifier)
	if !ok {
		p.sync()
		return nil
	}
	p.expect(Colon)
	typ := p.parseType()

	var init *ast.Node
	if p.tok1.Kind == Assign {
		p.advance()
		init = p.parseExpression()
	}
	p.expect(Semicolon)

	p.declare(name.Val, typ, nil)

	var children []*ast.Node
	typeNode := ast.NewData(ast.TypeRef, tok.Line, tok.Col, typ)
	if init != nil {
		children = []*ast.Node{typeNode, init}
	} else {
		children = []*ast.Node{typeNode}
	}
	return ast.NewData(ast.VarDecl, tok.Line, tok.Col, name.Val, children...)
}

func (p *Parser) parseReturnStmt() *ast.Node {
	tok := p.advance()
	var expr *ast.Node
	if p.tok1.Kind != Semicolon {
		expr = p.parseExpression()
	}
	p.expect(Semicolon)
	if expr != nil {
		return ast.New(ast.ReturnStmt, tok.Line, tok.Col, expr)
	}
	return ast.New(ast.ReturnStmt, tok.Line, tok.Col)
}

func (p *Parser) parseIfStmt() *ast.Node {
	tok := p.advance()
	p.expect(LParen)
	cond := p.parseExpression()
	p.expect(RParen)
	then := p.parseBlock()

	var els *ast.Node
	if p.tok1.Kind == Else {
		p.advance()
		if p.tok1.Kind == If {
			els = p.parseIfStmt()
		} else {
			els = p.parseBlock()
		}
	}
	if els != nil {
		return ast.New(ast.IfStmt, tok.Line, tok.Col, cond, then, els)
	}
	return ast.New(ast.IfStmt, tok.Line, tok.Col, cond, then)
}

func (p *Parser) parseWhileStmt() *ast.Node {
	tok := p.advance()
	p.expect(LParen)
	cond := p.parseExpression()
	p.expect(RParen)
	body := p.parseBlock()
	return ast.New(ast.WhileStmt, tok.Line, tok.Col, cond, body)
}

// parseForStmt parses "for ( init ; cond ; post ) block" where init is either a var-decl or an
// expression, and post is an expression (spec.md's grammar leaves for-loop shape open; the C-style
// three-clause form follows the ForStmt/for keyword the AST/token data model already name).
func (p *Parser) parseForStmt() *ast.Node {
	tok := p.advance()
	p.expect(LParen)
	p.scopes.Push()

	var init *ast.Node
	if p.tok1.Kind == Set {
		init = p.parseVarDeclNoSemi()
	} else if p.tok1.Kind != Semicolon {
		init = p.parseExpression()
	}
	p.expect(Semicolon)

	var cond *ast.Node
	if p.tok1.Kind != Semicolon {
		cond = p.parseExpression()
	}
	p.expect(Semicolon)

	var post *ast.Node
	if p.tok1.Kind != RParen {
		post = p.parseExpression()
	}
	p.expect(RParen)

	body := p.parseBlock()
	p.scopes.Pop()

	children := make([]*ast.Node, 0, 4)
	children = append(children, orNil(init), orNil(cond), orNil(post), body)
	return ast.New(ast.ForStmt, tok.Line, tok.Col, children...)
}

func orNil(n *ast.Node) *ast.Node {
	if n == nil {
		return ast.New(ast.Grouping, 0, 0)
	}
	return n
}

// parseVarDeclNoSemi parses "set IDENT : type [ = expression ]" without consuming a trailing semicolon,
// for use in a for-statement's initializer clause.
func (p *Parser) parseVarDeclNoSemi() *ast.Node {
	tok := p.advance() // "set"
	name, ok := p.expect(Identifier)
	if !ok {
		return nil
	}
	p.expect(Colon)
	typ := p.parseType()
	var init *ast.Node
	if p.tok1.Kind == Assign {
		p.advance()
		init = p.parseExpression()
	}
	p.declare(name.Val, typ, nil)
	typeNode := ast.NewData(ast.TypeRef, tok.Line, tok.Col, typ)
	if init != nil {
		return ast.NewData(ast.VarDecl, tok.Line, tok.Col, name.Val, typeNode, init)
	}
	return ast.NewData(ast.VarDecl, tok.Line, tok.Col, name.Val, typeNode)
}

var assignOps = map[Kind]bool{
	Assign: true, PlusEq: true, MinusEq: true, StarEq: true, SlashEq: true, PercentEq: true,
}

func (p *Parser) parseExprStmt() *ast.Node {
	line, col := p.tok1.Line, p.tok1.Col
	expr := p.parseExpression()
	if assignOps[p.tok1.Kind] {
		op := p.advance()
		rhs := p.parseExpression()
		p.expect(Semicolon)
		return ast.NewData(ast.AssignStmt, line, col, op.Kind.String(), expr, rhs)
	}
	p.expect(Semicolon)
	return ast.New(ast.ExprStmt, line, col, expr)
}

// --- Expressions, by precedence (low to high): ternary, ||, &&, |, ^, &, ==/!=, relational,
// shift, +/-, */ /%, ** (right-assoc), unary, postfix, primary. spec.md ch.4.5: "associativity is
// left-to-right except for exponentiation which is right-associative."

func (p *Parser) parseExpression() *ast.Node {
	return p.parseTernary()
}

func (p *Parser) parseTernary() *ast.Node {
	cond := p.parseLogicalOr()
	if p.tok1.Kind == Question {
		tok := p.advance()
		then := p.parseExpression()
		p.expect(Colon)
		els := p.parseTernary()
		return ast.New(ast.Ternary, tok.Line, tok.Col, cond, then, els)
	}
	return cond
}

func (p *Parser) parseLogicalOr() *ast.Node {
	left := p.parseLogicalAnd()
	for p.tok1.Kind == OrOr {
		op := p.advance()
		right := p.parseLogicalAnd()
		left = ast.NewData(ast.Logical, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	left := p.parseBitOr()
	for p.tok1.Kind == AndAnd {
		op := p.advance()
		right := p.parseBitOr()
		left = ast.NewData(ast.Logical, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseBitOr() *ast.Node {
	left := p.parseBitXor()
	for p.tok1.Kind == Pipe {
		op := p.advance()
		right := p.parseBitXor()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseBitXor() *ast.Node {
	left := p.parseBitAnd()
	for p.tok1.Kind == Caret {
		op := p.advance()
		right := p.parseBitAnd()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseBitAnd() *ast.Node {
	left := p.parseEquality()
	for p.tok1.Kind == Amp {
		op := p.advance()
		right := p.parseEquality()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseEquality() *ast.Node {
	left := p.parseRelational()
	for p.tok1.Kind == Eq || p.tok1.Kind == Neq {
		op := p.advance()
		right := p.parseRelational()
		left = ast.NewData(ast.Comparison, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseRelational() *ast.Node {
	left := p.parseShift()
	for p.tok1.Kind == Lt || p.tok1.Kind == Le || p.tok1.Kind == Gt || p.tok1.Kind == Ge {
		op := p.advance()
		right := p.parseShift()
		left = ast.NewData(ast.Comparison, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseShift() *ast.Node {
	left := p.parseAdditive()
	for p.tok1.Kind == Shl || p.tok1.Kind == Shr || p.tok1.Kind == Shr3 {
		op := p.advance()
		right := p.parseAdditive()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseAdditive() *ast.Node {
	left := p.parseMultiplicative()
	for p.tok1.Kind == Plus || p.tok1.Kind == Minus {
		op := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() *ast.Node {
	left := p.parseExponent()
	for p.tok1.Kind == Star || p.tok1.Kind == Slash || p.tok1.Kind == Percent {
		op := p.advance()
		right := p.parseExponent()
		left = ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

// parseExponent is right-associative, unlike every other binary level (spec.md ch.4.5).
func (p *Parser) parseExponent() *ast.Node {
	left := p.parseUnary()
	if p.tok1.Kind == StarStar {
		op := p.advance()
		right := p.parseExponent()
		return ast.NewData(ast.Binary, op.Line, op.Col, op.Kind.String(), left, right)
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.tok1.Kind {
	case Minus, Not, Tilde:
		op := p.advance()
		operand := p.parseUnary()
		return ast.NewData(ast.Unary, op.Line, op.Col, op.Kind.String(), operand)
	case PlusPlus, MinusMinus:
		op := p.advance()
		operand := p.parseUnary()
		return ast.NewData(ast.IncDec, op.Line, op.Col, "pre"+op.Kind.String(), operand)
	case LParen:
		if p.isCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

// isCast reports whether the upcoming "( type )" is a cast rather than a grouped expression, by
// peeking at the lookahead after "(": it must be a primitive type keyword. The closing ")" is not
// checked here; parseCast expects it.
func (p *Parser) isCast() bool {
	return p.tok2.Kind.IsPrimitiveType()
}

func (p *Parser) parseCast() *ast.Node {
	tok := p.advance() // "("
	typ := p.parseType()
	p.expect(RParen)
	operand := p.parseUnary()
	return ast.NewData(ast.Cast, tok.Line, tok.Col, typ, operand)
}

func (p *Parser) parsePostfix() *ast.Node {
	expr := p.parsePrimary()
	for {
		switch p.tok1.Kind {
		case LBracket:
			tok := p.advance()
			idx := p.parseExpression()
			p.expect(RBracket)
			expr = ast.New(ast.ArrayAccess, tok.Line, tok.Col, expr, idx)
		case PlusPlus, MinusMinus:
			op := p.advance()
			expr = ast.NewData(ast.IncDec, op.Line, op.Col, "post"+op.Kind.String(), expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.tok1
	switch tok.Kind {
	case Identifier:
		p.advance()
		if p.tok1.Kind == LParen {
			return p.parseCall(tok)
		}
		sym := p.use(tok.Val)
		n := ast.NewData(ast.Identifier, tok.Line, tok.Col, tok.Val)
		n.Entry = sym
		return n
	case IntLit:
		p.advance()
		return ast.NewData(ast.IntLiteral, tok.Line, tok.Col, parseIntLiteral(tok.Val))
	case FloatLit:
		p.advance()
		return ast.NewData(ast.FloatLiteral, tok.Line, tok.Col, parseFloatLiteral(tok.Val))
	case StringLit:
		p.advance()
		return ast.NewData(ast.StringLiteral, tok.Line, tok.Col, tok.Val)
	case BoolLit:
		p.advance()
		return ast.NewData(ast.BoolLiteral, tok.Line, tok.Col, tok.Val == "true")
	case NullLit:
		p.advance()
		return ast.New(ast.NullLiteral, tok.Line, tok.Col)
	case LParen:
		p.advance()
		inner := p.parseExpression()
		p.expect(RParen)
		return ast.New(ast.Grouping, tok.Line, tok.Col, inner)
	case LBracket:
		return p.parseArrayLiteral()
	case Minus, Not, Tilde, PlusPlus, MinusMinus:
		return p.parseUnary()
	default:
		p.errorf("expected an expression, found %s", p.describe(tok))
		p.sync()
		return ast.New(ast.Grouping, tok.Line, tok.Col)
	}
}

func (p *Parser) parseCall(name Token) *ast.Node {
	p.advance() // "("
	var args []*ast.Node
	if p.tok1.Kind != RParen {
		args = append(args, p.parseExpression())
		for p.tok1.Kind == Comma {
			p.advance()
			args = append(args, p.parseExpression())
		}
	}
	p.expect(RParen)
	return ast.NewData(ast.Call, name.Line, name.Col, name.Val, args...)
}

func (p *Parser) parseArrayLiteral() *ast.Node {
	tok := p.advance() // "["
	var elems []*ast.Node
	if p.tok1.Kind != RBracket {
		elems = append(elems, p.parseExpression())
		for p.tok1.Kind == Comma {
			p.advance()
			elems = append(elems, p.parseExpression())
		}
	}
	p.expect(RBracket)
	return ast.New(ast.ArrayLiteral, tok.Line, tok.Col, elems...)
}
