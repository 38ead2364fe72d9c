package frontend

import "testing"

// Mirrors VSLC's frontend/lexer_test.go shape (table of expected {typ, val, line, pos} tuples driven
// against a sample source), adapted to the synchronous Next() API: no goroutine, no l.run().
func TestLexer(t *testing.T) {
	const src = `fun add(a: i32, b: i32): i32 {
	return a + b;
}
`
	want := []struct {
		typ  Kind
		val  string
		line int
		pos  int
	}{
		{Fun, "fun", 1, 1},
		{Identifier, "add", 1, 5},
		{LParen, "(", 1, 8},
		{Identifier, "a", 1, 9},
		{Colon, ":", 1, 10},
		{KwI32, "i32", 1, 12},
		{Comma, ",", 1, 15},
		{Identifier, "b", 1, 17},
		{Colon, ":", 1, 18},
		{KwI32, "i32", 1, 20},
		{RParen, ")", 1, 23},
		{Colon, ":", 1, 24},
		{KwI32, "i32", 1, 26},
		{LBrace, "{", 1, 30},
		{Return, "return", 2, 2},
		{Identifier, "a", 2, 9},
		{Plus, "+", 2, 11},
		{Identifier, "b", 2, 13},
		{Semicolon, ";", 2, 14},
		{RBrace, "}", 3, 1},
		{EOF, "", 4, 1},
	}

	l := newLexer("test.adan", src, nil)
	for i, w := range want {
		got := l.Next()
		if got.Kind != w.typ {
			t.Fatalf("token %d: kind = %s, want %s", i, got.Kind, w.typ)
		}
		if got.Val != w.val {
			t.Errorf("token %d: val = %q, want %q", i, got.Val, w.val)
		}
		if got.Line != w.line {
			t.Errorf("token %d (%q): line = %d, want %d", i, got.Val, got.Line, w.line)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	const src = `== != <= >= && || << >> >>> ** :: ++ -- += -= *= /= %= ~`
	want := []Kind{Eq, Neq, Le, Ge, AndAnd, OrOr, Shl, Shr, Shr3, StarStar, DoubleColon,
		PlusPlus, MinusMinus, PlusEq, MinusEq, StarEq, SlashEq, PercentEq, Tilde, EOF}

	l := newLexer("test.adan", src, nil)
	for i, k := range want {
		got := l.Next()
		if got.Kind != k {
			t.Fatalf("token %d: kind = %s, want %s (val %q)", i, got.Kind, k, got.Val)
		}
	}
}

func TestLexerStringLiteral(t *testing.T) {
	const src = `"hello ${name}\nworld"`
	l := newLexer("test.adan", src, nil)
	got := l.Next()
	if got.Kind != StringLit {
		t.Fatalf("kind = %s, want StringLit", got.Kind)
	}
	want := `hello ${name}\nworld`
	if got.Val != want {
		t.Errorf("val = %q, want %q", got.Val, want)
	}
	if eof := l.Next(); eof.Kind != EOF {
		t.Errorf("kind = %s, want EOF", eof.Kind)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := newLexer("test.adan", `"abc`, nil)
	got := l.Next()
	if got.Kind != Error {
		t.Fatalf("kind = %s, want Error", got.Kind)
	}
}

// TestLexerUnrecognizedCharacterResumes confirms an unrecognized character emits a single Error token
// and advances past it rather than freezing the lexer (spec.md ch.4.2: "advance one character; parsing
// continues") — unlike an unterminated string/comment, which has no sane resumption point and does halt.
func TestLexerUnrecognizedCharacterResumes(t *testing.T) {
	l := newLexer("test.adan", `a @ b`, nil)
	a := l.Next()
	if a.Kind != Identifier || a.Val != "a" {
		t.Fatalf("token 0 = %s %q, want Identifier a", a.Kind, a.Val)
	}
	bad := l.Next()
	if bad.Kind != Error {
		t.Fatalf("token 1 = %s, want Error", bad.Kind)
	}
	b := l.Next()
	if b.Kind != Identifier || b.Val != "b" {
		t.Fatalf("token 2 = %s %q, want Identifier b (lexer should have resumed)", b.Kind, b.Val)
	}
	if eof := l.Next(); eof.Kind != EOF {
		t.Errorf("token 3 = %s, want EOF", eof.Kind)
	}
}

// TestLexerConsecutiveOperatorsNotDropped guards against a past lexGlobal regression where a
// single-character/operator case fell through to its own for loop instead of returning, silently
// dropping every such token but the last one seen before the next real return (alpha/digit/string).
func TestLexerConsecutiveOperatorsNotDropped(t *testing.T) {
	l := newLexer("test.adan", `);:`, nil)
	want := []Kind{RParen, Semicolon, Colon, EOF}
	for i, k := range want {
		got := l.Next()
		if got.Kind != k {
			t.Fatalf("token %d: kind = %s, want %s", i, got.Kind, k)
		}
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := newLexer("test.adan", ``, nil)
	a := l.Next()
	b := l.Next()
	if a.Kind != EOF || b.Kind != EOF {
		t.Fatalf("expected EOF twice, got %s then %s", a.Kind, b.Kind)
	}
}

func TestIsKeyword(t *testing.T) {
	cases := map[string]Kind{
		"fun": Fun, "program": Program, "set": Set, "import": Import, "if": If, "else": Else,
		"while": While, "for": For, "return": Return, "break": Break, "continue": Continue,
		"struct": Struct, "const": Const, "i32": KwI32, "f64": KwF64, "string": KwString,
		"bool": KwBool, "char": KwChar, "void": KwVoid, "true": BoolLit, "false": BoolLit,
		"null": NullLit,
	}
	for word, want := range cases {
		kw, typ := isKeyword(word)
		if !kw {
			t.Errorf("isKeyword(%q) = false, want true", word)
		}
		if typ != want {
			t.Errorf("isKeyword(%q) kind = %s, want %s", word, typ, want)
		}
	}
	if kw, typ := isKeyword("foobar"); kw || typ != Identifier {
		t.Errorf("isKeyword(%q) = (%v, %s), want (false, Identifier)", "foobar", kw, typ)
	}
}
