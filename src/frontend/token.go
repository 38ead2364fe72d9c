// token.go defines the token kinds the lexer emits (spec.md ch.3: "Token. Kind (one of: identifier,
// keyword {...}, primitive type keyword {...}, punctuation, operator, literal kinds {...}, end-of-file,
// error)"). Generalized from VSLC's itemType enum (frontend/lexer.go), extended for the richer keyword
// and operator surface spec.md ch.4.2 lists.

package frontend

import "fmt"

// Kind differentiates the kind of lexeme a Token carries.
type Kind int

const (
	EOF Kind = iota
	Error

	Identifier
	IntLit
	FloatLit
	StringLit
	BoolLit
	NullLit

	// Keywords.
	Fun
	Program
	Set
	Import
	If
	Else
	While
	For
	Return
	Break
	Continue
	Struct
	Const

	// Primitive type keywords.
	KwI32
	KwI64
	KwU32
	KwU64
	KwF64
	KwString
	KwBool
	KwChar
	KwVoid

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Semicolon
	Colon
	DoubleColon
	Question

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Caret
	StarStar
	Assign
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
	AndAnd
	OrOr
	Not
	Amp
	Pipe
	Tilde
	Shl
	Shr
	Shr3
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	PlusPlus
	MinusMinus
)

var kindNames = [...]string{
	"EOF", "error",
	"identifier", "int", "float", "string", "bool", "null",
	"fun", "program", "set", "import", "if", "else", "while", "for", "return", "break", "continue",
	"struct", "const",
	"i32", "i64", "u32", "u64", "f64", "string", "bool", "char", "void",
	"(", ")", "{", "}", "[", "]", ",", ".", ";", ":", "::", "?",
	"+", "-", "*", "/", "%", "^", "**", "=", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "!",
	"&", "|", "~", "<<", ">>", ">>>", "+=", "-=", "*=", "/=", "%=", "++", "--",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Token is a single lexeme produced by the lexer, carrying its source position (spec.md ch.3:
// "Source position (line, column, absolute offset). Length.").
type Token struct {
	Kind   Kind
	Val    string
	Line   int
	Col    int
	Offset int
}

// String returns a print friendly representation of t, mirroring VSLC's item.String().
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Error:
		return fmt.Sprintf("%s [ERROR]", t.Val)
	}
	if len(t.Val) > 10 {
		return fmt.Sprintf("%.10q... (line %d:%d)", t.Val, t.Line, t.Col)
	}
	return fmt.Sprintf("%q (line %d:%d)", t.Val, t.Line, t.Col)
}

// IsPrimitiveType reports whether k is one of the primitive type keywords.
func (k Kind) IsPrimitiveType() bool {
	return k >= KwI32 && k <= KwVoid
}
