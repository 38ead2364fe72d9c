// Package ast implements the syntax tree described in spec.md ch.4.3: a tagged-variant tree, pure data,
// with recursive ownership (freeing a node frees its subtree - true for free automatically in Go, since
// there are no other references to a subtree once its parent is dropped).
//
// Generalized from VSLC's ir.Node/ir.NodeType (src/ir/nodetype.go): same tagged-variant-over-Kind shape,
// the same Children []*Node/Line/Pos fields, and the same indenting Print(depth, showDepth) debug dump,
// extended with the richer expression surface (binary/unary/comparison/logical/cast/array/ternary/
// grouping/inc-dec) spec.md ch.3/ch.4.5 allow beyond VSLC's grammar, and with the Type field (the annotated type)
// the semantic analyzer fills in (spec.md ch.4.6).
package ast

import (
	"fmt"

	"adanc/src/types"
)

// Kind differentiates the categories of Node in the syntax tree.
type Kind int

const (
	Program Kind = iota
	Import
	FuncDecl
	VarDecl
	Param
	Block
	ReturnStmt
	ExprStmt
	IfStmt
	WhileStmt
	ForStmt
	BreakStmt
	ContinueStmt
	AssignStmt
	Call
	Identifier
	IntLiteral
	FloatLiteral
	StringLiteral
	BoolLiteral
	NullLiteral
	TypeRef
	Binary
	Unary
	Comparison
	Logical
	IncDec
	Cast
	ArrayLiteral
	ArrayAccess
	Ternary
	Grouping
)

var kindNames = [...]string{
	"Program", "Import", "FuncDecl", "VarDecl", "Param", "Block", "ReturnStmt", "ExprStmt",
	"IfStmt", "WhileStmt", "ForStmt", "BreakStmt", "ContinueStmt", "AssignStmt", "Call",
	"Identifier", "IntLiteral", "FloatLiteral", "StringLiteral", "BoolLiteral", "NullLiteral",
	"TypeRef", "Binary", "Unary", "Comparison", "Logical", "IncDec", "Cast", "ArrayLiteral",
	"ArrayAccess", "Ternary", "Grouping",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Symbol is the symbol table entry a declaration or identifier reference is bound to (spec.md ch.3). It
// lives in package ast, not sema, so that both ast.Node.Entry and sema's scope maps can share one type
// without an import cycle.
type Symbol struct {
	Name     string
	Type     types.Type
	Decl     *Node // Declaration site.
	UseCount int
}

// Node is a single node in the syntax tree. Its Data field holds literal/identifier/operator payload
// data (string, int64, float64, bool, or types.Type for a Cast's target) depending on Kind; Children
// holds its owned sub-tree.
type Node struct {
	Kind     Kind
	Line     int
	Col      int
	Data     interface{}
	Children []*Node
	Entry    *Symbol    // Symbol table entry, once resolved (identifiers, declarations).
	Type     types.Type // Annotated type, filled in by the semantic analyzer for expression nodes.
	IsEntry  bool       // For FuncDecl: declared with the "program" entry-point keyword rather than "fun".
}

// New allocates a Node of the given kind and source position with the given children.
func New(kind Kind, line, col int, children ...*Node) *Node {
	return &Node{Kind: kind, Line: line, Col: col, Children: children}
}

// NewData allocates a Node carrying a data payload (a literal value or an identifier name).
func NewData(kind Kind, line, col int, data interface{}, children ...*Node) *Node {
	return &Node{Kind: kind, Line: line, Col: col, Data: data, Children: children}
}

// String returns a print friendly one-line representation of Node n.
func (n *Node) String() string {
	if n == nil {
		return "---> [NIL NODE]"
	}
	if n.Data == nil {
		return n.Kind.String()
	}
	return fmt.Sprintf("%s [%v]", n.Kind, n.Data)
}

// Print recursively prints Node n and its Children, indenting each recursive call by depth.
func (n *Node) Print(depth int, showDepth bool) {
	if depth < 0 {
		depth = 0
	}
	if n == nil {
		if showDepth {
			fmt.Printf("%d %*c%s\n", depth, depth<<1, ' ', "---> NIL")
		} else {
			fmt.Printf("%*c%s\n", depth<<1, ' ', "---> NIL")
		}
		return
	}
	if showDepth {
		fmt.Printf("%d %*c%s\n", depth, depth<<1, ' ', n.String())
	} else {
		fmt.Printf("%*c%s\n", depth<<1, ' ', n.String())
	}
	for _, c := range n.Children {
		c.Print(depth+1, showDepth)
	}
}
