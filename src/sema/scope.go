// Package sema implements the semantic analyzer described in spec.md ch.4.6, built on the symbol table
// stack of ch.4.4. The scope stack is grounded on two sources: VSLC's util.Stack[T] (src/util/stack.go)
// supplies the nested push/pop shape, and original_source/src/stm.c's stm_insert/stm_lookup supply the
// declare-refuses-duplicate, lookup-by-name semantics — generalized from stm.c's single flat hash table
// into a proper LIFO chain of scopes, since spec.md ch.4.4 requires nested nested scoping stm.c never had
// ("@important When changing from a single-level symbol table, remove and add support for various
// scopes.").
package sema

import (
	"adanc/src/ast"
	"adanc/src/types"
)

// Scope is one level of the symbol table stack: a flat mapping of name to symbol entry, plus the
// bookkeeping fields spec.md ch.4.4 requires every scope carry ("current function's expected return
// type" and "current loop nesting depth").
type Scope struct {
	parent      *Scope
	symbols     map[string]*ast.Symbol
	ReturnType  types.Type // Expected return type of the enclosing function; types.TUnknown at file scope.
	LoopDepth   int        // Nesting depth of enclosing loops, for break/continue validation.
}

func newScope(parent *Scope) *Scope {
	s := &Scope{parent: parent, symbols: make(map[string]*ast.Symbol)}
	if parent != nil {
		s.ReturnType = parent.ReturnType
		s.LoopDepth = parent.LoopDepth
	} else {
		s.ReturnType = types.TUnknown
	}
	return s
}

// ScopeStack is the symbol table stack of spec.md ch.4.4: push-scope/pop-scope/declare/lookup/
// lookup-local, with scope push/pop strictly nested (LIFO).
type ScopeStack struct {
	top *Scope
	n   int
}

// NewScopeStack returns a scope stack with a single root scope, as spec.md ch.4.6 requires for a fresh
// analysis ("a fresh symbol-table stack with a single root scope").
func NewScopeStack() *ScopeStack {
	return &ScopeStack{top: newScope(nil), n: 1}
}

// Push enters a new nested scope.
func (s *ScopeStack) Push() {
	s.top = newScope(s.top)
	s.n++
}

// Pop leaves the current scope, discarding its bindings. Popping the root scope is a programmer error
// and is a no-op, since the stack must always retain at least one scope.
func (s *ScopeStack) Pop() {
	if s.top.parent == nil {
		return
	}
	s.top = s.top.parent
	s.n--
}

// Depth reports the current scope nesting depth (spec.md ch.4.4: "Scope depth is observable").
func (s *ScopeStack) Depth() int {
	return s.n
}

// Current returns the innermost scope, for reading/writing its ReturnType/LoopDepth fields.
func (s *ScopeStack) Current() *Scope {
	return s.top
}

// Declare adds name to the current scope. It refuses to shadow an existing binding in the SAME scope
// (spec.md ch.4.4: "declare refuses to shadow in the same scope") but permits shadowing an outer scope's
// binding, returning (entry, true) on success or (existing, false) on a same-scope duplicate.
func (s *ScopeStack) Declare(name string, typ types.Type, decl *ast.Node) (*ast.Symbol, bool) {
	if existing, ok := s.top.symbols[name]; ok {
		return existing, false
	}
	sym := &ast.Symbol{Name: name, Type: typ, Decl: decl}
	s.top.symbols[name] = sym
	return sym, true
}

// Lookup walks the parent chain from the current scope outward until it finds name or exhausts the
// root scope (spec.md ch.4.4: "lookup walks parent chain until hit or root").
func (s *ScopeStack) Lookup(name string) (*ast.Symbol, bool) {
	for sc := s.top; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal looks up name in the current scope only, without walking to parents.
func (s *ScopeStack) LookupLocal(name string) (*ast.Symbol, bool) {
	sym, ok := s.top.symbols[name]
	return sym, ok
}
