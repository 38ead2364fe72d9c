package ir

import (
	"fmt"
	"strings"

	"adanc/src/types"
)

// Global is a module-level variable or string constant. Strings are interned by value so repeated
// literals share one Global (spec.md §4.7: "constants are created free-standing and reused by
// reference"). Generalizes lir.Global (ir/lir/global.go).
type Global struct {
	Name    string
	Typ     types.Type
	IsConst bool // true for interned string literals; false for mutable package-level vars.
	StrVal  string
	Init    Value // optional initializer for non-string globals.
}

func (g *Global) Type() types.Type { return g.Typ }
func (g *Global) String() string   { return "@" + g.Name }

// Module owns every Function and Global in a compiled translation unit, per spec.md §5's
// ownership model ("IR module: owned by the driver... ownership of instructions, blocks,
// functions, and globals is exclusively through the module"). Generalizes lir.Module
// (ir/lir/module.go).
type Module struct {
	Name      string
	Globals   []*Global
	Functions []*Function

	funcNames   map[string]*Function
	stringPool  map[string]*Global
	globalNames map[string]bool
	gseq        int
}

// NewModule creates a new, empty Module with the given name.
func NewModule(name string) *Module {
	if name == "" {
		name = "module"
	}
	return &Module{
		Name:        name,
		funcNames:   make(map[string]*Function, 16),
		stringPool:  make(map[string]*Global, 16),
		globalNames: make(map[string]bool, 16),
	}
}

// CreateFunction appends a new Function named name to the module. It is an error to create two
// functions with the same name (spec.md §4.7: "validate-module checks... every named function
// appears exactly once" - caught here at construction time rather than deferred to validation,
// since the builder already knows the full function set).
func (m *Module) CreateFunction(name string, ret types.Type, params []types.Type, external bool) (*Function, error) {
	if _, ok := m.funcNames[name]; ok {
		return nil, fmt.Errorf("module %s: function %q already exists", m.Name, name)
	}
	f := &Function{
		Module:   m,
		Name:     name,
		Ret:      ret,
		External: external,
	}
	for i1, pt := range params {
		f.Params = append(f.Params, &Param{Func: f, id: i1, Name: fmt.Sprintf("p%d", i1), Typ: pt})
	}
	m.funcNames[name] = f
	m.Functions = append(m.Functions, f)
	return f, nil
}

// Function looks up a previously created Function by name.
func (m *Module) Function(name string) (*Function, bool) {
	f, ok := m.funcNames[name]
	return f, ok
}

// CreateString interns a string literal as a module-level Global, returning the existing Global if
// an identical string constant was already created.
func (m *Module) CreateString(val string) *Global {
	if g, ok := m.stringPool[val]; ok {
		return g
	}
	g := &Global{Name: fmt.Sprintf(".str%d", m.gseq), Typ: types.TString, IsConst: true, StrVal: val}
	m.gseq++
	m.Globals = append(m.Globals, g)
	m.stringPool[val] = g
	m.globalNames[g.Name] = true
	return g
}

// CreateGlobal appends a new mutable package-level variable Global to the module.
func (m *Module) CreateGlobal(name string, typ types.Type, init Value) (*Global, error) {
	if m.globalNames[name] {
		return nil, fmt.Errorf("module %s: global %q already exists", m.Name, name)
	}
	g := &Global{Name: name, Typ: typ, Init: init}
	m.Globals = append(m.Globals, g)
	m.globalNames[name] = true
	return g, nil
}

// String renders a debug dump of the whole module; not the LLVM text format (see package emit for
// that), just enough structure to eyeball during development.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s\n", m.Name)
	for _, g := range m.Globals {
		if g.IsConst {
			fmt.Fprintf(&sb, "%s = constant %s\n", g, stringVal(g.StrVal))
		} else {
			fmt.Fprintf(&sb, "%s = global %s\n", g, g.Typ)
		}
	}
	for _, f := range m.Functions {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
