package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanc/src/ir"
	"adanc/src/types"
)

func TestModuleCreateFunctionDuplicate(t *testing.T) {
	m := ir.NewModule("t")
	_, err := m.CreateFunction("main", types.TVoid, nil, false)
	require.NoError(t, err)
	_, err = m.CreateFunction("main", types.TVoid, nil, false)
	assert.Error(t, err)
}

func TestStringInterning(t *testing.T) {
	m := ir.NewModule("t")
	a := m.CreateString("hello")
	b := m.CreateString("hello")
	c := m.CreateString("world")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Len(t, m.Globals, 2)
}

func TestBlockTerminatorDiscipline(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("f", types.TInt, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")

	_, err = b.CreateRet(ir.IntConst{Val: 1})
	require.NoError(t, err)

	_, err = b.CreateRetVoid()
	assert.Error(t, err, "emitting into an already-terminated block must fail")
}

func TestStoreTypeMismatch(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("f", types.TVoid, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")

	alloca, err := b.CreateAlloca(types.TInt, "x")
	require.NoError(t, err)

	_, err = b.CreateStore(ir.FloatConst{Val: 1.5}, alloca)
	assert.Error(t, err)

	_, err = b.CreateStore(ir.IntConst{Val: 1}, alloca)
	assert.NoError(t, err)
}

func TestCreateCallArgumentCount(t *testing.T) {
	m := ir.NewModule("t")
	callee, err := m.CreateFunction("callee", types.TVoid, []types.Type{types.TInt}, false)
	require.NoError(t, err)
	caller, err := m.CreateFunction("caller", types.TVoid, nil, false)
	require.NoError(t, err)
	b := caller.CreateBlock("entry")

	_, err = b.CreateCall(callee, nil)
	assert.Error(t, err)

	_, err = b.CreateCall(callee, []ir.Value{ir.IntConst{Val: 1}})
	assert.NoError(t, err)
}

func TestValidateModuleCatchesMissingTerminator(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("f", types.TVoid, nil, false)
	require.NoError(t, err)
	f.CreateBlock("entry") // left unterminated.

	err = ir.ValidateModule(m)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no terminator")
}

func TestValidateModuleCatchesReturnTypeMismatch(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("f", types.TVoid, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")
	_, err = b.CreateRet(ir.IntConst{Val: 1})
	require.NoError(t, err)

	err = ir.ValidateModule(m)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "return value type")
}

func TestValidateModuleAcceptsExternalDeclaration(t *testing.T) {
	m := ir.NewModule("t")
	_, err := m.CreateFunction("println", types.TVoid, []types.Type{types.TString}, true)
	require.NoError(t, err)

	assert.NoError(t, ir.ValidateModule(m))
}

func TestCBrRequiresBoolCondition(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("f", types.TVoid, nil, false)
	require.NoError(t, err)
	entry := f.CreateBlock("entry")
	thn := f.CreateBlock("then")
	els := f.CreateBlock("else")

	_, err = entry.CreateCBr(ir.IntConst{Val: 1}, thn, els)
	assert.Error(t, err)

	_, err = entry.CreateCBr(ir.BoolConst{Val: true}, thn, els)
	assert.NoError(t, err)
}
