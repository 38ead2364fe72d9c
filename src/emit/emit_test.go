package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanc/src/emit"
	"adanc/src/ir"
	"adanc/src/types"
)

func TestEmitSimpleReturn(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("main", types.TInt, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")
	_, err = b.CreateRet(ir.IntConst{Val: 0})
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "define i64 @main() {")
	assert.Contains(t, out, "entry:")
	assert.Contains(t, out, "ret i64 0")
}

func TestEmitArithmetic(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("main", types.TInt, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")
	x := f.CreateEntryAlloca(types.TInt, "x")
	_, err = b.CreateStore(ir.IntConst{Val: 2}, x)
	require.NoError(t, err)
	lv, err := b.CreateLoad(x)
	require.NoError(t, err)
	sum, err := b.CreateBinop("+", lv, ir.IntConst{Val: 3}, types.TInt)
	require.NoError(t, err)
	_, err = b.CreateRet(sum)
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "= alloca i64")
	assert.Contains(t, out, "store i64 2,")
	assert.Contains(t, out, "= load i64,")
	assert.Contains(t, out, "= add i64")
}

func TestEmitExternalDeclare(t *testing.T) {
	m := ir.NewModule("t")
	_, err := m.CreateFunction("helper", types.TVoid, []types.Type{types.TInt}, true)
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "declare void @helper(i64 %v0)")
	assert.NotContains(t, out, "define")
}

func TestEmitStringGlobalEscaping(t *testing.T) {
	m := ir.NewModule("t")
	m.CreateString("hi\"\\")

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, `c"hi\22\5C\00"`)
	assert.Contains(t, out, "[5 x i8]")
}

func TestEmitMutableGlobal(t *testing.T) {
	m := ir.NewModule("t")
	_, err := m.CreateGlobal("counter", types.TInt, ir.IntConst{Val: 7})
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "@counter = global i64 7")
}

func TestEmitNameMangling(t *testing.T) {
	m := ir.NewModule("t")
	_, err := m.CreateFunction("weird-name", types.TVoid, nil, true)
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "@weird_name")
	assert.NotContains(t, out, "weird-name")
}

func TestEmitVoidCallAndRetVoid(t *testing.T) {
	m := ir.NewModule("t")
	helper, err := m.CreateFunction("helper", types.TVoid, nil, true)
	require.NoError(t, err)
	main, err := m.CreateFunction("main", types.TVoid, nil, false)
	require.NoError(t, err)
	entry := main.CreateBlock("entry")
	_, err = entry.CreateCall(helper, nil)
	require.NoError(t, err)
	_, err = entry.CreateRetVoid()
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "call void @helper()")
	assert.Contains(t, out, "ret void")
}

func TestEmitComparisonAndBranch(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("main", types.TInt, nil, false)
	require.NoError(t, err)
	entry := f.CreateBlock("entry")
	thenB := f.CreateBlock("")
	elseB := f.CreateBlock("")
	cond, err := entry.CreateCmp("lt", ir.IntConst{Val: 1}, ir.IntConst{Val: 2})
	require.NoError(t, err)
	_, err = entry.CreateCBr(cond, thenB, elseB)
	require.NoError(t, err)
	_, err = thenB.CreateRet(ir.IntConst{Val: 1})
	require.NoError(t, err)
	_, err = elseB.CreateRet(ir.IntConst{Val: 0})
	require.NoError(t, err)

	out, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Contains(t, out, "icmp slt i64 1, 2")
	assert.True(t, strings.Contains(out, "br i1"))
}

func TestEmitIdempotent(t *testing.T) {
	m := ir.NewModule("t")
	f, err := m.CreateFunction("main", types.TInt, nil, false)
	require.NoError(t, err)
	b := f.CreateBlock("entry")
	_, err = b.CreateRet(ir.IntConst{Val: 0})
	require.NoError(t, err)

	out1, err := emit.Emit(m)
	require.NoError(t, err)
	out2, err := emit.Emit(m)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}
