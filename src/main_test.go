package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanc/src/diag"
	"adanc/src/frontend"
	"adanc/src/lower"
	"adanc/src/sema"
)

// program is a small but complete ADAN translation unit exercising the whole pipeline: a function
// declaration, a loop, and a call, which BenchmarkFullPipeline and TestFullPipelineCompiles both compile.
const program = `
fun add(a: i64, b: i64): i64 {
	return a + b;
}

fun main(): i64 {
	set total: i64 = 0;
	for (set i: i64 = 0; i < 10; i++) {
		total = add(total, i);
	}
	return total;
}
`

// compile runs the parse, analyze and lower stages the way run() does; unlike run() it does not call
// ir.ValidateModule or emit.Emit. A broken stage fails the test close to its source.
func compile(t testing.TB, src string) (*diag.Sink, error) {
	t.Helper()
	sink := diag.New(false, false, false)
	prog := frontend.NewParser("test.adan", src, sink)
	tree := prog.Parse()
	if sink.HasErrors() {
		return sink, nil
	}
	a := sema.NewAnalyzer(sink, nil, nil, nil)
	a.Analyze("test.adan", tree)
	if sink.HasErrors() {
		return sink, nil
	}
	_, err := lower.Lower("test", tree, a.Signatures())
	return sink, err
}

func TestFullPipelineCompiles(t *testing.T) {
	sink, err := compile(t, program)
	require.NoError(t, err)
	assert.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Records())
}

func TestModuleNameStripsExtension(t *testing.T) {
	assert.Equal(t, "main", moduleName("main.adn"))
	assert.Equal(t, "prog", moduleName("/a/b/prog.adn"))
}

// BenchmarkFullPipeline measures parse+analyze+lower throughput for a single translation unit,
// replacing VSLC's per-stage aarch64/LIR benchmarks now that the target is LLVM text rather than
// hand-written register allocation.
func BenchmarkFullPipeline(b *testing.B) {
	for n := 0; n < b.N; n++ {
		if _, err := compile(b, program); err != nil {
			b.Fatalf("pipeline error: %s", err)
		}
	}
}
