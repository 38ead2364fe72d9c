// main.go is the compiler driver: spec.md ch.5's "each pipeline stage runs to completion on its input
// before the next begins" pipeline, wired end to end. Grounded on VSLC's own main.go run() function,
// replaced stage for stage: frontend.Parse -> frontend.NewParser(...).Parse(), ir.Optimise/GenerateSymTab/
// ValidateTree -> sema.Analyzer, lir.GenLIR/backend.GenerateAssembler -> lower.Lower + emit.Emit, with
// VSLC's channel-fan-in output writer (util.ListenWrite) dropped along with the rest of its concurrency
// model (spec.md ch.5 fixes the core pipeline as single-threaded).
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"adanc/src/ast"
	"adanc/src/backend"
	"adanc/src/diag"
	"adanc/src/emit"
	"adanc/src/frontend"
	"adanc/src/ir"
	"adanc/src/lower"
	"adanc/src/sema"
	"adanc/src/util"
)

// run drives the compiler from source text to whatever -s/-a/-e selects as the final artifact.
// Behaviour is entirely determined by the util.Options bag ParseArgs built.
func run(opt util.Options) error {
	if opt.Arch != "" {
		return backend.GenerateAssembler(opt)
	}

	src, err := util.ReadSource(opt)
	if err != nil {
		return errors.Wrap(err, "could not read source code")
	}

	if opt.TokenStream {
		out, closer, err := util.OpenOutput(opt)
		if err != nil {
			return errors.Wrap(err, "could not open output destination")
		}
		if closer != nil {
			defer closer.Close()
		}
		sink := diag.New(opt.WarningsAsErrors, opt.SuppressWarnings, opt.Verbose)
		frontend.PrintTokenStream(out, opt.Src, src, sink)
		out.Flush()
		sink.Flush(os.Stderr)
		if sink.HasErrors() {
			return errors.New("lexical error")
		}
		return nil
	}

	sink := diag.New(opt.WarningsAsErrors, opt.SuppressWarnings, opt.Verbose)
	defer func() {
		summary := sink.Summary()
		sink.Flush(os.Stderr)
		if opt.Verbose {
			fmt.Fprintln(os.Stderr, summary)
		}
	}()

	prog := frontend.NewParser(opt.Src, src, sink).Parse()
	if sink.HasErrors() {
		return errors.New("parse error")
	}

	root := filepath.Dir(opt.Src)
	search := util.NewSearchPath(root, opt.Include)
	a := sema.NewAnalyzer(sink, search, reparse(sink), readImport)
	a.Analyze(opt.Src, prog)
	if sink.HasErrors() {
		return errors.New("semantic error")
	}

	m, err := lower.Lower(moduleName(opt.Src), prog, a.Signatures())
	if err != nil {
		return errors.Wrap(err, "lowering error")
	}

	if err := ir.ValidateModule(m); err != nil {
		return errors.Wrap(err, "internal error: module failed validation")
	}

	text, err := emit.Emit(m)
	if err != nil {
		return errors.Wrap(err, "emission error")
	}

	if opt.Verbose {
		fmt.Fprintln(os.Stderr, "--- LLVM IR ---")
		fmt.Fprintln(os.Stderr, text)
	}

	if opt.EmitAsm {
		out, closer, err := util.OpenOutput(opt)
		if err != nil {
			return errors.Wrap(err, "could not open output destination")
		}
		if closer != nil {
			defer closer.Close()
		}
		if _, err := out.WriteString(text); err != nil {
			return errors.Wrap(err, "could not write output")
		}
		return out.Flush()
	}

	return driveToolchain(opt, text)
}

// reparse returns the sema.ParseFunc collaborator that re-parses an imported library's source,
// reporting any syntax errors it finds to the same sink the importing translation unit uses.
func reparse(sink *diag.Sink) sema.ParseFunc {
	return func(file, source string) *ast.Node {
		return frontend.NewParser(file, source, sink).Parse()
	}
}

// readImport is the sema.ReadFunc collaborator: a thin os.ReadFile wrapper, kept separate from
// util.ReadSource because an import's path is already resolved (never stdin).
func readImport(path string) (string, error) {
	b, err := ioutil.ReadFile(path)
	return string(b), err
}

// moduleName derives the LLVM module identifier from a source path: the base name, extension stripped.
func moduleName(srcPath string) string {
	base := filepath.Base(srcPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// driveToolchain hands emitted LLVM text to the external toolchain spec.md ch.6 names (clang/llvm-as),
// producing an object file (-a) or, by default, a linked executable (-e). Out of scope for this
// translation pipeline is llvm-link's multi-module linking (spec.md ch.1 scopes the CORE to a single
// source file per compilation); llvm-as is still exercised, converting the emitted text to bitcode
// before clang turns it into the requested artifact.
func driveToolchain(opt util.Options, llText string) error {
	llFile, err := ioutil.TempFile("", "adanc-*.ll")
	if err != nil {
		return errors.Wrap(err, "could not create temporary IR file")
	}
	defer os.Remove(llFile.Name())
	if _, err := llFile.WriteString(llText); err != nil {
		llFile.Close()
		return errors.Wrap(err, "could not write temporary IR file")
	}
	if err := llFile.Close(); err != nil {
		return errors.Wrap(err, "could not close temporary IR file")
	}

	bcFile := strings.TrimSuffix(llFile.Name(), ".ll") + ".bc"
	if err := runTool("llvm-as", llFile.Name(), "-o", bcFile); err != nil {
		return err
	}
	defer os.Remove(bcFile)

	if opt.EmitObject {
		return runTool("clang", "-c", bcFile, "-o", opt.Out)
	}
	return runTool("clang", bcFile, "-o", opt.Out)
}

// runTool execs an external toolchain binary, surfacing its stderr on failure (spec.md ch.6 treats the
// linker/bitcode tools as external collaborators; this is the entirety of the driver's contract with them).
func runTool(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s failed: %s", name, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// dispatch is what util.NewRootCommand invokes once argument parsing has produced an Options bag: the
// -t escape hatch for the internal test suite, otherwise the real compile pipeline.
func dispatch(opt util.Options) error {
	if opt.RunTests {
		return runTool("go", "test", "./...")
	}
	return run(opt)
}

func main() {
	util.LoadEnv()

	cmd := util.NewRootCommand(dispatch)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
