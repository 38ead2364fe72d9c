// options.go defines the compiler's configuration bag and the command line surface that populates it.
// Flag parsing itself is treated as an external collaborator (spec.md ch.1): Options is a plain data bag,
// and ParseArgs is the thin adapter between pflag/cobra and that bag.

package util

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds every setting the compiler pipeline consults. It carries VSLC's Options shape forward,
// extended with the richer CLI surface spec.md ch.6 requires.
type Options struct {
	Src     string   // Path to source file. Defaults to main.adn.
	Out     string   // Path to output file. Defaults to a.out.
	Include []string // Library search path list, appended to by -I/--include.

	Threads int // Thread count. Kept for CLI compatibility; the core pipeline itself is single-threaded (spec.md ch.5).

	Help    bool // Print usage and exit.
	Verbose bool // Enable info diagnostics and compiler statistics.

	TokenStream bool // Output token stream and exit (--tokens).

	OptLevel int // Optimisation level, 0-3.

	EmitAsm    bool // Stop after producing target (LLVM) text.
	EmitObject bool // Stop after producing an object file.
	EmitExe    bool // Drive the linker to produce an executable. Default behaviour.

	// Arch requests direct target-architecture assembly instead of LLVM text, the one thing spec.md
	// ch.1 explicitly scopes out ("the repository contains stubs; LLVM text is the actual
	// code-generation target"). Not part of spec.md ch.6's CLI table; present only so
	// backend.GenerateAssembler's stub has something to report against, rather than silently doing
	// nothing the way VSLC's zero-value TargetArch did.
	Arch string

	WarningsAsErrors bool // Promote warnings to errors.
	SuppressWarnings bool // Hide warnings unless already promoted to errors.

	RunTests bool // Run internal tests (-t) instead of compiling.
}

// ---------------------
// ----- Constants -----
// ---------------------

const defaultSrc = "main.adn"
const defaultOut = "a.out"
const appVersion = "adan compiler 1.0"
const maxThreads = 64

// FlagErrUnknown and FlagErrMissingValue mirror the FLAG_ERR_* taxonomy of original_source/source/driver/flags.c.
var (
	FlagErrUnknown      = fmt.Errorf("FLAG_ERR_UNKNOWN")
	FlagErrMissingValue = fmt.Errorf("FLAG_ERR_MISSING_VALUE")
)

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options bag.
// Both short and long flag forms are accepted, "--name=value" is equivalent to "--name value", and clustered
// short booleans (-vh) work because pflag.ParseErrorsWhitelist/shorthand parsing supports it natively -
// exactly the surface spec.md ch.6 specifies, without VSLC's hand written switch-loop.
func ParseArgs(args []string) (Options, error) {
	opt := Options{
		Src:     defaultSrc,
		Out:     defaultOut,
		Threads: 1,
	}

	fs := pflag.NewFlagSet("adanc", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = false
	fs.Usage = func() {}
	var errBuf strings.Builder
	fs.SetOutput(&errBuf)

	fs.BoolVarP(&opt.Help, "help", "h", false, "print usage and exit")
	fs.BoolVarP(&opt.Verbose, "verbose", "v", false, "enable info diagnostics")
	fs.StringVarP(&opt.Src, "input", "i", defaultSrc, "source file")
	fs.StringVarP(&opt.Out, "output", "o", defaultOut, "output file")
	fs.StringArrayVarP(&opt.Include, "include", "I", nil, "append to library search path list")
	fs.IntVar(&opt.OptLevel, "O", 0, "optimisation level 0-3")
	fs.BoolVarP(&opt.EmitAsm, "emit-asm", "s", false, "stop after producing target text")
	fs.BoolVarP(&opt.EmitObject, "emit-object", "a", false, "stop after producing object file")
	fs.BoolVarP(&opt.EmitExe, "emit-exe", "e", false, "drive the linker (default)")
	fs.BoolVarP(&opt.WarningsAsErrors, "warnings-as-errors", "w", false, "promote warnings to errors")
	fs.BoolVarP(&opt.SuppressWarnings, "suppress-warnings", "S", false, "suppress warning diagnostics")
	fs.BoolVarP(&opt.RunTests, "tests", "t", false, "run internal tests")
	fs.BoolVarP(&opt.TokenStream, "tokens", "", false, "output the token stream and exit")
	fs.StringVar(&opt.Arch, "arch", "", "target architecture for direct assembly generation (unsupported; reports why)")
	version := fs.BoolP("version", "V", false, "print application version and exit")

	// -O0 .. -O3 are accepted as their own boolean long flags (cobra/pflag convention for clustered
	// numeric levels), re-mapped onto opt.OptLevel.
	var o0, o1, o2, o3 bool
	fs.BoolVar(&o0, "O0", false, "optimisation level 0")
	fs.BoolVar(&o1, "O1", false, "optimisation level 1")
	fs.BoolVar(&o2, "O2", false, "optimisation level 2")
	fs.BoolVar(&o3, "O3", false, "optimisation level 3")

	if err := fs.Parse(args); err != nil {
		kind := FlagErrUnknown
		if strings.Contains(err.Error(), "needs an argument") {
			kind = FlagErrMissingValue
		}
		if errBuf.Len() > 0 {
			return opt, fmt.Errorf("%w: %s", kind, strings.TrimSpace(errBuf.String()))
		}
		return opt, fmt.Errorf("%w: %s", kind, err)
	}

	if opt.Help {
		printHelp(fs)
		return opt, nil
	}
	if *version {
		fmt.Println(appVersion)
		return opt, nil
	}

	switch {
	case o3:
		opt.OptLevel = 3
	case o2:
		opt.OptLevel = 2
	case o1:
		opt.OptLevel = 1
	case o0:
		opt.OptLevel = 0
	}
	if opt.OptLevel < 0 || opt.OptLevel > 3 {
		return opt, fmt.Errorf("%w: optimisation level must be in range [0, 3]", FlagErrMissingValue)
	}

	if !opt.EmitAsm && !opt.EmitObject && !opt.EmitExe {
		opt.EmitExe = true // Default behaviour: drive the linker.
	}

	// Positional argument, if any, overrides -i/--input (mirrors VSLC: last bare argument is the source path).
	if rest := fs.Args(); len(rest) > 0 {
		opt.Src = rest[len(rest)-1]
	}

	if opt.Threads < 1 {
		opt.Threads = 1
	} else if opt.Threads > maxThreads {
		opt.Threads = maxThreads
	}

	return opt, nil
}

// printHelp prints a helpful usage message to stdout via the supplied flag set.
func printHelp(fs *pflag.FlagSet) {
	fmt.Println(appVersion)
	fmt.Println("usage: adanc [flags] [source]")
	fmt.Println(fs.FlagUsages())
}

// NewRootCommand wraps ParseArgs in a cobra.Command so adanc presents the usual Go-ecosystem CLI shape
// (usage generation, -h/--help, argument validation) on top of the same Options bag. cobra only owns
// argv[0]/usage framing here; the actual flag definitions and defaulting rules live in ParseArgs so there
// is exactly one place that knows what adanc's CLI surface means.
func NewRootCommand(run func(Options) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "adanc [flags] [source]",
		Short:              "adanc compiles ADAN source to LLVM textual IR",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true, // ParseArgs parses; cobra just dispatches.
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := ParseArgs(args)
			if err != nil {
				return err
			}
			if opt.Help {
				return nil
			}
			return run(opt)
		},
	}
	return cmd
}
