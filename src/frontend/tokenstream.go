// tokenstream.go implements the driver's --tokens flag (spec.md ch.6): run the lexer alone and
// print every token, without invoking the parser. Grounded on VSLC's own -t flag (frontend.Parse's
// sibling token-dump path), generalized to drive the new hand-written lexer instead of goyacc's
// generated scanner.

package frontend

import (
	"fmt"
	"io"

	"adanc/src/diag"
)

// PrintTokenStream lexes src and writes one line per token to w, stopping at EOF or the lexer's first
// Error token. Diagnostics (an unterminated string, say) are still reported to sink, same as during a
// real parse.
func PrintTokenStream(w io.Writer, file, src string, sink *diag.Sink) {
	l := newLexer(file, src, sink)
	for {
		t := l.Next()
		fmt.Fprintln(w, t)
		if t.Kind == EOF || t.Kind == Error {
			return
		}
	}
}
