// lexer.go implements the ADAN lexer (spec.md ch.4.2). Grounded on VSLC's Rob-Pike-style state-function
// scanner (frontend/lexer.go/lexerStates.go): the same stateFunc/next/backup/peek/accept/acceptRun
// machinery, with one deliberate change — VSLC ran the lexer on its own goroutine and fed tokens to the
// parser over a channel, because its goyacc-generated parser expected a push-style Lex(*yySymType) int
// callback. spec.md ch.5 fixes the core pipeline as single-threaded and ch.4.5 has the parser pull two
// tokens of lookahead directly, so this lexer exposes a synchronous Next() instead of a channel: no
// goroutine, no select, same scanning logic.
package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"adanc/src/diag"
)

// stateFunc defines the lexer's current scanning state.
type stateFunc func(*lexer) stateFunc

const eof = 0

// lexer scans ADAN source text into a stream of Tokens, pulled one at a time via Next.
type lexer struct {
	file  string
	input string

	start       int // Start offset of the token being scanned.
	pos         int // Current offset in input.
	width       int // Width in bytes of the last rune returned by next.
	line        int // Current line, 1-indexed.
	startOnLine int // Column of the token being scanned.

	state stateFunc
	sink  *diag.Sink

	tok     Token
	emitted bool
	done    bool
}

// newLexer returns a lexer ready to scan src, reporting lexical errors to sink under the given file name.
func newLexer(file, src string, sink *diag.Sink) *lexer {
	return &lexer{
		file:        file,
		input:       src,
		line:        1,
		startOnLine: 1,
		state:       lexGlobal,
		sink:        sink,
	}
}

// Next returns the next Token in the input. EOF is a sticky terminal token: once reached, every
// subsequent call returns it again (spec.md ch.4.2).
func (l *lexer) Next() Token {
	if l.done {
		return l.tok
	}
	for {
		if l.state == nil {
			l.done = true
			return l.tok
		}
		l.state = l.state(l)
		if l.emitted {
			l.emitted = false
			if l.tok.Kind == EOF {
				l.done = true
			}
			return l.tok
		}
	}
}

// emit records a token of kind typ spanning [start,pos) and marks it ready for Next to return.
func (l *lexer) emit(kind Kind) {
	val := l.input[l.start:l.pos]
	l.tok = Token{Kind: kind, Val: val, Line: l.line, Col: l.startOnLine, Offset: l.start}
	l.startOnLine += utf8.RuneCountInString(val)
	l.start = l.pos
	l.emitted = true
}

// ignore discards the pending lexeme without emitting a token (whitespace, comments).
func (l *lexer) ignore() {
	l.startOnLine += utf8.RuneCountInString(l.input[l.start:l.pos])
	l.start = l.pos
}

// newline advances line bookkeeping past a consumed '\n'.
func (l *lexer) newline() {
	l.line++
	l.startOnLine = 1
}

// next returns the next rune in the input, advancing pos; it returns eof at end of input.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// backup steps back one rune. Must only be called once per call to next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, without consuming, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// accept consumes the next rune if it is in valid.
func (l *lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a maximal run of runes in valid.
func (l *lexer) acceptRun(valid string) {
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
}

// errorf reports a lexical diagnostic and emits an error token, after which the lexer halts. Reserved
// for failures with no sane resumption point (an unterminated string or block comment running off the
// end of the file) — anything recoverable mid-file uses errorTokenf instead.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	if l.sink != nil {
		l.sink.Errorf(l.file, l.line, l.startOnLine, diag.Lexer, format, args...)
	}
	l.tok = Token{Kind: Error, Val: fmt.Sprintf(format, args...), Line: l.line, Col: l.startOnLine, Offset: l.start}
	l.emitted = true
	return nil
}

// errorTokenf reports a diagnostic and emits an Error token for the lexeme scanned so far, the same way
// emit does for a real token, then lets the caller keep scanning (spec.md ch.4.2: "on unrecognized
// character, emit an error token carrying a descriptive message and advance one character; parsing
// continues"). Unlike errorf, the lexer is not halted — l.start/l.startOnLine advance past the bad
// lexeme exactly as emit's bookkeeping does, so the next Next() call resumes scanning normally.
func (l *lexer) errorTokenf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.sink != nil {
		l.sink.Errorf(l.file, l.line, l.startOnLine, diag.Lexer, "%s", msg)
	}
	l.tok = Token{Kind: Error, Val: msg, Line: l.line, Col: l.startOnLine, Offset: l.start}
	l.startOnLine += utf8.RuneCountInString(l.input[l.start:l.pos])
	l.start = l.pos
	l.emitted = true
}
