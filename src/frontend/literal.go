package frontend

import "strconv"

// parseIntLiteral converts a lexed integer lexeme to its int64 value. The lexer guarantees val matches
// [0-9]+, so the only possible error is overflow, in which case the literal saturates to MaxInt64;
// no diagnostic is reported for the overflow.
func parseIntLiteral(val string) int64 {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 1<<63 - 1
	}
	return n
}

// parseFloatLiteral converts a lexed float lexeme ([0-9]+.[0-9]+) to its float64 value.
func parseFloatLiteral(val string) float64 {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}
