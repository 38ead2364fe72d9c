package emit

import "fmt"

// escapeString renders s as the body of an LLVM c"..." string constant, hex-escaping the
// backslash, the double quote, and every non-printable-ASCII byte, and appending the trailing NUL
// spec.md ch.4.9 requires every string global to carry. Returns the escaped text and the total
// byte count (including the NUL) for the constant's [N x i8] array length.
func escapeString(s string) (string, int) {
	var sb []byte
	b := []byte(s)
	for _, c := range b {
		switch {
		case c == '\\':
			sb = append(sb, []byte("\\5C")...)
		case c == '"':
			sb = append(sb, []byte("\\22")...)
		case c < 0x20 || c >= 0x7F:
			sb = append(sb, []byte(fmt.Sprintf("\\%02X", c))...)
		default:
			sb = append(sb, c)
		}
	}
	sb = append(sb, []byte("\\00")...)
	return string(sb), len(b) + 1
}
