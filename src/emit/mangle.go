package emit

import "strings"

// mangle filters name down to LLVM's safe identifier character set, replacing anything else with
// an underscore (spec.md ch.4.9: "external and internal names are filtered to [A-Za-z0-9_], with
// non-conforming characters replaced by _"). ADAN identifiers are already ASCII words per the
// lexer's grammar, so this only ever fires on synthesized names (".str0", module paths with "/").
func mangle(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
