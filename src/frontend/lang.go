// lang.go holds the reserved word table. Grounded on VSLC's frontend/lang.go: keywords indexed by
// lexeme length, since indexing by length then scanning the (short) bucket beats a map for a table
// this small.

package frontend

type reservedWord struct {
	val string
	typ Kind
}

// rw holds every reserved ADAN word, indexed by (length - 2).
var rw = [...][]reservedWord{
	// 2
	{
		{"if", If},
	},
	// 3
	{
		{"fun", Fun},
		{"set", Set},
		{"for", For},
		{"i32", KwI32},
		{"i64", KwI64},
		{"u32", KwU32},
		{"u64", KwU64},
		{"f64", KwF64},
	},
	// 4
	{
		{"else", Else},
		{"true", BoolLit},
		{"null", NullLit},
		{"char", KwChar},
		{"void", KwVoid},
		{"bool", KwBool},
	},
	// 5
	{
		{"while", While},
		{"break", Break},
		{"false", BoolLit},
		{"const", Const},
	},
	// 6
	{
		{"return", Return},
		{"import", Import},
		{"struct", Struct},
		{"string", KwString},
	},
	// 7
	{
		{"program", Program},
	},
	// 8
	{
		{"continue", Continue},
	},
}

// isKeyword reports whether s is a reserved ADAN word and, if so, its token Kind.
func isKeyword(s string) (bool, Kind) {
	if len(s) < 2 || len(s) > len(rw)+1 {
		return false, Identifier
	}
	for _, e := range rw[len(s)-2] {
		if e.val == s {
			return true, e.typ
		}
	}
	return false, Identifier
}
