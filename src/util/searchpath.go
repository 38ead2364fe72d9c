// searchpath.go resolves stdlib import paths against the configured library search path list, per
// spec.md ch.6: "adan/<rel>" maps to "libs/<subpath-without-basename>/<basename>.adn" relative to the
// compilation root, consulting -I search paths in order, first hit wins, deduplicated by canonical form.

package util

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// StdlibPrefix is the import path prefix that marks a standard library import (spec.md ch.6).
const StdlibPrefix = "adan/"

// SearchPath resolves import paths to on-disk files and remembers which canonical roots have already
// been added, so each root appears once in the search order.
type SearchPath struct {
	roots []string
	seen  map[string]bool
}

// NewSearchPath builds a SearchPath from the compilation root, the -I/--include flags, and
// ADAN_PACKAGE_PATH (in this order of precedence: ADAN_PACKAGE_PATH entries are prepended, so they are
// consulted before the -I entries, and the -I entries before the compilation root's own libs/ directory).
func NewSearchPath(root string, includes []string) *SearchPath {
	sp := &SearchPath{seen: make(map[string]bool, 8)}
	if pp := PackagePath(); pp != "" {
		for _, p := range strings.Split(pp, string(os.PathListSeparator)) {
			sp.addRoot(p)
		}
	}
	for _, inc := range includes {
		sp.addRoot(inc)
	}
	sp.addRoot(filepath.Join(root, "libs"))
	return sp
}

// addRoot appends dir to the search roots if its canonical form has not already been added.
func (sp *SearchPath) addRoot(dir string) {
	if dir == "" {
		return
	}
	canon := filepath.Clean(dir)
	if sp.seen[canon] {
		return
	}
	sp.seen[canon] = true
	sp.roots = append(sp.roots, canon)
}

// NormalizeImport strips optional surrounding quotes from an import path literal.
func NormalizeImport(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"")
	return s
}

// Resolve maps a normalized "adan/<rel>" import path to an on-disk file. It returns the first existing
// match across the search roots, in order, or an error if none exists. Non-stdlib import paths (those not
// prefixed with StdlibPrefix) are looked up the same way against the same roots, with nothing stripped.
func (sp *SearchPath) Resolve(importPath string) (string, error) {
	rel := importPath
	if strings.HasPrefix(importPath, StdlibPrefix) {
		rel = strings.TrimPrefix(importPath, StdlibPrefix)
	}
	base := path.Base(rel)
	dir := path.Dir(rel)
	var want string
	if dir == "." {
		want = filepath.Join(base, base+".adn")
	} else {
		want = filepath.Join(dir, base+".adn")
	}

	for _, root := range sp.roots {
		candidate := filepath.Join(root, want)
		if ok, _ := doublestar.PathMatch(filepath.ToSlash(filepath.Join(root, "**", "*.adn")), filepath.ToSlash(candidate)); ok {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		// Fall back to a plain stat in case the root itself is not glob-shaped.
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", &ImportNotFoundError{Path: importPath, Roots: append([]string(nil), sp.roots...)}
}

// ImportNotFoundError reports that no search root contained the requested import.
type ImportNotFoundError struct {
	Path  string
	Roots []string
}

func (e *ImportNotFoundError) Error() string {
	return "import " + strconv.Quote(e.Path) + " not found in any of " + strings.Join(e.Roots, ", ")
}
