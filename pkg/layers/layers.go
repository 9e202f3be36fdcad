// Package layers resolves source files and imported module paths to
// architectural layer labels.
//
// A layer is a top-level directory under the scanned root. Two labels are
// reserved and never participate in rule evaluation: Root for package-level
// code (a file directly under the root, or an import of the package itself)
// and Other for anything outside the package or its declared layers.
package layers

import "strings"

// Reserved pseudo-layer labels.
const (
	Root  = "root"
	Other = "other"
)

// Names is the set of declared layer names.
type Names map[string]struct{}

// NewNames builds a Names set from a list of layer names.
func NewNames(names []string) Names {
	set := make(Names, len(names))

	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}

// Has reports whether name is a declared layer.
func (n Names) Has(name string) bool {
	_, ok := n[name]

	return ok
}

// IsReserved reports whether label is one of the reserved pseudo-layers.
func IsReserved(label string) bool {
	return label == Root || label == Other
}

// FileLayer maps a file path, relative to the scan root and slash-separated,
// to its layer label. A path with a single component sits directly in the
// root. Otherwise the first component decides: a declared layer name, or
// Other for undeclared directories.
func FileLayer(relPath string, declared Names) string {
	first, _, nested := strings.Cut(relPath, "/")
	if !nested {
		return Root
	}

	if declared.Has(first) {
		return first
	}

	return Other
}

// ImportLayer maps an imported dotted module path to its layer label,
// resolved against the package name. Only imports landing inside a declared
// layer of the package itself can ever carry a checkable layer; everything
// under the package that is not a declared layer is package-root code, and
// everything outside the package is Other.
func ImportLayer(module, packageName string, declared Names) string {
	if module == "" {
		return Other
	}

	if module == packageName {
		return Root
	}

	prefix := packageName + "."

	remainder, ok := strings.CutPrefix(module, prefix)
	if !ok {
		return Other
	}

	first, _, _ := strings.Cut(remainder, ".")
	if declared.Has(first) {
		return first
	}

	return Root
}
