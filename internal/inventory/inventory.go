package inventory

// Kind classifies a file's role in the analyzed tree.
type Kind string

const (
	KindSource    Kind = "source"
	KindConfig    Kind = "config"
	KindBuild     Kind = "build"
	KindTest      Kind = "test"
	KindFixture   Kind = "fixture"
	KindVendored  Kind = "vendored"
	KindGenerated Kind = "generated"
	KindDoc       Kind = "doc"
	KindOther     Kind = "other"
)

// Production reports whether evidence from this kind of file counts as
// production evidence. Test doubles, fixtures, vendored trees, and generated
// code are pollution sources for the evidence-pollution checker.
func (k Kind) Production() bool {
	switch k {
	case KindTest, KindFixture, KindVendored, KindGenerated:
		return false
	}
	return true
}

// File is one classified entry in the scan inventory. Paths are
// slash-separated and relative to the inventory root.
type File struct {
	Path string
	Size int64
	Kind Kind
}

// Inventory is the bounded, classified output of the tree scanner.
type Inventory struct {
	Root       string
	Files      []File
	TotalBytes int64
	Skipped    int // unreadable or binary files passed over
}

// ProductionShare returns the fraction of the given paths that map to
// production files in this inventory. Unknown paths count as production.
func (inv Inventory) ProductionShare(paths []string) float64 {
	if len(paths) == 0 {
		return 1
	}
	kinds := make(map[string]Kind, len(inv.Files))
	for _, f := range inv.Files {
		kinds[f.Path] = f.Kind
	}
	prod := 0
	for _, p := range paths {
		k, ok := kinds[p]
		if !ok || k.Production() {
			prod++
		}
	}
	return float64(prod) / float64(len(paths))
}
