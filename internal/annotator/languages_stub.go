//go:build !cgo

package annotator

// NewDefaultRegistry returns an empty registry when cgo is unavailable; exports then
// render without code details instead of failing to build the tree-sitter bindings.
func NewDefaultRegistry() *Registry {
	return NewRegistry()
}
