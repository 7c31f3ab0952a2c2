package generators

import "github.com/dispatchrun/genlower/ast"

// MarkerPropagator is a post-order walk of a detached function body
// (never descending into nested function definitions) that sets
// generatorMarker=true on every yield/yieldAll node and propagates the
// bit upward: a node's marker is the OR of its children's markers.
// Afterwards, any node with marker==false may be emitted verbatim by
// UnmarkedSubtreeFixer.
//
// Built on ast.Apply: its post callback only fires once every child
// (and every descendant under it) has already run its own post
// callback, so by the time a node's callback runs here, each of its
// direct children already carries its final marker bit — the bottom-up
// order this propagation needs. Nested function definitions (the
// exception spec §4.1 calls out) never reach the callback at all:
// Apply's own traversal skips Function-kind nodes outright, and an
// untouched node's marker defaults to false, which is the only value a
// nested generator's *original* body could matter for anyway — it is
// lowered into its own driver (spec §4.4, "nested generators are
// lowered first") before the enclosing body is ever marked.
func MarkerPropagator(body *ast.Node) {
	ast.Apply(body, nil, func(c *ast.Cursor) bool {
		n := c.Node()
		marked := n.IsYield() || n.IsYieldAll()
		for _, ch := range n.Children {
			if ch != nil && ch.Marker() {
				marked = true
			}
		}
		for _, ch := range n.Args {
			if ch != nil && ch.Marker() {
				marked = true
			}
		}
		for _, ch := range n.Declarators {
			if ch != nil && ch.Marker() {
				marked = true
			}
		}
		for _, slot := range n.ChildSlots() {
			if *slot != nil && (*slot).Marker() {
				marked = true
			}
		}
		n.SetMarker(marked)
		return true
	})
}
