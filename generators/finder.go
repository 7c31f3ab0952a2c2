package generators

import "github.com/dispatchrun/genlower/ast"

// YieldFinder returns the unique yield/yieldAll node in subtree,
// without crossing nested function boundaries. After YieldExposer runs
// on a statement, exactly one such node must remain per exposed
// statement; zero or more than one is a bug in this pass, not a user
// error, so it is reported as an InternalError.
func YieldFinder(subtree *ast.Node) (*ast.Node, error) {
	var found []*ast.Node
	ast.WalkBody(subtree, func(n *ast.Node) bool {
		if n.IsYield() || n.IsYieldAll() {
			found = append(found, n)
		}
		return true
	})
	switch len(found) {
	case 0:
		return nil, internalf("YieldFinder: no yield found in %s", subtree.Kind)
	case 1:
		return found[0], nil
	default:
		return nil, internalf("YieldFinder: %d yields found in %s, want exactly 1", len(found), subtree.Kind)
	}
}
