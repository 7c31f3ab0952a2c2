package generators

import (
	"errors"

	"github.com/dispatchrun/genlower/ast"
	"github.com/dispatchrun/genlower/decompose"
)

// YieldExposer rewrites stmt so that, if it contains a yield buried
// inside a compound expression, the yield ends up standing alone as the
// right-hand side of a simple assignment to a compiler-generated
// temporary. It returns any statements that must be emitted immediately
// before stmt (in order); stmt itself is mutated in place to become the
// final, exposed form.
//
// Decomposition is delegated to dec, repeated until it reports no more
// work (done==true) or ErrUndecomposable, which this function turns
// into the user-facing diagnostic from spec §7.
//
// Every node exposer visits has its generatorMarker cleared; the caller
// is expected to re-run MarkerPropagator over the rewritten tree.
func YieldExposer(stmt *ast.Node, namer *ast.NameGen, dec decompose.Decomposer) (pre []*ast.Node, err error) {
	for {
		p, done, err := dec.Step(stmt, namer)
		if err != nil {
			if errors.Is(err, decompose.ErrUndecomposable) {
				return nil, errUndecomposable(stmt)
			}
			return nil, err
		}
		if p != nil {
			pre = append(pre, p)
		}
		if done {
			break
		}
	}
	clearMarkerBody(stmt)
	for _, p := range pre {
		clearMarkerBody(p)
	}
	return pre, nil
}

func clearMarkerBody(n *ast.Node) {
	ast.WalkBody(n, func(n *ast.Node) bool {
		n.SetMarker(false)
		return true
	})
}
