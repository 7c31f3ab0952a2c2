package generators

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dispatchrun/genlower/ast"
)

// TranspileAll lowers every generator function in fns concurrently,
// mirroring coroc's own per-package fan-out over discovered generator
// functions (coroc/compiler/compile.go's use of errgroup to compile
// multiple functions at once). Each function is an independent
// TranspilationContext, so there is no shared state to guard. The first
// error to occur cancels the group's context, so functions that have not
// started yet are skipped; TranspileAll waits for the rest and returns
// that first error with a nil result.
//
// ctx is honored only as a cancellation signal between functions still
// queued; a function already being lowered runs to completion, since
// FunctionTranspiler performs no I/O and has no natural cancellation
// point.
func TranspileAll(ctx context.Context, fns []*ast.Node, opts ...Option) ([]*ast.Node, error) {
	out := make([]*ast.Node, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			lowered, err := Transpile(fn, opts...)
			if err != nil {
				return err
			}
			out[i] = lowered
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
