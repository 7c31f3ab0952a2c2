// Package cfg defines the control-flow-graph query oracle the
// generator-lowering core consumes (spec §9: "the pass makes two CFG
// queries... any CFG backend that answers these two predicates
// correctly suffices"), plus a default reachability-based
// implementation good enough to back those two predicates without a
// full CFG builder, which spec.md explicitly treats as an external
// collaborator the pass does not implement itself.
package cfg

import "github.com/dispatchrun/genlower/ast"

// Oracle answers the two CFG questions the pass needs.
type Oracle interface {
	// ReachesEnd reports whether control can fall off the end of body
	// (equivalently: whether a `return` appended immediately after the
	// last statement of body would have a non-empty set of in-edges).
	ReachesEnd(body *ast.Node) bool

	// SingleEntry reports whether caseBody, a body of one arm of
	// switchNode, is reachable only by explicitly matching its own
	// case label — i.e. no preceding case can fall through into it.
	SingleEntry(switchNode, caseBody *ast.Node) bool
}

// Default is a structural reachability oracle: no interprocedural
// analysis, no data-flow, just "can this statement list fall off its
// own end". It is intentionally simple (see spec §9's note that a
// reimplementation "may substitute a simpler reachability analysis").
type Default struct{}

var _ Oracle = Default{}

func (Default) ReachesEnd(body *ast.Node) bool {
	return canFallThrough(body)
}

func (Default) SingleEntry(switchNode, caseBody *ast.Node) bool {
	idx := -1
	for i, c := range switchNode.Children {
		if c == caseBody || c.Body == caseBody {
			idx = i
			break
		}
	}
	if idx <= 0 {
		// The first case has no predecessor that could fall into it; a
		// case we can't locate is conservatively reported as not
		// single-entry.
		return idx == 0
	}
	prev := switchNode.Children[idx-1]
	return !canCaseFallThrough(prev)
}

// canFallThrough reports whether control can reach the end of stmt
// without an unconditional return/throw/break/continue/infinite loop.
func canFallThrough(stmt *ast.Node) bool {
	if stmt == nil {
		return true
	}
	switch stmt.Kind {
	case ast.Return, ast.Throw, ast.Continue:
		return false
	case ast.Break:
		// A break always exits *something*; from the perspective of
		// the block containing it, control does not fall through past
		// it to the next statement.
		return false
	case ast.Block:
		for _, s := range stmt.Children {
			if !canFallThrough(s) {
				return false
			}
		}
		return true
	case ast.If:
		if stmt.Else == nil {
			return true // the implicit empty else always falls through
		}
		return canFallThrough(stmt.Then) || canFallThrough(stmt.Else)
	case ast.Try:
		if canFallThrough(stmt.Body) {
			return true
		}
		if stmt.CatchClause != nil && canFallThrough(stmt.CatchClause.Body) {
			return true
		}
		if stmt.FinallyBody != nil {
			return canFallThrough(stmt.FinallyBody)
		}
		return false
	case ast.Label:
		return canFallThrough(stmt.Body)
	case ast.For, ast.ForIn, ast.While:
		// A loop whose condition can become false falls through; in
		// the absence of constant-condition analysis, assume it can
		// (this is the conservative direction: it only makes
		// shouldAddFinalJump more likely to be true, never less,
		// which is the documented conservative default for §9b).
		return true
	case ast.DoWhile:
		return canFallThrough(stmt.Body)
	case ast.Switch:
		if len(stmt.Children) == 0 {
			return true
		}
		hasDefault := false
		for _, c := range stmt.Children {
			if c.Test == nil {
				hasDefault = true
			}
			if canCaseFallThrough(c) {
				return true
			}
		}
		return !hasDefault
	default:
		return true
	}
}

func canCaseFallThrough(caseNode *ast.Node) bool {
	for _, s := range caseNode.Children {
		if !canFallThrough(s) {
			return false
		}
	}
	return true
}
