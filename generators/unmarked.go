package generators

import "github.com/dispatchrun/genlower/ast"

// unmarkedFixer implements UnmarkedSubtreeFixer (spec §4.5): a walk over
// an unmarked statement subtree, never crossing nested function
// boundaries, that rewrites bare control transfers into jumps against
// the current case stack and hoists this/arguments/var/nested
// functions to program-body scope.
type unmarkedFixer struct {
	tc   *TranspilationContext
	root *Case

	breakSuppressors    int
	continueSuppressors int
}

// FixUnmarkedSubtree runs UnmarkedSubtreeFixer over stmt and returns the
// (possibly rewritten) statement tree to emit into the current case.
func FixUnmarkedSubtree(tc *TranspilationContext, stmt *ast.Node) (*ast.Node, error) {
	f := &unmarkedFixer{tc: tc}
	return f.fix(stmt)
}

func (f *unmarkedFixer) fix(n *ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Safe() {
		n.SetSafe(false)
		return n, nil
	}

	switch n.Kind {
	case ast.Return:
		val := n.X
		if val == nil {
			val = undefinedLiteral()
		}
		return ast.NewReturn(f.tc.RuntimeCall("return", val)), nil

	case ast.Break:
		return f.fixBreak(n)

	case ast.Continue:
		return f.fixContinue(n)

	case ast.This:
		f.tc.sawThis = true
		return ast.NewName(f.tc.namer.This()), nil

	case ast.Arguments:
		f.tc.sawArgs = true
		return ast.NewName(f.tc.namer.Arguments()), nil

	case ast.Var:
		return f.fixVar(n)

	case ast.Function:
		// Nested (non-generator) function declarations hoist to
		// program-body scope, preserved as-is; this fixer does not
		// descend into their bodies.
		f.tc.Hoist(n)
		return ast.NewEmpty(), nil

	case ast.For, ast.ForIn, ast.While, ast.DoWhile:
		f.breakSuppressors++
		f.continueSuppressors++
		defer func() { f.breakSuppressors--; f.continueSuppressors-- }()
		return f.fixChildren(n)

	case ast.Switch:
		f.breakSuppressors++
		defer func() { f.breakSuppressors-- }()
		return f.fixChildren(n)

	default:
		return f.fixChildren(n)
	}
}

func (f *unmarkedFixer) fixBreak(n *ast.Node) (*ast.Node, error) {
	if n.Label != "" {
		lc, ok := f.tc.Label(n.Label)
		if !ok {
			return nil, internalf("UnmarkedSubtreeFixer: unknown break label %q", n.Label)
		}
		return f.labeledJumpStatement(lc.Break), nil
	}
	if f.breakSuppressors > 0 {
		return n, nil
	}
	target, ok := f.tc.InnermostBreak()
	if !ok {
		return nil, internalf("UnmarkedSubtreeFixer: bare break with no enclosing case target")
	}
	return f.labeledJumpStatement(target), nil
}

func (f *unmarkedFixer) fixContinue(n *ast.Node) (*ast.Node, error) {
	if n.Label != "" {
		lc, ok := f.tc.Label(n.Label)
		if !ok || lc.Continue == nil {
			return nil, internalf("UnmarkedSubtreeFixer: unknown continue label %q", n.Label)
		}
		return f.labeledJumpStatement(lc.Continue), nil
	}
	if f.continueSuppressors > 0 {
		return n, nil
	}
	target, ok := f.tc.InnermostContinue()
	if !ok {
		return nil, internalf("UnmarkedSubtreeFixer: bare continue with no enclosing case target")
	}
	return f.labeledJumpStatement(target), nil
}

// labeledJumpStatement handles a break/continue, labeled or bare, which
// per §4.5 must run any intervening finally blocks before reaching a
// target outside the current one. A bare break/continue can cross an
// active finally just as well as a labeled one: nothing about omitting
// the label keeps the nearest enclosing loop/switch from being on the
// far side of a try/finally the break sits inside.
func (f *unmarkedFixer) labeledJumpStatement(target *Case) *ast.Node {
	var stmts []*ast.Node
	if f.tc.nestedFinallyBlockCount > 0 {
		stmts = f.tc.JumpThroughFinallyBlocks(target)
	} else {
		stmts = f.tc.Jump(target)
	}
	return ast.NewBlock(stmts...)
}

func (f *unmarkedFixer) fixVar(n *ast.Node) (*ast.Node, error) {
	var names []*ast.Node
	var assigns *ast.Node
	for _, d := range n.Declarators {
		names = append(names, ast.NewDeclarator(d.Name, nil))
		if d.X != nil {
			assign := ast.NewAssign("=", ast.NewName(d.Name), d.X)
			if assigns == nil {
				assigns = assign
			} else {
				assigns = ast.NewComma(assigns, assign)
			}
		}
	}
	f.tc.Hoist(ast.NewVar(names...))
	if assigns == nil {
		return ast.NewEmpty(), nil
	}
	return ast.NewExprStmt(assigns), nil
}

func (f *unmarkedFixer) fixChildren(n *ast.Node) (*ast.Node, error) {
	for i, c := range n.Children {
		fixed, err := f.fix(c)
		if err != nil {
			return nil, err
		}
		n.Children[i] = fixed
	}
	for i, c := range n.Args {
		fixed, err := f.fix(c)
		if err != nil {
			return nil, err
		}
		n.Args[i] = fixed
	}
	for _, slot := range n.ChildSlots() {
		fixed, err := f.fix(*slot)
		if err != nil {
			return nil, err
		}
		*slot = fixed
	}
	n.Link()
	return n, nil
}

func undefinedLiteral() *ast.Node { return ast.NewLiteral(nil) }
