// Package decompose implements the external ExpressionDecomposer service
// that spec.md's YieldExposer (§4.2) delegates to: given a statement
// whose expression embeds a `yield`, pull the offending pieces out into
// preceding temporaries until the yield stands alone as the right-hand
// side of a simple assignment. spec.md treats this service as an
// out-of-scope external collaborator ("this core consumes such a
// service"); this package is the concrete, necessarily-simplified
// implementation that makes the core runnable end to end.
package decompose

import (
	"errors"

	"github.com/dispatchrun/genlower/ast"
)

// ErrUndecomposable is returned when Step cannot make further progress.
// The exposer turns this into the user-visible diagnostic from spec §7.
var ErrUndecomposable = errors.New("decompose: undecomposable expression")

// Decomposer is the service YieldExposer consumes.
type Decomposer interface {
	// Step performs one unit of decomposition work on stmt's root
	// expression (an ExprStmt, Return, Throw, or Declarator). It
	// returns a statement to insert immediately before stmt (nil if
	// none), and whether no further hoisting is needed (done): stmt's
	// root expression is free of any yield/yieldAll, or is itself the
	// yield/yieldAll. Callers should keep calling Step, placing each pre
	// after the previously returned ones and before stmt, until done is
	// true or an error occurs.
	Step(stmt *ast.Node, namer *ast.NameGen) (pre *ast.Node, done bool, err error)
}

// Default is a structural decomposer sufficient for the shapes this
// core's own statement lowerings can produce: a yield nested at
// arbitrary depth inside Binary/Comma/Assign/Unary/Call expressions,
// assuming ordinary left-to-right evaluation order. It does not model
// host-language-specific side-effect subtleties (e.g. exceptions raised
// by a hoisted subexpression reordering observable behavior) — per
// spec.md, a real host compiler's decomposer already solves this more
// generally; this default exists so the core is independently testable.
type Default struct{}

var _ Decomposer = Default{}

func (Default) Step(stmt *ast.Node, namer *ast.NameGen) (*ast.Node, bool, error) {
	get, _, ok := rootSlot(stmt)
	if !ok {
		return nil, false, ErrUndecomposable
	}
	root := get()
	if root == nil {
		return nil, true, nil
	}

	yieldNode := ast.Find(root, isYieldish)
	if yieldNode == nil {
		return nil, true, nil
	}
	if root == yieldNode {
		return nil, true, nil // stmt's whole expression *is* the yield
	}

	path := pathTo(root, yieldNode)
	if path == nil {
		return nil, false, ErrUndecomposable
	}

	// Hoist the first not-yet-safe sibling evaluated before the branch
	// that leads to the yield, scanning from the root down (so the
	// earliest-evaluated offender is extracted first, preserving
	// relative order among hoisted temporaries).
	for i := 0; i < len(path)-1; i++ {
		parent, child := path[i], path[i+1]
		switch parent.Kind {
		case ast.Binary, ast.Comma, ast.Assign:
			if parent.Right == child && containsUnsafeOrder(parent.Left) {
				return hoist(namer, &parent.Left, parent), false, nil
			}
		case ast.Call:
			idx := argIndex(parent, child)
			for j := 0; j < idx; j++ {
				if containsUnsafeOrder(parent.Args[j]) {
					return hoist(namer, &parent.Args[j], parent), false, nil
				}
			}
		case ast.Unary:
			// Unary has a single operand; nothing to hoist ahead of it.
		}
	}

	// No earlier-evaluated siblings remain: hoist the yield itself.
	// replaceAt must run first: it finds yieldNode by identity in its
	// parent's operand slot, and Detach would have already nilled that
	// slot out from under it.
	tmp := namer.Temp()
	name := ast.NewName(tmp)
	replaceAt(path[len(path)-2], yieldNode, name)
	pre := ast.NewVar(ast.NewDeclarator(tmp, yieldNode))
	return pre, false, nil
}

// hoist extracts *slot into a fresh temporary declared just before
// stmt, replacing *slot with a reference to the temporary.
func hoist(namer *ast.NameGen, slot **ast.Node, parent *ast.Node) *ast.Node {
	tmp := namer.Temp()
	hoisted := *slot
	hoisted.Detach()
	*slot = ast.NewName(tmp)
	parent.Link()
	return ast.NewVar(ast.NewDeclarator(tmp, hoisted))
}

// rootSlot returns get/set closures for the single expression field
// that can embed a yield, depending on stmt's kind.
func rootSlot(stmt *ast.Node) (get func() *ast.Node, set func(*ast.Node), ok bool) {
	switch stmt.Kind {
	case ast.ExprStmt, ast.Return, ast.Throw, ast.Declarator:
		return func() *ast.Node { return stmt.X },
			func(n *ast.Node) { stmt.X = n; stmt.Link() },
			true
	}
	return nil, nil, false
}

func isYieldish(n *ast.Node) bool { return n.IsYield() || n.IsYieldAll() }

// pathTo returns the chain of nodes from root to target (inclusive),
// following only the operand fields a decomposable expression can use.
func pathTo(root, target *ast.Node) []*ast.Node {
	var path []*ast.Node
	var walk func(n *ast.Node) bool
	walk = func(n *ast.Node) bool {
		path = append(path, n)
		if n == target {
			return true
		}
		for _, c := range exprOperands(n) {
			if walk(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !walk(root) {
		return nil
	}
	return path
}

func exprOperands(n *ast.Node) []*ast.Node {
	var out []*ast.Node
	add := func(c *ast.Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	add(n.Left)
	add(n.Right)
	add(n.X)
	out = append(out, n.Args...)
	return out
}

func argIndex(call, arg *ast.Node) int {
	for i, a := range call.Args {
		if a == arg {
			return i
		}
	}
	return -1
}

// containsUnsafeOrder reports whether e must run before a suspension
// point to preserve source order, i.e. whether it is anything other
// than a side-effect-free read (name/literal/this/arguments).
func containsUnsafeOrder(e *ast.Node) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.Name, ast.Literal, ast.This, ast.Arguments:
		return false
	default:
		return true
	}
}

// replaceAt substitutes repl for old wherever it sits among parent's
// operand fields.
func replaceAt(parent, old, repl *ast.Node) {
	switch {
	case parent.Left == old:
		parent.Left = repl
	case parent.Right == old:
		parent.Right = repl
	case parent.X == old:
		parent.X = repl
	default:
		for i, a := range parent.Args {
			if a == old {
				parent.Args[i] = repl
			}
		}
	}
	parent.Link()
}
