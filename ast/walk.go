package ast

// children returns n's direct children in source order. It is the one
// place that needs to know the field layout per Kind; everything else
// (Walk, Clone, Apply) is generic on top of it.
func (n *Node) children() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch n.Kind {
	case Program, Block:
		out = append(out, n.Children...)
	case Function:
		add(n.Body)
	case If, Conditional:
		add(n.Cond)
		add(n.Then)
		add(n.Else)
	case Switch:
		add(n.X)
		out = append(out, n.Children...)
	case Case:
		add(n.Test)
		out = append(out, n.Children...)
	case For:
		add(n.Init)
		add(n.Cond)
		add(n.Post)
		add(n.Body)
	case While, DoWhile:
		add(n.Cond)
		add(n.Body)
	case ForIn:
		add(n.Left)
		add(n.Right)
		add(n.Body)
	case Try:
		add(n.Body)
		add(n.CatchClause)
		add(n.FinallyBody)
	case Catch:
		add(n.Param)
		add(n.Body)
	case Throw, Return, ExprStmt, Yield, YieldAll, Unary:
		add(n.X)
	case Break, Continue, Empty, Name, Literal, This, Arguments:
		// leaves
	case Label:
		add(n.Body)
	case Var:
		out = append(out, n.Declarators...)
	case Declarator:
		add(n.X)
	case Assign, Binary, Comma:
		add(n.Left)
		add(n.Right)
	case Call:
		add(n.X)
		out = append(out, n.Args...)
	}
	return out
}

// VisitFunc is called once per node during a Walk. Returning false
// prevents descent into that node's children.
type VisitFunc func(n *Node) bool

// Walk performs a pre-order traversal of tree, calling visit for every
// node, including tree itself. It does not cross into nested Function
// bodies unless crossFunctions is true: several components of the
// lowering core (in package generators) must stop exactly at a function
// boundary.
func Walk(tree *Node, crossFunctions bool, visit VisitFunc) {
	if tree == nil {
		return
	}
	if !visit(tree) {
		return
	}
	for _, c := range tree.children() {
		if c.Kind == Function && !crossFunctions {
			continue
		}
		Walk(c, crossFunctions, visit)
	}
}

// WalkBody walks a function body (or any statement subtree), never
// descending into nested function literals. This is the traversal used
// by YieldExposer (to clear markers), YieldFinder, and Find/FindAll,
// none of which cross function boundaries.
func WalkBody(body *Node, visit VisitFunc) {
	Walk(body, false, visit)
}

// Inspect is Walk with the crossFunctions flag fixed to true, for
// callers that genuinely want every descendant, nested function bodies
// included.
func Inspect(tree *Node, visit VisitFunc) {
	Walk(tree, true, visit)
}

// Find returns the first node for which pred returns true in a
// pre-order, function-boundary-respecting walk of tree, or nil.
func Find(tree *Node, pred func(*Node) bool) *Node {
	var found *Node
	WalkBody(tree, func(n *Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node for which pred returns true, in pre-order.
func FindAll(tree *Node, pred func(*Node) bool) []*Node {
	var found []*Node
	WalkBody(tree, func(n *Node) bool {
		if pred(n) {
			found = append(found, n)
		}
		return true
	})
	return found
}
