package ast

// Cursor and Apply give lowering code a mutate-during-traversal API in
// the shape of golang.org/x/tools/go/ast/astutil's Apply/Cursor (used
// throughout the teacher's decls.go to rewrite declarations in place).
// That package only walks go/ast.Node, so it cannot be used directly on
// this module's own tree; Cursor reimplements the same shape — before
// callback, after callback, Replace/Delete/InsertBefore — against Node.
//
// generators.MarkerPropagator is this API's main client: its post
// callback runs bottom-up (children are fully applied, including their
// own post callbacks, before a node's post fires), which is exactly the
// "a node's marker is the OR of its children's markers" propagation
// spec §4.1 describes, and Apply's own function-boundary skip already
// gives it "never descending into nested function definitions" for free.

// Cursor describes the current node during an Apply traversal and lets
// the callback mutate the tree around it.
type Cursor struct {
	node     *Node
	parent   *Node
	replace  func(*Node)
	deletion func() bool // returns true if deletion is valid at this site (list membership)
	insert   func(*Node) bool
}

// Node returns the node being visited.
func (c *Cursor) Node() *Node { return c.node }

// Parent returns the parent of the node being visited, or nil at the
// root.
func (c *Cursor) Parent() *Node { return c.parent }

// Replace substitutes repl for the current node in its parent slot or
// list, and continues the traversal into repl instead of the original
// children.
func (c *Cursor) Replace(repl *Node) {
	if c.replace != nil {
		c.replace(repl)
	}
	c.node = repl
}

// Delete removes the current node. Only valid when the current node is
// an element of a Children/Args/Declarators list; panics otherwise, the
// same way astutil.Cursor.Delete does for non-list positions.
func (c *Cursor) Delete() {
	if c.deletion == nil || !c.deletion() {
		panic("ast: Cursor.Delete called on a non-list node")
	}
}

// InsertBefore inserts n immediately before the current node in its
// enclosing list. Only valid for list positions.
func (c *Cursor) InsertBefore(n *Node) {
	if c.insert == nil || !c.insert(n) {
		panic("ast: Cursor.InsertBefore called on a non-list node")
	}
}

// ApplyFunc is called for each node; pre is called before descending
// into children (returning false skips the subtree), post after.
type ApplyFunc func(*Cursor) bool

// Apply traverses the same nodes as Walk, but passes a Cursor so pre/post
// may replace, delete, or insert around the current node. Children are
// visited single-node fields first (in allChildSlots order), then the
// Children, Args and Declarators lists, so the order can differ from
// Walk's source order. Either pre or
// post may be nil. It does not cross function boundaries (consistent
// with every core component that mutates trees in place).
func Apply(tree *Node, pre, post ApplyFunc) *Node {
	root := &Node{Kind: Program}
	root.Body = tree
	apply(root, tree, pre, post, func(r *Node) { root.Body = r }, nil, nil)
	return root.Body
}

func apply(parent, n *Node, pre, post ApplyFunc, replace func(*Node), deletion func() bool, insert func(*Node) bool) {
	if n == nil {
		return
	}
	cur := &Cursor{node: n, parent: parent, replace: replace, deletion: deletion, insert: insert}
	if pre != nil && !pre(cur) {
		return
	}
	n = cur.node
	if n == nil {
		return
	}
	applyChildren(n, pre, post)
	if post != nil {
		cur.node = n
		post(cur)
	}
}

func applyChildren(n *Node, pre, post ApplyFunc) {
	for _, slot := range n.allChildSlots() {
		if *slot == nil || (*slot).Kind == Function {
			continue
		}
		s := slot
		apply(n, *s, pre, post, func(r *Node) { *s = r; if r != nil { r.parent = n } }, nil, nil)
	}
	applyList(n, &n.Children, pre, post)
	applyList(n, &n.Args, pre, post)
	applyList(n, &n.Declarators, pre, post)
}

func applyList(parent *Node, list *[]*Node, pre, post ApplyFunc) {
	i := 0
	for i < len(*list) {
		child := (*list)[i]
		if child != nil && child.Kind == Function {
			i++
			continue
		}
		idx := i
		deleted := false
		apply(parent, child,
			pre, post,
			func(r *Node) {
				(*list)[idx] = r
				if r != nil {
					r.parent = parent
				}
			},
			func() bool {
				*list = append((*list)[:idx:idx], (*list)[idx+1:]...)
				deleted = true
				return true
			},
			func(n *Node) bool {
				*list = append((*list)[:idx], append([]*Node{n}, (*list)[idx:]...)...)
				n.parent = parent
				idx++
				return true
			},
		)
		if deleted {
			continue
		}
		i++
	}
}
