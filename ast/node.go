// Package ast defines the AST contract that the generator-lowering core
// consumes. In a real host compiler this tree would be supplied by an
// upstream parser; here it is the concrete stand-in for the "opaque AST
// node" described by the pass this module implements.
//
// Rather than one Go type per syntax form, Node is a single tagged
// struct: a Kind discriminates which of its fields are meaningful. This
// mirrors how the pass itself is organized (a table of lowering
// functions keyed by kind, not a type hierarchy) and keeps mutation
// operations like Detach and ReplaceWith generic instead of needing a
// case for every concrete type.
package ast

// Kind discriminates the syntactic form of a Node.
type Kind int

const (
	Invalid Kind = iota

	// Program/function structure.
	Program
	Function

	// Statements.
	Block
	If
	Switch
	Case // a single `case`/`default` arm of a Switch; Test == nil means default
	For
	While
	DoWhile
	ForIn
	Try
	Catch
	Throw
	Return
	Break
	Continue
	Label
	Var
	Declarator
	ExprStmt
	Empty

	// Expressions.
	Yield
	YieldAll
	Assign
	Binary
	Unary
	Call
	Name
	This
	Arguments
	Literal
	Comma
	Conditional
)

func (k Kind) String() string {
	switch k {
	case Program:
		return "Program"
	case Function:
		return "Function"
	case Block:
		return "Block"
	case If:
		return "If"
	case Switch:
		return "Switch"
	case Case:
		return "Case"
	case For:
		return "For"
	case While:
		return "While"
	case DoWhile:
		return "DoWhile"
	case ForIn:
		return "ForIn"
	case Try:
		return "Try"
	case Catch:
		return "Catch"
	case Throw:
		return "Throw"
	case Return:
		return "Return"
	case Break:
		return "Break"
	case Continue:
		return "Continue"
	case Label:
		return "Label"
	case Var:
		return "Var"
	case Declarator:
		return "Declarator"
	case ExprStmt:
		return "ExprStmt"
	case Empty:
		return "Empty"
	case Yield:
		return "Yield"
	case YieldAll:
		return "YieldAll"
	case Assign:
		return "Assign"
	case Binary:
		return "Binary"
	case Unary:
		return "Unary"
	case Call:
		return "Call"
	case Name:
		return "Name"
	case This:
		return "This"
	case Arguments:
		return "Arguments"
	case Literal:
		return "Literal"
	case Comma:
		return "Comma"
	case Conditional:
		return "Conditional"
	default:
		return "Invalid"
	}
}

// Position is a minimal source location, copied by Clone so diagnostics
// can point somewhere sensible; the builders leave it zero. A real
// host compiler would carry file/line/column here; this core only needs
// to copy it around.
type Position struct {
	Line, Column int
}

// Node is the single concrete representation for every construct the
// pass deals with: statements, expressions, declarators, function
// bodies, and switch arms.
//
// Field usage by Kind:
//
//	Program, Block        Children = statements, in order
//	Function               Params, Body, IsGenerator, Suppressions, Name
//	If                      Cond, Then, Else
//	Switch                  X (discriminant), Children = Case nodes
//	Case                    Test (nil => default), Children = body statements
//	For                     Init, Cond, Post, Body
//	While, DoWhile          Cond, Body
//	ForIn                   Left (Name being bound), Right (object expr), Body
//	Try                     Body (try block), CatchClause, FinallyBody
//	Catch                   Param (nilable Name), Body
//	Throw, Return, ExprStmt X (operand, nilable for bare return)
//	Break, Continue         Label (empty = unnamed)
//	Label                   Label (name), Body (labeled statement)
//	Var                     Declarators
//	Declarator              Name, X (initializer, nilable)
//	Yield                   X (nilable)
//	YieldAll                X
//	Assign                  Op, Left, Right
//	Binary                  Op, Left, Right
//	Comma                   Left, Right
//	Unary                   Op, X
//	Call                    X (callee), Args
//	Name                    Name
//	Literal                 Value
//	Conditional             Cond, Then, Else
type Node struct {
	Kind   Kind
	parent *Node
	Pos    Position

	Children []*Node

	Name    string
	Op      string
	Value   any
	Label   string
	Params  []string
	Args    []*Node

	Cond         *Node
	Then         *Node
	Else         *Node
	Init         *Node
	Post         *Node
	Body         *Node
	Left         *Node
	Right        *Node
	X            *Node
	Test         *Node
	Param        *Node
	CatchClause  *Node
	FinallyBody  *Node
	Declarators  []*Node

	IsGenerator  bool
	Suppressions []string

	marker bool // generatorMarker: subtree contains a yield
	safe   bool // generatorSafe: already lowered, skip once
}

// Parent returns the node's parent, or nil for a detached/root node.
func (n *Node) Parent() *Node { return n.parent }

// Marker reports the generatorMarker bit set by MarkerPropagator.
func (n *Node) Marker() bool { return n.marker }

// SetMarker sets the generatorMarker bit.
func (n *Node) SetMarker(v bool) { n.marker = v }

// Safe reports the generatorSafe bit: true means a later walk should
// skip this subtree exactly once.
func (n *Node) Safe() bool { return n.safe }

// SetSafe sets the generatorSafe bit.
func (n *Node) SetSafe(v bool) { n.safe = v }

// Link fixes up parent pointers for every child slot currently set on
// n. Code outside this package that assigns directly into an exported
// field (e.g. `parent.Left = newChild`) must call parent.Link()
// afterwards so Detach/ReplaceWith/Parent keep working; the
// constructors in builders.go already do this for you.
func (n *Node) Link() *Node { return n.link() }

// link walks every field that can hold a child and fixes up its parent
// pointer to n. Called after direct field mutation (constructors, or
// lowering code that wires up new nodes) so Parent/Detach/ReplaceWith
// stay consistent without requiring every caller to remember to do it.
func (n *Node) link() *Node {
	for _, c := range n.allChildSlots() {
		if *c != nil {
			(*c).parent = n
		}
	}
	for _, c := range n.Children {
		if c != nil {
			c.parent = n
		}
	}
	for _, c := range n.Args {
		if c != nil {
			c.parent = n
		}
	}
	for _, c := range n.Declarators {
		if c != nil {
			c.parent = n
		}
	}
	return n
}

// ChildSlots exposes the single-node field pointers so callers outside
// this package (generators.UnmarkedSubtreeFixer, in particular) can
// rewrite a node generically across every Kind without a type switch.
// Callers must call Link() after mutating any of the returned slots.
func (n *Node) ChildSlots() []**Node { return n.allChildSlots() }

// allChildSlots returns pointers to every single-node field, so generic
// code (Detach, ReplaceWith, Walk) doesn't need a case per Kind.
func (n *Node) allChildSlots() []**Node {
	return []**Node{
		&n.Cond, &n.Then, &n.Else, &n.Init, &n.Post, &n.Body,
		&n.Left, &n.Right, &n.X, &n.Test, &n.Param,
		&n.CatchClause, &n.FinallyBody,
	}
}

// Detach removes n from its parent, leaving n with Parent()==nil. It is
// a no-op on a root node. After Detach, n may be reattached via
// ReplaceWith on another slot or appended into a Children list.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for _, slot := range p.allChildSlots() {
		if *slot == n {
			*slot = nil
			n.parent = nil
			return
		}
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			n.parent = nil
			return
		}
	}
	for i, c := range p.Args {
		if c == n {
			p.Args = append(p.Args[:i:i], p.Args[i+1:]...)
			n.parent = nil
			return
		}
	}
	for i, c := range p.Declarators {
		if c == n {
			p.Declarators = append(p.Declarators[:i:i], p.Declarators[i+1:]...)
			n.parent = nil
			return
		}
	}
}

// ReplaceWith substitutes n for repl in n's parent. n is left detached
// (Parent()==nil); repl takes over n's former slot.
func (n *Node) ReplaceWith(repl *Node) {
	p := n.parent
	if p == nil {
		return
	}
	for _, slot := range p.allChildSlots() {
		if *slot == n {
			*slot = repl
			n.parent = nil
			if repl != nil {
				repl.parent = p
			}
			return
		}
	}
	for i, c := range p.Children {
		if c == n {
			p.Children[i] = repl
			n.parent = nil
			if repl != nil {
				repl.parent = p
			}
			return
		}
	}
	for i, c := range p.Args {
		if c == n {
			p.Args[i] = repl
			n.parent = nil
			if repl != nil {
				repl.parent = p
			}
			return
		}
	}
	for i, c := range p.Declarators {
		if c == n {
			p.Declarators[i] = repl
			n.parent = nil
			if repl != nil {
				repl.parent = p
			}
			return
		}
	}
}

// AddChild appends a statement/case to a Program, Block, Switch, or Case
// node's Children list.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
	child.parent = n
}

// AddChildren appends multiple children at once, in order.
func (n *Node) AddChildren(children ...*Node) {
	for _, c := range children {
		n.AddChild(c)
	}
}
