package ast

// Builders below mirror the convenience constructors a host AST library
// would supply (e.g. the teacher's own liberal use of ast.NewIdent and
// literal &ast.CallExpr{...} composite literals); they exist purely to
// keep the lowering code in package generators readable.
//
// Property access (e.g. `context.jumpTo`) is represented as a single
// Name node holding the dotted string, rather than a dedicated member
// expression kind: the shape of the runtime object is external to this
// core (see spec §6), so the core only ever needs to build a call to a
// literal method path, never to inspect or rewrite one.

func NewName(name string) *Node { return &Node{Kind: Name, Name: name} }

func NewLiteral(v any) *Node { return &Node{Kind: Literal, Value: v} }

func NewThis() *Node { return &Node{Kind: This} }

func NewArguments() *Node { return &Node{Kind: Arguments} }

func NewBlock(stmts ...*Node) *Node {
	b := &Node{Kind: Block}
	b.AddChildren(stmts...)
	return b
}

func NewExprStmt(x *Node) *Node { return (&Node{Kind: ExprStmt, X: x}).link() }

func NewCall(callee *Node, args ...*Node) *Node {
	c := &Node{Kind: Call, X: callee, Args: args}
	return c.link()
}

func NewAssign(op string, left, right *Node) *Node {
	return (&Node{Kind: Assign, Op: op, Left: left, Right: right}).link()
}

func NewBinary(op string, l, r *Node) *Node {
	return (&Node{Kind: Binary, Op: op, Left: l, Right: r}).link()
}

func NewUnary(op string, x *Node) *Node { return (&Node{Kind: Unary, Op: op, X: x}).link() }

func NewComma(l, r *Node) *Node { return (&Node{Kind: Comma, Left: l, Right: r}).link() }

func NewReturn(x *Node) *Node { return (&Node{Kind: Return, X: x}).link() }

func NewBreak(label string) *Node { return &Node{Kind: Break, Label: label} }

func NewContinue(label string) *Node { return &Node{Kind: Continue, Label: label} }

func NewThrow(x *Node) *Node { return (&Node{Kind: Throw, X: x}).link() }

func NewIf(cond, then, els *Node) *Node {
	return (&Node{Kind: If, Cond: cond, Then: then, Else: els}).link()
}

func NewDeclarator(name string, init *Node) *Node {
	return (&Node{Kind: Declarator, Name: name, X: init}).link()
}

func NewVar(declarators ...*Node) *Node {
	v := &Node{Kind: Var, Declarators: declarators}
	for _, d := range declarators {
		d.parent = v
	}
	return v
}

func NewYield(x *Node) *Node { return (&Node{Kind: Yield, X: x}).link() }

func NewYieldAll(x *Node) *Node { return (&Node{Kind: YieldAll, X: x}).link() }

func NewLabel(label string, body *Node) *Node {
	return (&Node{Kind: Label, Label: label, Body: body}).link()
}

func NewFor(init, cond, post, body *Node) *Node {
	return (&Node{Kind: For, Init: init, Cond: cond, Post: post, Body: body}).link()
}

func NewWhile(cond, body *Node) *Node { return (&Node{Kind: While, Cond: cond, Body: body}).link() }

func NewDoWhile(cond, body *Node) *Node {
	return (&Node{Kind: DoWhile, Cond: cond, Body: body}).link()
}

func NewForIn(left, right, body *Node) *Node {
	return (&Node{Kind: ForIn, Left: left, Right: right, Body: body}).link()
}

func NewTry(body, catchClause, finallyBody *Node) *Node {
	return (&Node{Kind: Try, Body: body, CatchClause: catchClause, FinallyBody: finallyBody}).link()
}

func NewCatch(param, body *Node) *Node {
	return (&Node{Kind: Catch, Param: param, Body: body}).link()
}

func NewSwitch(discriminant *Node, cases ...*Node) *Node {
	s := &Node{Kind: Switch, X: discriminant}
	s.AddChildren(cases...)
	return s
}

// NewCase builds a switch arm. test == nil means `default`.
func NewCase(test *Node, body ...*Node) *Node {
	c := &Node{Kind: Case, Test: test}
	if test != nil {
		test.parent = c
	}
	c.AddChildren(body...)
	return c
}

func NewEmpty() *Node { return &Node{Kind: Empty} }

// RuntimeCall builds `context.<method>(args...)` as an expression.
func RuntimeCall(receiver, method string, args ...*Node) *Node {
	return NewCall(NewName(receiver+"."+method), args...)
}

// RuntimeCallStmt builds `context.<method>(args...);` as a statement.
func RuntimeCallStmt(receiver, method string, args ...*Node) *Node {
	return NewExprStmt(RuntimeCall(receiver, method, args...))
}
