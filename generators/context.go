package generators

import "github.com/dispatchrun/genlower/ast"

// Case is one numbered arm of the generated switch. It is bookkeeping
// for this pass, not an AST node itself: Body holds the statements
// emitted into it, and the remaining fields support the
// finalize collapsing rules from spec §4.6.
//
// References are one-way: a Case knows every AST node that mentions its
// id (a jumpTo/leaveTryBlock/etc. integer argument), but no node owns a
// Case's lifetime. This is the arena-of-cases representation spec §9
// recommends over pointer cycles.
type Case struct {
	ID   int
	Body *ast.Node // a Block

	JumpTo         *Case
	EmbedInto      **ast.Node // if non-nil, a slot this case's body can be spliced into wholesale
	References     []*ast.Node
	MayFallThrough bool

	dropped bool
}

func (c *Case) addRef(n *ast.Node) { c.References = append(c.References, n) }

// LabelCases is what a LABEL lowering registers for a given label name:
// the case break/continue inside the labeled construct should target.
type LabelCases struct {
	Break    *Case
	Continue *Case // nil if the labeled statement is not a loop
}

// CatchCase pairs an active handler's catch and finally case ids, as
// installed by SetCatchFinallyBlocks/SetFinallyBlock lowering.
type CatchCase struct {
	CatchID    int
	HasCatch   bool
	FinallyID  int
	HasFinally bool
}

// TranspilationContext owns everything about transpiling a single
// generator function: the case arena, the break/continue/label/catch
// stacks (scoped, pushed and popped around each nested construct per
// spec §5), and the hoisted-declaration list. One instance is created
// per FunctionTranspiler invocation and never shared.
type TranspilationContext struct {
	namer *ast.NameGen

	allCases    []*Case
	currentCase *Case
	nextID      int

	breakStack    []*Case
	continueStack []*Case
	labels        map[string]LabelCases
	catchStack    []CatchCase

	catchNames              map[string]bool
	nestedFinallyBlockCount int

	hoisted []*ast.Node // var declarations promoted to program-body scope
	sawThis bool
	sawArgs bool

	ctxName string
}

// NewTranspilationContext allocates the entry case (id 1) as the
// current case and returns a ready-to-use context. ctxName is the
// generated parameter name the lowered program function binds its
// runtime driver to (spec §6's `$jscomp$generator$context`, rendered
// Go-legally by ast.NameGen.Context); every runtime method call this
// context builds addresses that name, not a literal "context".
func NewTranspilationContext(namer *ast.NameGen, ctxName string) *TranspilationContext {
	tc := &TranspilationContext{
		namer:      namer,
		labels:     map[string]LabelCases{},
		catchNames: map[string]bool{},
		nextID:     2, // 0 is reserved for program end, 1 is the entry
		ctxName:    ctxName,
	}
	entry := &Case{ID: 1, Body: ast.NewBlock(), MayFallThrough: true}
	tc.allCases = append(tc.allCases, entry)
	tc.currentCase = entry
	return tc
}

// RuntimeCall builds `<ctxName>.<method>(args...)` as an expression.
func (tc *TranspilationContext) RuntimeCall(method string, args ...*ast.Node) *ast.Node {
	return ast.RuntimeCall(tc.ctxName, method, args...)
}

// RuntimeCallStmt builds `<ctxName>.<method>(args...);` as a statement.
func (tc *TranspilationContext) RuntimeCallStmt(method string, args ...*ast.Node) *ast.Node {
	return ast.RuntimeCallStmt(tc.ctxName, method, args...)
}

// NewCase allocates a fresh case id without switching to it.
func (tc *TranspilationContext) NewCase() *Case {
	c := &Case{ID: tc.nextID, Body: ast.NewBlock(), MayFallThrough: true}
	tc.nextID++
	tc.allCases = append(tc.allCases, c)
	return c
}

// Current returns the case currently being emitted into.
func (tc *TranspilationContext) Current() *Case { return tc.currentCase }

// SwitchTo makes c the current case. If the outgoing case's body is
// still empty, it is marked as a pure jump to c — a collapse candidate
// for finalize's chain-flattening step (spec §4.6's "if currentCase.body
// is empty when a switch occurs, the predecessor is marked jumpTo = C").
func (tc *TranspilationContext) SwitchTo(c *Case) {
	prev := tc.currentCase
	if prev != nil && len(prev.Body.Children) == 0 {
		prev.JumpTo = c
	}
	tc.currentCase = c
}

// Emit appends a statement to the current case's body.
func (tc *TranspilationContext) Emit(stmt *ast.Node) {
	tc.currentCase.Body.AddChild(stmt)
}

// EmitAll appends statements in order.
func (tc *TranspilationContext) EmitAll(stmts ...*ast.Node) {
	for _, s := range stmts {
		tc.Emit(s)
	}
}

// Jump builds `context.jumpTo(id); break;`, records target as a
// reference of the case it points at, and returns the pair of
// statements (the id literal node is what finalize rewrites in place
// when cases collapse).
func (tc *TranspilationContext) Jump(target *Case) []*ast.Node {
	idNode := ast.NewLiteral(target.ID)
	target.addRef(idNode)
	call := ast.NewExprStmt(tc.RuntimeCall("jumpTo", idNode))
	return []*ast.Node{call, ast.NewBreak("")}
}

// JumpThroughFinallyBlocks is like Jump, but emits
// context.jumpThroughFinallyBlocks(id) instead (spec §4.5's rule for a
// break/continue crossing an active finally).
func (tc *TranspilationContext) JumpThroughFinallyBlocks(target *Case) []*ast.Node {
	idNode := ast.NewLiteral(target.ID)
	target.addRef(idNode)
	call := ast.NewExprStmt(tc.RuntimeCall("jumpThroughFinallyBlocks", idNode))
	return []*ast.Node{call, ast.NewBreak("")}
}

// PushBreak/PopBreak, PushContinue/PopContinue scope the innermost
// break/continue target around a loop or switch's body lowering. Every
// push here must be paired with a pop on every exit path, including a
// diagnostic abort (spec §5).
func (tc *TranspilationContext) PushBreak(c *Case)    { tc.breakStack = append(tc.breakStack, c) }
func (tc *TranspilationContext) PopBreak()            { tc.breakStack = tc.breakStack[:len(tc.breakStack)-1] }
func (tc *TranspilationContext) PushContinue(c *Case) { tc.continueStack = append(tc.continueStack, c) }
func (tc *TranspilationContext) PopContinue() {
	tc.continueStack = tc.continueStack[:len(tc.continueStack)-1]
}

func (tc *TranspilationContext) InnermostBreak() (*Case, bool) {
	if len(tc.breakStack) == 0 {
		return nil, false
	}
	return tc.breakStack[len(tc.breakStack)-1], true
}

func (tc *TranspilationContext) InnermostContinue() (*Case, bool) {
	if len(tc.continueStack) == 0 {
		return nil, false
	}
	return tc.continueStack[len(tc.continueStack)-1], true
}

// PushLabel/PopLabel register and unregister a label's break/continue
// targets for the duration of lowering its body (spec §4.4.a).
func (tc *TranspilationContext) PushLabel(name string, lc LabelCases) { tc.labels[name] = lc }
func (tc *TranspilationContext) PopLabel(name string)                 { delete(tc.labels, name) }
func (tc *TranspilationContext) Label(name string) (LabelCases, bool) {
	lc, ok := tc.labels[name]
	return lc, ok
}

// PushCatch/PopCatch scope the active catch/finally handler frame
// around a try body's lowering.
func (tc *TranspilationContext) PushCatch(cc CatchCase) { tc.catchStack = append(tc.catchStack, cc) }
func (tc *TranspilationContext) PopCatch()              { tc.catchStack = tc.catchStack[:len(tc.catchStack)-1] }

// NearestCatch returns the nearest enclosing catch not hidden by an
// intervening finally, per the TRY/CATCH/FINALLY lowering's
// `nextCatchId` rule.
func (tc *TranspilationContext) NearestCatch() (int, bool) {
	for i := len(tc.catchStack) - 1; i >= 0; i-- {
		f := tc.catchStack[i]
		if f.HasFinally {
			return 0, false
		}
		if f.HasCatch {
			return f.CatchID, true
		}
	}
	return 0, false
}

// Hoist registers a var declaration to be emitted at program-body
// scope, ahead of `return runtime.createGenerator(...)`.
func (tc *TranspilationContext) Hoist(decl *ast.Node) { tc.hoisted = append(tc.hoisted, decl) }

// HoistCatchName registers a catch parameter name as hoisted at most
// once, returning whether this call was the first, so each name is only
// declared a single time. `this`/`arguments` use their own sawThis/sawArgs
// flags instead.
func (tc *TranspilationContext) HoistCatchName(name string) (first bool) {
	if tc.catchNames[name] {
		return false
	}
	tc.catchNames[name] = true
	return true
}

// StackBalanced reports whether every scoped stack pushed during
// lowering has been fully popped, the invariant spec §8 requires after
// every successful transpile and every controlled diagnostic abort.
func (tc *TranspilationContext) StackBalanced() bool {
	return len(tc.breakStack) == 0 && len(tc.continueStack) == 0 &&
		len(tc.catchStack) == 0 && len(tc.labels) == 0 &&
		tc.nestedFinallyBlockCount == 0
}

// Finalize runs the two address-graph collapse passes from spec §4.6
// and returns the surviving cases in id order, ready to become `case`
// arms of the generated switch. The entry case (id 1) is never renamed
// or dropped.
func (tc *TranspilationContext) Finalize() []*Case {
	tc.flattenChains()
	tc.mergeAdjacent()

	// The entry case is never dropped, so an entry left empty by SwitchTo
	// whose hop target was not merged into it needs an explicit jump;
	// otherwise it would fall through into the next case in id order.
	if entry := tc.allCases[0]; len(entry.Body.Children) == 0 && entry.JumpTo != nil {
		t, seen := entry.JumpTo, map[*Case]bool{entry: true}
		for t.JumpTo != nil && !seen[t] {
			seen[t] = true
			t = t.JumpTo
		}
		if !t.dropped {
			entry.Body.AddChildren(tc.Jump(t)...)
		}
	}

	var surviving []*Case
	for _, c := range tc.allCases {
		if !c.dropped {
			surviving = append(surviving, c)
		}
	}
	return surviving
}

// flattenChains implements spec §4.6 step 1: collapse C.jumpTo chains
// to their terminal case and retarget every reference accordingly.
func (tc *TranspilationContext) flattenChains() {
	terminal := func(c *Case) *Case {
		seen := map[*Case]bool{}
		for c.JumpTo != nil && !seen[c] {
			seen[c] = true
			c = c.JumpTo
		}
		return c
	}

	for _, c := range tc.allCases {
		if c.dropped || c.JumpTo == nil || c.ID == 1 {
			continue
		}
		t := terminal(c)
		if t == c {
			continue
		}
		if c.EmbedInto != nil && len(c.References) == 1 {
			t.EmbedInto = c.EmbedInto
		}
		for _, ref := range c.References {
			ref.Value = t.ID
		}
		t.References = append(t.References, c.References...)
		c.References = nil
		c.dropped = true
	}
}

// mergeAdjacent implements spec §4.6 step 2.
func (tc *TranspilationContext) mergeAdjacent() {
	order := make([]*Case, 0, len(tc.allCases))
	for _, c := range tc.allCases {
		if !c.dropped {
			order = append(order, c)
		}
	}

	for i := 1; i < len(order); i++ {
		d := order[i]
		if d.dropped || d.ID == 1 {
			continue
		}
		p := order[i-1]
		if p.dropped {
			continue
		}
		switch {
		case len(d.References) == 0 && p.MayFallThrough:
			p.Body.AddChildren(d.Body.Children...)
			p.MayFallThrough = d.MayFallThrough
			d.dropped = true
		case d.EmbedInto != nil && len(d.References) == 1 && !d.MayFallThrough:
			slot := d.EmbedInto
			*slot = d.Body
			d.Body.Link()
			d.dropped = true
		case p.JumpTo == d:
			p.Body.AddChildren(d.Body.Children...)
			p.MayFallThrough = d.MayFallThrough
			for _, ref := range d.References {
				ref.Value = p.ID
			}
			p.References = append(p.References, d.References...)
			d.References = nil
			d.dropped = true
		}
	}
}
