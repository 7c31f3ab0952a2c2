package generators

import (
	"github.com/dispatchrun/genlower/ast"
	"github.com/dispatchrun/genlower/cfg"
	"github.com/dispatchrun/genlower/decompose"
)

// transpiler holds everything FunctionTranspiler needs while lowering a
// single generator function: the TranspilationContext (case arena plus
// scoped stacks) and the external collaborators spec §4.4 names
// (the CFG oracle, the expression decomposer).
type transpiler struct {
	tc     *TranspilationContext
	namer  *ast.NameGen
	oracle cfg.Oracle
	dec    decompose.Decomposer

	// pendingBreak/pendingContinue carry a LABEL lowering's
	// preallocated cases down to the loop it directly wraps, so the
	// loop reuses them instead of allocating its own (spec §4.4.a/h).
	pendingBreak    *Case
	pendingContinue *Case
}

// Transpile lowers a single generator function node fn in place using
// the default CFG oracle and expression decomposer.
func Transpile(fn *ast.Node, opts ...Option) (*ast.Node, error) {
	return TranspileWith(fn, cfg.Default{}, decompose.Default{}, opts...)
}

// TranspileWith is Transpile with explicit CFG oracle and expression
// decomposer implementations, for hosts with better ones than this
// module's necessarily-simplified defaults.
func TranspileWith(fn *ast.Node, oracle cfg.Oracle, dec decompose.Decomposer, opts ...Option) (*ast.Node, error) {
	if fn.Kind != ast.Function || !fn.IsGenerator {
		return nil, internalf("Transpile: node is not a generator function")
	}
	cfgOpts := defaultConfig()
	for _, o := range opts {
		o(cfgOpts)
	}

	body := fn.Body
	fn.Body = nil
	fn.Link()

	shouldAddFinalJump := oracle.ReachesEnd(body)

	namer := &ast.NameGen{}
	if fn.Name == "" {
		fn.Name = namer.Function()
	}
	ctxName := namer.Context()

	tc := NewTranspilationContext(namer, ctxName)
	tr := &transpiler{tc: tc, namer: namer, oracle: oracle, dec: dec}

	MarkerPropagator(body)

	for _, stmt := range body.Children {
		if err := tr.lowerStatement(stmt); err != nil {
			return nil, err
		}
	}

	if shouldAddFinalJump {
		// Control can fall off the end of the source body; the driver
		// needs an explicit terminal call where a bare `return` would
		// have stood (spec §4.3's default case). The trailing break keeps
		// the end case from falling through into whichever case follows
		// it in the switch.
		tc.EmitAll(ast.NewExprStmt(tc.RuntimeCall("jumpToEnd")), ast.NewBreak(""))
	}

	cases := tc.Finalize()
	if !tc.StackBalanced() {
		return nil, internalf("Transpile: context stacks not balanced at end of function")
	}

	switchNode := buildSwitch(ctxName, cases)
	var programBody *ast.Node = switchNode
	if cfgOpts.loopGuard {
		programBody = ast.NewDoWhile(ast.NewLiteral(0), ast.NewBlock(switchNode))
	}

	programFn := &ast.Node{Kind: ast.Function, Params: []string{ctxName}}
	programFn.Body = ast.NewBlock(programBody)
	programFn.Link()

	var hoisted []*ast.Node
	if tc.sawThis {
		hoisted = append(hoisted, ast.NewVar(ast.NewDeclarator(namer.This(), ast.NewThis())))
	}
	if tc.sawArgs {
		hoisted = append(hoisted, ast.NewVar(ast.NewDeclarator(namer.Arguments(), ast.NewArguments())))
	}
	hoisted = append(hoisted, tc.hoisted...)

	newBody := ast.NewBlock(hoisted...)
	newBody.AddChild(ast.NewReturn(ast.RuntimeCall("runtime", "createGenerator", ast.NewName(fn.Name), programFn)))

	fn.Body = newBody
	fn.Link()
	fn.IsGenerator = false
	return fn, nil
}

func buildSwitch(ctxName string, cases []*Case) *ast.Node {
	var arms []*ast.Node
	for _, c := range cases {
		arms = append(arms, ast.NewCase(ast.NewLiteral(c.ID), c.Body.Children...))
	}
	return ast.NewSwitch(ast.NewName(ctxName+".nextAddress"), arms...)
}

// lowerStatement is the per-statement dispatch every body (the function
// body, a block, a branch, a loop body) drains through: unmarked
// statements go through UnmarkedSubtreeFixer verbatim; marked ones
// dispatch by kind to one of the lowerings below (spec §4.4 step 5).
func (tr *transpiler) lowerStatement(s *ast.Node) error {
	if s == nil || s.Kind == ast.Empty {
		return nil
	}
	if !s.Marker() {
		fixed, err := FixUnmarkedSubtree(tr.tc, s)
		if err != nil {
			return err
		}
		tr.tc.Emit(fixed)
		return nil
	}

	switch s.Kind {
	case ast.Label:
		return tr.lowerLabel(s)
	case ast.Block:
		return tr.lowerBlock(s)
	case ast.ExprStmt:
		return tr.lowerExprResult(s)
	case ast.Var:
		return tr.lowerVar(s)
	case ast.Return:
		return tr.lowerReturn(s)
	case ast.Throw:
		return tr.lowerThrow(s)
	case ast.If:
		return tr.lowerIf(s)
	case ast.For:
		return tr.lowerFor(s)
	case ast.ForIn:
		return tr.lowerForIn(s)
	case ast.While, ast.DoWhile:
		return tr.lowerWhile(s)
	case ast.Try:
		return tr.lowerTry(s)
	case ast.Switch:
		return tr.lowerSwitch(s)
	default:
		return internalf("FunctionTranspiler: no marked-statement lowering for %s", s.Kind)
	}
}

// exposeExpr decomposes expr (which may be nil) so that any yield it
// contains is pulled out; pre-statements produced along the way are
// lowered immediately (landing in whatever case is current), and a
// trailing bare yield — the common case after decomposition — is
// turned into a real suspension point via emitYieldCase. The returned
// node is always yield-free and safe to splice into the final emitted
// statement.
func (tr *transpiler) exposeExpr(expr *ast.Node) (*ast.Node, error) {
	if expr == nil {
		return nil, nil
	}
	if !expr.Marker() {
		return expr, nil
	}
	holder := ast.NewExprStmt(expr)
	pre, err := YieldExposer(holder, tr.namer, tr.dec)
	if err != nil {
		return nil, err
	}
	for _, p := range pre {
		// YieldExposer clears the marker bit on everything it touches
		// (including pre); re-propagate it before lowering, since a
		// pre-statement can itself be a bare `var tmp = yield E;` that
		// still needs emitYieldCase's suspension handling.
		MarkerPropagator(p)
		if err := tr.lowerStatement(p); err != nil {
			return nil, err
		}
	}
	result := holder.X
	if result != nil && ast.Find(result, func(n *ast.Node) bool { return n.IsYield() || n.IsYieldAll() }) != nil {
		// YieldExposer's postcondition (spec §8) guarantees at most one
		// yield survives per exposed expression, and that it already
		// sits at the top; YieldFinder is the spec §4.3 component that
		// enforces exactly that, so a buried or duplicated yield here is
		// reported as the internal bug it would be, not silently mishandled.
		yieldNode, err := YieldFinder(result)
		if err != nil {
			return nil, err
		}
		if yieldNode != result {
			return nil, internalf("exposeExpr: yield %s not at top of exposed expression %s", yieldNode.Kind, result.Kind)
		}
		result = tr.emitYieldCase(yieldNode)
	}
	return result, nil
}

// emitYieldCase emits the suspension itself: `context.yield(v, next);
// break;` in the current case, switches to a freshly allocated next
// case, and returns the expression (`context.yieldResult`) that stands
// in for the yield's value once resumed.
func (tr *transpiler) emitYieldCase(yieldNode *ast.Node) *ast.Node {
	val := yieldNode.X
	next := tr.tc.NewCase()
	idLit := ast.NewLiteral(next.ID)
	next.addRef(idLit)

	method := "yield"
	if yieldNode.Kind == ast.YieldAll {
		method = "yieldAll"
	}
	tr.tc.EmitAll(
		ast.NewExprStmt(tr.tc.RuntimeCall(method, val, idLit)),
		ast.NewBreak(""),
	)
	tr.tc.SwitchTo(next)
	return ast.NewName(tr.tc.ctxName + ".yieldResult")
}

func (tr *transpiler) emitJump(target *Case) { tr.tc.EmitAll(tr.tc.Jump(target)...) }

// --- a. LABEL ---

func (tr *transpiler) lowerLabel(s *ast.Node) error {
	var names []string
	cur := s
	for cur.Kind == ast.Label {
		names = append(names, cur.Label)
		cur = cur.Body
	}

	breakCase := tr.tc.NewCase()
	var continueCase *Case
	if cur.IsLoopStructure() {
		continueCase = tr.tc.NewCase()
	}
	for _, name := range names {
		tr.tc.PushLabel(name, LabelCases{Break: breakCase, Continue: continueCase})
	}
	tr.pendingBreak, tr.pendingContinue = breakCase, continueCase

	err := tr.lowerStatement(cur)

	for _, name := range names {
		tr.tc.PopLabel(name)
	}
	if err != nil {
		return err
	}
	if tr.tc.Current() != breakCase {
		tr.emitJump(breakCase)
		tr.tc.SwitchTo(breakCase)
	}
	return nil
}

// --- b. BLOCK ---

func (tr *transpiler) lowerBlock(s *ast.Node) error {
	for _, c := range s.Children {
		if err := tr.lowerStatement(c); err != nil {
			return err
		}
	}
	return nil
}

// --- c. EXPR_RESULT ---

func (tr *transpiler) lowerExprResult(s *ast.Node) error {
	if s.X != nil && (s.X.IsYield() || s.X.IsYieldAll()) {
		tr.emitYieldCase(s.X)
		return nil
	}
	val, err := tr.exposeExpr(s.X)
	if err != nil {
		return err
	}
	if val == nil {
		return nil
	}
	tr.tc.Emit(ast.NewExprStmt(val))
	return nil
}

// --- d. VAR ---

func (tr *transpiler) lowerVar(s *ast.Node) error {
	var run []*ast.Node
	flush := func() {
		if len(run) > 0 {
			tr.tc.Emit(ast.NewVar(run...))
			run = nil
		}
	}
	for _, d := range s.Declarators {
		if !d.Marker() {
			run = append(run, d)
			continue
		}
		flush()
		init, err := tr.exposeExpr(d.X)
		if err != nil {
			return err
		}
		tr.tc.Emit(ast.NewVar(ast.NewDeclarator(d.Name, init)))
	}
	flush()
	return nil
}

// --- e. RETURN ---

func (tr *transpiler) lowerReturn(s *ast.Node) error {
	val, err := tr.exposeExpr(s.X)
	if err != nil {
		return err
	}
	if val == nil {
		val = undefinedLiteral()
	}
	tr.tc.Emit(ast.NewReturn(tr.tc.RuntimeCall("return", val)))
	tr.tc.Current().MayFallThrough = false
	return nil
}

// --- f. THROW ---

func (tr *transpiler) lowerThrow(s *ast.Node) error {
	val, err := tr.exposeExpr(s.X)
	if err != nil {
		return err
	}
	tr.tc.Emit(ast.NewThrow(val))
	tr.tc.Current().MayFallThrough = false
	return nil
}

// --- g. IF ---

func (tr *transpiler) lowerIf(s *ast.Node) error {
	cond, err := tr.exposeExpr(s.Cond)
	if err != nil {
		return err
	}

	endCase := tr.pendingBreak
	if endCase == nil {
		endCase = tr.tc.NewCase()
	}
	tr.pendingBreak = nil

	ifCase := tr.tc.NewCase()
	idLit := ast.NewLiteral(ifCase.ID)
	ifCase.addRef(idLit)
	ifStmt := ast.NewIf(cond,
		ast.NewBlock(ast.NewExprStmt(tr.tc.RuntimeCall("jumpTo", idLit)), ast.NewBreak("")),
		nil)
	// ifCase is reachable only through this jump stub until proven
	// otherwise; finalize may splice ifCase's body straight into the
	// stub's Then slot instead of leaving a separate case (spec §3's
	// embedInto, §4.6 step 2).
	ifCase.EmbedInto = &ifStmt.Then
	tr.tc.Emit(ifStmt)

	if s.Else != nil {
		if err := tr.lowerStatement(s.Else); err != nil {
			return err
		}
	}
	tr.emitJump(endCase)

	tr.tc.SwitchTo(ifCase)
	if err := tr.lowerStatement(s.Then); err != nil {
		return err
	}
	tr.emitJump(endCase)

	tr.tc.SwitchTo(endCase)
	return nil
}

// --- h. FOR ---

func (tr *transpiler) lowerFor(s *ast.Node) error {
	if s.Init != nil {
		fixed, err := FixUnmarkedSubtree(tr.tc, s.Init)
		if err != nil {
			return err
		}
		tr.tc.Emit(fixed)
	}

	startCase := tr.tc.NewCase()
	incCase := tr.pendingContinue
	if incCase == nil {
		incCase = tr.tc.NewCase()
	}
	endCase := tr.pendingBreak
	if endCase == nil {
		endCase = tr.tc.NewCase()
	}
	tr.pendingContinue, tr.pendingBreak = nil, nil

	tr.tc.SwitchTo(startCase)
	if s.Cond != nil {
		cond, err := tr.exposeExpr(s.Cond)
		if err != nil {
			return err
		}
		idLit := ast.NewLiteral(endCase.ID)
		endCase.addRef(idLit)
		ifStmt := ast.NewIf(ast.NewUnary("!", cond),
			ast.NewBlock(ast.NewExprStmt(tr.tc.RuntimeCall("jumpTo", idLit)), ast.NewBreak("")),
			nil)
		endCase.EmbedInto = &ifStmt.Then
		tr.tc.Emit(ifStmt)
	}

	tr.tc.PushBreak(endCase)
	tr.tc.PushContinue(incCase)
	err := tr.lowerStatement(s.Body)
	tr.tc.PopContinue()
	tr.tc.PopBreak()
	if err != nil {
		return err
	}

	tr.emitJump(incCase)
	tr.tc.SwitchTo(incCase)
	if s.Post != nil {
		fixed, err := FixUnmarkedSubtree(tr.tc, ast.NewExprStmt(s.Post))
		if err != nil {
			return err
		}
		tr.tc.Emit(fixed)
	}
	tr.emitJump(startCase)

	tr.tc.SwitchTo(endCase)
	return nil
}

// --- i. FOR-IN ---

func (tr *transpiler) lowerForIn(s *ast.Node) error {
	fiName := tr.namer.ForIn()
	varName := s.Left.Name

	initDecl := ast.NewVar(
		ast.NewDeclarator(varName, nil),
		ast.NewDeclarator(fiName, tr.tc.RuntimeCall("forIn", s.Right)),
	)
	cond := ast.NewBinary("!=",
		ast.NewAssign("=", ast.NewName(varName), ast.RuntimeCall(fiName, "getNext")),
		ast.NewLiteral(nil))

	forNode := ast.NewFor(initDecl, cond, nil, s.Body)
	forNode.SetMarker(s.Marker())
	return tr.lowerFor(forNode)
}

// --- j. WHILE / DO-WHILE ---

func (tr *transpiler) lowerWhile(s *ast.Node) error {
	startCase := tr.tc.NewCase()
	endCase := tr.pendingBreak
	if endCase == nil {
		endCase = tr.tc.NewCase()
	}
	tr.pendingBreak = nil

	if s.Kind == ast.While {
		continueCase := tr.pendingContinue
		if continueCase == nil {
			continueCase = startCase
		}
		tr.pendingContinue = nil

		tr.tc.SwitchTo(startCase)
		cond, err := tr.exposeExpr(s.Cond)
		if err != nil {
			return err
		}
		idLit := ast.NewLiteral(endCase.ID)
		endCase.addRef(idLit)
		ifStmt := ast.NewIf(ast.NewUnary("!", cond),
			ast.NewBlock(ast.NewExprStmt(tr.tc.RuntimeCall("jumpTo", idLit)), ast.NewBreak("")),
			nil)
		endCase.EmbedInto = &ifStmt.Then
		tr.tc.Emit(ifStmt)

		tr.tc.PushBreak(endCase)
		tr.tc.PushContinue(continueCase)
		err = tr.lowerStatement(s.Body)
		tr.tc.PopContinue()
		tr.tc.PopBreak()
		if err != nil {
			return err
		}
		tr.emitJump(startCase)
		tr.tc.SwitchTo(endCase)
		return nil
	}

	// DO-WHILE: body runs unconditionally; a distinct continue case
	// tests the condition afterward.
	continueCase := tr.pendingContinue
	if continueCase == nil {
		continueCase = tr.tc.NewCase()
	}
	tr.pendingContinue = nil

	tr.tc.SwitchTo(startCase)
	tr.tc.PushBreak(endCase)
	tr.tc.PushContinue(continueCase)
	err := tr.lowerStatement(s.Body)
	tr.tc.PopContinue()
	tr.tc.PopBreak()
	if err != nil {
		return err
	}

	tr.emitJump(continueCase)
	tr.tc.SwitchTo(continueCase)
	cond, err := tr.exposeExpr(s.Cond)
	if err != nil {
		return err
	}
	startLit := ast.NewLiteral(startCase.ID)
	startCase.addRef(startLit)
	tr.tc.Emit(ast.NewIf(cond,
		ast.NewBlock(ast.NewExprStmt(tr.tc.RuntimeCall("jumpTo", startLit)), ast.NewBreak("")),
		nil))

	tr.tc.SwitchTo(endCase)
	return nil
}

// --- k. TRY/CATCH/FINALLY ---

func (tr *transpiler) lowerTry(s *ast.Node) error {
	endCase := tr.pendingBreak
	if endCase == nil {
		endCase = tr.tc.NewCase()
	}
	tr.pendingBreak = nil

	hasCatch := s.CatchClause != nil
	hasFinally := s.FinallyBody != nil
	var catchCase, finallyCase *Case
	if hasCatch {
		catchCase = tr.tc.NewCase()
	}
	if hasFinally {
		finallyCase = tr.tc.NewCase()
	}

	if hasCatch {
		args := []*ast.Node{refLiteral(catchCase)}
		if hasFinally {
			args = append(args, refLiteral(finallyCase))
		}
		tr.tc.Emit(ast.NewExprStmt(tr.tc.RuntimeCall("setCatchFinallyBlocks", args...)))
	} else if hasFinally {
		tr.tc.Emit(ast.NewExprStmt(tr.tc.RuntimeCall("setFinallyBlock", refLiteral(finallyCase))))
	}

	cc := CatchCase{}
	if hasCatch {
		cc.CatchID, cc.HasCatch = catchCase.ID, true
	}
	if hasFinally {
		cc.FinallyID, cc.HasFinally = finallyCase.ID, true
	}
	tr.tc.PushCatch(cc)
	if hasFinally {
		tr.tc.nestedFinallyBlockCount++
	}
	err := tr.lowerStatement(s.Body)
	if hasFinally {
		tr.tc.nestedFinallyBlockCount--
	}
	tr.tc.PopCatch()
	if err != nil {
		return err
	}

	leaveTarget := endCase
	if hasFinally {
		leaveTarget = finallyCase
	}
	leaveArgs := []*ast.Node{refLiteral(leaveTarget)}
	if nextCatch, ok := tr.tc.NearestCatch(); ok {
		leaveArgs = append(leaveArgs, ast.NewLiteral(nextCatch))
	}
	tr.tc.EmitAll(ast.NewExprStmt(tr.tc.RuntimeCall("leaveTryBlock", leaveArgs...)), ast.NewBreak(""))

	if hasCatch {
		tr.tc.SwitchTo(catchCase)
		param := s.CatchClause.Param
		var enterArgs []*ast.Node
		if nextCatch, ok := tr.tc.NearestCatch(); ok {
			enterArgs = append(enterArgs, ast.NewLiteral(nextCatch))
		}
		caught := tr.tc.RuntimeCall("enterCatchBlock", enterArgs...)
		if param != nil {
			if tr.tc.HoistCatchName(param.Name) {
				tr.tc.Hoist(ast.NewVar(ast.NewDeclarator(param.Name, nil)))
			}
			tr.tc.Emit(ast.NewExprStmt(ast.NewAssign("=", ast.NewName(param.Name), caught)))
		} else {
			tr.tc.Emit(ast.NewExprStmt(caught))
		}
		if hasFinally {
			tr.tc.nestedFinallyBlockCount++
		}
		err := tr.lowerStatement(s.CatchClause.Body)
		if hasFinally {
			tr.tc.nestedFinallyBlockCount--
		}
		if err != nil {
			return err
		}
		if hasFinally {
			tr.emitJump(finallyCase)
		} else {
			tr.emitJump(endCase)
		}
	}

	if hasFinally {
		tr.tc.SwitchTo(finallyCase)
		var enterArgs []*ast.Node
		if nextCatch, ok := tr.tc.NearestCatch(); ok {
			enterArgs = append(enterArgs, ast.NewLiteral(nextCatch))
		}
		tr.tc.Emit(ast.NewExprStmt(tr.tc.RuntimeCall("enterFinallyBlock", enterArgs...)))
		tr.tc.nestedFinallyBlockCount++
		if err := tr.lowerStatement(s.FinallyBody); err != nil {
			return err
		}
		tr.tc.nestedFinallyBlockCount--
		tr.tc.Emit(ast.NewExprStmt(tr.tc.RuntimeCall("leaveFinallyBlock", refLiteral(endCase))))
		tr.tc.Emit(ast.NewBreak(""))
	}

	tr.tc.SwitchTo(endCase)
	return nil
}

func refLiteral(c *Case) *ast.Node {
	lit := ast.NewLiteral(c.ID)
	c.addRef(lit)
	return lit
}

// --- l. SWITCH ---

func (tr *transpiler) lowerSwitch(s *ast.Node) error {
	for _, c := range s.Children {
		if c.Test == nil {
			continue
		}
		if bad := ast.Find(c.Test, func(n *ast.Node) bool { return n.IsYield() || n.IsYieldAll() }); bad != nil {
			return errYieldInCaseLabel(bad)
		}
	}

	disc, err := tr.exposeExpr(s.X)
	if err != nil {
		return err
	}

	anyMarked := false
	for _, c := range s.Children {
		if c.Marker() {
			anyMarked = true
		}
	}
	if !anyMarked {
		s.X = disc
		s.Link()
		fixed, err := FixUnmarkedSubtree(tr.tc, s)
		if err != nil {
			return err
		}
		tr.tc.Emit(fixed)
		return nil
	}

	endCase := tr.pendingBreak
	if endCase == nil {
		endCase = tr.tc.NewCase()
	}
	tr.pendingBreak = nil

	hasDefault := false
	for _, c := range s.Children {
		if c.Test == nil {
			hasDefault = true
		}
	}
	if !hasDefault {
		// Every discriminant value must land on an arm that advances
		// nextAddress, or a non-matching switch would leave it
		// unchanged and stall the driver; synthesize the
		// fall-through-past-the-switch arm a real default would
		// otherwise provide.
		idLit := ast.NewLiteral(endCase.ID)
		endCase.addRef(idLit)
		stub := ast.NewCase(nil,
			ast.NewExprStmt(ast.RuntimeCall(tr.tc.ctxName, "jumpTo", idLit)),
			ast.NewBreak(""))
		stub.SetSafe(true)
		s.AddChild(stub)
	}

	type detached struct {
		gc   *Case
		body []*ast.Node
	}
	var work []detached
	seenMarked := false
	for _, c := range s.Children {
		marked := c.Marker()
		needsDetach := marked
		if !marked && seenMarked && len(c.Children) > 0 {
			needsDetach = !tr.oracle.SingleEntry(s, c)
		}
		if marked {
			seenMarked = true
		}
		if !needsDetach || len(c.Children) == 0 {
			continue
		}

		gc := tr.tc.NewCase()
		body := append([]*ast.Node(nil), c.Children...)
		idLit := ast.NewLiteral(gc.ID)
		gc.addRef(idLit)
		stub := ast.NewBlock(ast.NewExprStmt(ast.RuntimeCall(tr.tc.ctxName, "jumpTo", idLit)), ast.NewBreak(""))
		stub.SetSafe(true)
		c.Children = []*ast.Node{stub}
		c.Link()
		work = append(work, detached{gc, body})
	}

	tr.tc.PushBreak(endCase)
	s.X = disc
	s.Link()
	// Any inline (non-detached) case body still needs its bare
	// this/arguments references and compound var declarators rewritten,
	// same as every unmarked statement this function drains elsewhere;
	// the detached arms' stub bodies are already marked generatorSafe so
	// FixUnmarkedSubtree skips them without re-entering.
	fixed, err := FixUnmarkedSubtree(tr.tc, s)
	if err != nil {
		tr.tc.PopBreak()
		return err
	}
	tr.tc.Emit(fixed)
	// Every arm above (including the synthesized default) already sets
	// nextAddress before breaking out of this switch; this bare break
	// just stops the outer dispatch case from falling through into the
	// next one, matching the convention every other construct's emitted
	// statements follow.
	tr.tc.Emit(ast.NewBreak(""))

	for _, d := range work {
		tr.tc.SwitchTo(d.gc)
		for _, stmt := range d.body {
			if err := tr.lowerStatement(stmt); err != nil {
				tr.tc.PopBreak()
				return err
			}
		}
	}
	tr.tc.PopBreak()

	tr.tc.SwitchTo(endCase)
	return nil
}
