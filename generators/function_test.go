package generators

import (
	"testing"

	"github.com/dispatchrun/genlower/ast"
	"github.com/dispatchrun/genlower/interp"
	"github.com/dispatchrun/genlower/runtime"
)

// buildGenerator wraps fn (the already-lowered outer function Transpile
// returns) by pulling the inner program function out of its
// `return runtime.createGenerator(name, programFn)` body and driving it
// with interp, mirroring how a real host would invoke the lowered code.
func buildGenerator(t *testing.T, fn *ast.Node) *runtime.Generator {
	t.Helper()
	ret := fn.Body.Children[len(fn.Body.Children)-1]
	if ret.Kind != ast.Return {
		t.Fatalf("lowered function body does not end in return, got %s", ret.Kind)
	}
	call := ret.X
	if call.Kind != ast.Call || len(call.Args) != 2 {
		t.Fatalf("expected return runtime.createGenerator(name, programFn)")
	}
	programFn := call.Args[1]
	driver := interp.NewDriver(programFn.Body.Children[0])
	return runtime.NewGenerator(driver.Step)
}

// TestTranspileSingleYield lowers `function*() { yield 1; yield 2; }`
// and drives the result through two Next() calls.
func TestTranspileSingleYield(t *testing.T) {
	body := ast.NewBlock(
		ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))),
		ast.NewExprStmt(ast.NewYield(ast.NewLiteral(2.0))),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}

	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	gen := buildGenerator(t, lowered)

	v, done := gen.Next()
	if done || v != 1.0 {
		t.Fatalf("first Next() = (%v, %v), want (1, false)", v, done)
	}
	v, done = gen.Next()
	if done || v != 2.0 {
		t.Fatalf("second Next() = (%v, %v), want (2, false)", v, done)
	}
	v, done = gen.Next()
	if !done {
		t.Fatalf("third Next() should complete the generator, got (%v, %v)", v, done)
	}
}

// TestTranspileIfWithYield lowers a generator whose only yield sits
// inside an if/else, checking both branches reach a suspension point.
func TestTranspileIfWithYield(t *testing.T) {
	build := func(flag bool) *runtime.Generator {
		body := ast.NewBlock(
			ast.NewIf(ast.NewLiteral(flag),
				ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral("then")))),
				ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral("else"))))),
		)
		fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
		lowered, err := Transpile(fn)
		if err != nil {
			t.Fatalf("Transpile: %v", err)
		}
		return buildGenerator(t, lowered)
	}

	gen := build(true)
	v, done := gen.Next()
	if done || v != "then" {
		t.Fatalf("then-branch Next() = (%v, %v), want (\"then\", false)", v, done)
	}
	_, done = gen.Next()
	if !done {
		t.Fatalf("expected completion after then-branch yield")
	}

	gen = build(false)
	v, done = gen.Next()
	if done || v != "else" {
		t.Fatalf("else-branch Next() = (%v, %v), want (\"else\", false)", v, done)
	}
}

// TestTranspileForLoopYield lowers `for (var i = 0; i < 3; i = i + 1)
// yield i;` and checks every iteration is observed in order.
func TestTranspileForLoopYield(t *testing.T) {
	body := ast.NewBlock(
		ast.NewFor(
			ast.NewVar(ast.NewDeclarator("i", ast.NewLiteral(0.0))),
			ast.NewBinary("<", ast.NewName("i"), ast.NewLiteral(3.0)),
			ast.NewAssign("=", ast.NewName("i"), ast.NewBinary("+", ast.NewName("i"), ast.NewLiteral(1.0))),
			ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewName("i")))),
		),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	for want := 0.0; want < 3; want++ {
		v, done := gen.Next()
		if done || v != want {
			t.Fatalf("Next() = (%v, %v), want (%v, false)", v, done, want)
		}
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after loop exhausted")
	}
}

// TestTranspileYieldInBinaryExpression lowers `var x = 1 + (yield 2);
// yield x;`, exercising decompose.Default/YieldExposer's extraction of a
// yield buried inside a compound expression through the full pipeline.
func TestTranspileYieldInBinaryExpression(t *testing.T) {
	body := ast.NewBlock(
		ast.NewVar(ast.NewDeclarator("x",
			ast.NewBinary("+", ast.NewLiteral(1.0), ast.NewYield(ast.NewLiteral(2.0))))),
		ast.NewExprStmt(ast.NewYield(ast.NewName("x"))),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	v, done := gen.Next()
	if done || v != 2.0 {
		t.Fatalf("first Next() = (%v, %v), want (2, false)", v, done)
	}
	v, done = gen.Send(10.0)
	if done || v != 11.0 {
		t.Fatalf("Send(10) = (%v, %v), want (11, false)", v, done)
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after yielding x")
	}
}

// TestTranspileForInYield lowers `for (var k in obj) yield k;` over a
// 3-element slice, exercising lowerForIn specifically (as opposed to the
// C-style for loop TestTranspileForLoopYield already covers).
func TestTranspileForInYield(t *testing.T) {
	body := ast.NewBlock(
		ast.NewForIn(ast.NewName("k"), ast.NewLiteral([]any{"a", "b", "c"}),
			ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewName("k"))))),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	for want := 0; want < 3; want++ {
		v, done := gen.Next()
		if done || v != want {
			t.Fatalf("Next() = (%v, %v), want (%v, false)", v, done, want)
		}
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after for-in exhausted")
	}
}

// TestTranspileSwitchWithYield lowers a switch with a yield in each of
// two cases and no user-provided default, exercising lowerSwitch's
// case-detachment and the synthesized fall-through-past-the-switch arm.
func TestTranspileSwitchWithYield(t *testing.T) {
	build := func(selector float64) *runtime.Generator {
		body := ast.NewBlock(
			ast.NewSwitch(ast.NewLiteral(selector),
				ast.NewCase(ast.NewLiteral(1.0),
					ast.NewExprStmt(ast.NewYield(ast.NewLiteral("one"))),
					ast.NewBreak("")),
				ast.NewCase(ast.NewLiteral(2.0),
					ast.NewExprStmt(ast.NewYield(ast.NewLiteral("two"))),
					ast.NewBreak("")),
			),
			ast.NewExprStmt(ast.NewYield(ast.NewLiteral("after"))),
		)
		fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
		lowered, err := Transpile(fn)
		if err != nil {
			t.Fatalf("Transpile: %v", err)
		}
		return buildGenerator(t, lowered)
	}

	gen := build(1.0)
	v, done := gen.Next()
	if done || v != "one" {
		t.Fatalf("case 1 Next() = (%v, %v), want (\"one\", false)", v, done)
	}
	v, done = gen.Next()
	if done || v != "after" {
		t.Fatalf("case 1 second Next() = (%v, %v), want (\"after\", false)", v, done)
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after \"after\" yield")
	}

	gen = build(3.0) // matches no case and there is no user default
	v, done = gen.Next()
	if done || v != "after" {
		t.Fatalf("no-match Next() = (%v, %v), want (\"after\", false)", v, done)
	}
}

// TestTranspileTryCatchYield lowers a try body that yields, then throws,
// caught by a catch clause that itself yields the caught value, through
// the full Transpile pipeline (runtime/context_test.go only exercises
// this at the raw runtime.Context level).
func TestTranspileTryCatchYield(t *testing.T) {
	body := ast.NewBlock(
		ast.NewTry(
			ast.NewBlock(
				ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))),
				ast.NewThrow(ast.NewLiteral("boom")),
			),
			ast.NewCatch(ast.NewName("e"),
				ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewName("e"))))),
			nil,
		),
		ast.NewExprStmt(ast.NewYield(ast.NewLiteral("done"))),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	v, done := gen.Next()
	if done || v != 1.0 {
		t.Fatalf("first Next() = (%v, %v), want (1, false)", v, done)
	}
	v, done = gen.Next()
	if done || v != "boom" {
		t.Fatalf("second Next() = (%v, %v), want (\"boom\", false)", v, done)
	}
	v, done = gen.Next()
	if done || v != "done" {
		t.Fatalf("third Next() = (%v, %v), want (\"done\", false)", v, done)
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after catch handled the throw")
	}
}

// TestTranspileLabeledBreakThroughFinally lowers scenario 3 from the
// transpiler's behavioral contract: `outer: for(;;){ try { yield 1;
// break outer; } finally { yield 2; } }`, exercising
// labeledJumpStatement's use of JumpThroughFinallyBlocks (as opposed to
// a plain jumpTo) to run the pending finally before the break escapes
// the loop.
func TestTranspileLabeledBreakThroughFinally(t *testing.T) {
	body := ast.NewBlock(
		ast.NewLabel("outer",
			ast.NewFor(nil, nil, nil,
				ast.NewBlock(
					ast.NewTry(
						ast.NewBlock(
							ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))),
							ast.NewBreak("outer"),
						),
						nil,
						ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral(2.0)))),
					),
				),
			),
		),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	v, done := gen.Next()
	if done || v != 1.0 {
		t.Fatalf("first Next() = (%v, %v), want (1, false)", v, done)
	}
	v, done = gen.Next()
	if done || v != 2.0 {
		t.Fatalf("second Next() = (%v, %v), want (2, false): finally block must run before the break escapes the loop", v, done)
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after the break-through-finally left the loop")
	}
}

// TestTranspileBareBreakThroughFinally is the unlabeled counterpart of
// TestTranspileLabeledBreakThroughFinally: `for(;;){ try { yield 1;
// break; } finally { yield 2; } }`. A bare break targeting the loop it
// sits directly inside a try/finally of must still run that finally
// before escaping, exactly like the labeled case.
func TestTranspileBareBreakThroughFinally(t *testing.T) {
	body := ast.NewBlock(
		ast.NewFor(nil, nil, nil,
			ast.NewBlock(
				ast.NewTry(
					ast.NewBlock(
						ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))),
						ast.NewBreak(""),
					),
					nil,
					ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral(2.0)))),
				),
			),
		),
	)
	fn := &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	lowered, err := Transpile(fn)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	gen := buildGenerator(t, lowered)

	v, done := gen.Next()
	if done || v != 1.0 {
		t.Fatalf("first Next() = (%v, %v), want (1, false)", v, done)
	}
	v, done = gen.Next()
	if done || v != 2.0 {
		t.Fatalf("second Next() = (%v, %v), want (2, false): finally block must run before the bare break escapes the loop", v, done)
	}
	if _, done := gen.Next(); !done {
		t.Fatalf("expected completion after the break-through-finally left the loop")
	}
}

func TestFinalizeCollapsesEmptyJumpChain(t *testing.T) {
	namer := &ast.NameGen{}
	tc := NewTranspilationContext(namer, namer.Context())

	mid := tc.NewCase()
	end := tc.NewCase()
	tc.SwitchTo(mid) // entry case body is empty -> entry.JumpTo = mid
	tc.SwitchTo(end) // mid's body is still empty -> mid.JumpTo = end
	tc.Emit(ast.NewReturn(tc.RuntimeCall("return", ast.NewLiteral(nil))))

	cases := tc.Finalize()
	for _, c := range cases {
		if c.ID == mid.ID {
			t.Fatalf("empty intermediate case should have been collapsed away")
		}
	}
	if len(cases) != 1 {
		t.Fatalf("expected entry and end to merge into a single surviving case, got %d", len(cases))
	}
}
