package generators

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/dispatchrun/genlower/ast"
	"github.com/dispatchrun/genlower/runtime"
)

// goldenTrace is the expected (yieldedValues, returnValue, thrown)
// triple spec §8 calls the "behavioral oracle", parsed out of one file
// of generators/testdata/scenarios.txtar.
type goldenTrace struct {
	yielded []string
	ret     string
	thrown  string
}

func parseGoldenTrace(t *testing.T, data []byte) goldenTrace {
	t.Helper()
	var g goldenTrace
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			t.Fatalf("malformed golden line %q", line)
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "yielded":
			for _, part := range strings.Split(val, ",") {
				g.yielded = append(g.yielded, strings.TrimSpace(part))
			}
		case "return":
			g.ret = val
		case "thrown":
			g.thrown = val
		default:
			t.Fatalf("unknown golden key %q", key)
		}
	}
	return g
}

// repr mirrors the textual representation parseGoldenTrace expects for
// a dynamically-typed value: a Go %v formatting, with nil spelled
// "<nil>" to match the archive's literal text.
func repr(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}

// buildFn constructs the generator AST for one golden scenario.
type buildFn func() *ast.Node

var goldenBuilders = map[string]buildFn{
	"single-yield": func() *ast.Node {
		body := ast.NewBlock(
			ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))),
			ast.NewExprStmt(ast.NewYield(ast.NewLiteral(2.0))),
		)
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
	"yield-in-binary": func() *ast.Node {
		// return a + (yield b); with a=10, b=5, resumed with 5.
		body := ast.NewBlock(
			ast.NewReturn(ast.NewBinary("+", ast.NewLiteral(10.0), ast.NewYield(ast.NewLiteral(5.0)))),
		)
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
	"labeled-break-through-finally": func() *ast.Node {
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
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
	"for-in-yield": func() *ast.Node {
		body := ast.NewBlock(
			ast.NewForIn(ast.NewName("k"), ast.NewLiteral([]any{"a", "b", "c"}),
				ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewName("k"))))),
		)
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
	"switch-yield": func() *ast.Node {
		body := ast.NewBlock(
			ast.NewSwitch(ast.NewLiteral(2.0),
				ast.NewCase(ast.NewLiteral(1.0),
					ast.NewExprStmt(ast.NewYield(ast.NewLiteral("a"))),
					ast.NewBreak("")),
				ast.NewCase(ast.NewLiteral(2.0),
					ast.NewExprStmt(ast.NewYield(ast.NewLiteral("b"))),
					ast.NewBreak("")),
			),
		)
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
	"try-catch-yield": func() *ast.Node {
		body := ast.NewBlock(
			ast.NewTry(
				ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0)))),
				ast.NewCatch(ast.NewName("e"),
					ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewName("e"))))),
				nil,
			),
		)
		return &ast.Node{Kind: ast.Function, Name: "gen", IsGenerator: true, Body: body}
	},
}

// driveSpec describes how a golden scenario's driver loop should resume
// the generator at each step beyond the first: plain Next()s by
// default, a value sent back at a given resumption (the "yield in
// binary expression" scenario's resumed value), or an externally
// injected Throw (scenario 5's "driver throws x into the generator
// after the first yield").
type driveSpec struct {
	sends   []any // sends[i] is what resumption i+1 sends back
	throwAt int   // resumption index at which to call Throw instead of Send; -1 disables
	throw   any
}

// drive runs gen to completion per spec and collects the observed trace
// in the same textual form parseGoldenTrace produces.
func drive(gen *runtime.Generator, spec driveSpec) goldenTrace {
	var got goldenTrace
	for step := 0; ; step++ {
		var v any
		var done bool
		switch {
		case spec.throwAt >= 0 && step == spec.throwAt:
			v, done = gen.Throw(spec.throw)
		case step == 0:
			v, done = gen.Next()
		default:
			var send any
			if step-1 < len(spec.sends) {
				send = spec.sends[step-1]
			}
			v, done = gen.Send(send)
		}
		if done {
			if thrown, ok := gen.Thrown(); ok {
				got.thrown = repr(thrown)
			} else {
				got.ret = repr(v)
				got.thrown = "<none>"
			}
			return got
		}
		got.yielded = append(got.yielded, repr(v))
	}
}

var goldenDriveSpecs = map[string]driveSpec{
	"try-catch-yield": {throwAt: 1, throw: "x"},
	"yield-in-binary": {sends: []any{5.0}, throwAt: -1},
}

// TestGoldenScenarios replays spec.md section 8's six named scenarios
// through the full Transpile pipeline and checks the observed trace
// against golden expectations stored in testdata/scenarios.txtar.
func TestGoldenScenarios(t *testing.T) {
	archive, err := txtar.ParseFile("testdata/scenarios.txtar")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(archive.Files) == 0 {
		t.Fatalf("no golden files found in archive")
	}

	for _, f := range archive.Files {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			build, ok := goldenBuilders[f.Name]
			if !ok {
				t.Fatalf("no builder registered for golden scenario %q", f.Name)
			}
			want := parseGoldenTrace(t, f.Data)

			fn := build()
			lowered, err := Transpile(fn)
			if err != nil {
				t.Fatalf("Transpile: %v", err)
			}
			gen := buildGenerator(t, lowered)

			spec, ok := goldenDriveSpecs[f.Name]
			if !ok {
				spec = driveSpec{throwAt: -1}
			}
			got := drive(gen, spec)

			if !equalStrings(got.yielded, want.yielded) {
				t.Errorf("yielded = %v, want %v", got.yielded, want.yielded)
			}
			if want.thrown != "<none>" {
				if got.thrown != want.thrown {
					t.Errorf("thrown = %v, want %v", got.thrown, want.thrown)
				}
			} else if got.ret != want.ret {
				t.Errorf("return = %v, want %v", got.ret, want.ret)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
