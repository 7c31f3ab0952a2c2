// Package interp is a small tree-walking evaluator for the ast.Node
// program FunctionTranspiler emits: the address-switch driver function
// wrapped around a runtime.Context. It exists purely to let this
// module's own tests drive a lowered function end to end (spec §8's
// execution-equivalence checks) without a real host compiler backend —
// the vocabulary of statements and expressions it understands mirrors
// the Statement/Expression split other tree-walking interpreters in
// this space use (e.g. a plain recursive Eval over a Program's
// Statements), adapted here to ast.Node's single tagged-struct shape
// instead of an interface hierarchy.
package interp

import (
	"fmt"

	"github.com/dispatchrun/genlower/ast"
	"github.com/dispatchrun/genlower/runtime"
)

// Env is a single, flat variable scope. The programs this package
// evaluates are already fully hoisted by FunctionTranspiler (every var
// lives at program-body scope), so one flat map per call is enough;
// there is no block scoping to model.
type Env struct {
	vars map[string]any
}

func NewEnv() *Env { return &Env{vars: map[string]any{}} }

func (e *Env) Get(name string) any   { return e.vars[name] }
func (e *Env) Set(name string, v any) { e.vars[name] = v }

// signal is how a block-level eval reports an in-progress break/return/
// throw up to its caller, the same role an error return plays, but
// distinct from a real Go error so a caller can tell "this call
// produced a value" from "this call handed control somewhere else".
type signal int

const (
	signalNone signal = iota
	signalBreak
	signalReturn
)

// Driver wraps a lowered program function's body so it can be invoked
// once per resumption, matching runtime.StepFunc.
type Driver struct {
	body *ast.Node // the outer switch (or do-while-wrapped switch)
	env  *Env
}

// NewDriver builds a StepFunc-compatible driver over a lowered
// function's inner program body: the single statement (the do-while
// wrapped switch, or the bare switch) of the program function that
// FunctionTranspiler.Transpile passes as the second argument of
// `return runtime.createGenerator(name, programFn)`.
func NewDriver(programBody *ast.Node) *Driver {
	return &Driver{body: programBody, env: NewEnv()}
}

// Step implements runtime.StepFunc.
func (d *Driver) Step(ctx *runtime.Context) {
	ev := &evaluator{ctx: ctx, env: d.env}
	ev.execBlockOrDoWhile(d.body)
}

type evaluator struct {
	ctx *runtime.Context
	env *Env
}

func (ev *evaluator) execBlockOrDoWhile(n *ast.Node) {
	switch n.Kind {
	case ast.DoWhile:
		for {
			sig, _ := ev.exec(n.Body)
			if sig == signalReturn {
				return
			}
			cond := ev.eval(n.Cond)
			if !truthy(cond) {
				return
			}
		}
	default:
		ev.exec(n)
	}
}

// exec runs a statement, returning a signal and a value that is always
// nil: Return is always emitted as `return context.return(E)`, and
// Context.Return already records the outcome as a side effect, so the
// driver only needs the signal to stop executing.
func (ev *evaluator) exec(n *ast.Node) (signal, any) {
	if n == nil {
		return signalNone, nil
	}
	switch n.Kind {
	case ast.Block, ast.Program:
		for _, s := range n.Children {
			sig, v := ev.exec(s)
			if sig != signalNone {
				return sig, v
			}
		}
		return signalNone, nil

	case ast.ExprStmt:
		ev.eval(n.X)
		return signalNone, nil

	case ast.Var:
		for _, d := range n.Declarators {
			var v any
			if d.X != nil {
				v = ev.eval(d.X)
			}
			ev.env.Set(d.Name, v)
		}
		return signalNone, nil

	case ast.Return:
		ev.eval(n.X) // context.return(E) — records outcome as a side effect
		return signalReturn, nil

	case ast.Throw:
		ev.ctx.Throw(ev.eval(n.X))
		return signalReturn, nil

	case ast.Break:
		return signalBreak, nil

	case ast.If:
		if truthy(ev.eval(n.Cond)) {
			return ev.exec(n.Then)
		} else if n.Else != nil {
			return ev.exec(n.Else)
		}
		return signalNone, nil

	case ast.Switch:
		disc := ev.eval(n.X)
		matched := false
		for _, c := range n.Children {
			if !matched {
				if c.Test == nil {
					matched = true
				} else if equal(disc, ev.eval(c.Test)) {
					matched = true
				}
			}
			if matched {
				sig, v := ev.exec(&ast.Node{Kind: ast.Block, Children: c.Children})
				if sig == signalBreak {
					return signalNone, nil
				}
				if sig == signalReturn {
					return sig, v
				}
			}
		}
		return signalNone, nil

	case ast.Empty:
		return signalNone, nil

	default:
		panic(fmt.Sprintf("interp: unsupported statement kind %s", n.Kind))
	}
}

func (ev *evaluator) eval(n *ast.Node) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.Literal:
		return n.Value

	case ast.Name:
		if _, field, ok := splitRuntimeCallee(n.Name); ok {
			switch field {
			case "nextAddress":
				return ev.ctx.NextAddress()
			case "yieldResult":
				return ev.ctx.YieldResult()
			}
		}
		return ev.env.Get(n.Name)

	case ast.Assign:
		v := ev.eval(n.Right)
		if n.Left.Kind == ast.Name {
			ev.env.Set(n.Left.Name, v)
		}
		return v

	case ast.Comma:
		ev.eval(n.Left)
		return ev.eval(n.Right)

	case ast.Binary:
		return ev.evalBinary(n.Op, ev.eval(n.Left), ev.eval(n.Right))

	case ast.Unary:
		v := ev.eval(n.X)
		switch n.Op {
		case "!":
			return !truthy(v)
		case "-":
			return -toFloat(v)
		}
		panic("interp: unsupported unary operator " + n.Op)

	case ast.Call:
		return ev.evalCall(n)

	default:
		panic(fmt.Sprintf("interp: unsupported expression kind %s", n.Kind))
	}
}

// evalCall dispatches a `<ctxName>.<method>(args...)` call onto the
// runtime.Context every lowered program closes over. No other kind of
// call appears in FunctionTranspiler's own output (user calls inside a
// generator body are never rewritten, so they stay unmarked and are
// emitted verbatim by UnmarkedSubtreeFixer — a real host evaluator
// would dispatch those too, but this package only ever evaluates
// generator-pass output in isolation, so it only needs to understand
// the runtime method table).
func (ev *evaluator) evalCall(n *ast.Node) any {
	if n.X.Kind != ast.Name {
		panic("interp: call callee is not a simple name")
	}
	_, method, ok := splitRuntimeCallee(n.X.Name)
	if !ok {
		panic("interp: unrecognized callee " + n.X.Name)
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		args[i] = ev.eval(a)
	}

	switch method {
	case "jumpTo":
		ev.ctx.JumpTo(toInt(args[0]))
		return nil
	case "jumpToEnd":
		ev.ctx.JumpToEnd()
		return nil
	case "jumpThroughFinallyBlocks":
		ev.ctx.JumpThroughFinallyBlocks(toInt(args[0]))
		return nil
	case "return":
		return ev.ctx.Return(args[0])
	case "yield":
		return ev.ctx.Yield(args[0], toInt(args[1]))
	case "yieldAll":
		return ev.ctx.YieldAll(args[0].(runtime.Iterator), toInt(args[1]))
	case "forIn":
		return ev.ctx.ForIn(args[0])
	case "setFinallyBlock":
		ev.ctx.SetFinallyBlock(toInt(args[0]))
		return nil
	case "setCatchFinallyBlocks":
		ids := make([]int, len(args)-1)
		for i, a := range args[1:] {
			ids[i] = toInt(a)
		}
		ev.ctx.SetCatchFinallyBlocks(toInt(args[0]), ids...)
		return nil
	case "leaveTryBlock":
		ids := make([]int, len(args)-1)
		for i, a := range args[1:] {
			ids[i] = toInt(a)
		}
		ev.ctx.LeaveTryBlock(toInt(args[0]), ids...)
		return nil
	case "enterCatchBlock":
		ids := make([]int, len(args))
		for i, a := range args {
			ids[i] = toInt(a)
		}
		return ev.ctx.EnterCatchBlock(ids...)
	case "enterFinallyBlock":
		ids := make([]int, len(args))
		for i, a := range args {
			ids[i] = toInt(a)
		}
		ev.ctx.EnterFinallyBlock(ids...)
		return nil
	case "leaveFinallyBlock":
		ids := make([]int, len(args)-1)
		for i, a := range args[1:] {
			ids[i] = toInt(a)
		}
		ev.ctx.LeaveFinallyBlock(toInt(args[0]), ids...)
		return nil
	case "getNext":
		recv, _, _ := splitRuntimeCallee(n.X.Name)
		it := ev.env.Get(recv).(runtime.Iterator)
		v, ok := it.GetNext()
		if !ok {
			return nil
		}
		return v
	default:
		panic("interp: unknown runtime method " + method)
	}
}

func (ev *evaluator) evalBinary(op string, l, r any) any {
	switch op {
	case "+":
		if ls, ok := l.(string); ok {
			return ls + fmt.Sprint(r)
		}
		return toFloat(l) + toFloat(r)
	case "-":
		return toFloat(l) - toFloat(r)
	case "*":
		return toFloat(l) * toFloat(r)
	case "/":
		return toFloat(l) / toFloat(r)
	case "<":
		return toFloat(l) < toFloat(r)
	case "<=":
		return toFloat(l) <= toFloat(r)
	case ">":
		return toFloat(l) > toFloat(r)
	case ">=":
		return toFloat(l) >= toFloat(r)
	case "==":
		return equal(l, r)
	case "!=":
		return !equal(l, r)
	case "&&":
		return truthy(l) && truthy(r)
	case "||":
		return truthy(l) || truthy(r)
	}
	panic("interp: unsupported binary operator " + op)
}

func splitRuntimeCallee(name string) (receiver, method string, ok bool) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	default:
		panic("interp: expected int-like value")
	}
}

func equal(a, b any) bool {
	return a == b
}
