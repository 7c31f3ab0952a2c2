package runtime

import "testing"

// step1 implements `function*(){ yield 1; yield 2; }` by hand, the
// lowered shape of spec §8 scenario 1.
func step1(ctx *Context) {
	switch ctx.NextAddress() {
	case 1:
		ctx.JumpTo(2)
		ctx.Yield(1, 2)
	case 2:
		ctx.JumpTo(3)
		ctx.Yield(2, 3)
	case 3:
		ctx.JumpToEnd()
	}
}

func TestGeneratorSingleYield(t *testing.T) {
	g := NewGenerator(step1)

	v, done := g.Next()
	if done || v != 1 {
		t.Fatalf("first Next() = %v, %v; want 1, false", v, done)
	}
	v, done = g.Next()
	if done || v != 2 {
		t.Fatalf("second Next() = %v, %v; want 2, false", v, done)
	}
	v, done = g.Next()
	if !done || v != nil {
		t.Fatalf("third Next() = %v, %v; want nil, true", v, done)
	}
	if !g.Context().StackBalanced() {
		t.Fatalf("context stacks not balanced at completion")
	}
}

// stepTryCatch implements scenario 5: try { yield 1; } catch(e){ yield e; }
func stepTryCatch(ctx *Context) {
	switch ctx.NextAddress() {
	case 1:
		ctx.SetCatchFinallyBlocks(3)
		ctx.JumpTo(2)
	case 2:
		ctx.JumpTo(4)
		ctx.Yield(1, 4)
	case 3:
		e := ctx.EnterCatchBlock()
		ctx.JumpTo(5)
		ctx.Yield(e, 5)
	case 4:
		ctx.LeaveTryBlock(6)
	case 5:
		ctx.JumpToEnd()
	case 6:
		ctx.JumpToEnd()
	}
}

func TestGeneratorTryCatchThrow(t *testing.T) {
	g := NewGenerator(stepTryCatch)

	v, done := g.Next()
	if done || v != 1 {
		t.Fatalf("Next() = %v, %v; want 1, false", v, done)
	}

	v, done = g.Throw("x")
	if done || v != "x" {
		t.Fatalf("Throw() = %v, %v; want \"x\", false", v, done)
	}

	v, done = g.Next()
	if !done {
		t.Fatalf("generator should have completed, got %v, %v", v, done)
	}
	if !g.Context().StackBalanced() {
		t.Fatalf("context stacks not balanced at completion")
	}
}

func TestForInIterationOrder(t *testing.T) {
	obj := NewOrderedObject([]string{"a", "b"}, []any{1, 2})
	it := New().ForIn(obj)

	var got []any
	for {
		v, ok := it.GetNext()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("ForIn order = %v, want [a b]", got)
	}
}
