package runtime

// StepFunc executes exactly one case body of the lowered switch — the
// body selected by ctx.NextAddress() — mutating ctx as it goes. It is
// supplied by whatever executes the lowered AST (the interp package, in
// this module's own tests; a real host compiler would instead emit Go
// source that closes over a *Context the same way).
type StepFunc func(ctx *Context)

// Generator drives a StepFunc to completion, one resumption at a time.
// Its Send/Next names mirror coroc's own Generator API (which also has
// Recv, absent here); unlike
// coroc's, this one needs no goroutine or OS stack, because the
// lowering this module performs leaves no suspension point inside Go's
// own call stack — every suspension is just a recorded address.
type Generator struct {
	ctx  *Context
	step StepFunc
}

// NewGenerator returns a Generator ready to run step from the entry
// address.
func NewGenerator(step StepFunc) *Generator {
	return &Generator{ctx: New(), step: step}
}

// Context exposes the underlying driver state, mainly for tests that
// want to assert on StackBalanced after a run.
func (g *Generator) Context() *Context { return g.ctx }

// Next resumes the generator, sending nil as the yielded-back value,
// and runs until the next yield or completion.
func (g *Generator) Next() (value any, done bool) { return g.Send(nil) }

// Send resumes the generator with sent as the resumed yield's value and
// runs until the next yield or completion.
func (g *Generator) Send(sent any) (value any, done bool) {
	if g.ctx.finished {
		return nil, true
	}
	g.ctx.yieldResult = sent
	return g.run()
}

// Throw injects an exception value at the current suspension point (or,
// if the generator hasn't started, behaves like starting it only to
// immediately throw) and runs until the next yield or completion.
func (g *Generator) Throw(v any) (value any, done bool) {
	if g.ctx.finished {
		return nil, true
	}
	g.ctx.Throw(v)
	if g.ctx.finished {
		return nil, true
	}
	return g.run()
}

// Return forces early completion with the given return value, skipping
// any remaining body — matching the host generator protocol's
// `.return(v)`, not spec §6's `context.return` (the statement-level
// lowering target), which is a different operation at a different
// layer.
func (g *Generator) Return(v any) (value any, done bool) {
	g.ctx.finished = true
	g.ctx.returnValue = v
	return v, true
}

// ReturnValue is valid once Done reports true and Thrown is nil.
func (g *Generator) ReturnValue() any { return g.ctx.returnValue }

// Thrown reports the value the generator terminated with, if it
// completed by propagating an exception past its outermost handler.
func (g *Generator) Thrown() (value any, ok bool) { return g.ctx.thrown, g.ctx.hasThrown }

// Done reports whether the generator has completed (by return, falling
// off the end, or an uncaught throw).
func (g *Generator) Done() bool { return g.ctx.finished }

func (g *Generator) run() (any, bool) {
	g.ctx.suspended = false
	for !g.ctx.suspended && !g.ctx.finished {
		if d := g.ctx.yieldDelegate; d != nil {
			v, ok := d.it.GetNext()
			if !ok {
				g.ctx.yieldDelegate = nil
				g.ctx.nextAddress = d.nextID
				continue
			}
			g.ctx.yielded = v
			g.ctx.suspended = true
			break
		}
		g.step(g.ctx)
	}
	if g.ctx.suspended {
		return g.ctx.yielded, false
	}
	return g.ctx.returnValue, true
}
