// Package runtime implements the driver-side contract a lowered
// generator function is written against: the method table from spec
// section 6 (jumpTo, yield, yieldAll, return, the try/catch/finally
// handler stack, forIn) plus the Generator wrapper that steps it.
//
// Nothing here performs real suspension. The whole point of lowering a
// generator into an address-switch driver is that no goroutine ever
// blocks on a yield: yielding just records where to resume and hands
// control back to the caller. Context is therefore a plain synchronous
// value, and Generator.Next/Send/Throw call the driver function
// repeatedly on each resumption until it yields or finishes, the shape
// coroc's own Generator exposes
// (Recv/Send/Next) but without the goroutine+channel machinery, since
// this core's output never needs to block a thread.
package runtime

import "fmt"

// EntryAddress is the address of a generator function's first case.
// Address 0 is reserved for program end (spec §6, §8's "address
// well-formedness" invariant).
const EntryAddress = 1

// EndAddress marks normal completion.
const EndAddress = 0

type handlerFrame struct {
	catchID             int
	hasCatch            bool
	finallyID           int
	hasFinally          bool
}

// Context is the `context` object every lowered statement references.
// One Context is created per call to the generator function and lives
// for that call's entire lifetime, including across suspensions.
type Context struct {
	nextAddress int
	yieldResult any

	yielded       any
	yieldDelegate *delegateState
	suspended     bool

	finished    bool
	returnValue any
	thrown      any
	hasThrown   bool

	handlers                []handlerFrame
	pendingCatch            any
	pendingRethrow          any
	hasPendingRethrow       bool
	pendingJump             int
	nestedFinallyBlockCount int
}

type delegateState struct {
	it     Iterator
	nextID int
}

// New returns a Context positioned at the entry address.
func New() *Context {
	return &Context{nextAddress: EntryAddress, pendingJump: -1}
}

// NextAddress is the field the generated switch dispatches on.
func (c *Context) NextAddress() int { return c.nextAddress }

// YieldResult is the field a resumed `yield` expression evaluates to.
func (c *Context) YieldResult() any { return c.yieldResult }

// JumpTo sets nextAddress and returns to the caller. The emitted AST
// always pairs a jumpTo call with an immediate `break` out of the
// switch, per spec §4.4's "switch to C" convention.
func (c *Context) JumpTo(id int) { c.nextAddress = id }

// JumpToEnd terminates the generator normally with no return value.
func (c *Context) JumpToEnd() { c.finished = true }

// Return terminates the generator with value v. The emitted statement
// is `return context.return(E);`; Context.Return just records the
// outcome, since in this synchronous model there is no call stack to
// unwind through.
func (c *Context) Return(v any) any {
	c.finished = true
	c.returnValue = v
	return v
}

// Yield suspends the generator, exposing v to the consumer, and arranges
// to resume at nextID with yieldResult populated from the value the
// consumer sends back.
func (c *Context) Yield(v any, nextID int) any {
	c.yielded = v
	c.suspended = true
	c.nextAddress = nextID
	return nil
}

// YieldAll delegates suspension to it until it is exhausted, then
// resumes at nextID.
func (c *Context) YieldAll(it Iterator, nextID int) any {
	c.yieldDelegate = &delegateState{it: it, nextID: nextID}
	c.suspended = true
	return nil
}

// ForIn returns an iterator over obj's enumerable keys, in enumeration
// order, for the FOR-IN lowering's `context.forIn(E).getNext()` pattern.
func (c *Context) ForIn(obj any) Iterator { return newForInIterator(obj) }

// SetFinallyBlock installs a finally-only handler frame for the
// enclosing try.
func (c *Context) SetFinallyBlock(id int) {
	c.handlers = append(c.handlers, handlerFrame{finallyID: id, hasFinally: true})
}

// SetCatchFinallyBlocks installs a handler frame with a catch and,
// optionally, a finally.
func (c *Context) SetCatchFinallyBlocks(catchID int, finallyID ...int) {
	hf := handlerFrame{catchID: catchID, hasCatch: true}
	if len(finallyID) > 0 {
		hf.finallyID, hf.hasFinally = finallyID[0], true
	}
	c.handlers = append(c.handlers, hf)
}

// LeaveTryBlock pops the current handler frame on normal try-body
// completion and jumps past the try/catch/finally construct.
func (c *Context) LeaveTryBlock(endID int, nextCatchID ...int) {
	c.popHandler()
	c.JumpTo(endID)
}

// EnterCatchBlock returns the exception that triggered this catch and
// makes the next enclosing handler (if any) active again.
func (c *Context) EnterCatchBlock(nextCatchID ...int) any {
	v := c.pendingCatch
	c.pendingCatch = nil
	return v
}

// EnterFinallyBlock marks entry into a finally block, incrementing the
// nesting depth that LeaveFinallyBlock decrements and StackBalanced
// checks. Its arguments are ignored, and LeaveFinallyBlock does not use
// the depth to decide which frame a pending jump/rethrow belongs to.
func (c *Context) EnterFinallyBlock(args ...int) {
	c.nestedFinallyBlockCount++
}

// LeaveFinallyBlock resumes execution after a finally block: either
// completing a deferred jump-through, rethrowing a deferred exception,
// or falling through to endID normally.
func (c *Context) LeaveFinallyBlock(endID int, depth ...int) {
	c.nestedFinallyBlockCount--
	switch {
	case c.hasPendingRethrow:
		v := c.pendingRethrow
		c.pendingRethrow, c.hasPendingRethrow = nil, false
		c.propagateThrow(v)
	case c.pendingJump >= 0:
		id := c.pendingJump
		c.pendingJump = -1
		c.JumpTo(id)
	default:
		c.JumpTo(endID)
	}
}

// JumpThroughFinallyBlocks behaves like JumpTo, except that when a
// handler frame with a finally block is active, the innermost such
// finally runs first (used for any break/continue, labeled or bare, that
// crosses a finally): id is recorded as the pending jump, that frame and
// every frame inside it are popped, and control moves to the finally,
// whose LeaveFinallyBlock then jumps straight to id. Enclosing finally
// blocks further out are not run, and the position of id relative to
// the active frames is not checked.
func (c *Context) JumpThroughFinallyBlocks(id int) {
	for i := len(c.handlers) - 1; i >= 0; i-- {
		if c.handlers[i].hasFinally {
			c.pendingJump = id
			c.JumpTo(c.handlers[i].finallyID)
			c.handlers = c.handlers[:i]
			return
		}
	}
	c.JumpTo(id)
}

// Throw injects an exception value into the generator, either
// delivered to the active catch/finally handler or, absent one,
// terminating the generator with Thrown set. Used both by the driver
// to model a `throw` statement and by Generator.Throw to inject an
// exception from outside (spec §8 scenario 5). The thrown value is any,
// not error, since the source language can throw any value.
func (c *Context) Throw(v any) { c.propagateThrow(v) }

func (c *Context) propagateThrow(v any) {
	for len(c.handlers) > 0 {
		h := c.handlers[len(c.handlers)-1]
		c.handlers = c.handlers[:len(c.handlers)-1]
		if h.hasCatch {
			c.pendingCatch = v
			c.JumpTo(h.catchID)
			return
		}
		if h.hasFinally {
			c.pendingRethrow, c.hasPendingRethrow = v, true
			c.JumpTo(h.finallyID)
			return
		}
	}
	c.finished = true
	c.thrown, c.hasThrown = v, true
}

func (c *Context) popHandler() {
	if len(c.handlers) == 0 {
		return
	}
	c.handlers = c.handlers[:len(c.handlers)-1]
}

// StackBalanced reports whether every push onto a context stack has
// been matched by a pop, and no finally nesting is outstanding — the
// invariant spec §8 requires after every successful transpile and every
// controlled diagnostic abort (checked here at the runtime level, on
// the executed trace, as a belt-and-braces companion to the static
// TranspilationContext.StackBalanced check Transpile performs).
func (c *Context) StackBalanced() bool {
	return len(c.handlers) == 0 && c.nestedFinallyBlockCount == 0
}

func (c *Context) String() string {
	return fmt.Sprintf("Context{addr=%d finished=%v suspended=%v}", c.nextAddress, c.finished, c.suspended)
}
