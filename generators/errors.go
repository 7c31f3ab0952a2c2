package generators

import (
	"fmt"

	"github.com/dispatchrun/genlower/ast"
)

// Diagnostic is a user-visible error: something the input program did
// that this pass cannot lower, as opposed to a bug in the pass itself.
// Transpile returns these for the two cases spec §7 names explicitly.
type Diagnostic struct {
	Code    string
	Message string
	At      *ast.Node
}

func (d *Diagnostic) Error() string {
	if d.At != nil {
		return fmt.Sprintf("%s: %s (at %s, line %d)", d.Code, d.Message, d.At.Kind, d.At.Pos.Line)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Diagnostic codes (spec §7's error taxonomy).
const (
	CodeUndecomposable   = "undecomposable-yield"
	CodeYieldInCaseLabel = "yield-in-case-label"
	CodeUnsupportedSuper = "super-in-generator"
)

func errUndecomposable(at *ast.Node) error {
	return &Diagnostic{
		Code:    CodeUndecomposable,
		Message: "Undecomposable expression: please rewrite the yield/await as a separate statement",
		At:      at,
	}
}

func errYieldInCaseLabel(at *ast.Node) error {
	return &Diagnostic{
		Code:    CodeYieldInCaseLabel,
		Message: "Cannot convert yet: Case statements that contain yields",
		At:      at,
	}
}

func errSuperInGenerator(at *ast.Node) error {
	return &Diagnostic{
		Code:    CodeUnsupportedSuper,
		Message: "super is not supported inside a generator function",
		At:      at,
	}
}

// InternalError signals a bug in the pass itself — a violated
// invariant, never a consequence of the input program. Spec §7 requires
// these be returned, not panicked, so a host compiler embedding this
// module never crashes outright, but they are never added to the user
// diagnostic channel.
type InternalError struct {
	err error
}

func (e *InternalError) Error() string { return "internal error: " + e.err.Error() }
func (e *InternalError) Unwrap() error { return e.err }

func internalf(format string, args ...any) error {
	return &InternalError{err: fmt.Errorf(format, args...)}
}
