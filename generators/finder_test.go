package generators

import (
	"testing"

	"github.com/dispatchrun/genlower/ast"
)

// TestYieldFinder exercises the three contractual outcomes spec §4.3
// names: exactly one yield found, zero found, and more than one found.
func TestYieldFinder(t *testing.T) {
	t.Run("unique", func(t *testing.T) {
		y := ast.NewYield(ast.NewLiteral(1.0))
		stmt := ast.NewExprStmt(ast.NewBinary("+", ast.NewLiteral(1.0), y))
		found, err := YieldFinder(stmt)
		if err != nil {
			t.Fatalf("YieldFinder: %v", err)
		}
		if found != y {
			t.Fatalf("YieldFinder returned the wrong node")
		}
	})

	t.Run("none", func(t *testing.T) {
		stmt := ast.NewExprStmt(ast.NewBinary("+", ast.NewLiteral(1.0), ast.NewLiteral(2.0)))
		if _, err := YieldFinder(stmt); err == nil {
			t.Fatalf("expected an error when no yield is present")
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		stmt := ast.NewExprStmt(ast.NewBinary("+",
			ast.NewYield(ast.NewLiteral(1.0)),
			ast.NewYield(ast.NewLiteral(2.0))))
		if _, err := YieldFinder(stmt); err == nil {
			t.Fatalf("expected an error when more than one yield is present")
		}
	})

	t.Run("does not cross function boundary", func(t *testing.T) {
		inner := &ast.Node{Kind: ast.Function, Body: ast.NewBlock(ast.NewExprStmt(ast.NewYield(ast.NewLiteral(1.0))))}
		outer := ast.NewBlock(ast.NewExprStmt(ast.NewCall(inner)))
		if _, err := YieldFinder(outer); err == nil {
			t.Fatalf("expected an error: the only yield is inside a nested function body")
		}
	})
}
