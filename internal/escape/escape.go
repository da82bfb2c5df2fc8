// Package escape implements the third core pass: it populates each
// FunDecl's EscapingDecls with the VarDecls the binder marked Escapes,
// in textual declaration order, grouped by their owning function.
//
// Grounded on original_source/lab6/dragon-tiger/src/ast/escaper.cc, with one
// deliberate fix: the original tracks "current function" as a single field
// set on FunDecl entry and never restored, so after visiting a nested
// function the enclosing function's own remaining declarations would be
// attributed to the wrong FunDecl. This implementation saves and restores
// the current-function pointer around each nested FunDecl, which is the
// behavior spec §4.3 calls out as the only sane reading.
package escape

import "github.com/nplang/corec/internal/ast"

// Escaper walks the tree once, assigning each escaping VarDecl to its
// lexically enclosing function.
type Escaper struct {
	current *ast.FunDecl
}

// New returns a ready-to-use Escaper.
func New() *Escaper { return &Escaper{} }

// Analyze populates EscapingDecls on every FunDecl reachable from main.
func (e *Escaper) Analyze(main *ast.FunDecl) {
	e.visitFunDecl(main)
}

func (e *Escaper) visitExpr(expr ast.Expr) {
	switch n := expr.(type) {
	case *ast.IntegerLiteral, *ast.StringLiteral:
		// leaves

	case *ast.BinaryOperator:
		e.visitExpr(n.Left)
		e.visitExpr(n.Right)

	case *ast.Sequence:
		for _, sub := range n.Exprs {
			e.visitExpr(sub)
		}

	case *ast.Let:
		for _, d := range n.Decls {
			e.visitDecl(d)
		}
		e.visitExpr(n.Body)

	case *ast.Identifier:
		// leaf

	case *ast.IfThenElse:
		e.visitExpr(n.Cond)
		e.visitExpr(n.Then)
		e.visitExpr(n.Else)

	case *ast.FunCall:
		for _, a := range n.Args {
			e.visitExpr(a)
		}

	case *ast.WhileLoop:
		e.visitExpr(n.Cond)
		e.visitExpr(n.Body)

	case *ast.ForLoop:
		e.visitVarDecl(n.Variable)
		e.visitExpr(n.High)
		e.visitExpr(n.Body)

	case *ast.Break:
		// leaf

	case *ast.Assign:
		e.visitExpr(n.LHS)
		e.visitExpr(n.RHS)

	default:
		panic("escape: unexpected expression kind")
	}
}

func (e *Escaper) visitDecl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.VarDecl:
		e.visitVarDecl(d)
	case *ast.FunDecl:
		e.visitFunDecl(d)
	default:
		panic("escape: unexpected decl kind")
	}
}

func (e *Escaper) visitVarDecl(decl *ast.VarDecl) {
	if decl.Escapes {
		e.current.EscapingDecls = append(e.current.EscapingDecls, decl)
	}
	if decl.Expr != nil {
		e.visitExpr(decl.Expr)
	}
}

func (e *Escaper) visitFunDecl(decl *ast.FunDecl) {
	outer := e.current
	e.current = decl
	for _, p := range decl.Params {
		e.visitVarDecl(p)
	}
	if decl.Body != nil {
		e.visitExpr(decl.Body)
	}
	e.current = outer
}
