// Package checker implements the second core pass: it assigns a type to
// every expression and declaration and rejects ill-typed programs. It runs
// after internal/binder and relies on every back-reference already being
// resolved.
//
// original_source's type_checker.cc is an empty teaching-exercise stub (every
// visit method is a blank body), so this implementation follows spec §4.2's
// per-node-kind rules directly; there is no original-source algorithm to
// translate for this pass.
package checker

import (
	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/types"
)

// Checker assigns types bottom-up over the decorated tree produced by the
// binder.
type Checker struct {
	syms  *symbol.Table
	diags *diag.Sink
}

// New returns a Checker reporting diagnostics to diags. syms resolves type
// annotation symbols ("int"/"string") back to their surface spelling.
func New(syms *symbol.Table, diags *diag.Sink) *Checker {
	return &Checker{syms: syms, diags: diags}
}

// TypeCheck assigns types to every node reachable from main, starting with
// main itself.
func (c *Checker) TypeCheck(main *ast.FunDecl) error {
	return c.visitFunDecl(main)
}

func (c *Checker) visitExpr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		e.SetType(types.Int)
		return nil

	case *ast.StringLiteral:
		e.SetType(types.String)
		return nil

	case *ast.BinaryOperator:
		return c.visitBinaryOperator(e)

	case *ast.Sequence:
		return c.visitSequence(e)

	case *ast.Let:
		return c.visitLet(e)

	case *ast.Identifier:
		if e.Decl == nil {
			panic("checker: identifier without a resolved declaration; binder must run first")
		}
		e.SetType(e.Decl.Type())
		return nil

	case *ast.IfThenElse:
		return c.visitIfThenElse(e)

	case *ast.FunCall:
		return c.visitFunCall(e)

	case *ast.WhileLoop:
		return c.visitWhileLoop(e)

	case *ast.ForLoop:
		return c.visitForLoop(e)

	case *ast.Break:
		e.SetType(types.Void)
		return nil

	case *ast.Assign:
		return c.visitAssign(e)

	default:
		panic("checker: unexpected expression kind")
	}
}

func (c *Checker) visitBinaryOperator(op *ast.BinaryOperator) error {
	if err := c.visitExpr(op.Left); err != nil {
		return err
	}
	if err := c.visitExpr(op.Right); err != nil {
		return err
	}
	lt, rt := op.Left.Type(), op.Right.Type()
	if lt != rt {
		return c.diags.Fatalf(diag.TypeError, op.Pos(), "operand type mismatch: %s vs %s", lt, rt)
	}

	switch {
	case op.Op.IsArithmetic():
		if lt != types.Int {
			return c.diags.Fatalf(diag.TypeError, op.Pos(), "arithmetic operator %s requires int operands, got %s", op.Op, lt)
		}
	case op.Op.IsOrdering():
		if lt == types.Void {
			return c.diags.Fatalf(diag.TypeError, op.Pos(), "ordering operator %s cannot compare void", op.Op)
		}
	case op.Op.IsEquality():
		// any equal type, including void, is fine
	}

	op.SetType(types.Int)
	return nil
}

func (c *Checker) visitSequence(seq *ast.Sequence) error {
	for _, e := range seq.Exprs {
		if err := c.visitExpr(e); err != nil {
			return err
		}
	}
	if len(seq.Exprs) == 0 {
		seq.SetType(types.Void)
	} else {
		seq.SetType(seq.Exprs[len(seq.Exprs)-1].Type())
	}
	return nil
}

func (c *Checker) visitLet(let *ast.Let) error {
	for _, d := range let.Decls {
		if err := c.visitDecl(d); err != nil {
			return err
		}
	}
	if err := c.visitSequence(let.Body); err != nil {
		return err
	}
	let.SetType(let.Body.Type())
	return nil
}

func (c *Checker) visitDecl(d ast.Decl) error {
	switch d := d.(type) {
	case *ast.VarDecl:
		return c.visitVarDecl(d)
	case *ast.FunDecl:
		return c.visitFunDecl(d)
	default:
		panic("checker: unexpected decl kind")
	}
}

func (c *Checker) visitVarDecl(decl *ast.VarDecl) error {
	if decl.Expr != nil {
		if err := c.visitExpr(decl.Expr); err != nil {
			return err
		}
	}

	if decl.TypeName != 0 {
		annotated, ok := c.annotationType(decl.TypeName)
		if !ok {
			return c.diags.Fatalf(diag.TypeError, decl.Pos(), "unknown type annotation")
		}
		if decl.Expr != nil && decl.Expr.Type() != annotated {
			return c.diags.Fatalf(diag.TypeError, decl.Pos(), "initializer type %s does not match annotation %s", decl.Expr.Type(), annotated)
		}
		decl.SetType(annotated)
		return nil
	}

	if decl.Expr == nil {
		return c.diags.Fatalf(diag.TypeError, decl.Pos(), "variable declaration needs a type annotation or an initializer")
	}
	if decl.Expr.Type() == types.Void {
		return c.diags.Fatalf(diag.TypeError, decl.Pos(), "cannot infer a void-typed variable; annotate its type explicitly")
	}
	decl.SetType(decl.Expr.Type())
	return nil
}

// annotationType resolves a VarDecl/FunDecl's TypeName symbol to a
// types.Type.
func (c *Checker) annotationType(sym symbol.Symbol) (types.Type, bool) {
	return types.FromAnnotation(c.syms.String(sym))
}

func (c *Checker) visitFunDecl(decl *ast.FunDecl) error {
	if decl.Type() != types.Undef {
		return nil
	}

	for _, p := range decl.Params {
		if err := c.visitVarDecl(p); err != nil {
			return err
		}
	}

	var declaredReturn types.Type
	hasAnnotation := decl.ReturnTypeName != 0
	if hasAnnotation {
		rt, ok := c.annotationType(decl.ReturnTypeName)
		if !ok {
			return c.diags.Fatalf(diag.TypeError, decl.Pos(), "unknown return type annotation")
		}
		declaredReturn = rt
	}

	if decl.IsExternal {
		if hasAnnotation {
			decl.SetType(declaredReturn)
		} else {
			decl.SetType(types.Void)
		}
		return nil
	}

	// The declared (or, absent an annotation, forced-void) return type is
	// known without looking at the body, so it is recorded before
	// descending into it. This is what lets a call from inside the body of
	// a mutually recursive sibling see a non-undef type here and stop
	// recursing, instead of looping forever chasing each other's still-open
	// check.
	if hasAnnotation {
		decl.SetType(declaredReturn)
	} else {
		decl.SetType(types.Void)
	}

	if err := c.visitExpr(decl.Body); err != nil {
		return err
	}
	bodyType := decl.Body.Type()
	if hasAnnotation {
		if bodyType != declaredReturn {
			return c.diags.Fatalf(diag.TypeError, decl.Pos(), "function body type %s does not match declared return type %s", bodyType, declaredReturn)
		}
	} else if bodyType != types.Void {
		return c.diags.Fatalf(diag.TypeError, decl.Pos(), "function without a return type annotation must have a void body, got %s", bodyType)
	}
	return nil
}

func (c *Checker) visitIfThenElse(ite *ast.IfThenElse) error {
	if err := c.visitExpr(ite.Cond); err != nil {
		return err
	}
	if ite.Cond.Type() != types.Int {
		return c.diags.Fatalf(diag.TypeError, ite.Pos(), "if condition must be int, got %s", ite.Cond.Type())
	}
	if err := c.visitExpr(ite.Then); err != nil {
		return err
	}
	if err := c.visitExpr(ite.Else); err != nil {
		return err
	}
	if ite.Then.Type() != ite.Else.Type() {
		return c.diags.Fatalf(diag.TypeError, ite.Pos(), "if branches have different types: %s vs %s", ite.Then.Type(), ite.Else.Type())
	}
	ite.SetType(ite.Then.Type())
	return nil
}

func (c *Checker) visitFunCall(call *ast.FunCall) error {
	if call.Decl.Type() == types.Undef {
		if err := c.visitFunDecl(call.Decl); err != nil {
			return err
		}
	}
	if len(call.Args) != len(call.Decl.Params) {
		return c.diags.Fatalf(diag.TypeError, call.Pos(), "wrong number of arguments: expected %d, got %d", len(call.Decl.Params), len(call.Args))
	}
	for i, arg := range call.Args {
		if err := c.visitExpr(arg); err != nil {
			return err
		}
		want := call.Decl.Params[i].Type()
		if arg.Type() != want {
			return c.diags.Fatalf(diag.TypeError, arg.Pos(), "argument %d: expected %s, got %s", i+1, want, arg.Type())
		}
	}
	call.SetType(call.Decl.Type())
	return nil
}

func (c *Checker) visitWhileLoop(loop *ast.WhileLoop) error {
	if err := c.visitExpr(loop.Cond); err != nil {
		return err
	}
	if loop.Cond.Type() != types.Int {
		return c.diags.Fatalf(diag.TypeError, loop.Pos(), "while condition must be int, got %s", loop.Cond.Type())
	}
	if err := c.visitExpr(loop.Body); err != nil {
		return err
	}
	if loop.Body.Type() != types.Void {
		return c.diags.Fatalf(diag.TypeError, loop.Pos(), "loop body must be void, got %s", loop.Body.Type())
	}
	loop.SetType(types.Void)
	return nil
}

func (c *Checker) visitForLoop(loop *ast.ForLoop) error {
	if err := c.visitVarDecl(loop.Variable); err != nil {
		return err
	}
	if loop.Variable.Type() != types.Int {
		return c.diags.Fatalf(diag.TypeError, loop.Pos(), "for-loop index must be int, got %s", loop.Variable.Type())
	}
	if err := c.visitExpr(loop.High); err != nil {
		return err
	}
	if loop.High.Type() != types.Int {
		return c.diags.Fatalf(diag.TypeError, loop.Pos(), "for-loop bound must be int, got %s", loop.High.Type())
	}
	if err := c.visitExpr(loop.Body); err != nil {
		return err
	}
	if loop.Body.Type() != types.Void {
		return c.diags.Fatalf(diag.TypeError, loop.Pos(), "loop body must be void, got %s", loop.Body.Type())
	}
	loop.SetType(types.Void)
	return nil
}

func (c *Checker) visitAssign(assign *ast.Assign) error {
	if err := c.visitExpr(assign.LHS); err != nil {
		return err
	}
	if err := c.visitExpr(assign.RHS); err != nil {
		return err
	}
	if assign.LHS.Type() != assign.RHS.Type() {
		return c.diags.Fatalf(diag.TypeError, assign.Pos(), "assignment type mismatch: %s vs %s", assign.LHS.Type(), assign.RHS.Type())
	}
	assign.SetType(types.Void)
	return nil
}
