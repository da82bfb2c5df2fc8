package checker_test

import (
	"testing"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/binder"
	"github.com/nplang/corec/internal/checker"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/types"
)

// bind runs the binder over root and returns the synthetic main, failing
// the test if binding itself errors (type-checker tests should not be
// tripped up by a binder bug).
func bind(t *testing.T, syms *symbol.Table, diags *diag.Sink, root ast.Expr) *ast.FunDecl {
	t.Helper()
	main, err := binder.New(syms, diags).AnalyzeProgram(root)
	if err != nil {
		t.Fatalf("binder failed: %v (diags: %s)", err, diags.Format(false))
	}
	return main
}

func TestTypeCheck_IntegerAndStringLiterals(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	lit := &ast.IntegerLiteral{Value: 5}
	str := &ast.StringLiteral{Value: syms.Intern("s")}
	main := bind(t, syms, diags, &ast.Sequence{Exprs: []ast.Expr{lit, str}})

	if err := checker.New(syms, diags).TypeCheck(main); err != nil {
		t.Fatalf("unexpected error: %v (diags: %s)", err, diags.Format(false))
	}
	if lit.Type() != types.Int {
		t.Fatalf("expected int, got %s", lit.Type())
	}
	if str.Type() != types.String {
		t.Fatalf("expected string, got %s", str.Type())
	}
	if main.Type() != types.Int {
		t.Fatalf("expected main to be int (its body sequence ends in 0), got %s", main.Type())
	}
}

func TestTypeCheck_ArithmeticRejectsStringOperands(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	bad := &ast.BinaryOperator{
		Op:    ast.Add,
		Left:  &ast.StringLiteral{Value: syms.Intern("a")},
		Right: &ast.StringLiteral{Value: syms.Intern("b")},
	}
	main := bind(t, syms, diags, bad)

	err := checker.New(syms, diags).TypeCheck(main)
	if err == nil {
		t.Fatalf("expected string arithmetic to be rejected")
	}
}

func TestTypeCheck_OrderingAllowsIntAndString(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	lt := &ast.BinaryOperator{
		Op:    ast.Lt,
		Left:  &ast.StringLiteral{Value: syms.Intern("a")},
		Right: &ast.StringLiteral{Value: syms.Intern("b")},
	}
	main := bind(t, syms, diags, lt)

	if err := checker.New(syms, diags).TypeCheck(main); err != nil {
		t.Fatalf("unexpected error: %v (diags: %s)", err, diags.Format(false))
	}
	if lt.Type() != types.Int {
		t.Fatalf("comparison result must be int, got %s", lt.Type())
	}
}

func TestTypeCheck_IfBranchesMustMatch(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	ite := &ast.IfThenElse{
		Cond: &ast.IntegerLiteral{Value: 1},
		Then: &ast.IntegerLiteral{Value: 1},
		Else: &ast.StringLiteral{Value: syms.Intern("x")},
	}
	main := bind(t, syms, diags, ite)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected mismatched if branches to be rejected")
	}
}

func TestTypeCheck_VarDeclInfersFromInitializer(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	x := &ast.VarDecl{Name: syms.Intern("x"), Expr: &ast.IntegerLiteral{Value: 1}}
	use := &ast.Identifier{Name: syms.Intern("x")}
	root := &ast.Let{Decls: []ast.Decl{x}, Body: &ast.Sequence{Exprs: []ast.Expr{use}}}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err != nil {
		t.Fatalf("unexpected error: %v (diags: %s)", err, diags.Format(false))
	}
	if x.Type() != types.Int {
		t.Fatalf("expected inferred int, got %s", x.Type())
	}
	if use.Type() != types.Int {
		t.Fatalf("expected identifier to copy decl's type")
	}
}

func TestTypeCheck_VarDeclWithoutAnnotationOrInitializerFails(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	x := &ast.VarDecl{Name: syms.Intern("x")}
	root := &ast.Let{Decls: []ast.Decl{x}, Body: &ast.Sequence{}}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected a missing annotation/initializer to be rejected")
	}
}

func TestTypeCheck_VarDeclAnnotationMustMatchInitializer(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	x := &ast.VarDecl{
		Name:     syms.Intern("x"),
		TypeName: syms.Intern("string"),
		Expr:     &ast.IntegerLiteral{Value: 1},
	}
	root := &ast.Let{Decls: []ast.Decl{x}, Body: &ast.Sequence{}}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected annotation/initializer mismatch to be rejected")
	}
}

func TestTypeCheck_FunctionBodyMustMatchDeclaredReturnType(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	fn := &ast.FunDecl{
		Name:           syms.Intern("f"),
		Body:           &ast.StringLiteral{Value: syms.Intern("nope")},
		ReturnTypeName: syms.Intern("int"),
	}
	root := &ast.Let{
		Decls: []ast.Decl{fn},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("f")},
		}},
	}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected body/return-type mismatch to be rejected")
	}
}

func TestTypeCheck_FunctionWithoutAnnotationMustBeVoid(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	fn := &ast.FunDecl{
		Name: syms.Intern("f"),
		Body: &ast.IntegerLiteral{Value: 1},
	}
	root := &ast.Let{
		Decls: []ast.Decl{fn},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("f")},
		}},
	}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected non-void body without a return annotation to be rejected")
	}
}

func TestTypeCheck_CallArityAndArgumentTypesChecked(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	fn := &ast.FunDecl{
		Name:           syms.Intern("f"),
		Params:         []*ast.VarDecl{{Name: syms.Intern("a"), TypeName: syms.Intern("int")}},
		Body:           &ast.IntegerLiteral{Value: 1},
		ReturnTypeName: syms.Intern("int"),
	}
	badCall := &ast.FunCall{
		FuncName: syms.Intern("f"),
		Args:     []ast.Expr{&ast.StringLiteral{Value: syms.Intern("oops")}},
	}
	root := &ast.Let{
		Decls: []ast.Decl{fn},
		Body:  &ast.Sequence{Exprs: []ast.Expr{badCall}},
	}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected argument type mismatch to be rejected")
	}
}

func TestTypeCheck_MutuallyRecursiveFunctionsForwardCheck(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	isEven := &ast.FunDecl{
		Name:           syms.Intern("is_even"),
		Params:         []*ast.VarDecl{{Name: syms.Intern("n"), TypeName: syms.Intern("int")}},
		ReturnTypeName: syms.Intern("int"),
	}
	isOdd := &ast.FunDecl{
		Name:           syms.Intern("is_odd"),
		Params:         []*ast.VarDecl{{Name: syms.Intern("n"), TypeName: syms.Intern("int")}},
		ReturnTypeName: syms.Intern("int"),
	}
	isEven.Body = &ast.FunCall{FuncName: syms.Intern("is_odd"), Args: []ast.Expr{&ast.IntegerLiteral{Value: 1}}}
	isOdd.Body = &ast.FunCall{FuncName: syms.Intern("is_even"), Args: []ast.Expr{&ast.IntegerLiteral{Value: 1}}}

	root := &ast.Let{
		Decls: []ast.Decl{isEven, isOdd},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("is_even"), Args: []ast.Expr{&ast.IntegerLiteral{Value: 2}}},
		}},
	}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err != nil {
		t.Fatalf("unexpected error: %v (diags: %s)", err, diags.Format(false))
	}
	if isEven.Type() != types.Int || isOdd.Type() != types.Int {
		t.Fatalf("expected both mutually recursive functions to be typed int")
	}
}

func TestTypeCheck_WhileLoopRequiresIntConditionAndVoidBody(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	loop := &ast.WhileLoop{
		Cond: &ast.StringLiteral{Value: syms.Intern("nope")},
		Body: &ast.Sequence{},
	}
	main := bind(t, syms, diags, loop)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected non-int while condition to be rejected")
	}
}

func TestTypeCheck_AssignRequiresMatchingTypes(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	x := &ast.VarDecl{Name: syms.Intern("x"), Expr: &ast.IntegerLiteral{Value: 1}}
	assign := &ast.Assign{
		LHS: &ast.Identifier{Name: syms.Intern("x")},
		RHS: &ast.StringLiteral{Value: syms.Intern("oops")},
	}
	root := &ast.Let{
		Decls: []ast.Decl{x},
		Body:  &ast.Sequence{Exprs: []ast.Expr{assign}},
	}
	main := bind(t, syms, diags, root)

	if err := checker.New(syms, diags).TypeCheck(main); err == nil {
		t.Fatalf("expected assignment type mismatch to be rejected")
	}
}

func TestTypeCheck_PrimitiveCallTypesFlowThrough(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	call := &ast.FunCall{
		FuncName: syms.Intern("size"),
		Args:     []ast.Expr{&ast.StringLiteral{Value: syms.Intern("hi")}},
	}
	main := bind(t, syms, diags, call)

	if err := checker.New(syms, diags).TypeCheck(main); err != nil {
		t.Fatalf("unexpected error: %v (diags: %s)", err, diags.Format(false))
	}
	if call.Type() != types.Int {
		t.Fatalf("expected size(...) to be int, got %s", call.Type())
	}
}
