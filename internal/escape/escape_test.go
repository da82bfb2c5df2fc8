package escape_test

import (
	"testing"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/binder"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/escape"
	"github.com/nplang/corec/internal/symbol"
)

func bind(t *testing.T, syms *symbol.Table, diags *diag.Sink, root ast.Expr) *ast.FunDecl {
	t.Helper()
	main, err := binder.New(syms, diags).AnalyzeProgram(root)
	if err != nil {
		t.Fatalf("binder failed: %v (diags: %s)", err, diags.Format(false))
	}
	return main
}

func TestAnalyze_SingleEscapingVariableAttributedToItsOwner(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	x := &ast.VarDecl{Name: syms.Intern("x"), Expr: &ast.IntegerLiteral{Value: 1}}
	use := &ast.Identifier{Name: syms.Intern("x")}
	inner := &ast.FunDecl{Name: syms.Intern("inner"), Body: use}
	root := &ast.Let{
		Decls: []ast.Decl{x, inner},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("inner")},
		}},
	}
	main := bind(t, syms, diags, root)

	escape.New().Analyze(main)

	if !x.Escapes {
		t.Fatalf("precondition failed: binder should have marked x as escaping")
	}
	if len(main.EscapingDecls) != 1 || main.EscapingDecls[0] != x {
		t.Fatalf("expected main.EscapingDecls == [x], got %v", main.EscapingDecls)
	}
	if len(inner.EscapingDecls) != 0 {
		t.Fatalf("inner owns no escaping variables itself, got %v", inner.EscapingDecls)
	}
}

func TestAnalyze_OrderMatchesDeclarationOrder(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")
	a := &ast.VarDecl{Name: syms.Intern("a"), Expr: &ast.IntegerLiteral{Value: 1}}
	b := &ast.VarDecl{Name: syms.Intern("b"), Expr: &ast.IntegerLiteral{Value: 2}}
	useA := &ast.Identifier{Name: syms.Intern("a")}
	useB := &ast.Identifier{Name: syms.Intern("b")}
	inner := &ast.FunDecl{
		Name: syms.Intern("inner"),
		Body: &ast.Sequence{Exprs: []ast.Expr{useA, useB}},
	}
	root := &ast.Let{
		Decls: []ast.Decl{a, b, inner},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("inner")},
		}},
	}
	main := bind(t, syms, diags, root)

	escape.New().Analyze(main)

	if len(main.EscapingDecls) != 2 || main.EscapingDecls[0] != a || main.EscapingDecls[1] != b {
		t.Fatalf("expected [a, b] in declaration order, got %v", main.EscapingDecls)
	}
}

func TestAnalyze_EscapingVarDeclaredAfterASiblingFunctionStaysWithItsOwner(t *testing.T) {
	syms, diags := symbol.NewTable(), diag.NewSink("", "t")

	// f is a sibling FunDecl that the escaper visits (and exits) before z,
	// an escaping VarDecl belonging to main, is visited. A version of the
	// escaper that fails to restore "current function" on exiting f would
	// misattribute z to f instead of to main.
	f := &ast.FunDecl{Name: syms.Intern("f"), Body: &ast.IntegerLiteral{Value: 0}}
	z := &ast.VarDecl{Name: syms.Intern("z"), Expr: &ast.IntegerLiteral{Value: 5}}
	g := &ast.FunDecl{Name: syms.Intern("g"), Body: &ast.Identifier{Name: syms.Intern("z")}}
	root := &ast.Let{
		Decls: []ast.Decl{f, z, g},
		Body: &ast.Sequence{Exprs: []ast.Expr{
			&ast.FunCall{FuncName: syms.Intern("f")},
			&ast.FunCall{FuncName: syms.Intern("g")},
		}},
	}
	main := bind(t, syms, diags, root)

	if !z.Escapes {
		t.Fatalf("precondition failed: binder should have marked z as escaping into g")
	}

	escape.New().Analyze(main)

	if len(main.EscapingDecls) != 1 || main.EscapingDecls[0] != z {
		t.Fatalf("expected main.EscapingDecls == [z], got %v", main.EscapingDecls)
	}
	if len(f.EscapingDecls) != 0 {
		t.Fatalf("z must not be misattributed to the sibling function f, got %v", f.EscapingDecls)
	}
}
