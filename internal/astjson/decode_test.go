package astjson

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/token"
)

func TestDecodeExpr_IntegerLiteral(t *testing.T) {
	syms := symbol.NewTable()
	got, err := NewDecoder(syms).DecodeExpr([]byte(`{"kind":"IntegerLiteral","value":42}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &ast.IntegerLiteral{Value: 42}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(ast.IntegerLiteral{})); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}
	if got.Pos() != token.NoPos {
		t.Errorf("expected NoPos, got %v", got.Pos())
	}
}

func TestDecodeExpr_BinaryOperatorInternsIdentifiers(t *testing.T) {
	syms := symbol.NewTable()
	dec := NewDecoder(syms)
	got, err := dec.DecodeExpr([]byte(
		`{"kind":"BinaryOperator","op":"+","left":{"kind":"Identifier","name":"x"},"right":{"kind":"IntegerLiteral","value":1}}`,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &ast.BinaryOperator{
		Op:   ast.Add,
		Left: &ast.Identifier{Name: syms.Intern("x")},
		Right: &ast.IntegerLiteral{
			Value: 1,
		},
	}
	allow := cmp.AllowUnexported(ast.BinaryOperator{}, ast.Identifier{}, ast.IntegerLiteral{})
	if diff := cmp.Diff(want, got, allow); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeExpr_LetWrapsBareBodyInSequence(t *testing.T) {
	syms := symbol.NewTable()
	dec := NewDecoder(syms)
	got, err := dec.DecodeExpr([]byte(
		`{"kind":"Let","decls":[{"kind":"VarDecl","name":"a","type_name":"int","value":{"kind":"IntegerLiteral","value":1}}],"body":{"kind":"Identifier","name":"a"}}`,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	let, ok := got.(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", got)
	}
	if len(let.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(let.Decls))
	}
	if len(let.Body.Exprs) != 1 {
		t.Fatalf("expected body wrapped as a single-element Sequence, got %d exprs", len(let.Body.Exprs))
	}
}

func TestDecodeExpr_UnknownKindIsAnError(t *testing.T) {
	syms := symbol.NewTable()
	if _, err := NewDecoder(syms).DecodeExpr([]byte(`{"kind":"NotARealKind"}`)); err == nil {
		t.Fatalf("expected an error for an unrecognized node kind")
	}
}
