// Package ast defines the abstract syntax tree shared by every pass of the
// compiler's middle-end. Every expression node carries a source position, a
// semantic type (t_undef until the checker runs) and kind-specific fields;
// every declaration node carries the depth/escape/back-reference fields the
// binder, checker and escaper decorate it with.
//
// The tree is produced by a parser outside this repository's scope
// (internal/astjson stands in for one, reading a JSON encoding of the same
// node shapes). Binder, TypeChecker and Escaper only decorate nodes in
// place; they never restructure the tree, so there is never more than one
// owner of any node.
package ast

import (
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/token"
	"github.com/nplang/corec/internal/types"
)

// Node is implemented by every AST node, expression or declaration.
type Node interface {
	Pos() token.Position
}

// Expr is implemented by every expression node. The language is
// expression-oriented: declarations are the only non-expression nodes.
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
	exprNode()
}

// Decl is implemented by VarDecl and FunDecl.
type Decl interface {
	Node
	declNode()
}

// Loop is implemented by the two loop expression kinds, so a Break can hold
// a single back-reference regardless of which kind of loop it breaks out of.
type Loop interface {
	Expr
	loopNode()
}

// BinOp identifies a binary operator.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
)

var binOpNames = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/",
	Eq: "=", Neq: "<>", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
}

func (op BinOp) String() string { return binOpNames[op] }

// IsArithmetic reports whether op is one of + - * /.
func (op BinOp) IsArithmetic() bool { return op <= Div }

// IsOrdering reports whether op is one of < <= > >=.
func (op BinOp) IsOrdering() bool { return op >= Lt }

// IsEquality reports whether op is one of = <>.
func (op BinOp) IsEquality() bool { return op == Eq || op == Neq }

// base holds the fields common to every expression node.
type base struct {
	Position token.Position
	Typ      types.Type
}

func (b *base) Pos() token.Position  { return b.Position }
func (b *base) Type() types.Type     { return b.Typ }
func (b *base) SetType(t types.Type) { b.Typ = t }

// ---- expression node kinds ----

type IntegerLiteral struct {
	base
	Value int32
}

type StringLiteral struct {
	base
	Value symbol.Symbol
}

type BinaryOperator struct {
	base
	Op          BinOp
	Left, Right Expr
}

type Sequence struct {
	base
	Exprs []Expr
}

type Let struct {
	base
	Decls []Decl
	Body  *Sequence
}

type Identifier struct {
	base
	Name symbol.Symbol

	// Decl and Depth are set by the binder.
	Decl  *VarDecl
	Depth int
}

type IfThenElse struct {
	base
	Cond, Then, Else Expr
}

type FunCall struct {
	base
	FuncName symbol.Symbol
	Args     []Expr

	// Decl and Depth are set by the binder.
	Decl  *FunDecl
	Depth int
}

type WhileLoop struct {
	base
	Cond, Body Expr
}

func (*WhileLoop) loopNode() {}

type ForLoop struct {
	base
	Variable   *VarDecl
	High, Body Expr
}

func (*ForLoop) loopNode() {}

type Break struct {
	base

	// Loop is set by the binder to the innermost enclosing WhileLoop or
	// ForLoop.
	Loop Loop
}

type Assign struct {
	base
	LHS *Identifier
	RHS Expr
}

func (*IntegerLiteral) exprNode() {}
func (*StringLiteral) exprNode()  {}
func (*BinaryOperator) exprNode() {}
func (*Sequence) exprNode()       {}
func (*Let) exprNode()            {}
func (*Identifier) exprNode()     {}
func (*IfThenElse) exprNode()     {}
func (*FunCall) exprNode()        {}
func (*WhileLoop) exprNode()      {}
func (*ForLoop) exprNode()        {}
func (*Break) exprNode()          {}
func (*Assign) exprNode()         {}

// ---- declaration node kinds ----

// VarDecl is a variable declaration, optionally annotated with a type name
// and/or initialized with an expression.
type VarDecl struct {
	Position token.Position
	Name     symbol.Symbol
	Expr     Expr          // nil if no initializer
	TypeName symbol.Symbol // zero Symbol if no annotation

	// Depth, Escapes and Type are set by the binder/checker.
	Depth   int
	Escapes bool
	Typ     types.Type
}

func (d *VarDecl) Pos() token.Position  { return d.Position }
func (d *VarDecl) Type() types.Type     { return d.Typ }
func (d *VarDecl) SetType(t types.Type) { d.Typ = t }
func (*VarDecl) declNode()              {}

// FunDecl is a function declaration. IsExternal is true for the
// pre-populated runtime primitives (and is carried explicitly rather than
// inferred from Body == nil, per original_source/binder.cc's
// enter_primitive, so that a user function accidentally missing its body is
// a parse error rather than a silently external declaration).
type FunDecl struct {
	Position       token.Position
	Name           symbol.Symbol
	Params         []*VarDecl
	Body           Expr // nil for external (primitive) functions
	ReturnTypeName symbol.Symbol
	IsExternal     bool

	// Set by the binder.
	Depth        int
	Parent       *FunDecl
	ExternalName symbol.Symbol

	// Set by the escaper, in textual declaration order.
	EscapingDecls []*VarDecl

	// Set by the checker.
	Typ types.Type
}

func (d *FunDecl) Pos() token.Position  { return d.Position }
func (d *FunDecl) Type() types.Type     { return d.Typ }
func (d *FunDecl) SetType(t types.Type) { d.Typ = t }
func (*FunDecl) declNode()              {}
