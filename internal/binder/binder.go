// Package binder implements the first core pass: it resolves every
// Identifier and FunCall to its declaration, assigns lexical depths,
// detects escaping variables, computes globally unique external names for
// functions, and enforces the static (type-independent) rules around
// break/loop-index use. It is a direct translation of
// original_source/binder.cc into an explicit recursive-descent walk with
// Go error returns in place of C++ exceptions.
package binder

import (
	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/primitives"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/token"
)

// Mode is a bitmask of optional binder behaviors that never change core
// semantics, only what debug information a caller can read back off the
// tree afterward.
type Mode uint8

const (
	// NameScopes marks that the caller cares about each FunDecl's full
	// dotted scope path (already computed into ExternalName regardless of
	// mode, for external-name disambiguation) — it exists so corec
	// dump-ast can opt into printing that path without implying every
	// other caller of the binder needs to.
	NameScopes Mode = 1 << iota
)

// Binder holds the scope/function/loop stacks used while walking a program.
type Binder struct {
	syms  *symbol.Table
	diags *diag.Sink
	mode  Mode

	scopes    scopeStack
	functions []*ast.FunDecl

	// externalNames records external names already handed out, for the
	// disambiguating underscore suffix in setParentAndExternalName.
	externalNames map[symbol.Symbol]bool

	loops       []ast.Loop
	loopIndexes map[*ast.VarDecl]bool

	// inVarDeclInit is true while visiting a VarDecl's initializer
	// expression, so a Break reachable from it can be rejected.
	inVarDeclInit bool
}

// New returns a Binder that interns symbols via syms and reports
// diagnostics to diags.
func New(syms *symbol.Table, diags *diag.Sink) *Binder {
	return &Binder{
		syms:          syms,
		diags:         diags,
		externalNames: make(map[symbol.Symbol]bool),
		loopIndexes:   make(map[*ast.VarDecl]bool),
	}
}

// AnalyzeProgram wraps root in a synthetic top-level "main" function
// returning int whose body is the sequence [root, 0], pre-populates the
// top scope with the runtime primitives, and binds the whole tree. It
// returns the synthetic main, which becomes the root for every later pass.
func (b *Binder) AnalyzeProgram(root ast.Expr) (*ast.FunDecl, error) {
	b.scopes.push()
	for _, fd := range primitives.Declare(b.syms) {
		b.scopes.current()[fd.Name] = fd
	}

	main := &ast.FunDecl{
		Position: token.NoPos,
		Name:     b.syms.Intern("main"),
		Body: &ast.Sequence{
			Exprs: []ast.Expr{root, &ast.IntegerLiteral{Value: 0}},
		},
		ReturnTypeName: b.syms.Intern("int"),
	}
	if err := b.visitFunDecl(main); err != nil {
		return nil, err
	}
	return main, nil
}

// SetMode installs m, replacing any previously set mode. It has no effect
// on binding itself; see Mode's doc comment.
func (b *Binder) SetMode(m Mode) { b.mode = m }

// NamesScopes reports whether NameScopes was set via SetMode.
func (b *Binder) NamesScopes() bool { return b.mode&NameScopes != 0 }

func (b *Binder) currentDepth() int { return len(b.functions) - 1 }

func declName(d ast.Decl) symbol.Symbol {
	switch d := d.(type) {
	case *ast.VarDecl:
		return d.Name
	case *ast.FunDecl:
		return d.Name
	default:
		panic("binder: unknown decl kind")
	}
}

// enter adds decl to the current scope, or reports (and returns) a fatal
// error if its name is already bound there.
func (b *Binder) enter(decl ast.Decl) error {
	cur := b.scopes.current()
	name := declName(decl)
	if previous, ok := cur[name]; ok {
		b.diags.Add(diag.ScopeError, decl.Pos(), "%s is already defined in this scope", b.syms.String(name))
		return b.diags.Fatalf(diag.ScopeError, previous.Pos(), "previous declaration was here")
	}
	cur[name] = decl
	return nil
}

// find resolves name against the scope stack, innermost first.
func (b *Binder) find(pos token.Position, name symbol.Symbol) (ast.Decl, error) {
	if d, ok := b.scopes.find(name); ok {
		return d, nil
	}
	return nil, b.diags.Fatalf(diag.ScopeError, pos, "%s cannot be found in this scope", b.syms.String(name))
}

// isLoopIndex reports whether v was registered as a for-loop induction
// variable by an enclosing ForLoop.
func (b *Binder) isLoopIndex(v *ast.VarDecl) bool { return b.loopIndexes[v] }

func (b *Binder) setParentAndExternalName(decl *ast.FunDecl) {
	var external string
	if len(b.functions) > 0 {
		parent := b.functions[len(b.functions)-1]
		decl.Parent = parent
		external = b.syms.String(parent.ExternalName) + "." + b.syms.String(decl.Name)
	} else {
		external = b.syms.String(decl.Name)
	}
	sym := b.syms.Intern(external)
	for b.externalNames[sym] {
		external += "_"
		sym = b.syms.Intern(external)
	}
	b.externalNames[sym] = true
	decl.ExternalName = sym
}

// visitExpr dispatches on the dynamic type of e.
func (b *Binder) visitExpr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.IntegerLiteral, *ast.StringLiteral:
		return nil

	case *ast.BinaryOperator:
		if err := b.visitExpr(e.Left); err != nil {
			return err
		}
		return b.visitExpr(e.Right)

	case *ast.Sequence:
		for _, sub := range e.Exprs {
			if err := b.visitExpr(sub); err != nil {
				return err
			}
		}
		return nil

	case *ast.Let:
		return b.visitLet(e)

	case *ast.Identifier:
		return b.visitIdentifier(e)

	case *ast.IfThenElse:
		if err := b.visitExpr(e.Cond); err != nil {
			return err
		}
		if err := b.visitExpr(e.Then); err != nil {
			return err
		}
		return b.visitExpr(e.Else)

	case *ast.FunCall:
		return b.visitFunCall(e)

	case *ast.WhileLoop:
		return b.visitWhileLoop(e)

	case *ast.ForLoop:
		return b.visitForLoop(e)

	case *ast.Break:
		return b.visitBreak(e)

	case *ast.Assign:
		return b.visitAssign(e)

	default:
		panic("binder: unexpected expression kind")
	}
}

func (b *Binder) visitLet(let *ast.Let) error {
	b.scopes.push()
	defer b.scopes.pop()

	var consecutiveFuns []*ast.FunDecl
	flush := func() error {
		for _, fd := range consecutiveFuns {
			if err := b.visitFunDecl(fd); err != nil {
				return err
			}
		}
		consecutiveFuns = consecutiveFuns[:0]
		return nil
	}

	for _, decl := range let.Decls {
		if fd, ok := decl.(*ast.FunDecl); ok {
			if err := b.enter(fd); err != nil {
				return err
			}
			consecutiveFuns = append(consecutiveFuns, fd)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := b.visitVarDecl(decl.(*ast.VarDecl)); err != nil {
			return err
		}
	}
	if err := flush(); err != nil {
		return err
	}

	return b.visitExpr(let.Body)
}

func (b *Binder) visitIdentifier(id *ast.Identifier) error {
	if id.Decl != nil {
		return nil
	}
	decl, err := b.find(id.Pos(), id.Name)
	if err != nil {
		return err
	}
	vd, ok := decl.(*ast.VarDecl)
	if !ok {
		return b.diags.Fatalf(diag.ScopeError, id.Pos(), "invalid reference to function in expression")
	}
	id.Decl = vd
	id.Depth = b.currentDepth()
	if id.Depth != vd.Depth {
		vd.Escapes = true
	}
	return nil
}

func (b *Binder) visitVarDecl(decl *ast.VarDecl) error {
	wasInInit := b.inVarDeclInit
	if !b.isLoopIndex(decl) {
		b.inVarDeclInit = true
	}
	if decl.Expr != nil {
		if err := b.visitExpr(decl.Expr); err != nil {
			b.inVarDeclInit = wasInInit
			return err
		}
	}
	b.inVarDeclInit = wasInInit

	if err := b.enter(decl); err != nil {
		return err
	}
	decl.Depth = b.currentDepth()
	return nil
}

func (b *Binder) visitFunDecl(decl *ast.FunDecl) error {
	b.setParentAndExternalName(decl)
	b.functions = append(b.functions, decl)
	decl.Depth = b.currentDepth()

	b.scopes.push()
	for _, param := range decl.Params {
		if err := b.visitVarDecl(param); err != nil {
			b.scopes.pop()
			b.functions = b.functions[:len(b.functions)-1]
			return err
		}
	}
	err := b.visitExpr(decl.Body)
	b.scopes.pop()

	b.functions = b.functions[:len(b.functions)-1]
	return err
}

func (b *Binder) visitFunCall(call *ast.FunCall) error {
	decl, err := b.find(call.Pos(), call.FuncName)
	if err != nil {
		return err
	}
	fd, ok := decl.(*ast.FunDecl)
	if !ok {
		return b.diags.Fatalf(diag.ScopeError, call.Pos(), "%s is not a function", b.syms.String(call.FuncName))
	}
	call.Decl = fd
	call.Depth = b.currentDepth()
	for _, arg := range call.Args {
		if err := b.visitExpr(arg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) visitWhileLoop(loop *ast.WhileLoop) error {
	if err := b.visitExpr(loop.Cond); err != nil {
		return err
	}
	b.loops = append(b.loops, loop)
	err := b.visitExpr(loop.Body)
	b.loops = b.loops[:len(b.loops)-1]
	return err
}

func (b *Binder) visitForLoop(loop *ast.ForLoop) error {
	b.scopes.push()
	defer b.scopes.pop()

	b.loopIndexes[loop.Variable] = true
	defer delete(b.loopIndexes, loop.Variable)

	if err := b.visitVarDecl(loop.Variable); err != nil {
		return err
	}
	if err := b.visitExpr(loop.High); err != nil {
		return err
	}

	b.loops = append(b.loops, loop)
	err := b.visitExpr(loop.Body)
	b.loops = b.loops[:len(b.loops)-1]
	return err
}

func (b *Binder) visitBreak(brk *ast.Break) error {
	if b.inVarDeclInit {
		return b.diags.Fatalf(diag.ScopeError, brk.Pos(), "breaks are not allowed in variable declarations")
	}
	if len(b.loops) == 0 {
		return b.diags.Fatalf(diag.ScopeError, brk.Pos(), "break outside loop")
	}
	brk.Loop = b.loops[len(b.loops)-1]
	return nil
}

func (b *Binder) visitAssign(assign *ast.Assign) error {
	if err := b.visitIdentifier(assign.LHS); err != nil {
		return err
	}
	if assign.LHS.Decl != nil && b.isLoopIndex(assign.LHS.Decl) {
		return b.diags.Fatalf(diag.ScopeError, assign.LHS.Pos(), "loop index is not assignable")
	}
	return b.visitExpr(assign.RHS)
}
