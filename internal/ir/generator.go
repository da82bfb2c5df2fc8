package ir

import (
	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/types"
)

// Generator lowers a decorated tree (post binder/checker/escape) into a
// Program. It is grounded on original_source/lab4/dragon-tiger/src/irgen,
// translating irgen.cc's frame/worklist machinery and irgen-visitor.cc's
// per-expression rules into Go structs and slices in place of LLVM
// IRBuilder calls.
type Generator struct {
	syms *symbol.Table

	program   *Program
	functions map[*ast.FunDecl]*Function
	frameType map[*ast.FunDecl]*Frame
	strings   map[string]int // dedup pool: text -> StringPool index

	// framePosition is process-wide, like original_source's own map keyed
	// on VarDecl identity: each escaping VarDecl belongs to exactly one
	// function and is positioned exactly once.
	framePosition map[*ast.VarDecl]int

	pending []*ast.FunDecl

	// per-function state (§4.4.2), reset at the start of each generateFunction.
	currentFunction *Function
	currentDecl     *ast.FunDecl
	allocations     map[*ast.VarDecl]Value
	loopExitBlocks  map[ast.Loop]int
	frame           Value
	entry           int
	cur             int
}

// NewGenerator returns a Generator whose output will resolve symbols
// (identifier/external names) through syms.
func NewGenerator(syms *symbol.Table) *Generator {
	return &Generator{
		syms:          syms,
		program:       &Program{},
		functions:     map[*ast.FunDecl]*Function{},
		frameType:     map[*ast.FunDecl]*Frame{},
		strings:       map[string]int{},
		framePosition: map[*ast.VarDecl]int{},
	}
}

// GenerateProgram lowers main (and everything reachable from it) into a
// Program, per spec §4.4.3: main is generated directly, and every user
// FunDecl visited along the way is declared and queued; the queue is
// drained LIFO once the initial traversal settles.
func (g *Generator) GenerateProgram(main *ast.FunDecl) (*Program, error) {
	fn := g.declareFunDecl(main)
	if err := g.generateFunction(main, fn); err != nil {
		return nil, err
	}

	for len(g.pending) > 0 {
		next := g.pending[len(g.pending)-1]
		g.pending = g.pending[:len(g.pending)-1]
		if err := g.generateFunction(next, g.functions[next]); err != nil {
			return nil, err
		}
	}

	return g.program, nil
}

// ---- emission helpers ----

func (g *Generator) emit(instr Instr) Value {
	return g.emitIn(g.cur, instr)
}

func (g *Generator) emitIn(block int, instr Instr) Value {
	b := g.currentFunction.Blocks[block]
	b.Instrs = append(b.Instrs, instr)
	if !instr.Op.producesValue() {
		return NoValue
	}
	return Value{Block: block, Index: len(b.Instrs) - 1}
}

func (g *Generator) newBlock(name string) int {
	return g.currentFunction.newBlock(name)
}

func (g *Generator) constString(text string) Value {
	idx, ok := g.strings[text]
	if !ok {
		idx = len(g.program.StringPool)
		g.program.StringPool = append(g.program.StringPool, text)
		g.strings[text] = idx
	}
	return g.emit(Instr{Op: OpConstString, Type: TString, Str: text, Imm: int32(idx)})
}

// frameUpTo walks levels steps up the static-link chain from the current
// frame, per spec §4.4.7's "load slot 0 at each step".
func (g *Generator) frameUpTo(levels int) Value {
	v := g.frame
	for i := 0; i < levels; i++ {
		v = g.emit(Instr{Op: OpFrameUp, A: v, Type: TFramePtr})
	}
	return v
}

// ---- declaration (§4.4.3, §4.4.4) ----

// declareFunDecl registers decl's signature and, for non-external
// functions, its frame struct layout. It is idempotent: user functions are
// declared once from their enclosing Let, runtime primitives are declared
// lazily the first time a FunCall resolves to one.
func (g *Generator) declareFunDecl(decl *ast.FunDecl) *Function {
	if fn, ok := g.functions[decl]; ok {
		return fn
	}

	name := g.syms.String(decl.ExternalName)
	fn := &Function{
		ExternalName: name,
		IsExternal:   decl.IsExternal,
		ReturnType:   FromLanguageType(decl.Type()),
		Decl:         decl,
	}

	if decl.IsExternal {
		for _, p := range decl.Params {
			fn.Params = append(fn.Params, FromLanguageType(p.Type()))
			fn.ParamNames = append(fn.ParamNames, g.syms.String(p.Name))
		}
		g.register(decl, fn)
		return fn
	}

	frame := &Frame{Name: "ft_" + name}
	if decl.Parent != nil {
		frame.HasParent = true
		frame.ParentFrame = g.frameType[decl.Parent]
	}
	for _, v := range decl.EscapingDecls {
		if v.Type() == types.Void {
			continue
		}
		frame.Fields = append(frame.Fields, FrameField{Decl: v, Type: FromLanguageType(v.Type())})
	}
	g.frameType[decl] = frame
	fn.Frame = frame

	if frame.HasParent {
		fn.Params = append(fn.Params, TFramePtr)
		fn.ParamNames = append(fn.ParamNames, "sl")
	}
	for _, p := range decl.Params {
		fn.Params = append(fn.Params, FromLanguageType(p.Type()))
		fn.ParamNames = append(fn.ParamNames, g.syms.String(p.Name))
	}

	g.register(decl, fn)
	return fn
}

func (g *Generator) register(decl *ast.FunDecl, fn *Function) {
	g.functions[decl] = fn
	g.program.Functions = append(g.program.Functions, fn)
}

// ---- function body emission (§4.4.5) ----

func (g *Generator) generateFunction(decl *ast.FunDecl, fn *Function) error {
	g.currentFunction = fn
	g.currentDecl = decl
	g.allocations = map[*ast.VarDecl]Value{}
	g.loopExitBlocks = map[ast.Loop]int{}

	entry := g.newBlock("entry")
	body := g.newBlock("body")
	g.entry = entry
	g.cur = entry

	g.frame = g.emit(Instr{Op: OpFrameAlloca, Type: TFramePtr, Str: fn.Frame.Name})

	g.cur = body

	args := make([]Value, len(fn.Params))
	for i, t := range fn.Params {
		args[i] = g.emit(Instr{Op: OpParam, Type: t, Imm: int32(i)})
	}

	idx := 0
	if fn.Frame.HasParent {
		slField := g.emit(Instr{Op: OpFrameGEP, A: g.frame, Imm: 0, Type: TFramePtr})
		g.emit(Instr{Op: OpStore, A: slField, B: args[0]})
		idx = 1
	}
	for _, p := range decl.Params {
		addr := g.generateVarDecl(p)
		g.emit(Instr{Op: OpStore, A: addr, B: args[idx]})
		idx++
	}

	result := g.visitExpr(decl.Body)
	if decl.Type() == types.Void {
		g.emit(Instr{Op: OpRetVoid})
	} else {
		g.emit(Instr{Op: OpRet, A: result, Type: FromLanguageType(decl.Type())})
	}

	g.emitIn(entry, Instr{Op: OpBr, Target: body})

	return sanityCheck(fn)
}

// ---- variable declarations (§4.4.6) ----

func (g *Generator) generateVarDecl(decl *ast.VarDecl) Value {
	var addr Value
	if decl.Escapes {
		pos := 0
		if g.currentFunction.Frame.HasParent {
			pos = 1
		}
		for _, other := range g.currentDecl.EscapingDecls {
			if other == decl {
				break
			}
			if other.Type() != types.Void {
				pos++
			}
		}
		g.framePosition[decl] = pos
		addr = g.emit(Instr{Op: OpFrameGEP, A: g.frame, Imm: int32(pos), Type: FromLanguageType(decl.Type())})
	} else {
		addr = g.emitIn(g.entry, Instr{Op: OpAlloca, Type: FromLanguageType(decl.Type())})
	}
	g.allocations[decl] = addr

	if decl.Expr != nil {
		v := g.visitExpr(decl.Expr)
		g.emit(Instr{Op: OpStore, A: addr, B: v, Pos: decl.Pos()})
	}
	return addr
}

// ---- address resolution (§4.4.7) ----

func (g *Generator) addressOf(id *ast.Identifier) Value {
	if id.Depth == id.Decl.Depth {
		return g.allocations[id.Decl]
	}
	frameVal := g.frameUpTo(id.Depth - id.Decl.Depth)
	return g.emit(Instr{
		Op: OpFrameGEP, A: frameVal,
		Imm: int32(g.framePosition[id.Decl]), Type: FromLanguageType(id.Decl.Type()),
	})
}

// ---- expression lowering (§4.4.8) ----

func (g *Generator) visitExpr(expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: e.Value, Pos: e.Pos()})

	case *ast.StringLiteral:
		return g.constString(g.syms.String(e.Value))

	case *ast.BinaryOperator:
		return g.visitBinaryOperator(e)

	case *ast.Sequence:
		return g.visitSequence(e)

	case *ast.Let:
		return g.visitLet(e)

	case *ast.Identifier:
		if e.Type() == types.Void {
			return NoValue
		}
		addr := g.addressOf(e)
		return g.emit(Instr{Op: OpLoad, A: addr, Type: FromLanguageType(e.Type()), Pos: e.Pos()})

	case *ast.IfThenElse:
		return g.visitIfThenElse(e)

	case *ast.FunCall:
		return g.visitFunCall(e)

	case *ast.WhileLoop:
		return g.visitWhileLoop(e)

	case *ast.ForLoop:
		return g.visitForLoop(e)

	case *ast.Break:
		return g.visitBreak(e)

	case *ast.Assign:
		return g.visitAssign(e)

	default:
		panic("ir: unexpected expression kind")
	}
}

func cmpOp(op ast.BinOp) Op {
	switch op {
	case ast.Eq:
		return OpICmpEq
	case ast.Neq:
		return OpICmpNe
	case ast.Lt:
		return OpICmpLt
	case ast.Le:
		return OpICmpLe
	case ast.Gt:
		return OpICmpGt
	case ast.Ge:
		return OpICmpGe
	default:
		panic("ir: not a comparison operator")
	}
}

func (g *Generator) visitBinaryOperator(op *ast.BinaryOperator) Value {
	if op.Left.Type() == types.Void {
		// Only = and <> type-check against void operands (checker's
		// equality rule); two void values are trivially equal.
		v := int32(0)
		if op.Op == ast.Eq {
			v = 1
		}
		return g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: v, Pos: op.Pos()})
	}

	left := g.visitExpr(op.Left)
	right := g.visitExpr(op.Right)

	if op.Left.Type() == types.String {
		cmp := g.emit(Instr{
			Op: OpCall, Str: "__strcmp", Args: []Value{left, right},
			Type: TInt32, Pos: op.Pos(),
		})
		zero := g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: 0, Pos: op.Pos()})
		return g.emit(Instr{Op: cmpOp(op.Op), A: cmp, B: zero, Type: TInt32, Pos: op.Pos()})
	}

	switch op.Op {
	case ast.Add:
		return g.emit(Instr{Op: OpAdd, A: left, B: right, Type: TInt32, Pos: op.Pos()})
	case ast.Sub:
		return g.emit(Instr{Op: OpSub, A: left, B: right, Type: TInt32, Pos: op.Pos()})
	case ast.Mul:
		return g.emit(Instr{Op: OpMul, A: left, B: right, Type: TInt32, Pos: op.Pos()})
	case ast.Div:
		return g.emit(Instr{Op: OpSDiv, A: left, B: right, Type: TInt32, Pos: op.Pos()})
	default:
		return g.emit(Instr{Op: cmpOp(op.Op), A: left, B: right, Type: TInt32, Pos: op.Pos()})
	}
}

func (g *Generator) visitSequence(seq *ast.Sequence) Value {
	last := NoValue
	for _, e := range seq.Exprs {
		last = g.visitExpr(e)
	}
	return last
}

func (g *Generator) visitLet(let *ast.Let) Value {
	for _, d := range let.Decls {
		g.visitDecl(d)
	}
	return g.visitSequence(let.Body)
}

func (g *Generator) visitDecl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.VarDecl:
		g.generateVarDecl(d)
	case *ast.FunDecl:
		fn := g.declareFunDecl(d)
		if !fn.IsExternal {
			g.pending = append(g.pending, d)
		}
	default:
		panic("ir: unexpected decl kind")
	}
}

func (g *Generator) visitIfThenElse(ite *ast.IfThenElse) Value {
	cond := g.visitExpr(ite.Cond)
	zero := g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: 0, Pos: ite.Pos()})
	test := g.emit(Instr{Op: OpICmpNe, A: cond, B: zero, Type: TInt32, Pos: ite.Pos()})

	thenBlk := g.newBlock("if_then")
	elseBlk := g.newBlock("if_else")
	endBlk := g.newBlock("if_end")

	resultTy := FromLanguageType(ite.Type())
	slot := NoValue
	if resultTy != TVoid {
		slot = g.emitIn(g.entry, Instr{Op: OpAlloca, Type: resultTy})
	}

	g.emit(Instr{Op: OpCondBr, A: test, Target: thenBlk, Else: elseBlk, Pos: ite.Pos()})

	g.cur = thenBlk
	v := g.visitExpr(ite.Then)
	if resultTy != TVoid {
		g.emit(Instr{Op: OpStore, A: slot, B: v})
	}
	g.emit(Instr{Op: OpBr, Target: endBlk})

	g.cur = elseBlk
	v = g.visitExpr(ite.Else)
	if resultTy != TVoid {
		g.emit(Instr{Op: OpStore, A: slot, B: v})
	}
	g.emit(Instr{Op: OpBr, Target: endBlk})

	g.cur = endBlk
	if resultTy == TVoid {
		return NoValue
	}
	return g.emit(Instr{Op: OpLoad, A: slot, Type: resultTy})
}

func (g *Generator) visitFunCall(call *ast.FunCall) Value {
	// User FunDecls are always already declared by the time a call to them
	// is lowered (their enclosing Let declares every sibling before any
	// sibling's body is generated); only runtime primitives, which never
	// appear as Let decls, are declared lazily here.
	fn := g.declareFunDecl(call.Decl)

	var args []Value
	if !fn.IsExternal {
		// The callee's static link is its parent's frame. A FunDecl's Depth
		// is the depth of its own body, so that parent frame sits
		// call.Depth - (call.Decl.Depth - 1) steps up from the caller's frame.
		sl := g.frameUpTo(call.Depth - call.Decl.Depth + 1)
		args = append(args, sl)
	}
	for _, a := range call.Args {
		args = append(args, g.visitExpr(a))
	}

	result := g.emit(Instr{Op: OpCall, Str: fn.ExternalName, Args: args, Type: FromLanguageType(call.Decl.Type()), Pos: call.Pos()})
	if call.Decl.Type() == types.Void {
		return NoValue
	}
	return result
}

func (g *Generator) visitWhileLoop(loop *ast.WhileLoop) Value {
	testBlk := g.newBlock("while_test")
	bodyBlk := g.newBlock("while_body")
	endBlk := g.newBlock("while_end")
	g.loopExitBlocks[loop] = endBlk

	g.emit(Instr{Op: OpBr, Target: testBlk})

	g.cur = testBlk
	cond := g.visitExpr(loop.Cond)
	zero := g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: 0})
	test := g.emit(Instr{Op: OpICmpNe, A: cond, B: zero, Type: TInt32})
	g.emit(Instr{Op: OpCondBr, A: test, Target: bodyBlk, Else: endBlk})

	g.cur = bodyBlk
	g.visitExpr(loop.Body)
	g.emit(Instr{Op: OpBr, Target: testBlk})

	g.cur = endBlk
	return NoValue
}

func (g *Generator) visitForLoop(loop *ast.ForLoop) Value {
	addr := g.generateVarDecl(loop.Variable)
	high := g.visitExpr(loop.High)
	// high is evaluated exactly once, before the loop starts, but "test"
	// re-reads it every iteration, so it needs its own stable storage.
	highSlot := g.emitIn(g.entry, Instr{Op: OpAlloca, Type: TInt32})
	g.emit(Instr{Op: OpStore, A: highSlot, B: high})

	testBlk := g.newBlock("for_test")
	bodyBlk := g.newBlock("for_body")
	endBlk := g.newBlock("for_end")
	g.loopExitBlocks[loop] = endBlk

	g.emit(Instr{Op: OpBr, Target: testBlk})

	g.cur = testBlk
	i := g.emit(Instr{Op: OpLoad, A: addr, Type: TInt32})
	h := g.emit(Instr{Op: OpLoad, A: highSlot, Type: TInt32})
	test := g.emit(Instr{Op: OpICmpLe, A: i, B: h, Type: TInt32})
	g.emit(Instr{Op: OpCondBr, A: test, Target: bodyBlk, Else: endBlk})

	g.cur = bodyBlk
	g.visitExpr(loop.Body)
	cur := g.emit(Instr{Op: OpLoad, A: addr, Type: TInt32})
	one := g.emit(Instr{Op: OpConstInt, Type: TInt32, Imm: 1})
	next := g.emit(Instr{Op: OpAdd, A: cur, B: one, Type: TInt32})
	g.emit(Instr{Op: OpStore, A: addr, B: next})
	g.emit(Instr{Op: OpBr, Target: testBlk})

	g.cur = endBlk
	return NoValue
}

func (g *Generator) visitBreak(b *ast.Break) Value {
	target := g.loopExitBlocks[b.Loop]
	g.emit(Instr{Op: OpBr, Target: target, Pos: b.Pos()})

	// A syntactically-following but unreachable expression still needs a
	// valid insertion point; spec names this block break_deprecated.
	g.cur = g.newBlock("break_deprecated")
	return NoValue
}

func (g *Generator) visitAssign(a *ast.Assign) Value {
	v := g.visitExpr(a.RHS)
	if a.LHS.Type() != types.Void {
		addr := g.addressOf(a.LHS)
		g.emit(Instr{Op: OpStore, A: addr, B: v, Pos: a.Pos()})
	}
	return NoValue
}
