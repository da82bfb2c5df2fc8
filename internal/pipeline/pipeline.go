// Package pipeline wires the four decorating passes — Binder, TypeChecker,
// Escaper, IRGenerator — into a single entry point, stopping at the first
// fatal diagnostic exactly as the teacher's internal/semantic.PassManager
// stops RunAll at the first pass error or ctx.HasCriticalErrors(). Unlike
// the teacher, each pass here reports fatal problems through a shared
// diag.Sink rather than a returned error, so Pipeline.Compile checks
// sink.HasFatal() between stages instead of inspecting a *PassManager
// return value.
package pipeline

import (
	"fmt"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/binder"
	"github.com/nplang/corec/internal/checker"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/escape"
	"github.com/nplang/corec/internal/ir"
	"github.com/nplang/corec/internal/symbol"
)

// Stage names a point a trace hook or diagnostic message can refer to.
type Stage string

const (
	StageBind   Stage = "bind"
	StageCheck  Stage = "check"
	StageEscape Stage = "escape"
	StageIR     Stage = "ir"
)

// Result holds everything a caller (CLI subcommand or test) might want back
// from one file's compilation.
type Result struct {
	Filename string
	Syms     *symbol.Table
	Diags    *diag.Sink

	// Main is set once the binder succeeds, even if a later stage fails.
	Main *ast.FunDecl
	// Program is set only if every stage including IR generation succeeds.
	Program *ir.Program
}

// Pipeline runs the four passes over one compilation unit. A Pipeline is
// not safe for concurrent use; CompileAll gives each file its own.
type Pipeline struct {
	// Trace, if non-nil, is called after each stage completes successfully,
	// letting a caller (the corec CLI's --trace-db flag) record timing or
	// intermediate state without the passes themselves knowing about it.
	Trace func(stage Stage, res *Result)
}

// New returns a Pipeline with no tracing hook.
func New() *Pipeline {
	return &Pipeline{}
}

// CheckOnly runs Binder, TypeChecker and Escaper but not the IR generator,
// for corec check's fast well-formedness mode.
func (p *Pipeline) CheckOnly(syms *symbol.Table, filename, source string, root ast.Expr) *Result {
	res := &Result{Filename: filename, Syms: syms, Diags: diag.NewSink(source, filename)}
	p.runFrontend(res, root)
	return res
}

// Compile runs all four passes. If a fatal diagnostic occurs at any stage,
// Result.Program is left nil and the caller should format Result.Diags.
func (p *Pipeline) Compile(syms *symbol.Table, filename, source string, root ast.Expr) *Result {
	res := &Result{Filename: filename, Syms: syms, Diags: diag.NewSink(source, filename)}
	if !p.runFrontend(res, root) {
		return res
	}

	gen := ir.NewGenerator(syms)
	prog, err := gen.GenerateProgram(res.Main)
	if err != nil {
		res.Diags.Add(diag.RuntimeDomainError, res.Main.Pos(), "ir generation failed: %v", err)
		return res
	}
	res.Program = prog
	p.trace(StageIR, res)
	return res
}

// runFrontend runs Binder, TypeChecker and Escaper in order, stopping as
// soon as any of them reports a fatal diagnostic. It reports whether all
// three succeeded.
func (p *Pipeline) runFrontend(res *Result, root ast.Expr) bool {
	main, err := binder.New(res.Syms, res.Diags).AnalyzeProgram(root)
	if err != nil || res.Diags.HasFatal() {
		return false
	}
	res.Main = main
	p.trace(StageBind, res)

	if err := checker.New(res.Syms, res.Diags).TypeCheck(main); err != nil || res.Diags.HasFatal() {
		return false
	}
	p.trace(StageCheck, res)

	escape.New().Analyze(main)
	p.trace(StageEscape, res)

	return true
}

func (p *Pipeline) trace(stage Stage, res *Result) {
	if p.Trace != nil {
		p.Trace(stage, res)
	}
}

// Failed reports whether res represents a compilation that stopped short of
// producing IR, either because of a frontend diagnostic or an IR generation
// error.
func (r *Result) Failed() bool {
	return r.Program == nil
}

// Summary renders a one-line human-readable outcome. The corec commands
// print their own per-file lines and do not call it.
func (r *Result) Summary() string {
	if r.Failed() {
		return fmt.Sprintf("%s: failed (%d diagnostic(s))", r.Filename, len(r.Diags.Diagnostics))
	}
	return fmt.Sprintf("%s: ok", r.Filename)
}
