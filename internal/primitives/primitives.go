// Package primitives holds the canonical table of runtime-provided
// primitive operations (print, getchar, ord, chr, size, substring, concat,
// strcmp, streq, not, exit, flush, print_err, print_int). The binder
// pre-populates the top scope with one *ast.FunDecl per entry before
// visiting any user code, exactly as original_source/binder.cc's
// enter_primitive does, so that calls to them resolve like any other
// function call with Decl.IsExternal set.
package primitives

import (
	"fmt"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/token"
	"github.com/nplang/corec/internal/types"
)

// Param describes one parameter of a primitive, by type only: primitive
// parameter names are synthetic (a_0, a_1, ...) per spec §4.1, never
// user-visible.
type Param struct {
	Type types.Type
}

// Entry is one row of the runtime ABI table in spec §6.
type Entry struct {
	// Name is the surface name bound in the top scope (e.g. "print").
	Name string
	// External is the symbol the IR emits a call to (e.g. "__print").
	External string
	Params   []types.Type
	Return   types.Type
}

// Table is the canonical, ordered runtime ABI. Two distinct source names
// ("print" and "print_err") may share a signature shape but are listed as
// separate entries since they bind distinct identifiers; the table is the
// single source of truth called for in spec §6's note about divergent
// snapshots disagreeing on print_err's return type.
var Table = []Entry{
	{Name: "print", External: "__print", Params: []types.Type{types.String}, Return: types.Void},
	{Name: "print_err", External: "__print_err", Params: []types.Type{types.String}, Return: types.Void},
	{Name: "print_int", External: "__print_int", Params: []types.Type{types.Int}, Return: types.Void},
	{Name: "flush", External: "__flush", Params: nil, Return: types.Void},
	{Name: "getchar", External: "__getchar", Params: nil, Return: types.String},
	{Name: "ord", External: "__ord", Params: []types.Type{types.String}, Return: types.Int},
	{Name: "chr", External: "__chr", Params: []types.Type{types.Int}, Return: types.String},
	{Name: "size", External: "__size", Params: []types.Type{types.String}, Return: types.Int},
	{Name: "substring", External: "__substring", Params: []types.Type{types.String, types.Int, types.Int}, Return: types.String},
	{Name: "concat", External: "__concat", Params: []types.Type{types.String, types.String}, Return: types.String},
	{Name: "strcmp", External: "__strcmp", Params: []types.Type{types.String, types.String}, Return: types.Int},
	{Name: "streq", External: "__streq", Params: []types.Type{types.String, types.String}, Return: types.Int},
	{Name: "not", External: "__not", Params: []types.Type{types.Int}, Return: types.Int},
	{Name: "exit", External: "__exit", Params: []types.Type{types.Int}, Return: types.Void},
}

// Declare interns every primitive's names into syms and returns one
// *ast.FunDecl per entry, ready to be inserted into the binder's top scope
// at depth 0 before any user declaration is visited.
func Declare(syms *symbol.Table) []*ast.FunDecl {
	decls := make([]*ast.FunDecl, len(Table))
	for i, e := range Table {
		params := make([]*ast.VarDecl, len(e.Params))
		for j, pt := range e.Params {
			params[j] = &ast.VarDecl{
				Position: token.NoPos,
				Name:     syms.Intern(fmt.Sprintf("a_%d", j)),
				Typ:      pt,
				Depth:    0,
			}
		}
		decls[i] = &ast.FunDecl{
			Position:     token.NoPos,
			Name:         syms.Intern(e.Name),
			Params:       params,
			Body:         nil,
			IsExternal:   true,
			Depth:        0,
			ExternalName: syms.Intern(e.External),
			Typ:          e.Return,
		}
	}
	return decls
}
