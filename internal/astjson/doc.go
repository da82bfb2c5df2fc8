// Package astjson decodes a small JSON encoding of spec.md §3.3's AST node
// shapes into *ast.Expr / *ast.Decl trees, standing in for the lexer/parser
// this repository treats as an external collaborator (see internal/ast's
// package doc comment). There is no corresponding encoder for the core's
// own output — the IR text dump (internal/ir/asm.go) is this repository's
// human-readable serialization, and nothing downstream needs the AST back
// in JSON form — so astjson is read-only.
//
// # Encoding
//
// Every node is a JSON object with a "kind" discriminator naming one of the
// Go struct names in internal/ast ("IntegerLiteral", "BinaryOperator",
// "Let", ...), plus one field per exported Go field, in snake_case
// ("func_name", "type_name", "return_type_name", "is_external"). The one
// exception is VarDecl's initializer (Go field Expr), spelled "value" or
// "body". Symbol
// fields (Name, FuncName, TypeName, ...) are plain JSON strings, interned
// into the supplied symbol.Table as they are decoded; the zero Symbol (no
// annotation) is encoded as an empty string or an absent field. Positions
// are not part of the wire format — every decoded node receives
// token.NoPos, matching how the binder's own synthetic nodes (primitives,
// the synthetic main) are positioned, since this JSON form has no
// associated source text to quote in a diagnostic anyway.
//
// Decl fields (VarDecl, FunDecl) are decoded the same way but are never
// top-level: they only ever appear inside a Let's "decls" array, a
// FunDecl's "params" array or a ForLoop's "variable". A FunDecl without a
// "body" is rejected unless "is_external" is true.
package astjson
