package binder

import (
	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/symbol"
)

// scope maps a Symbol to the declaration that introduced it in this scope.
// Scopes are kept on an explicit stack rather than a parent-linked chain
// (unlike the teacher's semantic.Scope) because lookup here always walks
// the whole stack top-down with no need to retain a scope after it's
// popped.
type scope map[symbol.Symbol]ast.Decl

// scopeStack is a stack of scopes, innermost last.
type scopeStack []scope

func (s *scopeStack) push() {
	*s = append(*s, make(scope))
}

func (s *scopeStack) pop() {
	*s = (*s)[:len(*s)-1]
}

func (s scopeStack) current() scope {
	return s[len(s)-1]
}

// find looks up name from the innermost scope outward, returning the first
// match.
func (s scopeStack) find(name symbol.Symbol) (ast.Decl, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if d, ok := s[i][name]; ok {
			return d, true
		}
	}
	return nil, false
}
