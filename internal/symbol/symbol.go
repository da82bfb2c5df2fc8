// Package symbol interns identifier and string-literal text into small
// integer handles so that every later pass can compare names in O(1)
// instead of comparing strings.
package symbol

import "github.com/dolthub/swiss"

// Symbol is an interned name. The zero Symbol is never returned by
// Table.Intern; it is reserved to mean "no symbol" for optional fields.
type Symbol uint32

// Table interns strings into Symbols and back. A Table is not safe for
// concurrent use; each compilation owns its own Table.
//
// The intern map is a github.com/dolthub/swiss hash map rather than a plain
// Go map: programs in this language frequently re-declare and re-look-up the
// same handful of primitive and loop-index names across every nested scope,
// and the swiss-table's open addressing keeps those hot lookups cache
// friendly the way it does for the machine.Map value type in the retrieved
// nenuphar interpreter.
type Table struct {
	byName *swiss.Map[string, Symbol]
	byID   []string
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{
		byName: swiss.NewMap[string, Symbol](64),
		byID:   []string{""}, // index 0 reserved for the zero Symbol
	}
}

// Intern returns the Symbol for name, creating one if this is the first
// occurrence.
func (t *Table) Intern(name string) Symbol {
	if s, ok := t.byName.Get(name); ok {
		return s
	}
	s := Symbol(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName.Put(name, s)
	return s
}

// String returns the text a Symbol was interned from. It panics if s was
// not produced by this Table.
func (t *Table) String(s Symbol) string {
	return t.byID[s]
}

// Len reports how many distinct names have been interned, not counting the
// reserved zero Symbol.
func (t *Table) Len() int { return len(t.byID) - 1 }
