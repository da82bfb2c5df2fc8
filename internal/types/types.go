// Package types defines the language's closed, flat set of semantic types.
// Unlike the teacher's internal/interp/types package — which manages rich
// registries for classes, records, interfaces and operator overloads — this
// language has no user-defined types, so a single enum suffices.
package types

// Type is one of the four semantic types recognized by the checker.
type Type uint8

const (
	// Undef is the initial type of every node before the checker runs. No
	// node may carry Undef once type checking succeeds.
	Undef Type = iota
	Int
	String
	Void
)

var names = [...]string{
	Undef:  "undef",
	Int:    "int",
	String: "string",
	Void:   "void",
}

func (t Type) String() string {
	if int(t) >= len(names) {
		return "invalid type"
	}
	return names[t]
}

// FromAnnotation maps a surface type annotation ("int" / "string") to a
// Type. It returns (Undef, false) for any other spelling.
func FromAnnotation(name string) (Type, bool) {
	switch name {
	case "int":
		return Int, true
	case "string":
		return String, true
	default:
		return Undef, false
	}
}

// Comparable reports whether two operands of this type may be compared with
// = or <>. Every type, including Void, is comparable to itself.
func (t Type) Comparable() bool { return true }

// Ordered reports whether operands of this type support <, <=, > and >=.
func (t Type) Ordered() bool { return t == Int || t == String }

// Arithmetic reports whether operands of this type support +, -, *, /.
func (t Type) Arithmetic() bool { return t == Int }
