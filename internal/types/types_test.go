package types

import "testing"

func TestType_String(t *testing.T) {
	cases := map[Type]string{
		Undef:  "undef",
		Int:    "int",
		String: "string",
		Void:   "void",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestType_String_Invalid(t *testing.T) {
	if got := Type(255).String(); got != "invalid type" {
		t.Errorf("Type(255).String() = %q, want %q", got, "invalid type")
	}
}

func TestFromAnnotation(t *testing.T) {
	cases := []struct {
		name string
		want Type
		ok   bool
	}{
		{"int", Int, true},
		{"string", String, true},
		{"bool", Undef, false},
		{"", Undef, false},
	}
	for _, c := range cases {
		got, ok := FromAnnotation(c.name)
		if got != c.want || ok != c.ok {
			t.Errorf("FromAnnotation(%q) = (%v, %v), want (%v, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestType_Ordered(t *testing.T) {
	if !Int.Ordered() {
		t.Error("Int should be ordered")
	}
	if !String.Ordered() {
		t.Error("String should be ordered")
	}
	if Void.Ordered() {
		t.Error("Void should not be ordered")
	}
}

func TestType_Arithmetic(t *testing.T) {
	if !Int.Arithmetic() {
		t.Error("Int should support arithmetic")
	}
	if String.Arithmetic() {
		t.Error("String should not support arithmetic")
	}
}

func TestType_Comparable(t *testing.T) {
	for _, typ := range []Type{Undef, Int, String, Void} {
		if !typ.Comparable() {
			t.Errorf("%v should be comparable to itself", typ)
		}
	}
}
