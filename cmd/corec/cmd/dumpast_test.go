package cmd

import (
	"testing"
)

func TestRunDumpAST_FailsOnUndefinedIdentifier(t *testing.T) {
	path := writeFixture(t, "bad.json", `{"kind":"Identifier","name":"missing"}`)
	if err := runDumpAST(dumpASTCmd, []string{path}); err == nil {
		t.Fatalf("expected an error for an undefined identifier")
	}
}

func TestRunDumpAST_SucceedsOnWellFormedProgram(t *testing.T) {
	path := writeFixture(t, "ok.json", `{"kind":"IntegerLiteral","value":5}`)
	if err := runDumpAST(dumpASTCmd, []string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
