package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func TestCompileOnce_SucceedsOnWellFormedProgram(t *testing.T) {
	path := writeFixture(t, "ok.json", `{"kind":"IntegerLiteral","value":1}`)
	if err := compileOnce([]string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompileOnce_FailsOnUndefinedIdentifier(t *testing.T) {
	path := writeFixture(t, "bad.json", `{"kind":"Identifier","name":"missing"}`)
	if err := compileOnce([]string{path}); err == nil {
		t.Fatalf("expected an error for an undefined identifier")
	}
}

func TestCompileOnce_FailsOnMissingFile(t *testing.T) {
	if err := compileOnce([]string{filepath.Join(t.TempDir(), "nope.json")}); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
