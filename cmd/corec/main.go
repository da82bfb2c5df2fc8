// Command corec is the command-line driver for the compiler middle-end:
// binder, type checker, escape analyzer and IR generator, run over JSON-
// encoded AST programs (see internal/astjson).
package main

import (
	"os"

	"github.com/nplang/corec/cmd/corec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
