package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/astjson"
	"github.com/nplang/corec/internal/pipeline"
	"github.com/nplang/corec/internal/symbol"
)

var printTree bool

var checkCmd = &cobra.Command{
	Use:   "check <file.json>...",
	Short: "Run Binder, TypeChecker and Escaper without generating IR",
	Long: `check is a fast well-formedness pass: it runs everything compile does
except the IR generator, useful for editor integrations that only want
diagnostics, not codegen.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&printTree, "print-tree", false, "print the type-decorated tree for each file that passes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if watchEnabled {
		return watchAndRerun(args, func() error { return checkOnce(args) })
	}
	return checkOnce(args)
}

func checkOnce(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	color := resolveColor(cfg)

	failures := 0
	for _, filename := range args {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("check: reading %s: %w", filename, err)
		}

		syms := symbol.NewTable()
		root, err := astjson.NewDecoder(syms).DecodeExpr(content)
		if err != nil {
			return fmt.Errorf("check: decoding %s: %w", filename, err)
		}

		res := pipeline.New().CheckOnly(syms, filename, string(content), root)
		if res.Diags.HasFatal() {
			failures++
			fmt.Fprint(os.Stderr, res.Diags.Format(color))
			fmt.Fprintln(os.Stderr)
			continue
		}
		fmt.Printf("%s: ok (%d diagnostic(s))\n", filename, len(res.Diags.Diagnostics))
		if printTree {
			(&ast.Printer{Syms: syms, W: os.Stdout}).Print(root)
		}
	}

	if failures > 0 {
		return fmt.Errorf("check: %d file(s) failed", failures)
	}
	return nil
}
