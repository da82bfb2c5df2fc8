package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nplang/corec/internal/ir"
	"github.com/nplang/corec/internal/pipeline"
	"github.com/nplang/corec/internal/tracedb"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.json>...",
	Short: "Run the full pipeline and print the generated IR",
	Long: `compile decodes one or more JSON-encoded AST programs (internal/astjson),
runs Binder, TypeChecker, Escaper and IRGenerator over each, and prints the
resulting IR as pseudo-assembly. Multiple files are compiled concurrently,
each through its own independent pipeline.

Examples:
  corec compile program.json
  corec compile a.json b.json c.json --trace-db runs.sqlite`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if watchEnabled {
		return watchAndRerun(args, func() error { return compileOnce(args) })
	}
	return compileOnce(args)
}

func compileOnce(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	color := resolveColor(cfg)

	units := make([]pipeline.Unit, len(args))
	for i, a := range args {
		units[i] = pipeline.Unit{Filename: a}
	}

	dbPath := traceDBPath
	if dbPath == "" {
		dbPath = cfg.TraceDB
	}

	var trace func(pipeline.Stage, *pipeline.Result)
	if dbPath != "" {
		db, err := tracedb.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		run, err := db.NewRun()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "trace run: %s\n", run.ID())
		hook := run.TraceHook()
		trace = func(stage pipeline.Stage, res *pipeline.Result) {
			if cfg.TracesStage(string(stage)) {
				hook(stage, res)
			}
		}
	}

	start := time.Now()
	results, err := pipeline.CompileAll(context.Background(), units, trace)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	elapsed := time.Since(start)

	failures := 0
	irBytes := 0
	for _, res := range results {
		if res.Failed() {
			failures++
			fmt.Fprint(os.Stderr, res.Diags.Format(color))
			fmt.Fprintln(os.Stderr)
			continue
		}

		var buf bytes.Buffer
		ir.NewPrinter(&buf).Print(res.Program)
		irBytes += buf.Len()
		os.Stdout.Write(buf.Bytes())
	}

	fmt.Fprintf(os.Stderr, "compiled %d file(s) in %s (%s of IR, %d failed)\n",
		len(results), elapsed.Round(time.Millisecond), humanize.Bytes(uint64(irBytes)), failures)

	if failures > 0 {
		return fmt.Errorf("compile: %d file(s) failed", failures)
	}
	return nil
}
