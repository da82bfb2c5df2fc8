// Package cmd implements corec's cobra command tree: compile, check and
// dump-ast, plus the global flags shared by all three. Structured the way
// the teacher's cmd/dwscript/cmd.root.go lays out a cobra root command
// (package-level *cobra.Command, Execute(), an init() wiring persistent
// flags and the version template).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nplang/corec/internal/config"
	"github.com/nplang/corec/internal/diag"
)

var (
	// Version information (set by build flags, mirroring the teacher's own
	// ldflags-injected Version/GitCommit/BuildDate).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	colorFlag    string // "auto", "always", "never"
	configPath   string
	traceDBPath  string
	watchEnabled bool
)

var rootCmd = &cobra.Command{
	Use:   "corec",
	Short: "Compiler middle-end for a small nested-function language",
	Long: `corec runs the Binder, TypeChecker, Escaper and IRGenerator passes
over a JSON-encoded AST (see internal/astjson for the wire format), the
parser and backend being out of this repository's scope.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", `colorize diagnostics: "auto", "always", or "never"`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (see internal/config)")
	rootCmd.PersistentFlags().StringVar(&traceDBPath, "trace-db", "", "optional SQLite path to record pipeline stage timing")
	rootCmd.PersistentFlags().BoolVar(&watchEnabled, "watch", false, "recompile on file change")
}

// resolveColor decides whether diagnostics should be colorized: --color's
// explicit "always"/"never" wins outright; "auto" (the default) defers to
// cfg's own Color override, which in turn falls back to isatty
// autodetection on stderr exactly as internal/diag.AutoColor does.
func resolveColor(cfg *config.Config) bool {
	switch colorFlag {
	case "always":
		return true
	case "never":
		return false
	default:
		return cfg.ColorEnabled(func() bool { return diag.AutoColor(os.Stderr.Fd()) })
	}
}

// loadConfig loads --config (or defaults), returning config.Load's error
// to the caller if the file is missing or malformed.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
}
