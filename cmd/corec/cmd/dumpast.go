package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/astjson"
	"github.com/nplang/corec/internal/binder"
	"github.com/nplang/corec/internal/diag"
	"github.com/nplang/corec/internal/symbol"
)

var dumpScopes bool

var dumpASTCmd = &cobra.Command{
	Use:   "dump-ast <file.json>",
	Short: "Pretty-print the decorated AST after binding",
	Long: `dump-ast runs only the Binder (not TypeChecker/Escaper/IRGenerator) and
prints the resulting tree: every FunDecl's depth and whether it is
external, every VarDecl's depth, and every Identifier's resolved depth,
indented by nesting. Pass --scopes to additionally print each function's
full dotted scope path, its external name (binder.NameScopes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDumpAST,
}

func init() {
	rootCmd.AddCommand(dumpASTCmd)
	dumpASTCmd.Flags().BoolVar(&dumpScopes, "scopes", false, "print each function's dotted scope path")
}

func runDumpAST(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("dump-ast: reading %s: %w", filename, err)
	}

	syms := symbol.NewTable()
	diags := diag.NewSink(string(content), filename)
	root, err := astjson.NewDecoder(syms).DecodeExpr(content)
	if err != nil {
		return fmt.Errorf("dump-ast: decoding %s: %w", filename, err)
	}

	b := binder.New(syms, diags)
	if dumpScopes {
		b.SetMode(binder.NameScopes)
	}
	main, err := b.AnalyzeProgram(root)
	if err != nil || diags.HasFatal() {
		cfg, cfgErr := loadConfig()
		color := false
		if cfgErr == nil {
			color = resolveColor(cfg)
		}
		fmt.Fprint(os.Stderr, diags.Format(color))
		return fmt.Errorf("dump-ast: binding failed")
	}

	d := &dumper{syms: syms, showScopes: dumpScopes && b.NamesScopes()}
	d.dump(main)
	return nil
}

// dumper prints enough of a decorated tree's shape to make nesting and
// resolved depths visible; it is deliberately not exhaustive since
// dump-ast is a debugging aid, not a canonical AST serialization (that
// role belongs to internal/astjson). Traversal itself is ast.Walk's job;
// the dumper only decides what a node's line looks like.
type dumper struct {
	syms       *symbol.Table
	showScopes bool
	depth      int
}

func (d *dumper) indent() string { return strings.Repeat("  ", d.depth) }

func (d *dumper) dump(main *ast.FunDecl) {
	ast.Walk(ast.VisitorFunc(d.visit), main)
}

// Sequence nodes print nothing of their own; their children sit at the
// same depth as the Sequence itself rather than one level deeper.
func isTransparent(n ast.Node) bool {
	_, ok := n.(*ast.Sequence)
	return ok
}

func (d *dumper) visit(n ast.Node, dir ast.VisitDirection) ast.Visitor {
	if dir == ast.VisitExit {
		if !isTransparent(n) {
			d.depth--
		}
		return nil
	}
	d.describe(n)
	if !isTransparent(n) {
		d.depth++
	}
	return ast.VisitorFunc(d.visit)
}

func (d *dumper) describe(n ast.Node) {
	switch n := n.(type) {
	case *ast.FunDecl:
		line := fmt.Sprintf("%sfunc %s(depth=%d, external=%v)", d.indent(), d.syms.String(n.Name), n.Depth, n.IsExternal)
		if d.showScopes {
			line += fmt.Sprintf(" [%s]", d.syms.String(n.ExternalName))
		}
		if len(n.EscapingDecls) > 0 {
			names := make([]string, len(n.EscapingDecls))
			for i, v := range n.EscapingDecls {
				names[i] = d.syms.String(v.Name)
			}
			line += fmt.Sprintf(" escaping=[%s]", strings.Join(names, ", "))
		}
		fmt.Println(line)
	case *ast.VarDecl:
		fmt.Printf("%svar %s (depth=%d, escapes=%v)\n", d.indent(), d.syms.String(n.Name), n.Depth, n.Escapes)
	case *ast.Sequence:
		// nothing to print; see isTransparent
	case *ast.Let:
		fmt.Printf("%slet\n", d.indent())
	case *ast.Identifier:
		fmt.Printf("%sidentifier %s (depth=%d)\n", d.indent(), d.syms.String(n.Name), n.Depth)
	case *ast.IfThenElse:
		fmt.Printf("%sif\n", d.indent())
	case *ast.WhileLoop:
		fmt.Printf("%swhile\n", d.indent())
	case *ast.ForLoop:
		fmt.Printf("%sfor %s\n", d.indent(), d.syms.String(n.Variable.Name))
	case *ast.FunCall:
		fmt.Printf("%scall %s (depth=%d)\n", d.indent(), d.syms.String(n.FuncName), n.Depth)
	case *ast.BinaryOperator:
		fmt.Printf("%s%s\n", d.indent(), n.Op)
	case *ast.Assign:
		fmt.Printf("%sassign\n", d.indent())
	case *ast.Break:
		fmt.Printf("%sbreak\n", d.indent())
	case *ast.IntegerLiteral:
		fmt.Printf("%sint %d\n", d.indent(), n.Value)
	case *ast.StringLiteral:
		fmt.Printf("%sstring %q\n", d.indent(), d.syms.String(n.Value))
	}
}
