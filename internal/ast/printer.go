package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/nplang/corec/internal/symbol"
)

// Printer renders a decorated tree as an indented, human-readable dump, used
// by corec check --print-tree. It is deliberately not the tree's
// String() method: printing needs the symbol table to resolve names, which
// individual nodes don't carry.
type Printer struct {
	Syms *symbol.Table
	W    io.Writer
}

// Print writes a dump of n to p.W.
func (p *Printer) Print(n Node) {
	p.print(n, 0)
}

func (p *Printer) print(n Node, depth int) {
	if n == nil {
		return
	}
	fmt.Fprintf(p.W, "%s%s\n", strings.Repeat("  ", depth), p.describe(n))
	for _, c := range p.children(n) {
		p.print(c, depth+1)
	}
}

func (p *Printer) children(n Node) []Node {
	var kids []Node
	switch n := n.(type) {
	case *BinaryOperator:
		kids = []Node{n.Left, n.Right}
	case *Sequence:
		for _, e := range n.Exprs {
			kids = append(kids, e)
		}
	case *Let:
		for _, d := range n.Decls {
			kids = append(kids, d)
		}
		kids = append(kids, n.Body)
	case *IfThenElse:
		kids = []Node{n.Cond, n.Then, n.Else}
	case *FunCall:
		for _, a := range n.Args {
			kids = append(kids, a)
		}
	case *WhileLoop:
		kids = []Node{n.Cond, n.Body}
	case *ForLoop:
		kids = []Node{n.Variable, n.High, n.Body}
	case *Assign:
		kids = []Node{n.LHS, n.RHS}
	case *VarDecl:
		if n.Expr != nil {
			kids = []Node{n.Expr}
		}
	case *FunDecl:
		for _, param := range n.Params {
			kids = append(kids, param)
		}
		if n.Body != nil {
			kids = append(kids, n.Body)
		}
	}
	return kids
}

func (p *Printer) describe(n Node) string {
	switch n := n.(type) {
	case *IntegerLiteral:
		return fmt.Sprintf("IntegerLiteral %d : %s", n.Value, n.Typ)
	case *StringLiteral:
		return fmt.Sprintf("StringLiteral %q : %s", p.Syms.String(n.Value), n.Typ)
	case *BinaryOperator:
		return fmt.Sprintf("BinaryOperator %s : %s", n.Op, n.Typ)
	case *Sequence:
		return fmt.Sprintf("Sequence : %s", n.Typ)
	case *Let:
		return fmt.Sprintf("Let : %s", n.Typ)
	case *Identifier:
		return fmt.Sprintf("Identifier %s depth=%d : %s", p.Syms.String(n.Name), n.Depth, n.Typ)
	case *IfThenElse:
		return fmt.Sprintf("IfThenElse : %s", n.Typ)
	case *FunCall:
		return fmt.Sprintf("FunCall %s depth=%d : %s", p.Syms.String(n.FuncName), n.Depth, n.Typ)
	case *WhileLoop:
		return "WhileLoop"
	case *ForLoop:
		return fmt.Sprintf("ForLoop %s", p.Syms.String(n.Variable.Name))
	case *Break:
		return "Break"
	case *Assign:
		return "Assign"
	case *VarDecl:
		esc := ""
		if n.Escapes {
			esc = " escapes"
		}
		return fmt.Sprintf("VarDecl %s depth=%d%s : %s", p.Syms.String(n.Name), n.Depth, esc, n.Typ)
	case *FunDecl:
		return fmt.Sprintf("FunDecl %s external=%s depth=%d : %s",
			p.Syms.String(n.Name), p.Syms.String(n.ExternalName), n.Depth, n.Typ)
	default:
		return fmt.Sprintf("%T", n)
	}
}
