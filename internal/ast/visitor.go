package ast

// VisitDirection indicates whether a call to Visit enters or exits a node.
type VisitDirection int

const (
	VisitEnter VisitDirection = iota
	VisitExit
)

// Visitor is called for every node reachable from the root passed to Walk.
// Returning nil from Visit skips that node's children.
type Visitor interface {
	Visit(n Node, dir VisitDirection) (w Visitor)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n Node, dir VisitDirection) Visitor

func (f VisitorFunc) Visit(n Node, dir VisitDirection) Visitor { return f(n, dir) }

// Walk traverses the tree rooted at n in the same order every pass in this
// repository uses: left before right in binary operators, declarations
// before body in Let, argument order in calls.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n, VisitEnter); v == nil {
		return
	}
	switch n := n.(type) {
	case *IntegerLiteral, *StringLiteral:
		// leaves

	case *BinaryOperator:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *Sequence:
		for _, e := range n.Exprs {
			Walk(v, e)
		}

	case *Let:
		for _, d := range n.Decls {
			Walk(v, d)
		}
		Walk(v, n.Body)

	case *Identifier:
		// leaf (Decl is a back-reference, not a child)

	case *IfThenElse:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)

	case *FunCall:
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *WhileLoop:
		Walk(v, n.Cond)
		Walk(v, n.Body)

	case *ForLoop:
		Walk(v, n.Variable)
		Walk(v, n.High)
		Walk(v, n.Body)

	case *Break:
		// leaf (Loop is a back-reference, not a child)

	case *Assign:
		Walk(v, n.LHS)
		Walk(v, n.RHS)

	case *VarDecl:
		if n.Expr != nil {
			Walk(v, n.Expr)
		}

	case *FunDecl:
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	default:
		panic("ast.Walk: unexpected node type")
	}
	v.Visit(n, VisitExit)
}
