package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/token"
)

// rawNode is the wire shape every node decodes through before dispatching
// on Kind. Using json.RawMessage for every other field lets one object
// shape serve every node kind without a struct-per-kind decoder table.
type rawNode struct {
	Kind string `json:"kind"`

	Value    json.RawMessage `json:"value"`
	Op       json.RawMessage `json:"op"`
	Left     json.RawMessage `json:"left"`
	Right    json.RawMessage `json:"right"`
	Exprs    json.RawMessage `json:"exprs"`
	Decls    json.RawMessage `json:"decls"`
	Body     json.RawMessage `json:"body"`
	Name     json.RawMessage `json:"name"`
	Cond     json.RawMessage `json:"cond"`
	Then     json.RawMessage `json:"then"`
	Else     json.RawMessage `json:"else"`
	FuncName json.RawMessage `json:"func_name"`
	Args     json.RawMessage `json:"args"`
	Variable json.RawMessage `json:"variable"`
	High     json.RawMessage `json:"high"`
	LHS      json.RawMessage `json:"lhs"`
	RHS      json.RawMessage `json:"rhs"`
	Params   json.RawMessage `json:"params"`
	TypeName json.RawMessage `json:"type_name"`

	ReturnTypeName json.RawMessage `json:"return_type_name"`
	IsExternal     json.RawMessage `json:"is_external"`
}

// Decoder decodes JSON AST programs, interning every identifier it
// encounters into the supplied symbol.Table.
type Decoder struct {
	syms *symbol.Table
}

// NewDecoder returns a Decoder that interns names into syms.
func NewDecoder(syms *symbol.Table) *Decoder {
	return &Decoder{syms: syms}
}

// DecodeExpr decodes a single top-level expression tree from data, the
// program body that the binder's AnalyzeProgram expects as its root.
func (d *Decoder) DecodeExpr(data []byte) (ast.Expr, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	return d.decodeExpr(&raw)
}

func (d *Decoder) decodeRaw(data json.RawMessage) (*rawNode, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	return &raw, nil
}

func (d *Decoder) decodeExprField(data json.RawMessage) (ast.Expr, error) {
	raw, err := d.decodeRaw(data)
	if err != nil || raw == nil {
		return nil, err
	}
	return d.decodeExpr(raw)
}

func (d *Decoder) decodeString(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("astjson: %w", err)
	}
	return s, nil
}

func (d *Decoder) decodeSymbol(data json.RawMessage) (symbol.Symbol, error) {
	s, err := d.decodeString(data)
	if err != nil || s == "" {
		return symbol.Symbol(0), err
	}
	return d.syms.Intern(s), nil
}

func (d *Decoder) decodeInt32(data json.RawMessage) (int32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("astjson: %w", err)
	}
	return n, nil
}

func (d *Decoder) decodeBool(data json.RawMessage) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return false, fmt.Errorf("astjson: %w", err)
	}
	return b, nil
}

func (d *Decoder) decodeBinOp(data json.RawMessage) (ast.BinOp, error) {
	s, err := d.decodeString(data)
	if err != nil {
		return 0, err
	}
	switch s {
	case "+":
		return ast.Add, nil
	case "-":
		return ast.Sub, nil
	case "*":
		return ast.Mul, nil
	case "/":
		return ast.Div, nil
	case "=":
		return ast.Eq, nil
	case "<>":
		return ast.Neq, nil
	case "<":
		return ast.Lt, nil
	case "<=":
		return ast.Le, nil
	case ">":
		return ast.Gt, nil
	case ">=":
		return ast.Ge, nil
	default:
		return 0, fmt.Errorf("astjson: unknown binary operator %q", s)
	}
}

func (d *Decoder) decodeExprList(data json.RawMessage) ([]ast.Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(data, &rawItems); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	exprs := make([]ast.Expr, 0, len(rawItems))
	for _, item := range rawItems {
		raw, err := d.decodeRaw(item)
		if err != nil {
			return nil, err
		}
		e, err := d.decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (d *Decoder) decodeVarDecl(raw *rawNode) (*ast.VarDecl, error) {
	name, err := d.decodeSymbol(raw.Name)
	if err != nil {
		return nil, err
	}
	typeName, err := d.decodeSymbol(raw.TypeName)
	if err != nil {
		return nil, err
	}
	expr, err := d.decodeExprField(raw.Value)
	if err != nil {
		return nil, err
	}
	// A VarDecl's initializer may also be spelled "body" to match the
	// teacher-style field naming used for declarations with a single
	// child expression; accept either.
	if expr == nil {
		expr, err = d.decodeExprField(raw.Body)
		if err != nil {
			return nil, err
		}
	}
	return &ast.VarDecl{
		Position: token.NoPos,
		Name:     name,
		Expr:     expr,
		TypeName: typeName,
	}, nil
}

func (d *Decoder) decodeFunDecl(raw *rawNode) (*ast.FunDecl, error) {
	name, err := d.decodeSymbol(raw.Name)
	if err != nil {
		return nil, err
	}
	returnTypeName, err := d.decodeSymbol(raw.ReturnTypeName)
	if err != nil {
		return nil, err
	}
	isExternal, err := d.decodeBool(raw.IsExternal)
	if err != nil {
		return nil, err
	}
	body, err := d.decodeExprField(raw.Body)
	if err != nil {
		return nil, err
	}
	if body == nil && !isExternal {
		return nil, fmt.Errorf("astjson: FunDecl %q has no body and is not external", d.syms.String(name))
	}

	var params []*ast.VarDecl
	if len(raw.Params) > 0 {
		var rawParams []json.RawMessage
		if err := json.Unmarshal(raw.Params, &rawParams); err != nil {
			return nil, fmt.Errorf("astjson: %w", err)
		}
		for _, p := range rawParams {
			pr, err := d.decodeRaw(p)
			if err != nil {
				return nil, err
			}
			vd, err := d.decodeVarDecl(pr)
			if err != nil {
				return nil, err
			}
			params = append(params, vd)
		}
	}

	return &ast.FunDecl{
		Position:       token.NoPos,
		Name:           name,
		Params:         params,
		Body:           body,
		ReturnTypeName: returnTypeName,
		IsExternal:     isExternal,
	}, nil
}

func (d *Decoder) decodeDecl(raw *rawNode) (ast.Decl, error) {
	switch raw.Kind {
	case "VarDecl":
		return d.decodeVarDecl(raw)
	case "FunDecl":
		return d.decodeFunDecl(raw)
	default:
		return nil, fmt.Errorf("astjson: unknown declaration kind %q", raw.Kind)
	}
}

func (d *Decoder) decodeExpr(raw *rawNode) (ast.Expr, error) {
	switch raw.Kind {
	case "IntegerLiteral":
		n, err := d.decodeInt32(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.IntegerLiteral{Value: n}, nil

	case "StringLiteral":
		s, err := d.decodeSymbol(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: s}, nil

	case "BinaryOperator":
		op, err := d.decodeBinOp(raw.Op)
		if err != nil {
			return nil, err
		}
		left, err := d.decodeExprField(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.decodeExprField(raw.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperator{Op: op, Left: left, Right: right}, nil

	case "Sequence":
		exprs, err := d.decodeExprList(raw.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.Sequence{Exprs: exprs}, nil

	case "Let":
		var rawDecls []json.RawMessage
		if len(raw.Decls) > 0 {
			if err := json.Unmarshal(raw.Decls, &rawDecls); err != nil {
				return nil, fmt.Errorf("astjson: %w", err)
			}
		}
		decls := make([]ast.Decl, 0, len(rawDecls))
		for _, rd := range rawDecls {
			dr, err := d.decodeRaw(rd)
			if err != nil {
				return nil, err
			}
			decl, err := d.decodeDecl(dr)
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
		bodyExpr, err := d.decodeExprField(raw.Body)
		if err != nil {
			return nil, err
		}
		seq, ok := bodyExpr.(*ast.Sequence)
		if !ok {
			if bodyExpr == nil {
				seq = &ast.Sequence{}
			} else {
				seq = &ast.Sequence{Exprs: []ast.Expr{bodyExpr}}
			}
		}
		return &ast.Let{Decls: decls, Body: seq}, nil

	case "Identifier":
		name, err := d.decodeSymbol(raw.Name)
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: name}, nil

	case "IfThenElse":
		cond, err := d.decodeExprField(raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.decodeExprField(raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.decodeExprField(raw.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfThenElse{Cond: cond, Then: then, Else: els}, nil

	case "FunCall":
		name, err := d.decodeSymbol(raw.FuncName)
		if err != nil {
			return nil, err
		}
		args, err := d.decodeExprList(raw.Args)
		if err != nil {
			return nil, err
		}
		return &ast.FunCall{FuncName: name, Args: args}, nil

	case "WhileLoop":
		cond, err := d.decodeExprField(raw.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeExprField(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileLoop{Cond: cond, Body: body}, nil

	case "ForLoop":
		varRaw, err := d.decodeRaw(raw.Variable)
		if err != nil {
			return nil, err
		}
		var variable *ast.VarDecl
		if varRaw != nil {
			variable, err = d.decodeVarDecl(varRaw)
			if err != nil {
				return nil, err
			}
		}
		high, err := d.decodeExprField(raw.High)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeExprField(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForLoop{Variable: variable, High: high, Body: body}, nil

	case "Break":
		return &ast.Break{}, nil

	case "Assign":
		lhsRaw, err := d.decodeRaw(raw.LHS)
		if err != nil {
			return nil, err
		}
		var lhs *ast.Identifier
		if lhsRaw != nil {
			e, err := d.decodeExpr(lhsRaw)
			if err != nil {
				return nil, err
			}
			id, ok := e.(*ast.Identifier)
			if !ok {
				return nil, fmt.Errorf("astjson: Assign.lhs must be an Identifier, got %q", lhsRaw.Kind)
			}
			lhs = id
		}
		rhs, err := d.decodeExprField(raw.RHS)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LHS: lhs, RHS: rhs}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expression kind %q", raw.Kind)
	}
}
