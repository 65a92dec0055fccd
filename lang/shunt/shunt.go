// Package shunt implements the operator-precedence reordering stage (C4):
// it consumes the joiner's flat, source-ordered per-statement node lists
// and produces, for each statement, the single rooted expression tree the
// lowerer expects, recursing into every composite operand's body first
// per spec.md §4.3.
//
// The joiner already resolves two of the lowest-precedence forms eagerly
// (If and Return bind their operand at join time, since both are written
// as prefix markers whose operand follows them in source order rather
// than precedes them as spec.md §4.3's general "immediately preceding
// output value" framing describes) — ShuntStatement is exported so the
// joiner can reuse it for exactly that purpose. The one remaining
// prefix form reordering does here is assignment: a SaveArg/SaveLocal
// node in the first position of a statement's flat list takes the rest
// of the statement, precedence-climbed, as its value.
package shunt

import (
	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/token"
)

// Shunt reorders every statement in body into evaluation order, recursing
// into nested bodies (function literals, groups, conditionals, call
// argument lists, array literals, index expressions) before reordering
// the enclosing statement.
func Shunt(body ast.Body) (ast.Body, error) {
	out := make(ast.Body, 0, len(body))
	for _, stmt := range body {
		root, err := ShuntStatement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Statement{root})
	}
	return out, nil
}

// ShuntStatement reorders a single flat, source-ordered statement into its
// single rooted evaluation-order expression.
func ShuntStatement(nodes ast.Statement) (ast.Node, error) {
	for _, n := range nodes {
		if err := shuntChildren(n); err != nil {
			return nil, err
		}
	}

	filtered := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := n.(*ast.CommentNode); ok {
			continue
		}
		filtered = append(filtered, n)
	}
	if len(filtered) == 0 {
		if len(nodes) == 0 {
			return nil, errs.NewCompileError(errs.TooFewOperands, token.Pos(0), "empty statement")
		}
		return nodes[0], nil
	}

	if target, ok := isSaveTarget(filtered[0]); ok {
		p := &parser{nodes: filtered[1:]}
		if len(p.nodes) == 0 {
			return nil, errs.NewCompileError(errs.TooFewOperands, saveTargetPos(filtered[0]), "assignment with no value")
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.pos != len(p.nodes) {
			return nil, errs.NewCompileError(errs.TooFewOperands, saveTargetPos(filtered[0]), "trailing tokens after assignment")
		}
		return &ast.Assign{OpPos: saveTargetPos(filtered[0]), Target: target, Value: value}, nil
	}

	p := &parser{nodes: filtered}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.nodes) {
		return nil, errs.NewCompileError(errs.TooFewOperands, rootPos(filtered[0]), "trailing tokens in statement")
	}
	return root, nil
}

func isSaveTarget(n ast.Node) (ast.Node, bool) {
	switch n.(type) {
	case *ast.SaveArg, *ast.SaveLocal:
		return n, true
	default:
		return nil, false
	}
}

func saveTargetPos(n ast.Node) token.Pos {
	start, _ := n.Span()
	return start
}

func rootPos(n ast.Node) token.Pos {
	start, _ := n.Span()
	return start
}

// shuntChildren recursively shunts every nested Body (or, for Assign nodes
// already fully built by the joiner's named-function-def sugar, the
// already-bound Value) carried by a structural node. Literal and
// already-resolved-index leaves have nothing to recurse into.
func shuntChildren(n ast.Node) error {
	switch t := n.(type) {
	case *ast.GroupExpr:
		b, err := Shunt(t.Body)
		if err != nil {
			return err
		}
		t.Body = b

	case *ast.FunctionLit:
		b, err := Shunt(t.Body)
		if err != nil {
			return err
		}
		t.Body = b

	case *ast.IfStmt:
		b, err := Shunt(t.Body)
		if err != nil {
			return err
		}
		t.Body = b
		if t.Guard != nil {
			return shuntChildren(t.Guard)
		}

	case *ast.ArrayLit:
		b, err := Shunt(t.Items)
		if err != nil {
			return err
		}
		t.Items = b

	case *ast.IndexExpr:
		if err := shuntChildren(t.Prefix); err != nil {
			return err
		}
		b, err := Shunt(t.Index)
		if err != nil {
			return err
		}
		t.Index = b

	case *ast.LocalCall:
		b, err := Shunt(t.Args)
		if err != nil {
			return err
		}
		t.Args = b

	case *ast.ArgCall:
		b, err := Shunt(t.Args)
		if err != nil {
			return err
		}
		t.Args = b

	case *ast.SelfCall:
		b, err := Shunt(t.Args)
		if err != nil {
			return err
		}
		t.Args = b

	case *ast.Assign:
		// only reachable for the already-complete Assign nodes the joiner
		// builds directly for ".name,params{body}" sugar; the plain
		// "name = expr" form (and the synthetic binding of an immediately
		// invoked function literal) is left as a bare SaveArg/SaveLocal
		// marker for ShuntStatement to bind.
		if t.Value != nil {
			return shuntChildren(t.Value)
		}

	case *ast.Return:
		if t.Value != nil {
			return shuntChildren(t.Value)
		}
	}
	return nil
}
