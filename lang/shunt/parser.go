package shunt

import (
	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/token"
)

// parser implements the shunting-yard reordering as a precedence-climbing
// walk over an already-children-shunted flat node list: operationally
// equivalent to the classic two-stack shunting-yard algorithm, but
// expressed recursively since this grammar's only binary forms are the
// comparison/arithmetic operators and the IO write forms.
type parser struct {
	nodes []ast.Node
	pos   int
}

// precedence returns the binding power of n per spec.md §4.3's table and
// whether n is a binary operator at all (literals, calls, groups, etc.
// are never operators).
func precedence(n ast.Node) (level int, isBinary bool) {
	switch t := n.(type) {
	case *ast.IoOp:
		return 2, true
	case *ast.BinOp:
		switch t.Type {
		case token.EQUALS, token.LESS, token.GREATER, token.EQUALSLESS, token.EQUALSGREATER:
			return 3, true
		case token.ADD, token.SUB:
			return 4, true
		case token.MUL, token.DIV, token.REM:
			return 5, true
		case token.EXP:
			return 6, true
		}
	}
	return 0, false
}

func (p *parser) parseExpr(minPrec int) (ast.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.nodes) {
		opNode := p.nodes[p.pos]
		level, isBinary := precedence(opNode)
		if !isBinary || level < minPrec {
			break
		}
		p.pos++

		// left-associative: the right operand only binds operators of
		// strictly higher precedence than this one.
		right, err := p.parseExpr(level + 1)
		if err != nil {
			return nil, err
		}

		switch t := opNode.(type) {
		case *ast.BinOp:
			t.Left, t.Right = left, right
			left = t
		case *ast.IoOp:
			t.Value, t.Fd = left, right
			left = t
		}
	}
	return left, nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	if p.pos >= len(p.nodes) {
		return nil, errs.NewCompileError(errs.TooFewOperands, token.Pos(0), "expected an operand")
	}
	n := p.nodes[p.pos]
	p.pos++
	return n, nil
}
