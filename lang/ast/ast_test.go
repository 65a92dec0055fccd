package ast_test

import (
	"bytes"
	"testing"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/token"
	"github.com/stretchr/testify/assert"
)

func TestWalkVisitsChildrenInOrder(t *testing.T) {
	root := &ast.BinOp{
		Type: token.ADD,
		Left: &ast.IntLit{Raw: "1", Value: 1},
		Right: &ast.IntLit{Raw: "2", Value: 2},
	}

	var entered []ast.Node
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			entered = append(entered, n)
		}
		return ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
			if dir == ast.VisitEnter {
				entered = append(entered, n)
			}
			return nil
		})
	}), root)

	a := assert.New(t)
	a.Len(entered, 3)
	a.Same(root, entered[0])
	a.Same(root.Left, entered[1])
	a.Same(root.Right, entered[2])
}

func TestWalkStopsWhenVisitorReturnsNil(t *testing.T) {
	root := &ast.GroupExpr{Body: ast.Body{
		ast.Statement{&ast.IntLit{Raw: "1", Value: 1}},
	}}

	var count int
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			count++
		}
		return nil // don't descend
	}), root)

	assert.Equal(t, 1, count)
}

func TestPrinterWritesOneStatementPerBlock(t *testing.T) {
	body := ast.Body{
		ast.Statement{&ast.IntLit{Raw: "1", Value: 1}},
		ast.Statement{&ast.IntLit{Raw: "2", Value: 2}},
	}
	var buf bytes.Buffer
	ast.NewPrinter(&buf, false).Print(body)

	out := buf.String()
	assert.Contains(t, out, "[0]")
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "int 1")
	assert.Contains(t, out, "int 2")
}

func TestPrinterShowsSpansWhenRequested(t *testing.T) {
	body := ast.Body{ast.Statement{&ast.IntLit{Pos: 5, Raw: "1", Value: 1}}}
	var buf bytes.Buffer
	ast.NewPrinter(&buf, true).Print(body)
	assert.Contains(t, buf.String(), "..")
}
