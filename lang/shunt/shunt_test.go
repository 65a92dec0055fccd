package shunt_test

import (
	"testing"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/joiner"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/shunt"
	"github.com/kscript-lang/kscript/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedBody(t *testing.T, src string) ast.Body {
	t.Helper()
	toks, err := lexer.Lex([]byte(src))
	require.NoError(t, err)
	body, _, err := joiner.JoinProgram(toks)
	require.NoError(t, err)
	return body
}

func shunted(t *testing.T, src string) ast.Body {
	t.Helper()
	body, err := shunt.Shunt(joinedBody(t, src))
	require.NoError(t, err)
	return body
}

func TestShuntArithmeticRespectsPrecedence(t *testing.T) {
	body := shunted(t, "1 + 2 * 3")
	root := body[0][0].(*ast.BinOp)
	assert.Equal(t, token.ADD, root.Type)
	_, leftIsLit := root.Left.(*ast.IntLit)
	assert.True(t, leftIsLit)
	mul, ok := root.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.MUL, mul.Type)
}

func TestShuntExponentBindsTighterThanMul(t *testing.T) {
	body := shunted(t, "2 * 3 ** 2")
	root := body[0][0].(*ast.BinOp)
	assert.Equal(t, token.MUL, root.Type)
	exp, ok := root.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.EXP, exp.Type)
}

func TestShuntIsLeftAssociative(t *testing.T) {
	// 1 - 2 - 3 must parse as (1 - 2) - 3, not 1 - (2 - 3).
	body := shunted(t, "1 - 2 - 3")
	root := body[0][0].(*ast.BinOp)
	assert.Equal(t, token.SUB, root.Type)
	inner, ok := root.Left.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.SUB, inner.Type)
	_, rightIsLit := root.Right.(*ast.IntLit)
	assert.True(t, rightIsLit)
}

func TestShuntIoOpHasLowestPrecedence(t *testing.T) {
	body := shunted(t, "1 + 2 >> 1")
	ioOp := body[0][0].(*ast.IoOp)
	assert.Equal(t, token.IOAPPEND, ioOp.Type)
	binop, ok := ioOp.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.ADD, binop.Type)
	_, fdIsLit := ioOp.Fd.(*ast.IntLit)
	assert.True(t, fdIsLit)
}

func TestShuntAssignBindsRestOfStatement(t *testing.T) {
	body := shunted(t, "a = 1 + 2")
	assign := body[0][0].(*ast.Assign)
	_, ok := assign.Target.(*ast.SaveLocal)
	require.True(t, ok)
	binop, ok := assign.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.ADD, binop.Type)
}

func TestShuntRecursesIntoGroup(t *testing.T) {
	body := shunted(t, "(1 + 2; 3 * 4)")
	group := body[0][0].(*ast.GroupExpr)
	require.Len(t, group.Body, 2)
	first := group.Body[0][0].(*ast.BinOp)
	assert.Equal(t, token.ADD, first.Type)
	second := group.Body[1][0].(*ast.BinOp)
	assert.Equal(t, token.MUL, second.Type)
}

func TestShuntRecursesIntoIfGuardAndBody(t *testing.T) {
	body := shunted(t, "a = 1\n? a == 1 { 2 + 3 }")
	ifStmt := body[1][0].(*ast.IfStmt)
	guard, ok := ifStmt.Guard.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, token.EQUALS, guard.Type)
	require.Len(t, ifStmt.Body, 1)
	binop := ifStmt.Body[0][0].(*ast.BinOp)
	assert.Equal(t, token.ADD, binop.Type)
}

func TestShuntTrailingTokensIsError(t *testing.T) {
	// two IntLits in a row with no operator between them cannot reduce to
	// a single root node.
	body := ast.Body{ast.Statement{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}}
	_, err := shunt.Shunt(body)
	require.Error(t, err)
}

func TestShuntEmptyStatementIsError(t *testing.T) {
	_, err := shunt.ShuntStatement(ast.Statement{})
	require.Error(t, err)
}
