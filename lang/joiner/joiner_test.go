package joiner_test

import (
	"testing"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/joiner"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(t *testing.T, src string) ast.Body {
	t.Helper()
	toks, err := lexer.Lex([]byte(src))
	require.NoError(t, err)
	body, _, err := joiner.JoinProgram(toks)
	require.NoError(t, err)
	return body
}

func joinErr(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.Lex([]byte(src))
	require.NoError(t, err)
	_, _, err = joiner.JoinProgram(toks)
	require.Error(t, err)
	return err
}

func TestJoinAssignToLocal(t *testing.T) {
	body := join(t, "a = 1")
	require.Len(t, body, 1)
	require.Len(t, body[0], 2) // SaveLocal marker, then the IntLit value
	save, ok := body[0][0].(*ast.SaveLocal)
	require.True(t, ok)
	assert.Equal(t, "a", save.Name)
	assert.Equal(t, 0, save.Index)
}

func TestJoinSameLocalReusesIndex(t *testing.T) {
	body := join(t, "a = 1\na = 2")
	save1 := body[0][0].(*ast.SaveLocal)
	save2 := body[1][0].(*ast.SaveLocal)
	assert.Equal(t, save1.Index, save2.Index)
}

func TestJoinNamedFunctionDefDesugarsToAssign(t *testing.T) {
	body := join(t, ".add,x,y{;;x+y}")
	require.Len(t, body, 1)
	require.Len(t, body[0], 1)
	assign, ok := body[0][0].(*ast.Assign)
	require.True(t, ok)
	save, ok := assign.Target.(*ast.SaveLocal)
	require.True(t, ok)
	assert.Equal(t, "add", save.Name)
	lit, ok := assign.Value.(*ast.FunctionLit)
	require.True(t, ok)
	assert.Equal(t, 2, lit.NumArgs)
	require.Len(t, lit.Body, 1)
	ret, ok := lit.Body[0][0].(*ast.Return)
	require.True(t, ok)
	assert.NotNil(t, ret.Value)
}

func TestJoinNamedCallDesugarsToLocalCall(t *testing.T) {
	body := join(t, ".add,x,y{;;x+y}\n.add,(2,3)")
	require.Len(t, body, 2)
	call, ok := body[1][0].(*ast.LocalCall)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestJoinNamedCallCannotCarryParams(t *testing.T) {
	err := joinErr(t, ".add,x,y{;;x+y}\n.add,x,(2,3)")
	require.IsType(t, &errs.CompileError{}, err)
	assert.Equal(t, errs.BadFunctionParameter, err.(*errs.CompileError).Kind)
}

func TestJoinBareSelfCall(t *testing.T) {
	body := join(t, ".fact,n{? n == 0 {;;1}; ;;n * .(n - 1)}")
	lit := body[0][0].(*ast.Assign).Value.(*ast.FunctionLit)
	require.Len(t, lit.Body, 2)
	// the second statement is the eagerly-joined Return; its value is
	// already a single rooted BinOp (joinReturnStmt shunts it on the
	// spot), with the self call as its right operand.
	ret, ok := lit.Body[1][0].(*ast.Return)
	require.True(t, ok)
	binop, ok := ret.Value.(*ast.BinOp)
	require.True(t, ok)
	_, ok = binop.Right.(*ast.SelfCall)
	assert.True(t, ok)
}

func TestJoinIfRequiresBlock(t *testing.T) {
	err := joinErr(t, "? a == 1")
	assert.Equal(t, errs.MissingFunctionBody, err.(*errs.CompileError).Kind)
}

func TestJoinIfGuardIsShuntedEagerly(t *testing.T) {
	body := join(t, "a = 1\n? a == 1 { 2 }")
	ifStmt := body[1][0].(*ast.IfStmt)
	// the guard is already a single rooted BinOp, not a flat 3-node
	// statement, since joinIf calls shunt.ShuntStatement on the spot.
	_, ok := ifStmt.Guard.(*ast.BinOp)
	assert.True(t, ok)
}

func TestJoinArrayLiteral(t *testing.T) {
	// the plain "name = expr" form is left as a flat [SaveLocal, ArrayLit]
	// pair for the shunt stage to bind into an Assign; only the
	// ".name,args{body}" sugar produces an Assign node directly.
	body := join(t, "a = @[1,2,3]")
	require.Len(t, body[0], 2)
	lit, ok := body[0][1].(*ast.ArrayLit)
	require.True(t, ok)
	assert.Len(t, lit.Items, 3)
}

func TestJoinIndexExpr(t *testing.T) {
	body := join(t, "a = @[1,2,3]\nb = a[1]")
	idx, ok := body[1][1].(*ast.IndexExpr)
	require.True(t, ok)
	_, ok = idx.Prefix.(*ast.VarLocal)
	assert.True(t, ok)
}

func TestJoinAssignWithoutTargetIsError(t *testing.T) {
	err := joinErr(t, "1 = 2")
	assert.Equal(t, errs.AssignWithoutTarget, err.(*errs.CompileError).Kind)
}

func TestJoinFunctionParamMustBeBareIdent(t *testing.T) {
	err := joinErr(t, "f = (1){ 2 }")
	assert.Equal(t, errs.BadFunctionParameter, err.(*errs.CompileError).Kind)
}

func TestJoinReturnWithNoValue(t *testing.T) {
	body := join(t, ".f,x{;;}")
	lit := body[0][0].(*ast.Assign).Value.(*ast.FunctionLit)
	ret := lit.Body[0][0].(*ast.Return)
	assert.Nil(t, ret.Value)
}
