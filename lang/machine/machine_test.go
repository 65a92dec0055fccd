package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kscript-lang/kscript/lang/compiler"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/machine"
	"github.com/kscript-lang/kscript/lang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runProgram(t *testing.T, m machine.Machine, p *compiler.Program) (int, error) {
	t.Helper()
	return m.Run(context.Background(), p)
}

func TestRunPopFromEmptyStackIsStackUnderflow(t *testing.T) {
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.POP}}}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.StackUnderflow, err.(*errs.RuntimeError).Kind)
}

func TestRunDivideByZeroPropagatesFromArith(t *testing.T) {
	p := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSHLITERAL, Arg: 0},
			{Op: compiler.PUSHLITERAL, Arg: 1},
			{Op: compiler.DIV},
			{Op: compiler.HALT},
		},
		Consts: []values.Value{values.Integer(1), values.Integer(0)},
	}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.DivideByZero, err.(*errs.RuntimeError).Kind)
}

func TestRunCallOnNonFunctionIsNotAFunction(t *testing.T) {
	p := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSHLITERAL, Arg: 0},
			{Op: compiler.CALL},
		},
		Consts: []values.Value{values.Integer(1)},
	}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.NotAFunction, err.(*errs.RuntimeError).Kind)
}

func TestRunReturnFromMainIsError(t *testing.T) {
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.RETURN}}}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.ReturnFromMain, err.(*errs.RuntimeError).Kind)
}

func TestRunBadFdIsError(t *testing.T) {
	p := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSHLITERAL, Arg: 0},
			{Op: compiler.PUSHLITERAL, Arg: 1},
			{Op: compiler.IOWRITE},
		},
		Consts: []values.Value{values.NewString("x"), values.Integer(3)},
	}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.BadFd, err.(*errs.RuntimeError).Kind)
}

func TestRunJumpOutOfRangeIsBadJumpTarget(t *testing.T) {
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.JUMP, Arg: 99}}}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.BadJumpTarget, err.(*errs.RuntimeError).Kind)
}

func TestRunArrayIndexOutOfRangeIsBadLocalIndex(t *testing.T) {
	p := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSHLITERAL, Arg: 0},
			{Op: compiler.PUSHLITERAL, Arg: 1},
			{Op: compiler.INDEX},
		},
		Consts: []values.Value{values.NewArray([]values.Value{values.Integer(1)}), values.Integer(5)},
	}
	_, err := runProgram(t, machine.Machine{}, p)
	require.Error(t, err)
	assert.Equal(t, errs.BadLocalIndex, err.(*errs.RuntimeError).Kind)
}

func TestRunExceedsStepLimit(t *testing.T) {
	// an infinite loop that never reaches Halt; MaxSteps bounds the run.
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.JUMP, Arg: 0}}}
	_, err := runProgram(t, machine.Machine{MaxSteps: 5}, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step limit")
}

func TestRunCancelledContext(t *testing.T) {
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.JUMP, Arg: 0}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var m machine.Machine
	_, err := m.Run(ctx, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunHaltCodePassesThrough(t *testing.T) {
	p := &compiler.Program{Instructions: []compiler.Instruction{{Op: compiler.HALT, Arg: 7}}}
	code, err := runProgram(t, machine.Machine{}, p)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunWritesToProvidedWriters(t *testing.T) {
	p := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSHLITERAL, Arg: 0},
			{Op: compiler.PUSHLITERAL, Arg: 1},
			{Op: compiler.IOAPPEND},
			{Op: compiler.HALT},
		},
		Consts: []values.Value{values.NewString("hi"), values.Integer(1)},
	}
	var out bytes.Buffer
	_, err := runProgram(t, machine.Machine{Stdout: &out}, p)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out.String())
}
