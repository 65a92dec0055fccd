package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kscript-lang/kscript/lang/compiler"
	"github.com/kscript-lang/kscript/lang/joiner"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/machine"
	"github.com/kscript-lang/kscript/lang/shunt"
	"github.com/stretchr/testify/require"
)

// run lexes, joins, shunts, lowers and executes src, returning its stdout,
// stderr and Halt code.
func run(t *testing.T, src string) (stdout, stderr string, code int) {
	t.Helper()

	toks, err := lexer.Lex([]byte(src))
	require.NoError(t, err)

	body, tab, err := joiner.JoinProgram(toks)
	require.NoError(t, err)

	body, err = shunt.Shunt(body)
	require.NoError(t, err)

	program, err := compiler.Lower(body, tab.NumLocals())
	require.NoError(t, err)

	var outBuf, errBuf bytes.Buffer
	m := machine.Machine{Stdout: &outBuf, Stderr: &errBuf}
	code, err = m.Run(context.Background(), program)
	require.NoError(t, err)

	return outBuf.String(), errBuf.String(), code
}

// Scenario 1: arithmetic, IoAppend to stdout.
func TestScenarioArithmeticToStdout(t *testing.T) {
	out, errOut, code := run(t, "a = 1; b = 2; (a + b) >> 1")
	require.Equal(t, "3\n", out)
	require.Equal(t, "", errOut)
	require.Equal(t, 0, code)
}

// Scenario 2: a named function definition and a named call, result
// written to stdout.
func TestScenarioNamedFunctionCall(t *testing.T) {
	out, _, _ := run(t, ".add,x,y{;;x+y};.add,(2,3) >> 1")
	require.Equal(t, "5\n", out)
}

// Scenario 3: conditional branch writes to stderr (fd 2), fall-through
// statement writes to stdout (fd 1).
func TestScenarioConditionalBranchToStderr(t *testing.T) {
	out, errOut, _ := run(t, "a = 1; ? a == 1 { 99 >> 2 }; 7 >> 1")
	require.Equal(t, "7\n", out)
	require.Equal(t, "99\n", errOut)
}

// Scenario 4: IoWrite (single '>') never appends a newline, so two
// writes in a row concatenate without separators.
func TestScenarioIoWriteHasNoNewline(t *testing.T) {
	out, _, _ := run(t, `s = "he" ; s > 1 ; "llo" > 1`)
	require.Equal(t, "hello", out)
}

// Scenario 5: recursive self-call computing a factorial.
func TestScenarioRecursiveSelfCall(t *testing.T) {
	out, _, _ := run(t, "n = 10; .fact,x{? x == 0 {;;1}; ;;x * .(x - 1)}; .fact,(n) >> 1")
	require.Equal(t, "3628800\n", out)
}

// Scenario 6: array literal and read-only indexing.
func TestScenarioArrayIndexing(t *testing.T) {
	out, _, _ := run(t, "a = @[1,2,3]; a[1] >> 1")
	require.Equal(t, "2\n", out)
}

func TestIntegerOverflowWraps(t *testing.T) {
	out, _, _ := run(t, "9223372036854775807 + 1 >> 1")
	require.Equal(t, "-9223372036854775808\n", out)
}

func TestGroupLeavesLastValueOnStack(t *testing.T) {
	out, _, _ := run(t, "(1; 2; 3) >> 1")
	require.Equal(t, "3\n", out)
}

func TestFloatDivision(t *testing.T) {
	out, _, _ := run(t, "(7.0 / 2) >> 1")
	require.Equal(t, "3.5\n", out)
}

func TestIntegerRemainder(t *testing.T) {
	out, _, _ := run(t, "(7 // 2) >> 1")
	require.Equal(t, "1\n", out)
}

func TestHaltCodeIsZeroWhenMainFallsOff(t *testing.T) {
	_, _, code := run(t, "1 >> 1")
	require.Equal(t, 0, code)
}
