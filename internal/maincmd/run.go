package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/compiler"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/machine"
	"github.com/kscript-lang/kscript/lang/shunt"
	"github.com/mna/mainer"
)

// Run lexes, joins, shunts, lowers and executes the file at args[0]. The
// process exit code (set by Main via the mainer.ExitCode it derives from
// this method's error return) does not carry the VM's own Halt code, so
// for a non-zero Halt code Run prints it and returns a non-nil error,
// which Main surfaces as mainer.Failure.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if debugEnabled() {
		fmt.Fprintln(stdio.Stderr, "-- source --")
		fmt.Fprintln(stdio.Stderr, string(src))
	}

	toks, err := lexer.Lex(src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if debugEnabled() {
		fmt.Fprintln(stdio.Stderr, "-- tokens --")
		printTokenBody(stdio.Stderr, toks, 0)
	}

	joined, tab, err := joinTokens(toks)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if debugEnabled() {
		fmt.Fprintln(stdio.Stderr, "-- symtab --")
		fmt.Fprintf(stdio.Stderr, "%s: %d arg(s), %d local(s)\n", tab.Name(), tab.NumArgs(), tab.NumLocals())
	}

	shunted, err := shunt.Shunt(joined)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if debugEnabled() {
		fmt.Fprintln(stdio.Stderr, "-- ast --")
		ast.NewPrinter(stdio.Stderr, false).Print(shunted)
	}

	program, err := compiler.Lower(shunted, tab.NumLocals())
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if debugEnabled() {
		fmt.Fprintln(stdio.Stderr, "-- instructions --")
		fmt.Fprint(stdio.Stderr, compiler.Disassemble(program))
	}

	m := machine.Machine{Stdout: stdio.Stdout, Stderr: stdio.Stderr}
	code, err := m.Run(ctx, program)
	if debugEnabled() {
		fmt.Fprintf(stdio.Stderr, "-- exit code: %d --\n", code)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if code != 0 {
		err := fmt.Errorf("script exited with code %d", code)
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
