package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/joiner"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/symtab"
	"github.com/mna/mainer"
)

// Ast lexes and joins the file at args[0] and prints the resulting AST,
// before shunting has reordered any operator/operand sequence.
func (c *Cmd) Ast(_ context.Context, stdio mainer.Stdio, args []string) error {
	body, _, err := lexAndJoin(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	p := ast.NewPrinter(stdio.Stdout, false)
	p.Print(body)
	return nil
}

func lexAndJoin(path string) (ast.Body, *symtab.Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, nil, err
	}

	return joinTokens(toks)
}

func joinTokens(toks lexer.Body) (ast.Body, *symtab.Table, error) {
	return joiner.JoinProgram(toks)
}
