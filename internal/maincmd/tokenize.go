package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/token"
	"github.com/mna/mainer"
)

// Tokenize lexes the file at args[0] and prints its token tree, indenting
// into the nested Body of GROUP, BLOCK and ARRAY tokens.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	body, err := lexer.Lex(src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	printTokenBody(stdio.Stdout, body, 0)
	return nil
}

func printTokenBody(w io.Writer, body lexer.Body, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, stmt := range body {
		fmt.Fprintf(w, "%sstatement %d\n", indent, i)
		for _, tv := range stmt {
			printTokenValue(w, tv, depth+1)
		}
	}
}

func printTokenValue(w io.Writer, tv lexer.TokenValue, depth int) {
	indent := strings.Repeat("  ", depth)
	switch tv.Tok {
	case token.INTEGER:
		fmt.Fprintf(w, "%s%s %d\t%s\n", indent, tv.Tok, tv.Int, tv.Pos)
	case token.FLOAT:
		fmt.Fprintf(w, "%s%s %g\t%s\n", indent, tv.Tok, tv.Float, tv.Pos)
	case token.BOOL:
		fmt.Fprintf(w, "%s%s %s\t%s\n", indent, tv.Tok, tv.Raw, tv.Pos)
	case token.STRING:
		fmt.Fprintf(w, "%s%s %q\t%s\n", indent, tv.Tok, tv.Str, tv.Pos)
	case token.VAR:
		fmt.Fprintf(w, "%s%s %s\t%s\n", indent, tv.Tok, tv.Raw, tv.Pos)
	case token.GROUP, token.BLOCK, token.ARRAY:
		fmt.Fprintf(w, "%s%s\t%s\n", indent, tv.Tok, tv.Pos)
		printTokenBody(w, tv.Body, depth+1)
	default:
		fmt.Fprintf(w, "%s%s\t%s\n", indent, tv.Tok, tv.Pos)
	}
}
