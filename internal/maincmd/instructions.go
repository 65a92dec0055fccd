package maincmd

import (
	"context"
	"fmt"

	"github.com/kscript-lang/kscript/lang/compiler"
	"github.com/kscript-lang/kscript/lang/shunt"
	"github.com/mna/mainer"
)

// Instructions lexes, joins, shunts and lowers the file at args[0], then
// prints the resulting instruction listing.
func (c *Cmd) Instructions(_ context.Context, stdio mainer.Stdio, args []string) error {
	p, err := compileFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fmt.Fprint(stdio.Stdout, compiler.Disassemble(p))
	return nil
}

func compileFile(path string) (*compiler.Program, error) {
	body, tab, err := lexAndJoin(path)
	if err != nil {
		return nil, err
	}

	body, err = shunt.Shunt(body)
	if err != nil {
		return nil, err
	}

	return compiler.Lower(body, tab.NumLocals())
}
