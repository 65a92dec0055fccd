package compiler

import (
	"fmt"
	"strings"

	"github.com/kscript-lang/kscript/lang/values"
)

// Disassemble renders p as a human-readable instruction listing, one
// mnemonic per line with its immediate operand (if it has one) and, for
// PushLiteral, the constant it refers to (for a function constant, also
// its argument and local counts). Used by the debug dump and by
// golden-file tests; no contract beyond being stable for diffing.
func Disassemble(p *Program) string {
	var sb strings.Builder
	for i, instr := range p.Instructions {
		fmt.Fprintf(&sb, "%4d  %-11s", i, instr.Op)
		switch {
		case instr.Op == PUSHLITERAL:
			c := p.Consts[instr.Arg]
			if fn, ok := c.(values.Function); ok {
				fmt.Fprintf(&sb, " %d  ; %s args=%d locals=%d", instr.Arg, fn, fn.Ptr.NumArgs, fn.Ptr.NumLocals)
			} else {
				fmt.Fprintf(&sb, " %d  ; %s", instr.Arg, c)
			}
		case instr.Op.hasArg():
			fmt.Fprintf(&sb, " %d", instr.Arg)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
