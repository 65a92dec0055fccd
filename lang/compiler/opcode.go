// Package compiler implements the lowering stage (C5): it walks the
// shunted AST and emits a flat Instruction vector with absolute jump
// offsets, per spec.md §4.4.
package compiler

import "fmt"

// Opcode identifies a single virtual machine instruction. The stack
// picture comments follow the teacher corpus's convention: operand state
// before the instruction, then after.
type Opcode uint8

//nolint:revive
const (
	NOP Opcode = iota // - NOP -

	PUSHLITERAL //  - PUSHLITERAL<const> value
	LOADARG     //  - LOADARG<i>         value
	LOADLOCAL   //  - LOADLOCAL<i>       value
	SAVEARG     //  value SAVEARG<i>     -
	SAVELOCAL   //  value SAVELOCAL<i>   -
	POP         //  value POP            -

	// binary arithmetic (order matches values.BinOp)
	ADD
	SUB
	MUL
	DIV
	REM
	EXP

	// binary comparisons (order matches values.CmpOp)
	EQUALS
	LESS
	GREATER
	LESSEQ
	GREATEREQ

	INDEX //  array i INDEX elem

	MAKEARRAY //  elem1..elemN MAKEARRAY<n> array

	JUMPIFFALSE //  cond JUMPIFFALSE<addr> -
	JUMP        //     - JUMP<addr>        -

	CALL     //  arg1..argN fn CALL     -     (fn pops, leaves frame to run)
	CALLSELF //     arg1..argN CALLSELF -
	RETURN   //        value? RETURN    -     (arity encoded in the frame, not the opcode)

	IOWRITE  //  value fd IOWRITE  -
	IOAPPEND //  value fd IOAPPEND -

	HALT //  - HALT<code> -
)

var opcodeNames = [...]string{
	NOP:         "nop",
	PUSHLITERAL: "push",
	LOADARG:     "loadarg",
	LOADLOCAL:   "loadlocal",
	SAVEARG:     "savearg",
	SAVELOCAL:   "savelocal",
	POP:         "pop",
	ADD:         "add",
	SUB:         "sub",
	MUL:         "mul",
	DIV:         "div",
	REM:         "rem",
	EXP:         "exp",
	EQUALS:      "equals",
	LESS:        "less",
	GREATER:     "greater",
	LESSEQ:      "lesseq",
	GREATEREQ:   "greatereq",
	INDEX:       "index",
	MAKEARRAY:   "makearray",
	JUMPIFFALSE: "jumpiffalse",
	JUMP:        "jump",
	CALL:        "call",
	CALLSELF:    "callself",
	RETURN:      "return",
	IOWRITE:     "iowrite",
	IOAPPEND:    "ioappend",
	HALT:        "halt",
}

func (op Opcode) String() string {
	if int(op) >= len(opcodeNames) {
		return fmt.Sprintf("opcode(%d)", op)
	}
	return opcodeNames[op]
}

// hasArg reports whether op carries a single int32 immediate operand,
// used by Disassemble to decide whether to print an operand after the
// mnemonic.
func (op Opcode) hasArg() bool {
	switch op {
	case PUSHLITERAL, LOADARG, LOADLOCAL, SAVEARG, SAVELOCAL, MAKEARRAY, JUMPIFFALSE, JUMP, HALT:
		return true
	default:
		return false
	}
}
