package compiler

import "github.com/kscript-lang/kscript/lang/values"

// Instruction is a single decoded VM instruction: an opcode plus, for the
// opcodes that carry one, a single int32 immediate operand (a constant
// table index, an arg/local slot index, or an absolute jump target).
type Instruction struct {
	Op  Opcode
	Arg int32
}

// Program is the immutable output of lowering: a flat instruction vector
// addressed by absolute index, the constant pool referenced by
// PUSHLITERAL, and the entry point/local-slot count of the outermost
// script body.
type Program struct {
	Instructions  []Instruction
	Consts        []values.Value
	MainEntry     int
	MainNumLocals int
}
