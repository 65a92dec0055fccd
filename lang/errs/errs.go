// Package errs defines the three closed tagged-error tiers shared across the
// pipeline: LexError (C1), CompileError (C2-C5) and RuntimeError (C6). Every
// stage returns its error upward rather than attempting partial recovery;
// the executable is the only place that prints and converts to an exit code.
package errs

import (
	"fmt"
	"strings"

	"github.com/kscript-lang/kscript/lang/token"
)

// LexKind identifies the specific lexical failure.
type LexKind int

const (
	InvalidString LexKind = iota
	InvalidNumber
	InvalidEscape
	InvalidBlock
	UnexpectedEOF
	InvalidOperator
)

var lexKindNames = [...]string{
	InvalidString:   "invalid string",
	InvalidNumber:   "invalid number",
	InvalidEscape:   "invalid escape",
	InvalidBlock:    "invalid block",
	UnexpectedEOF:   "unexpected end of file",
	InvalidOperator: "invalid operator",
}

func (k LexKind) String() string { return lexKindNames[k] }

// LexError is a single lexical error with its source position.
type LexError struct {
	Kind LexKind
	Pos  token.Pos
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// LexErrorList aggregates every LexError found while scanning a source file;
// the lexer does not stop at the first error so it can report as many
// problems as possible in a single pass.
type LexErrorList []*LexError

func (l *LexErrorList) Add(kind LexKind, pos token.Pos, msg string) {
	*l = append(*l, &LexError{Kind: kind, Pos: pos, Msg: msg})
}

func (l LexErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l LexErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more errors)", l[0], len(l)-1)
	return sb.String()
}

// CompileKind identifies the specific compile-time failure, spanning the
// joiner, shunt and lowerer stages.
type CompileKind int

const (
	UnresolvedName CompileKind = iota
	BadFunctionParameter
	AssignWithoutTarget
	MissingFunctionBody
	SelfCallOutsideFunction
	TooFewOperands
)

var compileKindNames = [...]string{
	UnresolvedName:          "unresolved name",
	BadFunctionParameter:    "bad function parameter",
	AssignWithoutTarget:     "assign without target",
	MissingFunctionBody:     "missing function body",
	SelfCallOutsideFunction: "self call outside function",
	TooFewOperands:          "too few operands",
}

func (k CompileKind) String() string { return compileKindNames[k] }

// CompileError is a single error produced while joining, shunting or
// lowering a source file.
type CompileError struct {
	Kind CompileKind
	Pos  token.Pos
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// RuntimeKind identifies the specific failure raised by the virtual machine
// while executing a compiled program.
type RuntimeKind int

const (
	StackUnderflow RuntimeKind = iota
	CallStackEmpty
	TypeMismatch
	NotAFunction
	BadJumpTarget
	BadLocalIndex
	BadFd
	DivideByZero
	ReturnFromMain
)

var runtimeKindNames = [...]string{
	StackUnderflow: "stack underflow",
	CallStackEmpty: "call stack empty",
	TypeMismatch:   "type mismatch",
	NotAFunction:   "not a function",
	BadJumpTarget:  "bad jump target",
	BadLocalIndex:  "bad local index",
	BadFd:          "bad fd",
	DivideByZero:   "divide by zero",
	ReturnFromMain: "return from main",
}

func (k RuntimeKind) String() string { return runtimeKindNames[k] }

// RuntimeError is an error raised by the virtual machine dispatch loop.
type RuntimeError struct {
	Kind RuntimeKind
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func NewRuntimeError(kind RuntimeKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NewCompileError(kind CompileKind, pos token.Pos, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
