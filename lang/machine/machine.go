// Package machine implements the stack-based virtual machine (C6) that
// executes a compiled Program: a shared value stack, a call-frame stack,
// and a dispatch loop over Instruction opcodes, per spec.md §4.5.
package machine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kscript-lang/kscript/lang/compiler"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/values"
)

// Machine runs one compiled Program to completion. The zero value is ready
// to use; Stdout/Stderr default to os.Stdout/os.Stderr when nil.
type Machine struct {
	// Stdout and Stderr back IoWrite/IoAppend's fd 1 and fd 2.
	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps bounds the number of dispatch-loop iterations before the run
	// is stopped with a plain (non-RuntimeError) error; zero means
	// unlimited.
	MaxSteps int

	stdout io.Writer
	stderr io.Writer

	steps    uint64
	maxSteps uint64

	stack []values.Value
	calls []*frame
}

func (m *Machine) init() {
	if m.Stdout != nil {
		m.stdout = m.Stdout
	} else {
		m.stdout = os.Stdout
	}
	if m.Stderr != nil {
		m.stderr = m.Stderr
	} else {
		m.stderr = os.Stderr
	}
	if m.MaxSteps > 0 {
		m.maxSteps = uint64(m.MaxSteps)
	} else {
		m.maxSteps-- // MaxUint64: effectively unbounded
	}
}

// Run executes p from its main entry point and returns the Halt code. A
// RuntimeError aborts the run and is returned as err with code 0.
func (m *Machine) Run(ctx context.Context, p *compiler.Program) (code int, err error) {
	m.init()

	main := &frame{
		entryStackBase: 0,
		numArgs:        0,
		numLocals:      p.MainNumLocals,
		entryIndex:     p.MainEntry,
		currentIndex:   p.MainEntry,
		returnIndex:    -1,
	}
	m.stack = make([]values.Value, p.MainNumLocals, 64)
	for i := range m.stack {
		m.stack[i] = values.Bool(false)
	}
	m.calls = []*frame{main}

	for {
		m.steps++
		if m.steps >= m.maxSteps {
			return 0, fmt.Errorf("machine: exceeded step limit of %d", m.maxSteps)
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("machine: cancelled: %w", ctx.Err())
		default:
		}

		fr := m.calls[len(m.calls)-1]
		if fr.currentIndex < 0 || fr.currentIndex >= len(p.Instructions) {
			return 0, errs.NewRuntimeError(errs.BadJumpTarget, "instruction index %d out of range", fr.currentIndex)
		}
		instr := p.Instructions[fr.currentIndex]
		advance := true

		switch instr.Op {
		case compiler.NOP:

		case compiler.PUSHLITERAL:
			if int(instr.Arg) >= len(p.Consts) {
				return 0, errs.NewRuntimeError(errs.BadLocalIndex, "constant index %d out of range", instr.Arg)
			}
			m.push(cloneForPush(p.Consts[instr.Arg]))

		case compiler.LOADARG:
			v, err := m.slot(fr.entryStackBase-fr.numArgs+int(instr.Arg), "argument")
			if err != nil {
				return 0, err
			}
			m.push(cloneForPush(v))

		case compiler.LOADLOCAL:
			v, err := m.slot(fr.entryStackBase+int(instr.Arg), "local")
			if err != nil {
				return 0, err
			}
			m.push(cloneForPush(v))

		case compiler.SAVEARG:
			if err := m.saveSlot(fr.entryStackBase-fr.numArgs+int(instr.Arg)); err != nil {
				return 0, err
			}

		case compiler.SAVELOCAL:
			if err := m.saveSlot(fr.entryStackBase + int(instr.Arg)); err != nil {
				return 0, err
			}

		case compiler.POP:
			v, err := m.pop()
			if err != nil {
				return 0, err
			}
			releaseValue(v)

		case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.REM, compiler.EXP:
			if err := m.arith(instr.Op); err != nil {
				return 0, err
			}

		case compiler.EQUALS, compiler.LESS, compiler.GREATER, compiler.LESSEQ, compiler.GREATEREQ:
			if err := m.compare(instr.Op); err != nil {
				return 0, err
			}

		case compiler.MAKEARRAY:
			n := int(instr.Arg)
			if len(m.stack) < n {
				return 0, errs.NewRuntimeError(errs.StackUnderflow, "makearray needs %d elements", n)
			}
			elems := append([]values.Value(nil), m.stack[len(m.stack)-n:]...)
			m.stack = m.stack[:len(m.stack)-n]
			m.push(values.NewArray(elems))

		case compiler.INDEX:
			idxVal, err := m.pop()
			if err != nil {
				return 0, err
			}
			arrVal, err := m.pop()
			if err != nil {
				return 0, err
			}
			arr, ok := arrVal.(values.Array)
			if !ok {
				releaseValue(idxVal)
				releaseValue(arrVal)
				return 0, errs.NewRuntimeError(errs.TypeMismatch, "cannot index a %s", arrVal.Type())
			}
			idx, ok := idxVal.(values.Integer)
			if !ok {
				releaseValue(idxVal)
				releaseValue(arrVal)
				return 0, errs.NewRuntimeError(errs.TypeMismatch, "array index must be an integer, got %s", idxVal.Type())
			}
			if idx < 0 || int(idx) >= arr.Len() {
				releaseValue(arrVal)
				return 0, errs.NewRuntimeError(errs.BadLocalIndex, "array index %d out of range (len %d)", idx, arr.Len())
			}
			m.push(cloneForPush(arr.Index(int(idx))))
			releaseValue(arrVal)

		case compiler.JUMPIFFALSE:
			v, err := m.pop()
			if err != nil {
				return 0, err
			}
			b, ok := v.(values.Bool)
			if !ok {
				return 0, errs.NewRuntimeError(errs.TypeMismatch, "condition must be a bool, got %s", v.Type())
			}
			if !bool(b) {
				fr.currentIndex = int(instr.Arg)
				advance = false
			}

		case compiler.JUMP:
			fr.currentIndex = int(instr.Arg)
			advance = false

		case compiler.CALL:
			if err := m.call(fr, false); err != nil {
				return 0, err
			}
			advance = false

		case compiler.CALLSELF:
			if err := m.call(fr, true); err != nil {
				return 0, err
			}
			advance = false

		case compiler.RETURN:
			if len(m.calls) == 1 {
				return 0, errs.NewRuntimeError(errs.ReturnFromMain, "';;' reached in the main script body")
			}
			if err := m.doReturn(fr); err != nil {
				return 0, err
			}
			advance = false

		case compiler.IOWRITE, compiler.IOAPPEND:
			if err := m.ioOp(instr.Op == compiler.IOAPPEND); err != nil {
				return 0, err
			}

		case compiler.HALT:
			return int(instr.Arg), nil

		default:
			panic(fmt.Sprintf("machine: unhandled opcode %s", instr.Op))
		}

		if advance {
			fr.currentIndex++
		}
	}
}

func (m *Machine) push(v values.Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() (values.Value, error) {
	if len(m.stack) == 0 {
		return nil, errs.NewRuntimeError(errs.StackUnderflow, "pop from empty stack")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) slot(index int, what string) (values.Value, error) {
	if index < 0 || index >= len(m.stack) {
		return nil, errs.NewRuntimeError(errs.BadLocalIndex, "%s slot %d out of range", what, index)
	}
	return m.stack[index], nil
}

func (m *Machine) saveSlot(index int) error {
	v, err := m.pop()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(m.stack) {
		return errs.NewRuntimeError(errs.BadLocalIndex, "save to slot %d out of range", index)
	}
	releaseValue(m.stack[index])
	m.stack[index] = v
	return nil
}

func (m *Machine) arith(op compiler.Opcode) error {
	right, err := m.pop()
	if err != nil {
		return err
	}
	left, err := m.pop()
	if err != nil {
		return err
	}
	result, err := values.Arith(arithOp(op), left, right)
	if err != nil {
		return err
	}
	m.push(result)
	return nil
}

func (m *Machine) compare(op compiler.Opcode) error {
	right, err := m.pop()
	if err != nil {
		return err
	}
	left, err := m.pop()
	if err != nil {
		return err
	}
	result, err := values.Compare(cmpOp(op), left, right)
	releaseValue(left)
	releaseValue(right)
	if err != nil {
		return err
	}
	m.push(result)
	return nil
}

func arithOp(op compiler.Opcode) values.BinOp {
	switch op {
	case compiler.ADD:
		return values.OpAdd
	case compiler.SUB:
		return values.OpSub
	case compiler.MUL:
		return values.OpMul
	case compiler.DIV:
		return values.OpDiv
	case compiler.REM:
		return values.OpRem
	default:
		return values.OpExp
	}
}

func cmpOp(op compiler.Opcode) values.CmpOp {
	switch op {
	case compiler.EQUALS:
		return values.CmpEquals
	case compiler.LESS:
		return values.CmpLess
	case compiler.GREATER:
		return values.CmpGreater
	case compiler.LESSEQ:
		return values.CmpLessEq
	default:
		return values.CmpGreaterEq
	}
}

// call implements both Call and CallSelf: the former pops a callable and
// reads its arity off its FunctionPointer, the latter reuses the
// currently-executing frame's own arity and entry point.
func (m *Machine) call(caller *frame, self bool) error {
	var numArgs, numLocals, entryIndex int
	if self {
		numArgs, numLocals, entryIndex = caller.numArgs, caller.numLocals, caller.entryIndex
	} else {
		v, err := m.pop()
		if err != nil {
			return err
		}
		fn, ok := v.(values.Function)
		if !ok {
			return errs.NewRuntimeError(errs.NotAFunction, "cannot call a %s", v.Type())
		}
		numArgs, numLocals, entryIndex = fn.Ptr.NumArgs, fn.Ptr.NumLocals, fn.Ptr.EntryIndex
	}
	if len(m.stack) < numArgs {
		return errs.NewRuntimeError(errs.StackUnderflow, "call needs %d arguments", numArgs)
	}

	next := &frame{
		returnIndex:    caller.currentIndex + 1,
		entryStackBase: len(m.stack),
		numArgs:        numArgs,
		numLocals:      numLocals,
		entryIndex:     entryIndex,
		currentIndex:   entryIndex,
	}
	for i := 0; i < numLocals; i++ {
		m.push(values.Bool(false))
	}
	m.calls = append(m.calls, next)
	return nil
}

// doReturn pops fr off the call stack, releasing its locals and arguments
// and leaving the caller's return value (if any) on the now-restored
// stack, per spec.md §4.5's Return semantics.
func (m *Machine) doReturn(fr *frame) error {
	var result values.Value
	hasResult := len(m.stack) == fr.entryStackBase+fr.numLocals+1
	if hasResult {
		v, err := m.pop()
		if err != nil {
			return err
		}
		result = v
	}
	for i := 0; i < fr.numLocals; i++ {
		v, err := m.pop()
		if err != nil {
			return err
		}
		releaseValue(v)
	}
	for i := 0; i < fr.numArgs; i++ {
		v, err := m.pop()
		if err != nil {
			return err
		}
		releaseValue(v)
	}
	m.calls = m.calls[:len(m.calls)-1]
	if hasResult {
		m.push(result)
	}
	m.calls[len(m.calls)-1].currentIndex = fr.returnIndex
	return nil
}

func (m *Machine) ioOp(newline bool) error {
	fdVal, err := m.pop()
	if err != nil {
		return err
	}
	value, err := m.pop()
	if err != nil {
		return err
	}
	fd, ok := fdVal.(values.Integer)
	if !ok || (fd != 1 && fd != 2) {
		releaseValue(value)
		return errs.NewRuntimeError(errs.BadFd, "fd must be 1 or 2, got %v", fdVal)
	}

	w := m.stdout
	if fd == 2 {
		w = m.stderr
	}
	text := value.String()
	if newline {
		text += "\n"
	}
	fmt.Fprint(w, text)
	releaseValue(value)
	return nil
}

// cloneForPush shares ownership of a compound value being copied onto the
// stack (LoadArg, LoadLocal, PushLiteral, array index read); numbers and
// booleans are copied as plain Go values and need no retain.
func cloneForPush(v values.Value) values.Value {
	switch t := v.(type) {
	case values.String:
		return t.Retain()
	case values.Array:
		return t.Retain()
	default:
		return v
	}
}

// releaseValue drops one reference from a compound value leaving a stack
// slot for good (Pop, an overwritten Save target, a cleaned-up call
// frame's locals/arguments).
func releaseValue(v values.Value) {
	switch t := v.(type) {
	case values.String:
		t.Release()
	case values.Array:
		t.Release()
	}
}
