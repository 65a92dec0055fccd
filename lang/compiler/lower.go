package compiler

import (
	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/token"
	"github.com/kscript-lang/kscript/lang/values"
)

// pendingFunc records a function literal whose body has been lowered into
// its own segment but whose FunctionPointer.EntryIndex can't be resolved
// until every segment's final offset is known.
type pendingFunc struct {
	segment int
	ptr     *values.FunctionPointer
}

// lowerer walks a shunted AST and emits one Instruction segment per
// function literal, plus segment 0 for the outermost script body. Jump
// targets are written segment-local during emission, since every jump this
// language has (JumpIfFalse for an if-body) stays inside the segment it was
// emitted in; a single patch pass at the end adds each segment's final
// offset into the concatenated stream.
type lowerer struct {
	segments  [][]Instruction
	consts    []values.Value
	pending   []pendingFunc
	cur       int
	funcDepth int
}

// Lower compiles a fully shunted script body into a Program. mainNumLocals
// is the local slot count of the outermost symbol table, as counted by the
// joiner's "main" table.
func Lower(main ast.Body, mainNumLocals int) (*Program, error) {
	l := &lowerer{segments: [][]Instruction{nil}}

	if _, err := l.lowerBody(main, false); err != nil {
		return nil, err
	}
	l.emit(HALT, 0)

	return l.finish(mainNumLocals)
}

func (l *lowerer) newSegment() int {
	l.segments = append(l.segments, nil)
	return len(l.segments) - 1
}

// emit appends an instruction to the current segment and returns its
// segment-local index.
func (l *lowerer) emit(op Opcode, arg int32) int {
	l.segments[l.cur] = append(l.segments[l.cur], Instruction{Op: op, Arg: arg})
	return len(l.segments[l.cur]) - 1
}

func (l *lowerer) patchArg(segment, index int, arg int32) {
	l.segments[segment][index].Arg = arg
}

func (l *lowerer) addConst(v values.Value) int32 {
	l.consts = append(l.consts, v)
	return int32(len(l.consts) - 1)
}

func (l *lowerer) lastOp(segment int) Opcode {
	seg := l.segments[segment]
	if len(seg) == 0 {
		return NOP
	}
	return seg[len(seg)-1].Op
}

// finish concatenates every segment into one Instruction vector, adding
// each segment's final offset into the jump-carrying instructions it
// contains, and patches every pending function literal's EntryIndex to the
// resolved absolute address of its segment.
func (l *lowerer) finish(mainNumLocals int) (*Program, error) {
	offsets := make([]int, len(l.segments))
	total := 0
	for i, seg := range l.segments {
		offsets[i] = total
		total += len(seg)
	}

	out := make([]Instruction, 0, total)
	for i, seg := range l.segments {
		base := int32(offsets[i])
		for _, instr := range seg {
			if instr.Op == JUMP || instr.Op == JUMPIFFALSE {
				instr.Arg += base
			}
			out = append(out, instr)
		}
	}

	for _, pf := range l.pending {
		pf.ptr.EntryIndex = offsets[pf.segment]
	}

	return &Program{
		Instructions:  out,
		Consts:        l.consts,
		MainEntry:     offsets[0],
		MainNumLocals: mainNumLocals,
	}, nil
}

// lowerBody lowers every statement in b in order. When keepLast is false,
// every produced value (including the last statement's) is popped, which
// is correct for the outermost script body and for an if-body: nothing
// downstream consumes their trailing value. When keepLast is true, the
// final statement's value (if any) is left on the stack as the body's
// result, matching Group and Function semantics. The returned bool reports
// whether a value was left on the stack (always false when keepLast is
// false).
func (l *lowerer) lowerBody(b ast.Body, keepLast bool) (bool, error) {
	for i, stmt := range b {
		if len(stmt) != 1 {
			return false, errs.NewCompileError(errs.TooFewOperands, token.Pos(0), "statement did not reduce to a single root node")
		}
		produced, err := l.lowerNode(stmt[0])
		if err != nil {
			return false, err
		}
		last := i == len(b)-1
		if produced && (!last || !keepLast) {
			l.emit(POP, 0)
			produced = false
		}
		if last {
			return produced, nil
		}
	}
	return false, nil
}

// lowerNode lowers a single already-shunted expression/statement node,
// returning whether it left a value on the stack.
func (l *lowerer) lowerNode(n ast.Node) (bool, error) {
	switch t := n.(type) {
	case *ast.CommentNode:
		return false, nil

	case *ast.IntLit:
		l.emit(PUSHLITERAL, l.addConst(values.Integer(t.Value)))
		return true, nil

	case *ast.FloatLit:
		l.emit(PUSHLITERAL, l.addConst(values.Float(t.Value)))
		return true, nil

	case *ast.BoolLit:
		l.emit(PUSHLITERAL, l.addConst(values.Bool(t.Value)))
		return true, nil

	case *ast.StringLit:
		l.emit(PUSHLITERAL, l.addConst(values.NewString(t.Value)))
		return true, nil

	case *ast.VarArg:
		l.emit(LOADARG, int32(t.Index))
		return true, nil

	case *ast.VarLocal:
		l.emit(LOADLOCAL, int32(t.Index))
		return true, nil

	case *ast.ArrayLit:
		for _, stmt := range t.Items {
			if len(stmt) != 1 {
				return false, errs.NewCompileError(errs.TooFewOperands, t.Pos, "array item did not reduce to a single expression")
			}
			if _, err := l.lowerNode(stmt[0]); err != nil {
				return false, err
			}
		}
		l.emit(MAKEARRAY, int32(len(t.Items)))
		return true, nil

	case *ast.IndexExpr:
		if _, err := l.lowerNode(t.Prefix); err != nil {
			return false, err
		}
		if len(t.Index) != 1 || len(t.Index[0]) != 1 {
			return false, errs.NewCompileError(errs.TooFewOperands, t.Pos, "index expression did not reduce to a single value")
		}
		if _, err := l.lowerNode(t.Index[0][0]); err != nil {
			return false, err
		}
		l.emit(INDEX, 0)
		return true, nil

	case *ast.FunctionLit:
		return l.lowerFunctionLit(t)

	case *ast.GroupExpr:
		return l.lowerBody(t.Body, true)

	case *ast.LocalCall:
		if err := l.lowerArgs(t.Args); err != nil {
			return false, err
		}
		l.emit(LOADLOCAL, int32(t.Index))
		l.emit(CALL, 0)
		return true, nil

	case *ast.ArgCall:
		if err := l.lowerArgs(t.Args); err != nil {
			return false, err
		}
		l.emit(LOADARG, int32(t.Index))
		l.emit(CALL, 0)
		return true, nil

	case *ast.SelfCall:
		if l.funcDepth == 0 {
			return false, errs.NewCompileError(errs.SelfCallOutsideFunction, t.Pos, "self call outside a function body")
		}
		if err := l.lowerArgs(t.Args); err != nil {
			return false, err
		}
		l.emit(CALLSELF, 0)
		return true, nil

	case *ast.IfStmt:
		if _, err := l.lowerNode(t.Guard); err != nil {
			return false, err
		}
		jump := l.emit(JUMPIFFALSE, 0)
		if _, err := l.lowerBody(t.Body, false); err != nil {
			return false, err
		}
		l.patchArg(l.cur, jump, int32(len(l.segments[l.cur])))
		return false, nil

	case *ast.BinOp:
		if _, err := l.lowerNode(t.Left); err != nil {
			return false, err
		}
		if _, err := l.lowerNode(t.Right); err != nil {
			return false, err
		}
		l.emit(binOpcode(t.Type), 0)
		return true, nil

	case *ast.IoOp:
		if _, err := l.lowerNode(t.Value); err != nil {
			return false, err
		}
		if _, err := l.lowerNode(t.Fd); err != nil {
			return false, err
		}
		if t.Type == token.IOAPPEND {
			l.emit(IOAPPEND, 0)
		} else {
			l.emit(IOWRITE, 0)
		}
		return false, nil

	case *ast.Assign:
		if _, err := l.lowerNode(t.Value); err != nil {
			return false, err
		}
		switch target := t.Target.(type) {
		case *ast.SaveArg:
			l.emit(SAVEARG, int32(target.Index))
		case *ast.SaveLocal:
			l.emit(SAVELOCAL, int32(target.Index))
		default:
			return false, errs.NewCompileError(errs.AssignWithoutTarget, t.OpPos, "assignment target is not a save node")
		}
		return false, nil

	case *ast.Return:
		if t.Value != nil {
			if _, err := l.lowerNode(t.Value); err != nil {
				return false, err
			}
		}
		l.emit(RETURN, 0)
		return false, nil

	default:
		return false, errs.NewCompileError(errs.UnresolvedName, token.Pos(0), "lowerer: unhandled node type %T", t)
	}
}

// lowerArgs pushes each call argument's value in source order; arguments
// are left on the stack for the Call/CallSelf opcode that follows.
func (l *lowerer) lowerArgs(args ast.Body) error {
	for _, stmt := range args {
		if len(stmt) != 1 {
			return errs.NewCompileError(errs.TooFewOperands, token.Pos(0), "call argument did not reduce to a single expression")
		}
		if _, err := l.lowerNode(stmt[0]); err != nil {
			return err
		}
	}
	return nil
}

// lowerFunctionLit lowers t.Body into a fresh segment and emits a
// PushLiteral of the function's constant-pool Function value in the
// enclosing segment. The FunctionPointer's EntryIndex is filled in once
// every segment's final offset is known, in finish.
func (l *lowerer) lowerFunctionLit(t *ast.FunctionLit) (bool, error) {
	outer := l.cur
	seg := l.newSegment()
	l.cur = seg
	l.funcDepth++

	if _, err := l.lowerBody(t.Body, true); err != nil {
		return false, err
	}
	if l.lastOp(seg) != RETURN {
		l.emit(RETURN, 0)
	}

	l.funcDepth--
	l.cur = outer

	ptr := &values.FunctionPointer{NumArgs: t.NumArgs, NumLocals: t.NumLocals}
	l.pending = append(l.pending, pendingFunc{segment: seg, ptr: ptr})
	l.emit(PUSHLITERAL, l.addConst(values.NewFunction(ptr)))
	return true, nil
}

func binOpcode(t token.Token) Opcode {
	switch t {
	case token.ADD:
		return ADD
	case token.SUB:
		return SUB
	case token.MUL:
		return MUL
	case token.DIV:
		return DIV
	case token.REM:
		return REM
	case token.EXP:
		return EXP
	case token.EQUALS:
		return EQUALS
	case token.LESS:
		return LESS
	case token.GREATER:
		return GREATER
	case token.EQUALSLESS:
		return LESSEQ
	case token.EQUALSGREATER:
		return GREATEREQ
	default:
		return NOP
	}
}
