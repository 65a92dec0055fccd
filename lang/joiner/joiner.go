// Package joiner implements the AST builder (C2): it walks the lexer's
// token tree and, consulting a symbol table, replaces every bare Var
// token with an indexed VarArg/VarLocal/SaveArg/SaveLocal node and shapes
// structural constructs (function literals, calls, conditionals, arrays)
// into their own node types, per spec.md §4.2.
//
// Join does not reorder operators into evaluation order — operator nodes
// (BinOp, IoOp) come out with their operand fields still nil, and a plain
// "name = expr" assignment comes out as a bare SaveArg/SaveLocal marker,
// all in source token order. The shunt stage (lang/shunt) consumes that
// flat sequence and binds operands, producing the single rooted
// expression per statement that the lowerer expects. IfStmt and Return
// statements, and the Assign built for ".name,params{body}", are the
// exception: Join builds them with their operands already bound.
package joiner

import (
	"fmt"

	"github.com/kscript-lang/kscript/lang/ast"
	"github.com/kscript-lang/kscript/lang/errs"
	"github.com/kscript-lang/kscript/lang/lexer"
	"github.com/kscript-lang/kscript/lang/shunt"
	"github.com/kscript-lang/kscript/lang/symtab"
	"github.com/kscript-lang/kscript/lang/token"
)

var anonCounter int

// JoinProgram joins the outermost script body against a fresh "main"
// symbol table, which has no arguments.
func JoinProgram(body lexer.Body) (ast.Body, *symtab.Table, error) {
	tab := symtab.New("main")
	tab.CloseArguments()
	b, err := Join(body, tab)
	if err != nil {
		return nil, nil, err
	}
	return b, tab, nil
}

// Join joins body against tab, the symbol table of the enclosing function
// (or the script, for the outermost call).
func Join(body lexer.Body, tab *symtab.Table) (ast.Body, error) {
	out := make(ast.Body, 0, len(body))
	for _, stmt := range body {
		s, err := joinStatement(stmt, tab)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// joinStatement joins one statement's tokens. If and Return are written as
// prefix markers whose operand follows them in source order (the guard
// expression after "?", the return value after ";;") rather than preceding
// them as spec.md §4.3's general shunt framing describes, so both are
// resolved eagerly here — including shunting their one operand on the
// spot — instead of being deferred to the generic per-statement shunt
// pass. Every other statement shape is joined into a flat, still
// source-ordered node list for the shunt stage to reorder.
func joinStatement(stmt lexer.Statement, tab *symtab.Table) (ast.Statement, error) {
	if len(stmt) == 0 {
		return nil, nil
	}

	switch stmt[0].Tok {
	case token.IF:
		n, err := joinIf(stmt, tab)
		if err != nil {
			return nil, err
		}
		return ast.Statement{n}, nil

	case token.RETURN:
		n, err := joinReturnStmt(stmt, tab)
		if err != nil {
			return nil, err
		}
		return ast.Statement{n}, nil
	}

	var out ast.Statement
	i := 0
	for i < len(stmt) {
		n, consumed, err := joinOne(stmt, i, tab)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
		i += consumed
	}
	return out, nil
}

func joinIf(stmt lexer.Statement, tab *symtab.Table) (ast.Node, error) {
	tv := stmt[0]
	last := stmt[len(stmt)-1]
	if last.Tok != token.BLOCK {
		return nil, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "'?' must end with a block")
	}
	guardToks := stmt[1 : len(stmt)-1]
	if len(guardToks) == 0 {
		return nil, errs.NewCompileError(errs.TooFewOperands, tv.Pos, "'?' requires a guard expression")
	}

	guardFlat, err := joinStatement(guardToks, tab)
	if err != nil {
		return nil, err
	}
	guard, err := shunt.ShuntStatement(guardFlat)
	if err != nil {
		return nil, err
	}

	body, err := Join(last.Body, tab)
	if err != nil {
		return nil, err
	}
	return &ast.IfStmt{Pos: tv.Pos, Guard: guard, Body: body}, nil
}

func joinReturnStmt(stmt lexer.Statement, tab *symtab.Table) (ast.Node, error) {
	tv := stmt[0]
	if len(stmt) == 1 {
		return &ast.Return{Pos: tv.Pos}, nil
	}

	flat, err := joinStatement(stmt[1:], tab)
	if err != nil {
		return nil, err
	}
	val, err := shunt.ShuntStatement(flat)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Pos: tv.Pos, Value: val}, nil
}

// joinOne joins the token(s) at stmt[i:], returning the node produced (nil
// for tokens with no AST representation, currently none) and how many
// input tokens were consumed.
func joinOne(stmt lexer.Statement, i int, tab *symtab.Table) (ast.Node, int, error) {
	tv := stmt[i]

	switch tv.Tok {
	case token.INTEGER:
		return &ast.IntLit{Pos: tv.Pos, Raw: tv.Raw, Value: tv.Int}, 1, nil
	case token.FLOAT:
		return &ast.FloatLit{Pos: tv.Pos, Raw: tv.Raw, Value: tv.Float}, 1, nil
	case token.BOOL:
		return &ast.BoolLit{Pos: tv.Pos, Value: tv.Int != 0}, 1, nil
	case token.STRING:
		return &ast.StringLit{Pos: tv.Pos, Value: tv.Str}, 1, nil
	case token.COMMENT:
		return &ast.CommentNode{Pos: tv.Pos, Text: tv.Raw}, 1, nil

	case token.VAR:
		return joinVar(stmt, i, tab)

	case token.GROUP:
		return joinGroupAt(stmt, i, tab)

	case token.ARRAY:
		items, err := Join(tv.Body, tab)
		if err != nil {
			return nil, 0, err
		}
		return &ast.ArrayLit{Pos: tv.Pos, Items: items}, 1, nil

	case token.LBRACK:
		return nil, 0, errs.NewCompileError(errs.TooFewOperands, tv.Pos, "index expression with no preceding value")

	case token.IF:
		return nil, 0, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "'?' only valid at the start of a statement")

	case token.CALL:
		return joinCall(stmt, i, tab)

	case token.ASSIGN:
		return nil, 0, errs.NewCompileError(errs.AssignWithoutTarget, tv.Pos, "'=' with no preceding variable")

	case token.BLOCK:
		return nil, 0, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "unexpected block")

	case token.RETURN:
		return nil, 0, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "';;' only valid at the start of a statement")

	case token.ADD, token.SUB, token.MUL, token.DIV, token.REM, token.EXP,
		token.EQUALS, token.LESS, token.GREATER, token.EQUALSLESS, token.EQUALSGREATER:
		return &ast.BinOp{Type: tv.Tok, OpPos: tv.Pos}, 1, nil

	case token.IOWRITE, token.IOAPPEND:
		return &ast.IoOp{Type: tv.Tok, OpPos: tv.Pos}, 1, nil

	default:
		return nil, 0, errs.NewCompileError(errs.UnresolvedName, tv.Pos, fmt.Sprintf("unexpected token %s", tv.Tok))
	}
}

func joinVar(stmt lexer.Statement, i int, tab *symtab.Table) (ast.Node, int, error) {
	tv := stmt[i]

	if i+1 < len(stmt) && stmt[i+1].Tok == token.ASSIGN {
		kind, idx := tab.Getsert(tv.Raw)
		if kind == symtab.Arg {
			return &ast.SaveArg{Pos: tv.Pos, Name: tv.Raw, Index: idx}, 2, nil
		}
		return &ast.SaveLocal{Pos: tv.Pos, Name: tv.Raw, Index: idx}, 2, nil
	}

	if i+1 < len(stmt) && stmt[i+1].Tok == token.GROUP {
		kind, idx := tab.Getsert(tv.Raw)
		args, err := Join(stmt[i+1].Body, tab)
		if err != nil {
			return nil, 0, err
		}
		if kind == symtab.Arg {
			return &ast.ArgCall{Pos: tv.Pos, Index: idx, Args: args}, 2, nil
		}
		return &ast.LocalCall{Pos: tv.Pos, Index: idx, Args: args}, 2, nil
	}

	if i+1 < len(stmt) && stmt[i+1].Tok == token.LBRACK {
		kind, idx := tab.Getsert(tv.Raw)
		var prefix ast.Node
		if kind == symtab.Arg {
			prefix = &ast.VarArg{Pos: tv.Pos, Name: tv.Raw, Index: idx}
		} else {
			prefix = &ast.VarLocal{Pos: tv.Pos, Name: tv.Raw, Index: idx}
		}
		idxExpr, err := Join(stmt[i+1].Body, tab)
		if err != nil {
			return nil, 0, err
		}
		return &ast.IndexExpr{Pos: stmt[i+1].Pos, Prefix: prefix, Index: idxExpr}, 2, nil
	}

	kind, idx := tab.Getsert(tv.Raw)
	if kind == symtab.Arg {
		return &ast.VarArg{Pos: tv.Pos, Name: tv.Raw, Index: idx}, 1, nil
	}
	return &ast.VarLocal{Pos: tv.Pos, Name: tv.Raw, Index: idx}, 1, nil
}

// joinGroupAt joins a GROUP token, handling the plain "(expr)" form and
// the "(params){body}[(...)]" function-literal form (with an optional
// trailing immediate-invocation group).
func joinGroupAt(stmt lexer.Statement, i int, tab *symtab.Table) (ast.Node, int, error) {
	tv := stmt[i]

	if i+1 < len(stmt) && stmt[i+1].Tok == token.BLOCK {
		lit, err := buildFunctionLit(tv, stmt[i+1], tab)
		if err != nil {
			return nil, 0, err
		}
		if i+2 < len(stmt) && stmt[i+2].Tok == token.GROUP {
			// immediate invocation: bind the literal to a synthetic local
			// and call through it, since calls are only expressed by name
			// index in this AST.
			anonCounter++
			_, idx := tab.Getsert(fmt.Sprintf("$anon%d", anonCounter))
			args, err := Join(stmt[i+2].Body, tab)
			if err != nil {
				return nil, 0, err
			}
			return &ast.GroupExpr{Pos: tv.Pos, Body: ast.Body{
				ast.Statement{&ast.SaveLocal{Pos: tv.Pos, Index: idx}, lit},
				ast.Statement{&ast.LocalCall{Pos: tv.Pos, Index: idx, Args: args}},
			}}, 3, nil
		}
		return lit, 2, nil
	}

	body, err := Join(tv.Body, tab)
	if err != nil {
		return nil, 0, err
	}
	return &ast.GroupExpr{Pos: tv.Pos, Body: body}, 1, nil
}

func buildFunctionLit(groupTok, blockTok lexer.TokenValue, _ *symtab.Table) (*ast.FunctionLit, error) {
	inner := symtab.New("fn")
	for _, paramStmt := range groupTok.Body {
		if len(paramStmt) != 1 || paramStmt[0].Tok != token.VAR {
			return nil, errs.NewCompileError(errs.BadFunctionParameter, groupTok.Pos, "function parameter list must be bare identifiers")
		}
		inner.NewArgument(paramStmt[0].Raw)
	}
	inner.CloseArguments()

	body, err := Join(blockTok.Body, inner)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLit{Pos: groupTok.Pos, NumArgs: inner.NumArgs(), NumLocals: inner.NumLocals(), Body: body}, nil
}

// joinCall handles the "." token: a bare ".(args)" is a self-call; a
// named ".name,params{body}" (packed into one statement by the lexer's
// dotParams tracking) desugars to an assignment of a function literal to
// the resolved name; a named ".name,(args)" desugars to a plain call
// through the resolved name.
func joinCall(stmt lexer.Statement, i int, tab *symtab.Table) (ast.Node, int, error) {
	tv := stmt[i]

	if i+1 >= len(stmt) {
		return nil, 0, errs.NewCompileError(errs.SelfCallOutsideFunction, tv.Pos, "'.' with nothing following")
	}

	if stmt[i+1].Tok == token.GROUP {
		args, err := Join(stmt[i+1].Body, tab)
		if err != nil {
			return nil, 0, err
		}
		return &ast.SelfCall{Pos: tv.Pos, Args: args}, 2, nil
	}

	if stmt[i+1].Tok != token.VAR {
		return nil, 0, errs.NewCompileError(errs.SelfCallOutsideFunction, tv.Pos, "'.' must be followed by '(' or a name")
	}
	name := stmt[i+1]

	// scan the packed parameter-name run (dotParams territory in the
	// lexer) up to the GROUP or BLOCK that ends it.
	j := i + 2
	var params []lexer.TokenValue
	for j < len(stmt) && stmt[j].Tok == token.VAR {
		params = append(params, stmt[j])
		j++
	}
	if j >= len(stmt) {
		return nil, 0, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "named '.' form with no call or body")
	}

	switch stmt[j].Tok {
	case token.BLOCK:
		inner := symtab.New(name.Raw)
		for _, p := range params {
			inner.NewArgument(p.Raw)
		}
		inner.CloseArguments()
		body, err := Join(stmt[j].Body, inner)
		if err != nil {
			return nil, 0, err
		}
		lit := &ast.FunctionLit{Pos: tv.Pos, NumArgs: inner.NumArgs(), NumLocals: inner.NumLocals(), Body: body}

		kind, idx := tab.Getsert(name.Raw)
		var target ast.Node
		if kind == symtab.Arg {
			target = &ast.SaveArg{Pos: tv.Pos, Name: name.Raw, Index: idx}
		} else {
			target = &ast.SaveLocal{Pos: tv.Pos, Name: name.Raw, Index: idx}
		}
		return &ast.Assign{OpPos: tv.Pos, Target: target, Value: lit}, j - i + 1, nil

	case token.GROUP:
		if len(params) != 0 {
			return nil, 0, errs.NewCompileError(errs.BadFunctionParameter, tv.Pos, "named call cannot carry a parameter list")
		}
		kind, idx := tab.Getsert(name.Raw)
		args, err := Join(stmt[j].Body, tab)
		if err != nil {
			return nil, 0, err
		}
		if kind == symtab.Arg {
			return &ast.ArgCall{Pos: tv.Pos, Index: idx, Args: args}, j - i + 1, nil
		}
		return &ast.LocalCall{Pos: tv.Pos, Index: idx, Args: args}, j - i + 1, nil

	default:
		return nil, 0, errs.NewCompileError(errs.MissingFunctionBody, tv.Pos, "named '.' form with no call or body")
	}
}
