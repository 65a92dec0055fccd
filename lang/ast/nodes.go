package ast

import (
	"fmt"

	"github.com/kscript-lang/kscript/lang/token"
)

type (
	// IntLit is an integer literal.
	IntLit struct {
		Pos   token.Pos
		Raw   string
		Value int64
	}

	// FloatLit is a float literal.
	FloatLit struct {
		Pos   token.Pos
		Raw   string
		Value float64
	}

	// BoolLit is a 't' or 'f' literal.
	BoolLit struct {
		Pos   token.Pos
		Value bool
	}

	// StringLit is a string literal, already unescaped.
	StringLit struct {
		Pos   token.Pos
		Value string
	}

	// CommentNode carries a source comment; it survives into the AST but is
	// ignored by the shunt and lowering stages.
	CommentNode struct {
		Pos  token.Pos
		Text string
	}

	// VarArg reads the current function's argument at Index.
	VarArg struct {
		Pos   token.Pos
		Name  string
		Index int
	}

	// VarLocal reads the current function's local at Index.
	VarLocal struct {
		Pos   token.Pos
		Name  string
		Index int
	}

	// SaveArg assigns to the current function's argument at Index. It only
	// ever appears as the left-hand side produced by Assign.
	SaveArg struct {
		Pos   token.Pos
		Name  string
		Index int
	}

	// SaveLocal assigns to the current function's local at Index.
	SaveLocal struct {
		Pos   token.Pos
		Name  string
		Index int
	}

	// ArrayLit is an "@[...]" array literal.
	ArrayLit struct {
		Pos   token.Pos
		Items Body // one statement per item
	}

	// IndexExpr is an "a[i]" array read.
	IndexExpr struct {
		Pos    token.Pos
		Prefix Node
		Index  Body // one statement, the index expression
	}

	// FunctionLit is a function literal: "(params){body}". NumLocals is
	// filled in by the joiner from the inner symbol table once the whole
	// body has been joined.
	FunctionLit struct {
		Pos       token.Pos
		NumArgs   int
		NumLocals int
		Body      Body
	}

	// GroupExpr is a parenthesized "(...)" expression; the value of a Group
	// is the value of its last statement.
	GroupExpr struct {
		Pos  token.Pos
		Body Body
	}

	// LocalCall calls the function value held in local slot Index.
	LocalCall struct {
		Pos   token.Pos
		Index int
		Args  Body
	}

	// ArgCall calls the function value held in argument slot Index.
	ArgCall struct {
		Pos   token.Pos
		Index int
		Args  Body
	}

	// SelfCall recursively calls the function currently being compiled. It
	// is only valid inside a FunctionLit body.
	SelfCall struct {
		Pos  token.Pos
		Args Body
	}

	// IfStmt evaluates Body when Guard, the expression written between
	// "?" and the block in source, evaluates true. The joiner binds Guard
	// when it builds the node.
	IfStmt struct {
		Pos   token.Pos
		Guard Node
		Body  Body
	}

	// BinOp is a binary arithmetic or comparison operator. Type is one of
	// token.ADD, SUB, MUL, DIV, REM, EXP, EQUALS, LESS, GREATER,
	// EQUALSLESS, EQUALSGREATER.
	BinOp struct {
		Left, Right Node
		Type        token.Token
		OpPos       token.Pos
	}

	// Assign is a statement, not an expression: it leaves no value on the
	// evaluation stack. Target is a SaveArg or SaveLocal node.
	Assign struct {
		OpPos  token.Pos
		Target Node
		Value  Node
	}

	// Return returns from the enclosing function. Value is nil for a bare
	// ";;" with no following value.
	Return struct {
		Pos   token.Pos
		Value Node
	}

	// IoOp is an IoWrite or IoAppend statement. Type is token.IOWRITE or
	// token.IOAPPEND.
	IoOp struct {
		OpPos token.Pos
		Type  token.Token
		Value Node
		Fd    Node
	}
)

func (n *IntLit) Format(f fmt.State, verb rune) { format(f, verb, n, "int "+n.Raw, nil) }
func (n *IntLit) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *IntLit) Walk(Visitor)                  {}

func (n *FloatLit) Format(f fmt.State, verb rune) { format(f, verb, n, "float "+n.Raw, nil) }
func (n *FloatLit) Span() (token.Pos, token.Pos)   { return n.Pos, n.Pos }
func (n *FloatLit) Walk(Visitor)                   {}

func (n *BoolLit) Format(f fmt.State, verb rune) {
	lbl := "f"
	if n.Value {
		lbl = "t"
	}
	format(f, verb, n, "bool "+lbl, nil)
}
func (n *BoolLit) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *BoolLit) Walk(Visitor)                 {}

func (n *StringLit) Format(f fmt.State, verb rune) { format(f, verb, n, "string "+n.Value, nil) }
func (n *StringLit) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *StringLit) Walk(Visitor)                  {}

func (n *CommentNode) Format(f fmt.State, verb rune) { format(f, verb, n, "comment", nil) }
func (n *CommentNode) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *CommentNode) Walk(Visitor)                  {}

func (n *VarArg) Format(f fmt.State, verb rune) { format(f, verb, n, "arg "+n.Name, nil) }
func (n *VarArg) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *VarArg) Walk(Visitor)                  {}

func (n *VarLocal) Format(f fmt.State, verb rune) { format(f, verb, n, "local "+n.Name, nil) }
func (n *VarLocal) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *VarLocal) Walk(Visitor)                  {}

func (n *SaveArg) Format(f fmt.State, verb rune) { format(f, verb, n, "save arg "+n.Name, nil) }
func (n *SaveArg) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *SaveArg) Walk(Visitor)                  {}

func (n *SaveLocal) Format(f fmt.State, verb rune) { format(f, verb, n, "save local "+n.Name, nil) }
func (n *SaveLocal) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *SaveLocal) Walk(Visitor)                  {}

func (n *ArrayLit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"items": len(n.Items)})
}
func (n *ArrayLit) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ArrayLit) Walk(v Visitor)               { walkBody(v, n.Items) }

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }
func (n *IndexExpr) Span() (token.Pos, token.Pos)  { start, _ := n.Prefix.Span(); return start, n.Pos }
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Prefix)
	walkBody(v, n.Index)
}

func (n *FunctionLit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn", map[string]int{"params": n.NumArgs})
}
func (n *FunctionLit) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *FunctionLit) Walk(v Visitor)               { walkBody(v, n.Body) }

func (n *GroupExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *GroupExpr) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *GroupExpr) Walk(v Visitor)                { walkBody(v, n.Body) }

func (n *LocalCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call local", map[string]int{"args": len(n.Args)})
}
func (n *LocalCall) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *LocalCall) Walk(v Visitor)               { walkBody(v, n.Args) }

func (n *ArgCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call arg", map[string]int{"args": len(n.Args)})
}
func (n *ArgCall) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ArgCall) Walk(v Visitor)               { walkBody(v, n.Args) }

func (n *SelfCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, "self call", map[string]int{"args": len(n.Args)})
}
func (n *SelfCall) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *SelfCall) Walk(v Visitor)               { walkBody(v, n.Args) }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *IfStmt) Walk(v Visitor) {
	if n.Guard != nil {
		Walk(v, n.Guard)
	}
	walkBody(v, n.Body)
}

func (n *BinOp) Format(f fmt.State, verb rune) { format(f, verb, n, "binary "+n.Type.GoString(), nil) }
func (n *BinOp) Span() (token.Pos, token.Pos) {
	start, _ := n.Left.Span()
	_, end := n.Right.Span()
	return start, end
}
func (n *BinOp) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *Assign) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *Assign) Span() (token.Pos, token.Pos)  { return n.OpPos, n.OpPos }
func (n *Assign) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Target)
}

func (n *Return) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *Return) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *Return) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

func (n *IoOp) Format(f fmt.State, verb rune) { format(f, verb, n, "io "+n.Type.GoString(), nil) }
func (n *IoOp) Span() (token.Pos, token.Pos)  { return n.OpPos, n.OpPos }
func (n *IoOp) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Fd)
}

func walkBody(v Visitor, b Body) {
	for _, stmt := range b {
		for _, n := range stmt {
			Walk(v, n)
		}
	}
}
