// Package symtab implements the per-function symbol table (C3): it
// partitions every identifier a function sees into the argument slot space
// and the local slot space, each with its own monotonically increasing
// index counter.
package symtab

import "github.com/dolthub/swiss"

// Kind identifies which slot space a resolved name belongs to.
type Kind uint8

const (
	Arg Kind = iota
	Local
)

func (k Kind) String() string {
	if k == Arg {
		return "arg"
	}
	return "local"
}

// Table is the symbol table for a single function literal (or the
// outermost script body, conventionally named "main"). It is created once
// per function and never shared between functions: argument indices
// 0..NumArgs()-1 and local indices 0..NumLocals()-1 are only meaningful
// within the Table that produced them.
type Table struct {
	name string

	args   *swiss.Map[string, int]
	locals *swiss.Map[string, int]

	numArgs   int
	numLocals int

	// argsClosed is set once statement parsing moves past the parameter
	// list; NewArgument panics if called afterward, since spec.md mandates
	// that arguments are only inserted while parsing a function's
	// parameter list.
	argsClosed bool
}

// New creates a Table for a function literal named name (purely for
// debugging/disassembly output; the outermost script body is conventionally
// named "main").
func New(name string) *Table {
	return &Table{
		name:   name,
		args:   swiss.NewMap[string, int](4),
		locals: swiss.NewMap[string, int](4),
	}
}

// Name returns the table's debugging name.
func (t *Table) Name() string { return t.name }

// NewArgument registers name as the next argument of the function, in
// parameter-list order. It must only be called while parsing the parameter
// list, before any call to Getsert.
func (t *Table) NewArgument(name string) int {
	if t.argsClosed {
		panic("symtab: NewArgument called after parameter list was closed")
	}
	if i, ok := t.args.Get(name); ok {
		return i
	}
	i := t.numArgs
	t.args.Put(name, i)
	t.numArgs++
	return i
}

// CloseArguments marks the parameter list as fully parsed; subsequent
// Getsert calls for a previously-unseen name always allocate a local.
func (t *Table) CloseArguments() { t.argsClosed = true }

// Getsert resolves name: if it is a known argument, its Arg index is
// returned; otherwise it is (or becomes) a local, and its Local index is
// returned. Getsert allocates a new local on first use of a name that is
// not an argument, as specified by spec.md §3.
func (t *Table) Getsert(name string) (Kind, int) {
	if i, ok := t.args.Get(name); ok {
		return Arg, i
	}
	if i, ok := t.locals.Get(name); ok {
		return Local, i
	}
	i := t.numLocals
	t.locals.Put(name, i)
	t.numLocals++
	return Local, i
}

// Lookup resolves name without allocating a new local; ok is false if name
// is not yet known to the table.
func (t *Table) Lookup(name string) (kind Kind, index int, ok bool) {
	if i, found := t.args.Get(name); found {
		return Arg, i, true
	}
	if i, found := t.locals.Get(name); found {
		return Local, i, true
	}
	return 0, 0, false
}

// NumArgs returns the number of distinct arguments registered so far.
func (t *Table) NumArgs() int { return t.numArgs }

// NumLocals returns the number of distinct locals allocated so far.
func (t *Table) NumLocals() int { return t.numLocals }
