// Package ast defines the abstract syntax tree (C2) produced by the joiner:
// every Var token has been resolved to an indexed VarArg/VarLocal/SaveArg/
// SaveLocal node, and every structural construct (function literals, calls,
// conditionals) has been shaped into its own node type.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kscript-lang/kscript/lang/token"
)

// Node is implemented by every AST node.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a one-line
	// description of itself for debug dumps; only 'v' and 's' verbs are
	// supported, and the '#' flag requests child-count annotations.
	fmt.Formatter

	// Span reports the node's start and end source position.
	Span() (start, end token.Pos)

	// Walk visits the node's children, implementing the Visitor pattern.
	Walk(v Visitor)
}

// Statement is a single statement: before shunting, the flat sequence of
// nodes mirroring the source token order; after shunting, a slice of
// length 1 holding the single rooted expression tree for the statement.
type Statement []Node

// Body is an ordered sequence of statements, the unit produced for a
// function body, a group, an if-guarded block, or the outermost script.
type Body []Statement

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\n", "⏎")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		switch {
		case len(runes) >= w:
			runes = runes[:w]
		case minus:
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		case !plus:
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
