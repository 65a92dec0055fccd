package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes an indented, human-readable dump of a Body, one line per
// node, used by the "ast" CLI subcommand and by the KSCRIPT_DEBUG trace.
type Printer struct {
	w         io.Writer
	showSpans bool
	indent    int
}

// NewPrinter creates a Printer writing to w. When showSpans is true, each
// line is annotated with the node's source position.
func NewPrinter(w io.Writer, showSpans bool) *Printer {
	return &Printer{w: w, showSpans: showSpans}
}

// Print dumps body to the printer's writer.
func (p *Printer) Print(body Body) {
	p.printBody(body)
}

func (p *Printer) printBody(body Body) {
	for i, stmt := range body {
		fmt.Fprintf(p.w, "%s[%d]\n", strings.Repeat("  ", p.indent), i)
		p.indent++
		for _, n := range stmt {
			p.printNode(n)
		}
		p.indent--
	}
}

func (p *Printer) printNode(n Node) {
	prefix := strings.Repeat("  ", p.indent)
	if p.showSpans {
		start, end := n.Span()
		fmt.Fprintf(p.w, "%s%v  (%s..%s)\n", prefix, n, start, end)
	} else {
		fmt.Fprintf(p.w, "%s%v\n", prefix, n)
	}

	p.indent++
	n.Walk(VisitorFunc(func(child Node, dir VisitDirection) Visitor {
		if dir != VisitEnter {
			return nil
		}
		p.printNode(child)
		return nil
	}))
	p.indent--
}
