// Package debug produces human readable dumps of internal structures for
// debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"legacss/css"
)

const indent = "  "

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.w.WriteString(strings.Repeat(indent, depth))
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes "label: value" line, value is quoted unless empty.
func (tw *TreeWriter) Field(depth int, label, value string) {
	if len(value) > 0 {
		value = strconv.Quote(value)
	}
	tw.Line(depth, "%s: %s", label, value)
}

// DumpTree renders stylesheet tree structure, one node per line.
func DumpTree(root *css.Root) string {
	tw := NewTreeWriter()
	tw.Line(0, "root nodes=%d", root.Len())
	for _, n := range root.Children() {
		tw.node(1, n)
	}
	return tw.String()
}

func (tw *TreeWriter) node(depth int, n css.Node) {
	switch n := n.(type) {
	case *css.AtRule:
		if !n.HasBody {
			tw.Line(depth, "at-rule @%s statement", n.Name)
			tw.Field(depth+1, "params", n.Params)
			return
		}
		tw.Line(depth, "at-rule @%s nodes=%d", n.Name, n.Len())
		tw.Field(depth+1, "params", n.Params)
		tw.children(depth+1, n)
	case *css.Rule:
		tw.Line(depth, "rule nodes=%d", n.Len())
		tw.Field(depth+1, "selector", n.Selector)
		tw.children(depth+1, n)
	case *css.Declaration:
		switch {
		case n.Absent:
			tw.Line(depth, "decl %s absent", n.Prop)
		case n.Important:
			tw.Line(depth, "decl %s important", n.Prop)
			tw.Field(depth+1, "value", n.Value)
		default:
			tw.Line(depth, "decl %s", n.Prop)
			tw.Field(depth+1, "value", n.Value)
		}
	}
}

func (tw *TreeWriter) children(depth int, c css.Container) {
	for _, n := range c.Children() {
		tw.node(depth, n)
	}
}
