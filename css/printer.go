package css

import (
	"bufio"
	"io"
	"strings"
)

const indentUnit = "  "

// printer emits canonical stylesheet layout: one node per line, two spaces of
// indentation per nesting level. Output of the printer parses back into the
// same tree and prints byte-identically.
type printer struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (p *printer) write(parts ...string) {
	if p.err != nil {
		return
	}
	for _, s := range parts {
		var n int
		n, p.err = p.w.WriteString(s)
		p.n += int64(n)
		if p.err != nil {
			return
		}
	}
}

func (p *printer) node(n Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch n := n.(type) {
	case *Root:
		for _, c := range n.Nodes {
			p.node(c, depth)
		}
	case *AtRule:
		head := "@" + n.Name
		if n.Params != "" {
			head += " " + n.Params
		}
		if !n.HasBody {
			p.write(indent, head, ";\n")
			return
		}
		p.write(indent, head, " {\n")
		for _, c := range n.Nodes {
			p.node(c, depth+1)
		}
		p.write(indent, "}\n")
	case *Rule:
		p.write(indent, n.Selector, " {\n")
		for _, c := range n.Nodes {
			p.node(c, depth+1)
		}
		p.write(indent, "}\n")
	case *Declaration:
		p.write(indent, n.Text(), ";\n")
	}
}

func write(w io.Writer, n Node) (int64, error) {
	p := &printer{w: bufio.NewWriter(w)}
	p.node(n, 0)
	if p.err != nil {
		return p.n, p.err
	}
	return p.n, p.w.Flush()
}

func toString(n Node) string {
	var sb strings.Builder
	write(&sb, n) //nolint:errcheck
	return sb.String()
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo.
func (r *Root) WriteTo(w io.Writer) (int64, error) {
	return write(w, r)
}

// String returns the CSS text of the stylesheet.
func (r *Root) String() string { return toString(r) }

// String returns the CSS text of the at-rule including its body.
func (a *AtRule) String() string { return toString(a) }

// String returns the CSS text of the rule including its block.
func (r *Rule) String() string { return toString(r) }

// String returns the declaration followed by semicolon and new line.
func (d *Declaration) String() string { return toString(d) }
