package css

import (
	"strings"
)

// Node is a single element of a stylesheet tree: *Root, *AtRule, *Rule or
// *Declaration.
type Node interface {
	// Parent returns container owning this node or nil for detached nodes.
	Parent() Container
	// Clone returns detached deep copy of the node.
	Clone() Node
	// String returns CSS text of the node at zero indentation.
	String() string

	setParent(Container)
}

// Container is a node which owns ordered list of children.
type Container interface {
	Node
	// Children returns snapshot of the current children. Modifying the tree
	// while iterating over the snapshot is safe.
	Children() []Node
	// Len returns number of children.
	Len() int

	list() *[]Node
}

// Root is the top of a stylesheet tree.
type Root struct {
	Nodes []Node
}

// AtRule represents @-rule, with or without body.
type AtRule struct {
	Name    string // without leading '@', e.g. "media", "layer", "container"
	Params  string // raw prelude, trimmed
	HasBody bool   // false for statements like "@import url(x.css);"
	Nodes   []Node

	parent Container
}

// Rule is a qualified rule: selector list followed by a block.
type Rule struct {
	Selector string // raw selector list, trimmed
	Nodes    []Node

	parent Container
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Prop      string
	Value     string // trimmed, without "!important"
	Absent    bool   // value was syntactically missing, e.g. "color:;"
	Important bool

	parent Container
}

// NewRoot creates empty tree.
func NewRoot() *Root {
	return &Root{}
}

// NewAtRule creates detached at-rule with a body.
func NewAtRule(name, params string, children ...Node) *AtRule {
	a := &AtRule{Name: name, Params: params, HasBody: true}
	Append(a, children...)
	return a
}

// NewRule creates detached rule.
func NewRule(selector string, children ...Node) *Rule {
	r := &Rule{Selector: selector}
	Append(r, children...)
	return r
}

// NewDecl creates detached declaration.
func NewDecl(prop, value string, important bool) *Declaration {
	return &Declaration{Prop: prop, Value: value, Important: important}
}

func (r *Root) Parent() Container { return nil }
func (r *Root) setParent(Container) {}
func (r *Root) list() *[]Node { return &r.Nodes }
func (r *Root) Len() int { return len(r.Nodes) }
func (r *Root) Children() []Node { return snapshot(r.Nodes) }
func (a *AtRule) Parent() Container { return a.parent }
func (a *AtRule) setParent(c Container) { a.parent = c }
func (a *AtRule) list() *[]Node { return &a.Nodes }
func (a *AtRule) Len() int { return len(a.Nodes) }
func (a *AtRule) Children() []Node { return snapshot(a.Nodes) }
func (r *Rule) Parent() Container { return r.parent }
func (r *Rule) setParent(c Container) { r.parent = c }
func (r *Rule) list() *[]Node { return &r.Nodes }
func (r *Rule) Len() int { return len(r.Nodes) }
func (r *Rule) Children() []Node { return snapshot(r.Nodes) }

func (d *Declaration) Parent() Container { return d.parent }
func (d *Declaration) setParent(c Container) { d.parent = c }

// Clone returns deep copy of the whole tree.
func (r *Root) Clone() Node {
	n := &Root{}
	cloneChildren(n, r.Nodes)
	return n
}

// Clone returns detached deep copy of the at-rule.
func (a *AtRule) Clone() Node {
	n := &AtRule{Name: a.Name, Params: a.Params, HasBody: a.HasBody}
	cloneChildren(n, a.Nodes)
	return n
}

// Clone returns detached deep copy of the rule.
func (r *Rule) Clone() Node {
	n := &Rule{Selector: r.Selector}
	cloneChildren(n, r.Nodes)
	return n
}

// Clone returns detached copy of the declaration.
func (d *Declaration) Clone() Node {
	n := *d
	n.parent = nil
	return &n
}

// Decls returns declarations which are direct children of the rule.
func (r *Rule) Decls() []*Declaration {
	return declsOf(r.Nodes)
}

// Text returns declaration as it appears inside a block without trailing
// semicolon, e.g. "color: red !important".
func (d *Declaration) Text() string {
	var sb strings.Builder
	sb.WriteString(d.Prop)
	sb.WriteByte(':')
	if !d.Absent {
		sb.WriteByte(' ')
		sb.WriteString(d.Value)
	}
	if d.Important {
		sb.WriteString(" !important")
	}
	return sb.String()
}

func declsOf(nodes []Node) []*Declaration {
	var decls []*Declaration
	for _, n := range nodes {
		if d, ok := n.(*Declaration); ok {
			decls = append(decls, d)
		}
	}
	return decls
}

func snapshot(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

func cloneChildren(dst Container, nodes []Node) {
	for _, c := range nodes {
		Append(dst, c.Clone())
	}
}

// Append detaches nodes from their current parents and adds them to the end
// of container.
func Append(c Container, nodes ...Node) {
	for _, n := range nodes {
		Remove(n)
		n.setParent(c)
	}
	*c.list() = append(*c.list(), nodes...)
}

// InsertBefore puts nodes into parent of ref right before it. Nothing happens
// when ref is detached.
func InsertBefore(ref Node, nodes ...Node) {
	insertAt(ref, 0, nodes)
}

// InsertAfter puts nodes into parent of ref right after it. Nothing happens
// when ref is detached.
func InsertAfter(ref Node, nodes ...Node) {
	insertAt(ref, 1, nodes)
}

func insertAt(ref Node, shift int, nodes []Node) {
	c := ref.Parent()
	if c == nil {
		return
	}
	for _, n := range nodes {
		Remove(n)
	}
	i := Index(c, ref)
	if i < 0 {
		return
	}
	i += shift
	for _, n := range nodes {
		n.setParent(c)
	}
	l := c.list()
	merged := make([]Node, 0, len(*l)+len(nodes))
	merged = append(merged, (*l)[:i]...)
	merged = append(merged, nodes...)
	merged = append(merged, (*l)[i:]...)
	*l = merged
}

// Replace substitutes node with replacement set (zero, one or many nodes)
// in its parent. Replacement nodes are detached from their previous parents
// first, so children of n may be used to unwrap it. n itself must not be part
// of the replacement set.
func Replace(n Node, nodes ...Node) {
	if n.Parent() == nil {
		return
	}
	InsertBefore(n, nodes...)
	Remove(n)
}

// Remove detaches node from its parent. Returns false when node was already
// detached.
func Remove(n Node) bool {
	c := n.Parent()
	if c == nil {
		return false
	}
	l := c.list()
	i := Index(c, n)
	if i < 0 {
		n.setParent(nil)
		return false
	}
	*l = append((*l)[:i:i], (*l)[i+1:]...)
	n.setParent(nil)
	return true
}

// Index returns position of n among children of c or -1.
func Index(c Container, n Node) int {
	for i, x := range *c.list() {
		if x == n {
			return i
		}
	}
	return -1
}

// Prev returns previous sibling of n or nil.
func Prev(n Node) Node {
	c := n.Parent()
	if c == nil {
		return nil
	}
	i := Index(c, n)
	if i <= 0 {
		return nil
	}
	return (*c.list())[i-1]
}

// Walk visits every node below c depth first in document order. Children are
// snapshotted before they are visited, fn may freely remove or relocate nodes.
// Returning false from fn skips descendants of the visited node.
func Walk(c Container, fn func(Node) bool) {
	for _, n := range c.Children() {
		if !fn(n) {
			continue
		}
		if sub, ok := n.(Container); ok {
			Walk(sub, fn)
		}
	}
}

// WalkRules visits every rule below c.
func WalkRules(c Container, fn func(*Rule)) {
	Walk(c, func(n Node) bool {
		if r, ok := n.(*Rule); ok {
			fn(r)
		}
		return true
	})
}

// WalkAtRules visits every at-rule with a given name (any name when empty)
// below c. Descendants of a visited at-rule are not walked when fn returns false.
func WalkAtRules(c Container, name string, fn func(*AtRule) bool) {
	Walk(c, func(n Node) bool {
		if a, ok := n.(*AtRule); ok && (name == "" || strings.EqualFold(a.Name, name)) {
			return fn(a)
		}
		return true
	})
}
