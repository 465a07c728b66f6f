package legacy

import (
	"strings"

	"legacss/css"
)

// ruleKey is textual identity of a rule: selector plus serialized
// declarations.
func ruleKey(r *css.Rule) string {
	parts := make([]string, 0, r.Len())
	for _, n := range r.Nodes {
		if d, ok := n.(*css.Declaration); ok {
			parts = append(parts, d.Text())
			continue
		}
		parts = append(parts, n.String())
	}
	return r.Selector + " {" + strings.Join(parts, ";") + "}"
}

// DedupRules removes rules which are direct children of c and repeat an
// earlier sibling exactly. Returns number of removed rules.
func DedupRules(c css.Container) int {
	var removed int
	seen := make(map[string]struct{})
	for _, n := range c.Children() {
		r, ok := n.(*css.Rule)
		if !ok {
			continue
		}
		key := ruleKey(r)
		if _, ok := seen[key]; ok {
			css.Remove(r)
			removed++
			continue
		}
		seen[key] = struct{}{}
	}
	return removed
}
