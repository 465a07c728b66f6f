package legacy

import (
	"strings"

	"legacss/css"
)

// ExtractLayers returns new tree holding copies of children of every
// top-level @layer block in document order together with names of these
// layers. Everything outside of top-level layers is discarded.
func ExtractLayers(src *css.Root) (*css.Root, []string) {
	out := css.NewRoot()
	var names []string
	for _, n := range src.Nodes {
		a, ok := n.(*css.AtRule)
		if !ok || !strings.EqualFold(a.Name, "layer") {
			continue
		}
		names = append(names, strings.TrimSpace(a.Params))
		for _, c := range a.Nodes {
			css.Append(out, c.Clone())
		}
	}
	return out, names
}
