// Package legacy turns stylesheet produced by utility-class framework into
// stylesheets digestible by older rendering engines.
//
// Processing is a single synchronous pass over the tree: content of top-level
// cascade layers is flattened into a new tree, selectors and declarations are
// repaired, unsupported at-rules are dropped and container queries are
// rewritten as media queries and moved into a separate tree.
package legacy

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"legacss/css"
)

// Options controls optional processing stages.
type Options struct {
	// Colors enables static fallbacks for oklab()/oklch() colors, trivial
	// color-mix() conditions and gradients interpolated in oklab.
	Colors bool
}

// Result holds both produced trees.
type Result struct {
	Base       *css.Root
	Containers *css.Root
	Layers     []string // names of flattened top-level layers
}

// Processor transforms parsed stylesheet. It keeps no state between calls of
// Process.
type Processor struct {
	log  *zap.Logger
	opts Options
}

// NewProcessor creates processor.
func NewProcessor(log *zap.Logger, opts Options) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{log: log.Named("legacy"), opts: opts}
}

// Process builds base and container trees from src. Source tree is not
// modified.
func (p *Processor) Process(src *css.Root) *Result {
	base, layers := ExtractLayers(src)
	p.log.Debug("Layers extracted", zap.Strings("layers", layers), zap.Int("nodes", base.Len()))

	if p.opts.Colors {
		NewColorFallbacks(p.log).Apply(base)
	}

	p.processContainer(base)
	containers := p.relocateContainers(base)

	return &Result{Base: base, Containers: containers, Layers: layers}
}

// processContainer repairs everything below c. Iteration goes over snapshot
// of children so nodes may be removed or moved while walking.
func (p *Processor) processContainer(c css.Container) {
	for _, n := range c.Children() {
		if n.Parent() != c {
			// already moved or removed
			continue
		}
		switch n := n.(type) {
		case *css.Rule:
			p.processRule(n)
		case *css.AtRule:
			p.processAtRule(n)
		}
	}
	if removed := DedupRules(c); removed > 0 {
		p.log.Debug("Duplicate rules removed", zap.Int("count", removed))
	}
}

func (p *Processor) processRule(r *css.Rule) {
	selector := r.Selector
	if dirs := Directions(selector); len(dirs) > 0 {
		for _, dir := range dirs {
			ConvertLogical(r, dir)
		}
		selector = StripDir(selector)
	}

	selector = RepairSelector(selector)
	if selector == "" {
		p.log.Debug("Dropping rule", zap.String("selector", r.Selector), zap.String("reason", "empty selector"))
		css.Remove(r)
		return
	}
	if selector != r.Selector {
		p.log.Debug("Repaired selector", zap.String("from", r.Selector), zap.String("to", selector))
		r.Selector = selector
	}

	SanitizeDeclarations(r, p.log)
	// nested rules and at-rules
	p.processContainer(r)

	if r.Len() == 0 {
		p.log.Debug("Dropping rule", zap.String("selector", r.Selector), zap.String("reason", "empty"))
		css.Remove(r)
	}
}

func (p *Processor) processAtRule(a *css.AtRule) {
	name := strings.ToLower(a.Name)
	if name == "layer" {
		// layers survive only at the top level, nested ones are unwrapped
		p.processContainer(a)
		css.Replace(a, a.Children()...)
		return
	}

	if name == "supports" {
		a.Params = NormalizeSupports(a.Params)
	}
	if Unsupported(a) {
		p.log.Debug("Dropping at-rule", zap.String("name", a.Name), zap.String("params", a.Params), zap.String("reason", "unsupported"))
		css.Remove(a)
		return
	}

	p.processContainer(a)

	if a.Len() == 0 && !KeepEmpty(a) {
		p.log.Debug("Dropping at-rule", zap.String("name", a.Name), zap.String("params", a.Params), zap.String("reason", "empty"))
		css.Remove(a)
	}
}

// transpile turns @container and all @container nested in it into @media and
// processes resulting body again.
func (p *Processor) transpile(a *css.AtRule) {
	toMedia := func(c *css.AtRule) {
		params := TranspileContainerQuery(c.Params)
		p.log.Debug("Container query transpiled", zap.String("from", c.Params), zap.String("to", params))
		c.Name, c.Params = "media", params
	}
	css.WalkAtRules(a, "container", func(c *css.AtRule) bool {
		toMedia(c)
		return true
	})
	toMedia(a)
	p.processContainer(a)
}

// relocateContainers moves outermost @container at-rules out of base into a
// new tree after converting them.
func (p *Processor) relocateContainers(base *css.Root) *css.Root {
	out := css.NewRoot()
	css.WalkAtRules(base, "container", func(a *css.AtRule) bool {
		parent := a.Parent()
		p.transpile(a)
		if a.Len() > 0 {
			css.Append(out, a)
		} else {
			css.Remove(a)
		}
		pruneEmpty(parent)
		return false
	})
	return out
}

// pruneEmpty removes c and then its ancestors for as long as they have no
// children left.
func pruneEmpty(c css.Container) {
	for c != nil && c.Len() == 0 {
		next := c.Parent()
		switch n := c.(type) {
		case *css.Rule:
			css.Remove(n)
		case *css.AtRule:
			if KeepEmpty(n) {
				return
			}
			css.Remove(n)
		default:
			return
		}
		c = next
	}
}

var outputFixes = fixes{
	{name: "double-semicolon", re: regexp.MustCompile(`;;`), tmpl: ";"},
	{
		name: "segoe-font-family",
		re:   regexp.MustCompile(regexp.QuoteMeta(`ui-sans-serif"ns-serif"`)),
		tmpl: `Small", "ui-sans-serif"`,
	},
	{
		name: "segoe-font-family-variable",
		re:   regexp.MustCompile(`Variable\s+ui-sans-serif"ns-serif"`),
		tmpl: `Variable Small", "ui-sans-serif"`,
	},
	{name: "url-quote", re: regexp.MustCompile(`url\(";https://`), tmpl: `url("https://`},
}

// FinalizeText repairs generator corruption which may still be present in
// serialized base stylesheet.
func FinalizeText(s string) string {
	return outputFixes.apply(s, nil)
}
