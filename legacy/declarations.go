package legacy

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"legacss/css"
)

// valueFix is a repair of a declaration value. Repairs with force set make
// declaration important when they change the value.
type valueFix struct {
	fix
	prop  string // when not empty repair applies only to this property
	force bool
}

// valueFixes are applied to every declaration value in order.
var valueFixes = []valueFix{
	{
		// 100dvh -> 100vh; legacy engines have no dynamic viewport units, the
		// converted declaration has to win over the remaining modern ones
		fix: fix{
			name: "dynamic-viewport-units",
			re:   regexp.MustCompile(`(?i)([+-]?(?:\d+\.?\d*|\.\d+))\s*([dsl])v([wh])\b`),
			tmpl: "${1}v${3}",
		},
		force: true,
	},
	{
		// 1e + 10 -> 1e+10
		fix: fix{
			name: "scientific-notation-spacing",
			re:   regexp.MustCompile(`(?i)(\d(?:\d*\.?\d*)e)\s*([+-])\s*(\d+)`),
			tmpl: "${1}${2}${3}",
		},
	},
	{
		fix: fix{
			name: "segoe-font-family",
			re:   regexp.MustCompile(`"?Segoe UI Variable\s+ui-sans-serif"ns-serif"?`),
			cond: func(s string) bool { return strings.Contains(s, "Segoe UI Variable") },
			tmpl: `"Segoe UI Variable Small", "ui-sans-serif"`,
		},
		force: true,
	},
	{
		fix: fix{
			name: "url-quote",
			re:   regexp.MustCompile(`url\(";https://`),
			tmpl: `url("https://`,
		},
		force: true,
	},
	{
		fix: fix{
			name: "mask-composite",
			re:   regexp.MustCompile(`^source-in$`),
			tmpl: "intersect",
		},
		prop:  "mask-composite",
		force: true,
	},
}

// SanitizeValue repairs single declaration value. It reports whether
// declaration must be marked important as a result.
func SanitizeValue(prop, value string) (string, bool) {
	var force bool
	for _, f := range valueFixes {
		if f.prop != "" && f.prop != prop {
			continue
		}
		out := f.apply(value)
		if out != value && f.force {
			force = true
		}
		value = out
	}
	return trimSemicolons(value), force
}

// trimSemicolons drops stray semicolons left by upstream mis-parsing.
func trimSemicolons(v string) string {
	v = strings.TrimSpace(v)
	if rest, ok := strings.CutPrefix(v, ";"); ok {
		v = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(v, ";"); ok {
		v = strings.TrimSpace(rest)
	}
	return v
}

// declKey identifies declarations which override each other inside a rule.
func declKey(d *css.Declaration) string {
	if d.Important {
		return d.Prop + "!important"
	}
	return d.Prop
}

// SanitizeDeclarations fixes values of declarations which are direct children
// of the rule, removes dead ones and keeps only the last declaration for every
// (property, importance) pair. Returns number of removed declarations.
func SanitizeDeclarations(rule *css.Rule, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	var removed int
	drop := func(d *css.Declaration, reason string) {
		log.Debug("Dropping declaration", zap.String("selector", rule.Selector), zap.String("decl", d.Text()), zap.String("reason", reason))
		css.Remove(d)
		removed++
	}

	for _, d := range rule.Decls() {
		switch {
		case d.Absent:
			drop(d, "no value")
			continue
		case strings.HasPrefix(d.Prop, "--") && strings.TrimSpace(d.Value) == "":
			drop(d, "empty custom property")
			continue
		}
		v, force := SanitizeValue(d.Prop, d.Value)
		if v != d.Value {
			log.Debug("Repaired value", zap.String("prop", d.Prop), zap.String("from", d.Value), zap.String("to", v))
		}
		d.Value = v
		if force {
			d.Important = true
		}
	}

	seen := make(map[string]*css.Declaration)
	for _, d := range rule.Decls() {
		if strings.TrimSpace(d.Value) == "" {
			drop(d, "empty value")
			continue
		}
		key := declKey(d)
		if prev, ok := seen[key]; ok {
			drop(prev, "overridden")
		}
		seen[key] = d
	}
	return removed
}
