package legacy

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"legacss/css"
)

// gradientSupports is condition guarding gradients which use interpolation
// color space.
const gradientSupports = "(background-image:linear-gradient(in lab,red,red))"

var (
	neutralOklab  = regexp.MustCompile(`oklab\(0%?\s+none\s+none\s*/\s*(0?\.\d+|1(?:\.0+)?|0)\)`)
	okColor       = regexp.MustCompile(`(?i)\b(oklab|oklch)\(([^()]*)\)`)
	identicalMix  = regexp.MustCompile(`color-mix\(in\s+(?:oklab|lab)\s*,\s*([a-zA-Z#0-9]+)(?:\s+([0-9]{1,3})%?)?\s*,\s*([a-zA-Z#0-9]+)(?:\s+([0-9]{1,3})%?)?\s*\)`)
	colorCond     = regexp.MustCompile(`\(\s*color:\s*([a-zA-Z#0-9]+)\s*\)`)
	inOklab       = regexp.MustCompile(`\bin\s+oklab\b`)
	inColorspace  = regexp.MustCompile(`(?i)\s+in\s+(oklab|lab)\b`)
	gradientCall  = regexp.MustCompile(`gradient\(`)
	gradientGuard = regexp.MustCompile(`(?i)linear-gradient\(in\s+lab`)
)

const gradientPosition = "--tw-gradient-position"

// colorValueFixes run over every declaration value when color fallbacks are
// enabled.
var colorValueFixes = fixes{
	{
		// oklab(0 none none/.5) -> oklab(0 0 0 / .5)
		name: "neutral-oklab",
		re:   neutralOklab,
		tmpl: "oklab(0 0 0 / ${1})",
	},
	{
		name: "oklab-to-rgb",
		re:   okColor,
		fn: func(g []string) string {
			if rgb, ok := OkToRGB(g[1], g[2]); ok {
				return rgb
			}
			return g[0]
		},
	},
}

// supportsFixes simplify @supports conditions which test trivial color-mix().
var supportsFixes = fixes{
	{
		name: "identical-color-mix",
		re:   identicalMix,
		fn: func(g []string) string {
			if strings.EqualFold(g[1], g[3]) {
				return g[1]
			}
			return g[0]
		},
	},
	{
		name: "color-condition-spacing",
		re:   colorCond,
		tmpl: "(color: ${1})",
	},
}

// OkToRGB converts arguments of oklab() or oklch() function into legacy sRGB
// notation. It reports false when arguments cannot be interpreted statically
// (custom properties, calc() and such).
func OkToRGB(fn, args string) (string, bool) {
	comps, alpha, ok := splitColorArgs(args)
	if !ok || len(comps) != 3 {
		return "", false
	}

	l, ok := parseComponent(comps[0], 1)
	if !ok {
		return "", false
	}
	var c colorful.Color
	switch strings.ToLower(fn) {
	case "oklab":
		a, okA := parseComponent(comps[1], 0.4)
		b, okB := parseComponent(comps[2], 0.4)
		if !okA || !okB {
			return "", false
		}
		c = colorful.OkLab(l, a, b)
	case "oklch":
		ch, okC := parseComponent(comps[1], 0.4)
		h, okH := parseHue(comps[2])
		if !okC || !okH {
			return "", false
		}
		c = colorful.OkLch(l, ch, h)
	default:
		return "", false
	}

	r, g, b := c.Clamped().RGB255()
	if alpha == "" {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b), true
	}
	a, ok := parseComponent(alpha, 1)
	if !ok {
		return "", false
	}
	a = math.Max(0, math.Min(1, a))
	if a == 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b), true
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64)), true
}

func splitColorArgs(args string) ([]string, string, bool) {
	if strings.ContainsAny(args, "()") {
		return nil, "", false
	}
	main, alpha, _ := strings.Cut(args, "/")
	alpha = strings.TrimSpace(alpha)
	if strings.Contains(alpha, "/") {
		return nil, "", false
	}
	comps := strings.FieldsFunc(main, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	return comps, alpha, true
}

// parseComponent parses number, percentage (relative to hundred) or "none".
func parseComponent(s string, hundred float64) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return 0, true
	}
	if num, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return v / 100 * hundred, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseHue(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	mul := 1.0
	switch {
	case s == "none":
		return 0, true
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "grad"):
		s, mul = strings.TrimSuffix(s, "grad"), 0.9
	case strings.HasSuffix(s, "rad"):
		s, mul = strings.TrimSuffix(s, "rad"), 180/math.Pi
	case strings.HasSuffix(s, "turn"):
		s, mul = strings.TrimSuffix(s, "turn"), 360
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mul, true
}

// ColorFallbacks replaces modern color syntax which legacy engines do not
// understand with static equivalents.
type ColorFallbacks struct {
	log *zap.Logger
}

// NewColorFallbacks returns color stage logging to log.
func NewColorFallbacks(log *zap.Logger) *ColorFallbacks {
	if log == nil {
		log = zap.NewNop()
	}
	return &ColorFallbacks{log: log.Named("colors")}
}

// Apply runs all color rewrites over the tree.
func (cf *ColorFallbacks) Apply(root css.Container) {
	applied := func(name string) {
		cf.log.Debug("Color fix applied", zap.String("fix", name))
	}

	css.WalkAtRules(root, "supports", func(a *css.AtRule) bool {
		a.Params = supportsFixes.apply(a.Params, applied)
		return true
	})

	cf.gradients(root)

	css.Walk(root, func(n css.Node) bool {
		if d, ok := n.(*css.Declaration); ok && !d.Absent {
			d.Value = colorValueFixes.apply(d.Value, applied)
		}
		return true
	})
}

func usesOklabGradient(r *css.Rule) bool {
	for _, d := range r.Decls() {
		if d.Prop == gradientPosition && inOklab.MatchString(d.Value) {
			return true
		}
	}
	return false
}

// stripColorspace removes interpolation color space from gradients of the rule.
func stripColorspace(r *css.Rule) {
	for _, d := range r.Decls() {
		if d.Prop == gradientPosition || gradientCall.MatchString(d.Value) {
			d.Value = strings.TrimSpace(inColorspace.ReplaceAllString(d.Value, ""))
		}
	}
}

func inSupports(n css.Node) bool {
	a, ok := n.Parent().(*css.AtRule)
	return ok && strings.EqualFold(a.Name, "supports")
}

// hasFallback reports whether one of preceding siblings of n is already the
// same rule as fb.
func hasFallback(n css.Node, fb *css.Rule) bool {
	want := fb.String()
	for p := css.Prev(n); p != nil; p = css.Prev(p) {
		if _, ok := p.(*css.Rule); !ok {
			return false
		}
		if p.String() == want {
			return true
		}
	}
	return false
}

// gradients makes sure every gradient interpolated in oklab has a fallback
// without color space followed by the original guarded with @supports.
func (cf *ColorFallbacks) gradients(root css.Container) {
	var candidates []*css.Rule
	created := make(map[*css.AtRule]bool)

	css.WalkRules(root, func(r *css.Rule) {
		if !inSupports(r) && usesOklabGradient(r) {
			candidates = append(candidates, r)
		}
	})
	for _, r := range candidates {
		if prev, ok := css.Prev(r).(*css.Rule); ok && prev.Selector == r.Selector && !usesOklabGradient(prev) {
			continue
		}
		guarded := css.NewAtRule("supports", gradientSupports, r.Clone())
		stripColorspace(r)
		css.InsertAfter(r, guarded)
		created[guarded] = true
		cf.log.Debug("Gradient fallback added", zap.String("selector", r.Selector))
	}

	css.WalkAtRules(root, "supports", func(a *css.AtRule) bool {
		if created[a] || !gradientGuard.MatchString(a.Params) {
			return true
		}
		var fallbacks []css.Node
		css.WalkRules(a, func(r *css.Rule) {
			if !usesOklabGradient(r) {
				return
			}
			fb := r.Clone().(*css.Rule)
			stripColorspace(fb)
			if !hasFallback(a, fb) {
				fallbacks = append(fallbacks, fb)
			}
		})
		css.InsertBefore(a, fallbacks...)
		return true
	})
}
