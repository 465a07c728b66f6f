package legacy

import (
	"regexp"
	"strings"

	"legacss/css"
)

var supportsKeyword = regexp.MustCompile(`(?i)\s*\b(and|or|not)\s*\(`)

// NormalizeSupports makes sure that and/or/not keywords in @supports condition
// are separated by exactly one space from surrounding text and parenthesis:
// "(a)and(not(b))" -> "(a) and ( not (b))". Pseudo-classes like ":not(" are
// left alone.
func NormalizeSupports(params string) string {
	var sb strings.Builder
	last := 0
	for _, m := range supportsKeyword.FindAllStringSubmatchIndex(params, -1) {
		if kw := m[2]; kw > 0 && (params[kw-1] == ':' || params[kw-1] == '-') {
			continue
		}
		sb.WriteString(params[last:m[0]])
		sb.WriteString(" ")
		sb.WriteString(params[m[2]:m[3]])
		sb.WriteString(" (")
		last = m[1]
	}
	sb.WriteString(params[last:])
	return strings.TrimSpace(sb.String())
}

// Unsupported reports whether at-rule has no meaning for the legacy target and
// must be removed together with its body.
func Unsupported(a *css.AtRule) bool {
	switch strings.ToLower(a.Name) {
	case "starting-style", "font-palette-values":
		return true
	case "media":
		return strings.Contains(strings.ToLower(a.Params), "print")
	}
	return false
}

// KeepEmpty reports whether at-rule is retained even when it has no children.
func KeepEmpty(a *css.AtRule) bool {
	return !a.HasBody || strings.EqualFold(a.Name, "font-face")
}

var (
	cmpSpacing   = regexp.MustCompile(`\s*([<>])\s*=\s*`)
	gtSpacing    = regexp.MustCompile(`\s*>\s*`)
	ltSpacing    = regexp.MustCompile(`\s*<\s*`)
	notKeyword   = regexp.MustCompile(`(?i)\bnot\b`)
	minWidthCond = regexp.MustCompile(`(?i)\(width\s*>=\s*([^)]+)\)`)
	maxWidthCond = regexp.MustCompile(`(?i)\(width\s*<=\s*([^)]+)\)`)
	leadingNot   = regexp.MustCompile(`(?i)^not\s+\(`)
)

// TranspileContainerQuery rewrites @container condition into @media one:
//
//	summary (width >= 20rem) -> (min-width: 20rem)
//	not (width <= 400px)     -> not all and (max-width: 400px)
func TranspileContainerQuery(params string) string {
	p := cmpSpacing.ReplaceAllString(params, "${1}=")
	p = gtSpacing.ReplaceAllString(p, ">")
	p = ltSpacing.ReplaceAllString(p, "<")

	// container name is whatever precedes the first parenthesis
	if i := strings.IndexByte(p, '('); i >= 0 {
		name := p[:i]
		p = p[i:]
		if notKeyword.MatchString(name) {
			p = "not " + p
		}
	}
	p = strings.TrimSpace(p)

	p = minWidthCond.ReplaceAllString(p, "(min-width: ${1})")
	p = maxWidthCond.ReplaceAllString(p, "(max-width: ${1})")

	if leadingNot.MatchString(p) {
		p = "not all and (" + p[leadingNot.FindStringIndex(p)[1]:]
	}
	return p
}
