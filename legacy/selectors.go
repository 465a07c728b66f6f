package legacy

import (
	"regexp"
	"strings"
)

// SplitSelectors splits selector list on top level commas. Commas inside
// brackets, parentheses and quoted strings do not split. Parts are trimmed,
// empty trailing part is dropped.
func SplitSelectors(selector string) []string {
	var (
		result             []string
		current            strings.Builder
		square, paren      int
		inSingle, inDouble bool
	)
	for i := 0; i < len(selector); i++ {
		ch := selector[i]
		switch {
		case ch == '\\' && i+1 < len(selector):
			// escaped character never changes nesting
			current.WriteByte(ch)
			i++
			current.WriteByte(selector[i])
			continue
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case ch == '[':
			square++
		case ch == ']':
			square = max(0, square-1)
		case ch == '(':
			paren++
		case ch == ')':
			paren = max(0, paren-1)
		case ch == ',' && square == 0 && paren == 0:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteByte(ch)
	}
	if last := strings.TrimSpace(current.String()); last != "" {
		result = append(result, last)
	}
	return result
}

// JoinSelectors joins non-empty selectors into a list.
func JoinSelectors(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

var backdropPattern = regexp.MustCompile(`(?i)::backdrop\b`)

// DropBackdrop removes every branch of selector list which targets ::backdrop
// pseudo-element. Empty string is returned when nothing is left.
func DropBackdrop(selector string) string {
	parts := SplitSelectors(selector)
	kept := parts[:0]
	for _, p := range parts {
		if !backdropPattern.MatchString(p) {
			kept = append(kept, p)
		}
	}
	return JoinSelectors(kept)
}

var dirPattern = regexp.MustCompile(`:dir\((ltr|rtl)\)`)

// Directions returns distinct :dir() arguments in order of appearance.
func Directions(selector string) []Direction {
	var dirs []Direction
	for _, m := range dirPattern.FindAllStringSubmatch(selector, -1) {
		d := Direction(m[1])
		if !containsDir(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func containsDir(dirs []Direction, d Direction) bool {
	for _, x := range dirs {
		if x == d {
			return true
		}
	}
	return false
}

// dirCleanup removes :dir() pseudo-classes and repairs what is left of the
// functional pseudo-classes which contained them.
var dirCleanup = fixes{
	{name: "strip-dir", re: dirPattern, tmpl: ""},
	{name: "leading-comma", re: regexp.MustCompile(`(:where|:is|:not)\(\s*,\s*`), tmpl: "${1}("},
	{name: "double-comma", re: regexp.MustCompile(`,\s*,`), tmpl: ","},
	{name: "trailing-comma", re: regexp.MustCompile(`,\s*\)`), tmpl: ")"},
	{name: "empty-group", re: regexp.MustCompile(`:(?:where|is|not)\(\s*\)`), tmpl: ""},
}

// StripDir removes :dir() from selector list and drops branches which became
// empty.
func StripDir(selector string) string {
	return JoinSelectors(SplitSelectors(dirCleanup.apply(selector, nil)))
}

// selectorFixes repair malformed selectors emitted by utility class generator.
var selectorFixes = fixes{
	{
		// [data-silk ~ =a1] -> [data-silk~=a1]
		name: "attribute-includes-spacing",
		re:   regexp.MustCompile(`\[([^\]]*?)\s*~\s*=([^\]]*)\]`),
		tmpl: "[${1}~=${2}]",
	},
	{
		// .\ !mt-0 -> .\!mt-0
		name: "escaped-important-spacing",
		re:   regexp.MustCompile(`\\\s+!`),
		tmpl: `\!`,
	},
	{
		name: "escaped-comma-spacing",
		re:   regexp.MustCompile(`\\,\s+`),
		tmpl: `\,`,
	},
	{
		// .mt-\[calc(100% * -1)\] -> .mt-\[calc(100%*-1)\]
		name: "bracket-operator-spacing",
		re:   regexp.MustCompile(`\\\[[^\]]*?\\\]`),
		fn: func(g []string) string {
			seg := bracketStar.ReplaceAllString(g[0], "*")
			return bracketPlus.ReplaceAllString(seg, "+")
		},
	},
	{
		// content-\[\M\\] -> content-\["M"\]
		name: "content-quotes",
		re:   regexp.MustCompile(`content-\\\[\\([^\\\]]{1,20}?)\\\\?\\\]`),
		fn: func(g []string) string {
			inner := strings.TrimSpace(g[1])
			if strings.HasPrefix(inner, `"`) || strings.HasPrefix(inner, `'`) {
				return g[0]
			}
			return `content-\["` + inner + `"\]`
		},
	},
	{
		// content-\[\*\] -> content-\["*"\]
		name: "content-asterisk",
		re:   regexp.MustCompile(`content-\\\[\\\*\\\]`),
		tmpl: `content-\["*"\]`,
	},
	{
		// :is(.\ * \:not-last\:after\:X > *):not(:last-child):after -> .not-last\:after\:X>*:not(:last-child):after
		name: "not-last-after",
		re:   regexp.MustCompile(`:is\(\.\\?\s*\*\s*\\:not-last\\:after\\:([^>]+?)>\s*\*\):not\(:last-child\):after`),
		fn: func(g []string) string {
			return `.not-last\:after\:` + strings.TrimSpace(g[1]) + `>*:not(:last-child):after`
		},
	},
}

var (
	bracketStar = regexp.MustCompile(`\s*\*\s*`)
	bracketPlus = regexp.MustCompile(`\s*\+\s*`)
)

// RepairSelector applies all text repairs and ::backdrop filtering to the
// selector list. :dir() handling is done separately since it needs access to
// declarations. Empty result means rule must be removed.
func RepairSelector(selector string) string {
	return DropBackdrop(selectorFixes.apply(selector, nil))
}
