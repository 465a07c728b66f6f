package legacy

import (
	"regexp"
)

// fix is a single repair of a known generator quirk applied to a piece of
// text. Text which does not match is returned untouched.
type fix struct {
	name string
	re   *regexp.Regexp
	cond func(string) bool            // optional precondition
	tmpl string                       // replacement template, "$1" style
	fn   func(groups []string) string // replaces tmpl when set
}

func (f fix) apply(s string) string {
	if f.cond != nil && !f.cond(s) {
		return s
	}
	if f.fn == nil {
		return f.re.ReplaceAllString(s, f.tmpl)
	}
	return f.re.ReplaceAllStringFunc(s, func(m string) string {
		return f.fn(f.re.FindStringSubmatch(m))
	})
}

// fixes is ordered list of repairs, every repair sees output of the previous one.
type fixes []fix

// apply runs all repairs in order. When applied is not nil it is called with
// the name of every repair which changed the text.
func (fs fixes) apply(s string, applied func(name string)) string {
	for _, f := range fs {
		out := f.apply(s)
		if out != s && applied != nil {
			applied(f.name)
		}
		s = out
	}
	return s
}
