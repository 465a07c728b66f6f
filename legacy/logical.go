package legacy

import (
	"strings"

	"legacss/css"
)

// Direction is an argument of :dir() pseudo-class.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// logicalProps maps physical properties to their logical equivalents for the
// given text direction. Corner radii are named block side first, so in ltr
// top-right is start-end and bottom-left is end-start.
var logicalProps = map[Direction]map[string]string{
	LTR: {
		"left":                       "inset-inline-start",
		"right":                      "inset-inline-end",
		"margin-left":                "margin-inline-start",
		"margin-right":               "margin-inline-end",
		"padding-left":               "padding-inline-start",
		"padding-right":              "padding-inline-end",
		"border-left":                "border-inline-start",
		"border-right":               "border-inline-end",
		"border-top-left-radius":     "border-start-start-radius",
		"border-top-right-radius":    "border-start-end-radius",
		"border-bottom-left-radius":  "border-end-start-radius",
		"border-bottom-right-radius": "border-end-end-radius",
	},
	RTL: {
		"left":                       "inset-inline-end",
		"right":                      "inset-inline-start",
		"margin-left":                "margin-inline-end",
		"margin-right":               "margin-inline-start",
		"padding-left":               "padding-inline-end",
		"padding-right":              "padding-inline-start",
		"border-left":                "border-inline-end",
		"border-right":               "border-inline-start",
		"border-top-left-radius":     "border-start-end-radius",
		"border-top-right-radius":    "border-start-start-radius",
		"border-bottom-left-radius":  "border-end-end-radius",
		"border-bottom-right-radius": "border-end-start-radius",
	},
}

// LogicalProperty returns logical name of physical property prop for direction
// dir. Properties without logical equivalent are returned unchanged.
func LogicalProperty(prop string, dir Direction) string {
	table, ok := logicalProps[dir]
	if !ok {
		return prop
	}
	if p, ok := table[prop]; ok {
		return p
	}
	// border-left-color, border-right-width, ...
	for _, side := range [...]string{"left", "right"} {
		prefix := "border-" + side + "-"
		if rest, ok := strings.CutPrefix(prop, prefix); ok && isPropTail(rest) {
			return table["border-"+side] + "-" + rest
		}
	}
	return prop
}

func isPropTail(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

// ConvertLogical renames physical properties of all declarations inside rule
// into logical ones for the given direction.
func ConvertLogical(rule *css.Rule, dir Direction) {
	css.Walk(rule, func(n css.Node) bool {
		if d, ok := n.(*css.Declaration); ok {
			d.Prop = LogicalProperty(d.Prop, dir)
		}
		return true
	})
}
