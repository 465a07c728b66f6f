package legacy

import (
	"testing"

	"legacss/css"
)

func TestTranspileContainerQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(width >= 400px)", "(min-width: 400px)"},
		{"summary(width <= 20rem)", "(max-width: 20rem)"},
		{"summary (width > = 20rem)", "(min-width: 20rem)"},
		{"not (width >= 400px)", "not all and (min-width: 400px)"},
		{"card not (width<=30em)", "not all and (max-width: 30em)"},
		{"(width > 400px)", "(width>400px)"},
		{"(height >= 10px)", "(height>=10px)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TranspileContainerQuery(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeSupports(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(display:grid)and(not (display:inline-grid))", "(display:grid) and ( not (display:inline-grid))"},
		{"(a:b)  or   (c:d)", "(a:b) or (c:d)"},
		{"not(display:grid)", "not (display:grid)"},
		{"selector(:not(.a))", "selector(:not(.a))"},
		{"(color:color(display-p3 0 0 0))", "(color:color(display-p3 0 0 0))"},
	}
	for _, tt := range tests {
		if got := NormalizeSupports(tt.in); got != tt.want {
			t.Errorf("NormalizeSupports(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestUnsupported(t *testing.T) {
	tests := []struct {
		at   *css.AtRule
		want bool
	}{
		{css.NewAtRule("starting-style", ""), true},
		{css.NewAtRule("font-palette-values", "--x"), true},
		{css.NewAtRule("media", "print"), true},
		{css.NewAtRule("media", "not print and (min-width: 1px)"), true},
		{css.NewAtRule("media", "screen"), false},
		{css.NewAtRule("supports", "(display:grid)"), false},
	}
	for _, tt := range tests {
		if got := Unsupported(tt.at); got != tt.want {
			t.Errorf("Unsupported(@%s %s): expected %v, got %v", tt.at.Name, tt.at.Params, tt.want, got)
		}
	}
}
