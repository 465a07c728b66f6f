package debug

import (
	"testing"

	"legacss/css"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 2", 2, "double indent", nil, "    double indent\n"},
		{"with formatting", 1, "value: %d", []any{42}, "  value: 42\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Field(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		value string
		want  string
	}{
		{"empty value", 0, "", "field: \n"},
		{"plain", 1, "red", "  field: \"red\"\n"},
		{"quotes", 0, `url("x")`, "field: \"url(\\\"x\\\")\"\n"},
		{"newline", 0, "a\nb", "field: \"a\\nb\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Field(tt.depth, "field", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("Field() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpTree(t *testing.T) {
	root := css.NewRoot()
	css.Append(root,
		&css.AtRule{Name: "import", Params: `url("x.css")`},
		css.NewAtRule("media", "(min-width: 1px)",
			css.NewRule(".a",
				css.NewDecl("color", "red", true),
				&css.Declaration{Prop: "margin", Absent: true},
			),
		),
		css.NewRule(".b", css.NewDecl("padding", "0", false)),
	)

	want := `root nodes=3
  at-rule @import statement
    params: "url(\"x.css\")"
  at-rule @media nodes=1
    params: "(min-width: 1px)"
    rule nodes=2
      selector: ".a"
      decl color important
        value: "red"
      decl margin absent
  rule nodes=1
    selector: ".b"
    decl padding
      value: "0"
`
	if got := DumpTree(root); got != want {
		t.Errorf("DumpTree():\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpTree_Empty(t *testing.T) {
	if got := DumpTree(css.NewRoot()); got != "root nodes=0\n" {
		t.Errorf("DumpTree() = %q, want %q", got, "root nodes=0\n")
	}
}
