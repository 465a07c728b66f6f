package legacy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitSelectors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{".a, .b", []string{".a", ".b"}},
		{".a:is(.b, .c), .d", []string{".a:is(.b, .c)", ".d"}},
		{`[title="x, y"], .d`, []string{`[title="x, y"]`, ".d"}},
		{`[data-a='1,2']`, []string{`[data-a='1,2']`}},
		{`.a\,b, .c`, []string{`.a\,b`, ".c"}},
		{".a,", []string{".a"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitSelectors(tt.in)); diff != "" {
				t.Errorf("unexpected split (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDropBackdrop(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{".a::backdrop, .b", ".b"},
		{".a, .b::BACKDROP", ".a"},
		{".a::backdrop", ""},
		{"dialog::backdrop, .x:is(.y, .z)", ".x:is(.y, .z)"},
		{".a::backdrop-ish", ".a::backdrop-ish"},
	}
	for _, tt := range tests {
		if got := DropBackdrop(tt.in); got != tt.want {
			t.Errorf("DropBackdrop(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDirections(t *testing.T) {
	got := Directions(".a:dir(rtl) .b, .c:dir(ltr), .d:dir(rtl)")
	if diff := cmp.Diff([]Direction{RTL, LTR}, got); diff != "" {
		t.Errorf("unexpected directions (-want +got):\n%s", diff)
	}
	if got := Directions(".a"); got != nil {
		t.Errorf("expected no directions, got %v", got)
	}
}

func TestStripDir(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{".x:dir(rtl)", ".x"},
		{".x:where(:dir(rtl), .y)", ".x:where(.y)"},
		{".x:where(.y, :dir(ltr))", ".x:where(.y)"},
		{".x:where(:dir(rtl), :dir(rtl) *)", ".x:where(*)"},
		{".x:where(:dir(rtl)) .y", ".x .y"},
		{":dir(rtl), .z", ".z"},
	}
	for _, tt := range tests {
		if got := StripDir(tt.in); got != tt.want {
			t.Errorf("StripDir(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRepairSelector(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"attribute spacing", "[data-silk ~ =a1]", "[data-silk~=a1]"},
		{"attribute untouched", "[data-silk~=a1]", "[data-silk~=a1]"},
		{"escaped important", `.\ !mt-0`, `.\!mt-0`},
		{"escaped comma", `.grid-cols-\[1fr\,  auto\]`, `.grid-cols-\[1fr\,auto\]`},
		{"bracket operators", `.mt-\[calc(100% * -1 + 2px)\]`, `.mt-\[calc(100%*-1+2px)\]`},
		{"content quotes", `.after\:content-\[\M\\]:after`, `.after\:content-\["M"\]:after`},
		{"content asterisk", `.before\:content-\[\*\]:before`, `.before\:content-\["*"\]:before`},
		{"content already quoted", `.content-\[\"x\"\]`, `.content-\[\"x\"\]`},
		{
			"not last after",
			`:is(.\ * \:not-last\:after\:content-none > *):not(:last-child):after`,
			`.not-last\:after\:content-none>*:not(:last-child):after`,
		},
		{"backdrop", ".a::backdrop, .b", ".b"},
		{"only backdrop", "::backdrop", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairSelector(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if again := RepairSelector(RepairSelector(tt.in)); again != tt.want {
				t.Errorf("expected repair to be idempotent, got %q", again)
			}
		})
	}
}
