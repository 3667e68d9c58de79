package textutil

import "testing"

func TestExpandTabsAlignsToColumns(t *testing.T) {
	if got := ExpandTabs("a\tb", 4); got != "a   b" {
		t.Fatalf("ExpandTabs = %q", got)
	}
	if got := ExpandTabs("no tabs", 4); got != "no tabs" {
		t.Fatalf("ExpandTabs changed input: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"漢字テキスト", 5, "漢字…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.text, tt.width); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestTruncateLeftKeepsTail(t *testing.T) {
	if got := TruncateLeft("home › user › projects", 9); got != "…projects" {
		t.Fatalf("TruncateLeft = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Fatalf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abc…" {
		t.Fatalf("PadRight = %q", got)
	}
}
