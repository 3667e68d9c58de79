package pane

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/kk-code-lab/millr/internal/fs"
)

var propertyTree = []string{
	"a/aa/aaa.txt", "a/aa/aab.md", "a/ab.txt", "a/ac/",
	"b/ba/", "b/bb.txt",
	"c.txt", "d.go", "e/",
}

// checkShape verifies that every pane past the root is bound to the sole
// selection of the pane before it, and that only the last pane may be a
// preview.
func checkShape(t *rapid.T, s *Stack) {
	for i := 1; i < s.Len(); i++ {
		prev := s.Pane(i - 1)
		if !prev.IsListing() {
			t.Fatalf("pane %d is a preview but is not last", i-1)
		}
		sel := prev.SelectedItems()
		if len(sel) != 1 {
			t.Fatalf("pane %d has %d selected items but pane %d exists", i-1, len(sel), i)
		}
		if !sel[0].Equal(s.Pane(i).Item()) {
			t.Fatalf("pane %d bound to %s, want %s", i, s.Pane(i).Item(), sel[0])
		}
		if s.Pane(i).Index() != i {
			t.Fatalf("pane %d has index %d", i, s.Pane(i).Index())
		}
	}
}

func TestStackProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStack(dir(), Options{Lister: newTree(propertyTree...), Hidden: fs.ShowAll}, nil)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			paneIndex := rapid.IntRange(0, s.Len()-1).Draw(t, "pane")
			p := s.Pane(paneIndex)
			if !p.IsListing() {
				continue
			}

			var picks []int
			if p.Len() > 0 {
				picks = rapid.SliceOfNDistinct(rapid.IntRange(0, p.Len()-1), 0, p.Len(), rapid.ID[int]).Draw(t, "picks")
			}
			p.Select(picks...)

			// Collapse law: 0 or >1 selected leaves exactly paneIndex+1 panes.
			if len(picks) != 1 && s.Len() != paneIndex+1 {
				t.Fatalf("selected %d in pane %d, stack has %d panes", len(picks), paneIndex, s.Len())
			}
			if len(picks) == 1 && s.Len() != paneIndex+2 {
				t.Fatalf("single selection in pane %d, stack has %d panes", paneIndex, s.Len())
			}
			checkShape(t, s)
		}
	})
}
