package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Lister enumerates the immediate children of a directory.
type Lister interface {
	ListChildren(path string) ([]Item, error)
}

// HiddenFilter reports whether an item should be left out of listings.
type HiddenFilter func(Item) bool

// ShowAll is a HiddenFilter that hides nothing.
func ShowAll(Item) bool { return false }

// OSLister reads directories from the local file system.
type OSLister struct{}

// ListChildren returns directories first, then files, each sorted by name.
// Symlinks are classified by their target.
func (OSLister) ListChildren(path string) ([]Item, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", path, err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		rawName := e.Name()
		fullPath := filepath.Join(path, rawName)

		if ShouldHideFromListing(fullPath, rawName) {
			continue
		}

		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if target, err := os.Stat(fullPath); err == nil {
				isDir = target.IsDir()
			}
		}

		kind := KindFile
		if isDir {
			kind = KindDirectory
		}
		item, err := NewItem(fullPath, kind)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	SortItems(items)
	return items, nil
}

// SortItems orders directories before files and then by display name.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}
		return items[i].Name() < items[j].Name()
	})
}
