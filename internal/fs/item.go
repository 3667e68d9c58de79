package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind tags an Item as a directory or a file.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Item is the immutable identity of a directory or file on disk.
// Two items are equal when their normalized paths match case-insensitively.
type Item struct {
	path string
	name string
	kind Kind
}

// NewItem normalizes path and returns an Item of the given kind.
func NewItem(path string, kind Kind) (Item, error) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return Item{}, err
	}
	return Item{
		path: normalized,
		name: displayName(normalized),
		kind: kind,
	}, nil
}

// MustItem is NewItem for paths known to be valid. It panics on error.
func MustItem(path string, kind Kind) Item {
	item, err := NewItem(path, kind)
	if err != nil {
		panic(err)
	}
	return item
}

// ItemFromPath stats path (following symlinks) to decide its kind.
func ItemFromPath(path string) (Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Item{}, fmt.Errorf("stat %s: %w", path, err)
	}
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}
	return NewItem(path, kind)
}

// NormalizePath makes path absolute, cleans it and strips trailing separators
// except for volume roots.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	abs = filepath.Clean(abs)
	root := filepath.VolumeName(abs) + string(filepath.Separator)
	if abs == root {
		return abs, nil
	}
	return strings.TrimRight(abs, string(filepath.Separator)), nil
}

func displayName(path string) string {
	base := filepath.Base(path)
	if base == string(filepath.Separator) || base == "." {
		return path
	}
	return norm.NFC.String(base)
}

// Path returns the normalized absolute path.
func (i Item) Path() string { return i.path }

// Name returns the display name (NFC normalized base name).
func (i Item) Name() string { return i.name }

func (i Item) Kind() Kind { return i.kind }

func (i Item) IsDir() bool { return i.kind == KindDirectory }

// IsZero reports whether the item was never initialized.
func (i Item) IsZero() bool { return i.path == "" }

// Ext returns the lower-cased extension including the leading dot.
func (i Item) Ext() string {
	if i.IsDir() {
		return ""
	}
	return strings.ToLower(filepath.Ext(i.path))
}

// Key is the case-folded path used for identity and cache lookups.
func (i Item) Key() string {
	return cases.Fold().String(i.path)
}

// Equal compares normalized paths case-insensitively.
func (i Item) Equal(other Item) bool {
	return i.Key() == other.Key()
}

// Parent returns the containing directory, or false for a volume root.
func (i Item) Parent() (Item, bool) {
	parent := filepath.Dir(i.path)
	if parent == i.path {
		return Item{}, false
	}
	item, err := NewItem(parent, KindDirectory)
	if err != nil {
		return Item{}, false
	}
	return item, true
}

func (i Item) String() string { return i.path }

// IsHiddenItem is the default hidden-item predicate.
func IsHiddenItem(item Item) bool {
	return IsHidden(item.Path(), filepath.Base(item.Path()))
}

// Info carries the stat details shown for files without a live preview.
type Info struct {
	Size      int64
	Modified  time.Time
	Mode      os.FileMode
	IsSymlink bool
}

// Stat reads Info for path without following a final symlink for the flag.
func Stat(path string) (Info, error) {
	linfo, err := os.Lstat(path)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Size:      linfo.Size(),
		Modified:  linfo.ModTime(),
		Mode:      linfo.Mode(),
		IsSymlink: linfo.Mode()&os.ModeSymlink != 0,
	}
	if info.IsSymlink {
		if target, err := os.Stat(path); err == nil {
			info.Size = target.Size()
			info.Modified = target.ModTime()
		}
	}
	return info, nil
}
