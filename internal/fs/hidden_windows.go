//go:build windows

package fs

// IsHidden checks the Windows hidden attribute, falling back to the dotfile rule
// when attributes cannot be read.
func IsHidden(fullPath string, name string) bool {
	attrs, err := getFileAttributes(fullPath, name)
	if err != nil {
		return len(name) > 0 && name[0] == '.'
	}
	return attrs&fileAttributeHidden != 0
}
