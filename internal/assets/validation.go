package assets

import (
	"fmt"
	"path"
	"strings"
)

// ValidateAssetName checks that a key is a clean, relative, slash-separated
// path that stays inside the theme root.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "\\\x00") || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	if path.Clean(name) != name {
		return fmt.Errorf("%w: %q is not a clean path", ErrInvalidAssetName, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." || seg == "." {
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}

// ValidateThemeName checks that a theme name is a single path segment.
func ValidateThemeName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid theme name %q", ErrInvalidAssetName, name)
	}
	return nil
}
