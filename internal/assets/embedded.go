package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed themes
var themes embed.FS

// DefaultTheme is the bundled theme used when none is configured.
const DefaultTheme = "etml-2025"

// EmbeddedLoader loads one bundled theme.
type EmbeddedLoader struct {
	theme string
}

// NewEmbeddedLoader returns a loader for the named bundled theme.
// Returns ErrThemeNotFound if no such theme is bundled.
func NewEmbeddedLoader(theme string) (*EmbeddedLoader, error) {
	if err := ValidateThemeName(theme); err != nil {
		return nil, err
	}
	info, err := fs.Stat(themes, "themes/"+theme)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, theme)
	}
	return &EmbeddedLoader{theme: theme}, nil
}

// Load reads a key from the bundled theme.
func (e *EmbeddedLoader) Load(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	content, err := themes.ReadFile("themes/" + e.theme + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in embedded theme %q", ErrAssetNotFound, name, e.theme)
	}
	return content, nil
}

// Themes lists the bundled theme names, sorted.
func Themes() []string {
	entries, err := themes.ReadDir("themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

var _ Loader = (*EmbeddedLoader)(nil)
