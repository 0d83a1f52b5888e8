package assets

import (
	"errors"
	"log/slog"
)

// Resolver combines a custom theme directory with a bundled theme.
// Keys are looked up in the custom directory first and fall back to the
// bundled theme when not found there.
type Resolver struct {
	custom   *FilesystemLoader // nil when no theme directory is configured
	embedded *EmbeddedLoader   // nil when the theme is not bundled
	logger   *slog.Logger
}

// NewResolver builds a resolver for theme, optionally overridden by the
// files in customBasePath. An unknown theme is accepted when a custom
// directory provides it.
func NewResolver(theme, customBasePath string, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Resolver{logger: logger}

	embedded, err := NewEmbeddedLoader(theme)
	switch {
	case err == nil:
		r.embedded = embedded
	case errors.Is(err, ErrThemeNotFound) && customBasePath != "":
		logger.Debug("theme not bundled, using directory only", "theme", theme)
	default:
		return nil, err
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}

	return r, nil
}

// Load reads a key, custom directory first.
func (r *Resolver) Load(name string) ([]byte, error) {
	if r.custom != nil {
		content, err := r.custom.Load(name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrAssetNotFound) || r.embedded == nil {
			return nil, err
		}
	}
	if r.embedded == nil {
		return nil, ErrAssetNotFound
	}
	return r.embedded.Load(name)
}

// LoadOptional reads a key and reports whether it was found. Failures
// are logged as warnings and never returned.
func (r *Resolver) LoadOptional(name string) ([]byte, bool) {
	content, err := r.Load(name)
	if err != nil {
		r.logger.Warn("theme asset unavailable", "asset", name, "error", err)
		return nil, false
	}
	r.logger.Debug("theme asset loaded", "asset", name, "bytes", len(content))
	return content, true
}

// HasCustomLoader reports whether a theme directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

var _ Loader = (*Resolver)(nil)
