package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrAssetNotFound indicates the requested key does not exist in the theme.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrThemeNotFound indicates no embedded theme has the requested name.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrInvalidAssetName indicates the key is empty, absolute or escapes
	// the theme root.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured theme directory is not a
	// readable directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
