// Package assets loads theme files (CSS, templates, logos) for the PDF
// export.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - one theme from the go:embed filesystem
//	    ├── FilesystemLoader  - a theme directory on disk
//	    └── Resolver          - custom first, embedded fallback
//
// A theme is addressed by slash-separated keys relative to its root:
//
//	{themeRoot}/
//	├── css/
//	│   ├── header.css
//	│   ├── footer.css
//	│   ├── print-exo.css
//	│   ├── print-cards.css
//	│   └── exo-index.css
//	├── images/
//	│   ├── etml_logo_complet.png
//	│   └── section_info_logo.png
//	└── templates/
//	    ├── header.html
//	    ├── footer.html
//	    └── exo-index.html
//
// Resolver.LoadOptional never returns an error: a missing or unreadable
// asset is reported as absent and the caller picks its degraded value.
//
// # Security
//
// Keys are validated against traversal, and FilesystemLoader resolves
// symlinks and verifies paths stay within its base directory.
package assets
