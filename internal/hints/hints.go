// Package hints builds the "hint:" lines appended to CLI error messages.
package hints

import (
	"os"
	"strings"

	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the rod environment variables relevant to
// the current host.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout suggests raising the page load timeout.
func ForTimeout() string {
	return format("pages with heavy scripts may need --timeout 60s")
}

// ForSourceRoot explains where the source tree is looked up.
func ForSourceRoot() string {
	return format("run from the course repository root or set SPHINX_SRC_DIR / --src")
}

// ForRenderedRoot reminds the user to build the HTML site first.
func ForRenderedRoot() string {
	return format("build the site first (sphinx-build -b html) or set HTML_OUT_DIR / --html")
}

// ForConfigNotFound suggests --config and the first user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/exo2pdf.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/exo2pdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForThemeNotFound lists the bundled themes.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("bundled themes: " + strings.Join(available, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
