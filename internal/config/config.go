// Package config loads the exo2pdf YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
	"github.com/ETML-INF/tardis-pipelines/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxModuleLength = 100  // "Module ICT 320"
	MaxURLLength    = 2048 // Browser limit
	MaxDateLength   = 50   // "auto:DD.MM.YYYY" or a literal date
	MaxThemeLength  = 64
	MaxClassLength  = 100
	MaxLocaleLength = 35 // BCP 47
)

// Defaults.
const (
	DefaultSourceDir   = "b-UnitesEnseignement/Support"
	DefaultHTMLSubdir  = "_build/html"
	DefaultPDFSubdir   = "_build/exo-pdf"
	DefaultModule      = "Module ICT"
	DefaultTheme       = "etml-2025"
	DefaultThemesDir   = "tardis-pipelines/themes"
	DefaultDate        = "auto:swiss"
	DefaultTimeout     = "30s"
	DefaultLocale      = "fr-CH"
	DefaultMarginMM    = 14.0
	DefaultCardClass   = "tardis-card"
	DefaultCardsMargin = 5.0
	MaxMarginMM        = 50.0
)

var classNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Config holds the export configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Document DocumentConfig `yaml:"document"`
	Theme    ThemeConfig    `yaml:"theme"`
	Browser  BrowserConfig  `yaml:"browser"`
	Page     PageConfig     `yaml:"page"`
	Cards    CardsConfig    `yaml:"cards"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SourceConfig locates the course sources and their rendered site.
type SourceConfig struct {
	Dir     string `yaml:"dir"`     // Markdown sources
	HTMLDir string `yaml:"htmlDir"` // Rendered site (empty = <dir>/_build/html)
}

// OutputConfig defines where PDFs are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Empty = <source.dir>/_build/exo-pdf
}

// DocumentConfig holds the header/footer contents.
type DocumentConfig struct {
	Module string `yaml:"module"`
	URL    string `yaml:"url"`  // Printed in the footer
	Date   string `yaml:"date"` // "auto", "auto:FORMAT", preset or literal
}

// ThemeConfig selects the asset bundle.
type ThemeConfig struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"` // Theme directory; empty = tardis-pipelines/themes/<name> when present
}

// BrowserConfig tunes the rendering engine.
type BrowserConfig struct {
	Timeout string `yaml:"timeout"` // Go duration, per page load
	Locale  string `yaml:"locale"`
}

// PageConfig defines the full-document pass layout.
type PageConfig struct {
	MarginMM float64 `yaml:"marginMM"`
}

// CardsConfig controls the card-sheet pass.
type CardsConfig struct {
	Disabled    bool    `yaml:"disabled"`
	MarkerClass string  `yaml:"markerClass"`
	MarginMM    float64 `yaml:"marginMM"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"` // Empty = no export
}

// DefaultConfig returns the configuration used when no file is given.
// Derived directories stay empty until ApplyDefaults.
func DefaultConfig() *Config {
	return &Config{
		Source:   SourceConfig{Dir: DefaultSourceDir},
		Document: DocumentConfig{Module: DefaultModule, Date: DefaultDate},
		Theme:    ThemeConfig{Name: DefaultTheme},
		Browser:  BrowserConfig{Timeout: DefaultTimeout, Locale: DefaultLocale},
		Page:     PageConfig{MarginMM: DefaultMarginMM},
		Cards:    CardsConfig{MarkerClass: DefaultCardClass, MarginMM: DefaultCardsMargin},
	}
}

// ApplyDefaults fills empty fields, including directories derived from
// the source root.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Source.Dir == "" {
		c.Source.Dir = d.Source.Dir
	}
	if c.Source.HTMLDir == "" {
		c.Source.HTMLDir = filepath.Join(c.Source.Dir, DefaultHTMLSubdir)
	}
	if c.Output.Dir == "" {
		c.Output.Dir = filepath.Join(c.Source.Dir, DefaultPDFSubdir)
	}
	if c.Document.Module == "" {
		c.Document.Module = d.Document.Module
	}
	if c.Document.Date == "" {
		c.Document.Date = d.Document.Date
	}
	if c.Theme.Name == "" {
		c.Theme.Name = d.Theme.Name
	}
	if c.Browser.Timeout == "" {
		c.Browser.Timeout = d.Browser.Timeout
	}
	if c.Browser.Locale == "" {
		c.Browser.Locale = d.Browser.Locale
	}
	if c.Page.MarginMM == 0 {
		c.Page.MarginMM = d.Page.MarginMM
	}
	if c.Cards.MarkerClass == "" {
		c.Cards.MarkerClass = d.Cards.MarkerClass
	}
	if c.Cards.MarginMM == 0 {
		c.Cards.MarginMM = d.Cards.MarginMM
	}
}

// ThemeDir returns the theme directory to overlay on the bundled theme
// and whether it was configured explicitly. The conventional location is
// returned only when it exists.
func (c *Config) ThemeDir() (dir string, explicit bool) {
	if c.Theme.Root != "" {
		return c.Theme.Root, true
	}
	conventional := filepath.Join(DefaultThemesDir, c.Theme.Name)
	if fileutil.DirExists(conventional) {
		return conventional, false
	}
	return "", false
}

// Timeout parses Browser.Timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Browser.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: browser.timeout: must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks field lengths and value ranges. Called by LoadConfig
// and again by the CLI after flags and environment are merged.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"source.dir", c.Source.Dir, MaxPathLength},
		{"source.htmlDir", c.Source.HTMLDir, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"document.module", c.Document.Module, MaxModuleLength},
		{"document.url", c.Document.URL, MaxURLLength},
		{"document.date", c.Document.Date, MaxDateLength},
		{"theme.name", c.Theme.Name, MaxThemeLength},
		{"theme.root", c.Theme.Root, MaxPathLength},
		{"browser.locale", c.Browser.Locale, MaxLocaleLength},
		{"cards.markerClass", c.Cards.MarkerClass, MaxClassLength},
		{"metrics.file", c.Metrics.File, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Theme.Name != "" && strings.ContainsAny(c.Theme.Name, `/\`) {
		return fmt.Errorf("%w: theme.name: %q must not contain path separators", ErrInvalidValue, c.Theme.Name)
	}
	if c.Cards.MarkerClass != "" && !classNamePattern.MatchString(c.Cards.MarkerClass) {
		return fmt.Errorf("%w: cards.markerClass: %q is not a CSS class name", ErrInvalidValue, c.Cards.MarkerClass)
	}
	if err := validateMargin("page.marginMM", c.Page.MarginMM); err != nil {
		return err
	}
	if err := validateMargin("cards.marginMM", c.Cards.MarginMM); err != nil {
		return err
	}
	if c.Browser.Timeout != "" {
		if _, err := c.Timeout(); err != nil {
			return err
		}
	}
	return nil
}

func validateMargin(name string, mm float64) error {
	if mm < 0 || mm > MaxMarginMM {
		return fmt.Errorf("%w: %s: must be between 0 and %.0f, got %.2f", ErrInvalidValue, name, MaxMarginMM, mm)
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is a file path; otherwise it is a
// name searched in the current directory and ~/.config/exo2pdf/.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the locations tried for a config name.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "exo2pdf", name+ext))
		}
	}
	return paths
}

func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
