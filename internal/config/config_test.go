package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Source.Dir != DefaultSourceDir {
		t.Errorf("Source.Dir = %q, want %q", cfg.Source.Dir, DefaultSourceDir)
	}
	if cfg.Source.HTMLDir != "" || cfg.Output.Dir != "" {
		t.Errorf("derived dirs should be empty before ApplyDefaults, got %q and %q", cfg.Source.HTMLDir, cfg.Output.Dir)
	}
	if cfg.Cards.Disabled {
		t.Error("Cards.Disabled = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "empty config derives from default source",
			in:   Config{},
			want: Config{
				Source:   SourceConfig{Dir: DefaultSourceDir, HTMLDir: filepath.Join(DefaultSourceDir, "_build/html")},
				Output:   OutputConfig{Dir: filepath.Join(DefaultSourceDir, "_build/exo-pdf")},
				Document: DocumentConfig{Module: DefaultModule, Date: DefaultDate},
				Theme:    ThemeConfig{Name: DefaultTheme},
				Browser:  BrowserConfig{Timeout: DefaultTimeout, Locale: DefaultLocale},
				Page:     PageConfig{MarginMM: DefaultMarginMM},
				Cards:    CardsConfig{MarkerClass: DefaultCardClass, MarginMM: DefaultCardsMargin},
			},
		},
		{
			name: "custom source moves derived dirs",
			in: Config{
				Source:   SourceConfig{Dir: "cours"},
				Document: DocumentConfig{Module: "ICT-122", URL: "https://exos.example.ch"},
				Cards:    CardsConfig{Disabled: true},
			},
			want: Config{
				Source:   SourceConfig{Dir: "cours", HTMLDir: filepath.Join("cours", "_build/html")},
				Output:   OutputConfig{Dir: filepath.Join("cours", "_build/exo-pdf")},
				Document: DocumentConfig{Module: "ICT-122", URL: "https://exos.example.ch", Date: DefaultDate},
				Theme:    ThemeConfig{Name: DefaultTheme},
				Browser:  BrowserConfig{Timeout: DefaultTimeout, Locale: DefaultLocale},
				Page:     PageConfig{MarginMM: DefaultMarginMM},
				Cards:    CardsConfig{Disabled: true, MarkerClass: DefaultCardClass, MarginMM: DefaultCardsMargin},
			},
		},
		{
			name: "explicit dirs kept",
			in: Config{
				Source: SourceConfig{Dir: "src", HTMLDir: "site"},
				Output: OutputConfig{Dir: "pdf"},
			},
			want: Config{
				Source:   SourceConfig{Dir: "src", HTMLDir: "site"},
				Output:   OutputConfig{Dir: "pdf"},
				Document: DocumentConfig{Module: DefaultModule, Date: DefaultDate},
				Theme:    ThemeConfig{Name: DefaultTheme},
				Browser:  BrowserConfig{Timeout: DefaultTimeout, Locale: DefaultLocale},
				Page:     PageConfig{MarginMM: DefaultMarginMM},
				Cards:    CardsConfig{MarkerClass: DefaultCardClass, MarginMM: DefaultCardsMargin},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.in
			got.ApplyDefaults()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyDefaults() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{name: "module too long", mutate: func(c *Config) { c.Document.Module = strings.Repeat("m", MaxModuleLength+1) }, wantErr: ErrFieldTooLong},
		{name: "url too long", mutate: func(c *Config) { c.Document.URL = strings.Repeat("u", MaxURLLength+1) }, wantErr: ErrFieldTooLong},
		{name: "theme with separator", mutate: func(c *Config) { c.Theme.Name = "../etml" }, wantErr: ErrInvalidValue},
		{name: "marker class with selector syntax", mutate: func(c *Config) { c.Cards.MarkerClass = ".sheet" }, wantErr: ErrInvalidValue},
		{name: "marker class with quote", mutate: func(c *Config) { c.Cards.MarkerClass = "a'b" }, wantErr: ErrInvalidValue},
		{name: "negative margin", mutate: func(c *Config) { c.Page.MarginMM = -1 }, wantErr: ErrInvalidValue},
		{name: "huge card margin", mutate: func(c *Config) { c.Cards.MarginMM = 80 }, wantErr: ErrInvalidValue},
		{name: "bad timeout", mutate: func(c *Config) { c.Browser.Timeout = "soon" }, wantErr: ErrInvalidValue},
		{name: "zero timeout", mutate: func(c *Config) { c.Browser.Timeout = "0s" }, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Browser.Timeout = "1m30s"
	got, err := cfg.Timeout()
	if err != nil {
		t.Fatalf("Timeout() error = %v", err)
	}
	if got != 90*time.Second {
		t.Errorf("Timeout() = %v, want 1m30s", got)
	}
}

func TestThemeDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Theme.Root = "/srv/themes/etml-2025"
	dir, explicit := cfg.ThemeDir()
	if dir != "/srv/themes/etml-2025" || !explicit {
		t.Errorf("ThemeDir() = %q, %v, want explicit root", dir, explicit)
	}

	cfg = DefaultConfig()
	cfg.Theme.Name = "no-such-theme-dir"
	if dir, explicit := cfg.ThemeDir(); dir != "" || explicit {
		t.Errorf("ThemeDir() = %q, %v, want empty for missing conventional dir", dir, explicit)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	valid := writeFile("exo2pdf.yaml", `
source:
  dir: cours/Support
document:
  module: ICT-122
  url: https://exos.example.ch
cards:
  disabled: true
`)
	unknownKey := writeFile("typo.yaml", "documnet:\n  module: x\n")
	invalid := writeFile("invalid.yaml", "page:\n  marginMM: 99\n")
	garbage := writeFile("garbage.yaml", "source: [unclosed\n")

	t.Run("valid file keeps defaults for missing keys", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(valid)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Source.Dir != "cours/Support" || cfg.Document.Module != "ICT-122" || !cfg.Cards.Disabled {
			t.Errorf("LoadConfig() = %+v, want file values", cfg)
		}
		if cfg.Theme.Name != DefaultTheme || cfg.Cards.MarkerClass != DefaultCardClass {
			t.Errorf("LoadConfig() lost defaults: %+v", cfg)
		}
	})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "empty name", path: "", wantErr: ErrEmptyConfigName},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), wantErr: ErrConfigNotFound},
		{name: "missing name", path: "exo2pdf-no-such-config", wantErr: ErrConfigNotFound},
		{name: "unknown key", path: unknownKey, wantErr: ErrConfigParse},
		{name: "syntax error", path: garbage, wantErr: ErrConfigParse},
		{name: "invalid value", path: invalid, wantErr: ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("ict122")
	if len(paths) < 2 || paths[0] != "ict122.yaml" || paths[1] != "ict122.yml" {
		t.Errorf("SearchPaths() = %v, want local .yaml then .yml first", paths)
	}
}
