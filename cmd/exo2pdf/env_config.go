package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ETML-INF/tardis-pipelines/internal/config"
)

// envConfig holds configuration from environment variables. The
// unprefixed names are the ones the course repositories already export
// for their Sphinx build.
type envConfig struct {
	ConfigPath  string // EXO2PDF_CONFIG
	SourceDir   string // SPHINX_SRC_DIR
	HTMLDir     string // HTML_OUT_DIR
	OutputDir   string // PDF_OUT_DIR
	Module      string // ICT_MODULE
	Theme       string // PDF_THEME
	ThemeRoot   string // TARDIS_THEME_ROOT
	URL         string // EXO_URL
	Date        string // EXO2PDF_DATE
	Timeout     string // EXO2PDF_TIMEOUT
	Cards       *bool  // EXO2PDF_CARDS, nil when unset
	MetricsFile string // EXO2PDF_METRICS_FILE
}

// knownEnvVars lists valid EXO2PDF_* environment variables.
// Used to detect typos.
var knownEnvVars = map[string]bool{
	"EXO2PDF_CONFIG":       true,
	"EXO2PDF_DATE":         true,
	"EXO2PDF_TIMEOUT":      true,
	"EXO2PDF_CARDS":        true,
	"EXO2PDF_METRICS_FILE": true,
	"EXO2PDF_CONTAINER":    true,
}

// loadEnvConfig reads the recognized variables through getenv.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath:  getenv("EXO2PDF_CONFIG"),
		SourceDir:   getenv("SPHINX_SRC_DIR"),
		HTMLDir:     getenv("HTML_OUT_DIR"),
		OutputDir:   getenv("PDF_OUT_DIR"),
		Module:      getenv("ICT_MODULE"),
		Theme:       getenv("PDF_THEME"),
		ThemeRoot:   getenv("TARDIS_THEME_ROOT"),
		URL:         getenv("EXO_URL"),
		Date:        getenv("EXO2PDF_DATE"),
		Timeout:     getenv("EXO2PDF_TIMEOUT"),
		MetricsFile: getenv("EXO2PDF_METRICS_FILE"),
	}

	if v := getenv("EXO2PDF_CARDS"); v != "" {
		on, err := parseSwitch(v)
		if err != nil {
			return nil, fmt.Errorf("%w: EXO2PDF_CARDS: %v", config.ErrInvalidValue, err)
		}
		cfg.Cards = &on
	}
	return cfg, nil
}

// parseSwitch accepts strconv.ParseBool values plus on/off and yes/no.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// warnUnknownEnvVars logs warnings for unrecognized EXO2PDF_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "EXO2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the environment.
// CLI flags are applied afterwards by mergeFlags, giving
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Source.Dir, env.SourceDir)
	set(&cfg.Source.HTMLDir, env.HTMLDir)
	set(&cfg.Output.Dir, env.OutputDir)
	set(&cfg.Document.Module, env.Module)
	set(&cfg.Theme.Name, env.Theme)
	set(&cfg.Theme.Root, env.ThemeRoot)
	set(&cfg.Document.URL, env.URL)
	set(&cfg.Document.Date, env.Date)
	set(&cfg.Browser.Timeout, env.Timeout)
	set(&cfg.Metrics.File, env.MetricsFile)
	if env.Cards != nil {
		cfg.Cards.Disabled = !*env.Cards
	}
}
