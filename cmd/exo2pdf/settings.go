package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ETML-INF/tardis-pipelines/internal/config"
	"github.com/ETML-INF/tardis-pipelines/internal/hints"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

func errUnexpectedArgs(args []string) error {
	return fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(args, " "))
}

// resolveConfig layers CLI flags > env vars > config file > defaults and
// validates the result.
func resolveConfig(f *settingsFlags, env *Environment) (*config.Config, error) {
	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg := config.DefaultConfig()
	name := f.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			hint := ""
			if errors.Is(err, config.ErrConfigNotFound) {
				hint = hints.ForConfigNotFound(config.SearchPaths(name))
			}
			return nil, fmt.Errorf("loading config: %w%s", err, hint)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies the flags that were given (CLI wins).
func mergeFlags(f *settingsFlags, cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Source.Dir, f.paths.src)
	set(&cfg.Source.HTMLDir, f.paths.html)
	set(&cfg.Output.Dir, f.paths.out)
	set(&cfg.Theme.Name, f.theme.name)
	set(&cfg.Theme.Root, f.theme.root)
	set(&cfg.Document.Module, f.document.module)
	set(&cfg.Document.URL, f.document.url)
	set(&cfg.Document.Date, f.document.date)
	set(&cfg.Browser.Timeout, f.run.timeout)
	set(&cfg.Metrics.File, f.run.metricsFile)
	if f.run.noCards {
		cfg.Cards.Disabled = true
	}
}
