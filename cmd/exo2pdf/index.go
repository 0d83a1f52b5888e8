package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/ETML-INF/tardis-pipelines/internal/index"
)

// runIndexCmd writes index.html for the PDF output tree.
func runIndexCmd(args []string, env *Environment) int {
	f, title, err := parseIndexFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return printError(env.Stderr, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	logger := newLogger(env.Stderr, f.common)
	cfg, err := resolveConfig(f, env)
	if err != nil {
		return printError(env.Stderr, err)
	}
	resolver, err := newThemeResolver(cfg, logger)
	if err != nil {
		return printError(env.Stderr, err)
	}

	opts := []index.Option{index.WithLogger(logger)}
	if title != "" {
		opts = append(opts, index.WithTitle(title))
	}
	res, err := index.NewGenerator(resolver, opts...).Generate(cfg.Output.Dir)
	if err != nil {
		return printError(env.Stderr, err)
	}

	if !f.common.quiet {
		total := 0
		for _, s := range res.Sections {
			total += len(s.Files)
		}
		fmt.Fprintf(env.Stdout, "%s: %d PDF in %d sections\n", res.Path, total, len(res.Sections))
	}
	return ExitSuccess
}
