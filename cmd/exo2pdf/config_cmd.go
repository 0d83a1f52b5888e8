package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/ETML-INF/tardis-pipelines/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML, after the
// config file, environment and flags are merged.
func runConfigCmd(args []string, env *Environment) int {
	f, _, err := parseInspectFlags("config", args, env.Stderr, printConfigUsage)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return printError(env.Stderr, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	cfg, err := resolveConfig(f, env)
	if err != nil {
		return printError(env.Stderr, err)
	}
	out, err := yamlutil.Encode(cfg)
	if err != nil {
		return printError(env.Stderr, err)
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
