package main

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	tardis "github.com/ETML-INF/tardis-pipelines"
)

// RendererFactory builds the browser-backed renderer for a run.
type RendererFactory func(timeout time.Duration, locale string) tardis.Renderer

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	NoColor     bool
	NewRenderer RendererFactory
}

// DefaultEnv returns the production environment driving headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NoColor: color.NoColor,
		NewRenderer: func(timeout time.Duration, locale string) tardis.Renderer {
			return tardis.NewRodRenderer(tardis.WithTimeout(timeout), tardis.WithLocale(locale))
		},
	}
}
