package main

import (
	"context"
	"errors"
	"os"

	tardis "github.com/ETML-INF/tardis-pipelines"
	"github.com/ETML-INF/tardis-pipelines/internal/assets"
	"github.com/ETML-INF/tardis-pipelines/internal/config"
	"github.com/ETML-INF/tardis-pipelines/internal/dateutil"
	"github.com/ETML-INF/tardis-pipelines/internal/index"
)

// Exit codes for the exo2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Export finished
	ExitGeneral = 1 // General/unexpected error, including interruption
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Source tree or output not accessible
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Interruption (exit 1), before the browser errors wrapping it
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, tardis.ErrBrowserConnect) ||
		errors.Is(err, tardis.ErrPageCreate) ||
		errors.Is(err, tardis.ErrPageLoad) ||
		errors.Is(err, tardis.ErrEvaluate) ||
		errors.Is(err, tardis.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, tardis.ErrSourceRoot) ||
		errors.Is(err, tardis.ErrOutputDir) ||
		errors.Is(err, tardis.ErrWritePDF) ||
		errors.Is(err, index.ErrWriteIndex) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, assets.ErrThemeNotFound) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, index.ErrTemplateMissing) ||
		errors.Is(err, index.ErrTemplateInvalid) {
		return ExitUsage
	}

	return ExitGeneral
}
