package tardis

import "errors"

// Sentinel errors for the export pipeline.
var (
	ErrSourceRoot     = errors.New("source root unreadable")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrEvaluate       = errors.New("failed to evaluate in page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrWritePDF       = errors.New("failed to write PDF")
	ErrOutputDir      = errors.New("failed to create output directory")
)
