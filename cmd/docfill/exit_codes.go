package main

import (
	"errors"
	"os"

	docfill "github.com/alnah/go-docfill"
	"github.com/alnah/go-docfill/internal/config"
	"github.com/alnah/go-docfill/internal/dateutil"
	"github.com/alnah/go-docfill/internal/yamlutil"
)

// Exit codes for the docfill CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Document generated
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Template, context, or output file errors
	ExitBrowser = 4 // Browser or office converter errors
)

// CLI sentinel errors.
var (
	errUsage        = errors.New("invalid usage")
	errReadContext  = errors.New("reading context failed")
	errReadManifest = errors.New("reading batch manifest failed")
	errNoLedger     = errors.New("no ledger configured")
	errBatchFailed  = errors.New("batch finished with failures")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser/converter errors (exit 4)
	if errors.Is(err, docfill.ErrBrowserConnect) ||
		errors.Is(err, docfill.ErrPageCreate) ||
		errors.Is(err, docfill.ErrPageLoad) ||
		errors.Is(err, docfill.ErrPDFGeneration) ||
		errors.Is(err, docfill.ErrConverterUnavailable) ||
		errors.Is(err, docfill.ErrConversion) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docfill.ErrTemplateNotFound) ||
		errors.Is(err, docfill.ErrWriteOutput) ||
		errors.Is(err, errReadContext) ||
		errors.Is(err, errReadManifest) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, errNoLedger) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, docfill.ErrEmptyTemplate) ||
		errors.Is(err, docfill.ErrEmptyOutputPath) ||
		errors.Is(err, docfill.ErrUnsupportedTemplate) ||
		errors.Is(err, docfill.ErrInvalidBinding) ||
		errors.Is(err, docfill.ErrInvalidRenderer) ||
		errors.Is(err, docfill.ErrInvalidAssetPath) ||
		errors.Is(err, yamlutil.ErrNotMapping) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
