package docfill

import (
	"errors"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// Sentinel errors for library operations.
var (
	ErrTemplateNotFound    = errors.New("template not found")
	ErrUnsupportedTemplate = errors.New("unsupported template format")
	ErrEmptyTemplate       = errors.New("template reference cannot be empty")
	ErrEmptyOutputPath     = errors.New("output path cannot be empty")
	ErrEngineClosed        = errors.New("engine is closed")
	ErrWriteOutput         = errors.New("writing output failed")

	// Binding errors.
	ErrInvalidBinding = placeholder.ErrInvalidBinding

	// Office conversion errors (structured path). Both are recovered into
	// native delivery by Generate.
	ErrConverterUnavailable = errors.New("document converter unavailable")
	ErrConversion           = errors.New("document conversion failed")

	// Fixed-layout rendering errors (markup path).
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Option validation errors.
	ErrInvalidRenderer  = errors.New("invalid renderer")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
