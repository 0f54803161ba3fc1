package docfill

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// Context maps placeholder names to values: strings, numbers, booleans, or
// lists of per-item mappings. A string starting with ImageSentinel names an
// image file to embed.
type Context = map[string]any

// ImageSentinel prefixes context strings that reference an image file.
const ImageSentinel = placeholder.ImageSentinel

// Binding ties an anchor token to the list that repeats its table row.
type Binding = placeholder.Binding

// Diagnostic describes a problem found while rendering a template.
type Diagnostic = placeholder.Diagnostic

// DefaultBindings returns the bindings used when none are configured.
func DefaultBindings() []Binding {
	return placeholder.DefaultBindings()
}

// Format identifies which pipeline handles a template.
type Format int

const (
	FormatUnknown Format = iota
	FormatDOCX           // structured document path
	FormatHTML           // markup path
)

func (f Format) String() string {
	switch f {
	case FormatDOCX:
		return "docx"
	case FormatHTML:
		return "html"
	}
	return "unknown"
}

// FormatOf returns the format implied by a template's file extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return FormatDOCX
	case ".html", ".htm":
		return FormatHTML
	}
	return FormatUnknown
}

// Outcome grades a generation.
type Outcome int

const (
	// OutcomeFailed means no document was produced.
	OutcomeFailed Outcome = iota
	// OutcomeFull means every token and loop was resolved.
	OutcomeFull
	// OutcomeDegraded means a document was produced with lost fidelity:
	// unparseable tokens kept verbatim, or scalar-only substitution.
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFull:
		return "full"
	case OutcomeDegraded:
		return "degraded"
	}
	return "failed"
}

// Delivery tells which artifact ended up at Result.OutputPath.
type Delivery int

const (
	// DeliveryNone is reported for failed generations.
	DeliveryNone Delivery = iota
	// DeliveryNative is the filled template in its own format (DOCX or HTML).
	DeliveryNative
	// DeliveryFixedLayout is a PDF rendition.
	DeliveryFixedLayout
)

func (d Delivery) String() string {
	switch d {
	case DeliveryNative:
		return "native"
	case DeliveryFixedLayout:
		return "fixed-layout"
	}
	return "none"
}

// Request describes one generation.
type Request struct {
	// Template is a template name looked up in the template directory.
	Template string
	// TemplatePath is an explicit template file. It wins over Template when
	// the file exists.
	TemplatePath string
	// Data is the context the template is rendered against.
	Data Context
	// OutputPath is where the rendition is written. A native delivery on
	// the structured path lands next to it with a .docx extension.
	OutputPath string
	// NativeOnly skips conversion and delivers the filled template.
	NativeOnly bool
}

// Validate checks that the request names a template and an output.
func (r *Request) Validate() error {
	if r.Template == "" && r.TemplatePath == "" {
		return ErrEmptyTemplate
	}
	if r.OutputPath == "" {
		return ErrEmptyOutputPath
	}
	return nil
}

// Result reports what a generation produced.
type Result struct {
	RequestID    string
	TemplatePath string
	Format       Format
	Outcome      Outcome
	Delivery     Delivery
	OutputPath   string // the delivered artifact
	Message      string
	Diagnostics  []Diagnostic
	Duration     time.Duration
}

// OK reports whether a document was produced.
func (r *Result) OK() bool {
	return r != nil && r.Outcome != OutcomeFailed
}

func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s (%s): %s", r.Outcome, r.Delivery, r.OutputPath, r.Message)
}
