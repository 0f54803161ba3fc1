package docfill

import (
	"log/slog"
	"time"
)

// Renderer names for the markup path.
const (
	RendererChrome = "chrome" // headless Chrome via go-rod
	RendererBasic  = "basic"  // text and tables only, no browser
)

// Defaults applied by NewEngine.
const (
	DefaultTemplateDir     = "templates/docs"
	DefaultSignatureMarker = "ELABORARON"
	DefaultOfficeBinary    = "soffice"

	defaultTimeout          = 30 * time.Second
	defaultConverterTimeout = 2 * time.Minute
)

// Option configures an Engine.
type Option func(*Engine)

// engineConfig holds internal configuration for Engine.
type engineConfig struct {
	templateDir      string
	scratchDir       string
	bindings         []Binding
	signatureMarker  string
	backgroundImage  string
	pageSize         string
	pageMargin       string
	pageStyle        string
	assetPath        string
	renderer         string
	timeout          time.Duration
	converterTimeout time.Duration
	officeBinary     string
	officeDisabled   bool
	nativeOnly       bool
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTemplateDir sets the directory searched for template names.
func WithTemplateDir(dir string) Option {
	return func(e *Engine) {
		e.cfg.templateDir = dir
	}
}

// WithScratchDir sets where intermediate documents are written.
// Default: the system temp dir.
func WithScratchDir(dir string) Option {
	return func(e *Engine) {
		e.cfg.scratchDir = dir
	}
}

// WithBindings replaces the anchor bindings. Bindings are applied in order;
// a row claimed by one binding is not seen by the next.
func WithBindings(bindings ...Binding) Option {
	return func(e *Engine) {
		e.cfg.bindings = append([]Binding(nil), bindings...)
	}
}

// WithSignatureMarker sets the word that opens the signature block; a page
// break is inserted before its first occurrence. Empty disables the break.
func WithSignatureMarker(marker string) Option {
	return func(e *Engine) {
		e.cfg.signatureMarker = marker
	}
}

// WithBackgroundImage sets the file name, next to HTML templates, used as
// the page background when present.
func WithBackgroundImage(name string) Option {
	return func(e *Engine) {
		e.cfg.backgroundImage = name
	}
}

// WithPage sets the CSS page size and margin of the markup path.
func WithPage(size, margin string) Option {
	return func(e *Engine) {
		e.cfg.pageSize = size
		e.cfg.pageMargin = margin
	}
}

// WithPageStyle selects the page stylesheet by name. Default: "page".
func WithPageStyle(name string) Option {
	return func(e *Engine) {
		e.cfg.pageStyle = name
	}
}

// WithAssetPath sets a directory whose styles/ override the built-in ones.
func WithAssetPath(path string) Option {
	return func(e *Engine) {
		e.cfg.assetPath = path
	}
}

// WithRenderer selects the fixed-layout renderer of the markup path.
// Panics on an unknown name (programmer error).
func WithRenderer(name string) Option {
	if name != RendererChrome && name != RendererBasic {
		panic("docfill: WithRenderer: unknown renderer " + name)
	}
	return func(e *Engine) {
		e.cfg.renderer = name
	}
}

// WithTimeout sets the fixed-layout rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docfill: WithTimeout duration must be positive")
	}
	return func(e *Engine) {
		e.cfg.timeout = d
	}
}

// WithConverterTimeout sets the office conversion timeout.
// Panics if d <= 0 (programmer error).
func WithConverterTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docfill: WithConverterTimeout duration must be positive")
	}
	return func(e *Engine) {
		e.cfg.converterTimeout = d
	}
}

// WithOfficeBinary sets the LibreOffice executable. Default: soffice on PATH.
func WithOfficeBinary(bin string) Option {
	return func(e *Engine) {
		e.cfg.officeBinary = bin
	}
}

// WithoutOfficeConverter disables DOCX to PDF conversion; structured
// generations then always deliver the filled DOCX.
func WithoutOfficeConverter() Option {
	return func(e *Engine) {
		e.cfg.officeDisabled = true
	}
}

// WithNativeOnly makes native delivery the default for every request.
func WithNativeOnly(native bool) Option {
	return func(e *Engine) {
		e.cfg.nativeOnly = native
	}
}

// withOfficeConverter injects the office converter (tests).
func withOfficeConverter(c officeConverter) Option {
	return func(e *Engine) {
		e.office = c
	}
}

// withPDFConverter injects the fixed-layout renderer (tests).
func withPDFConverter(c pdfConverter) Option {
	return func(e *Engine) {
		e.pdf = c
	}
}
