package docfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-docfill/internal/assets"
	"github.com/alnah/go-docfill/internal/fileutil"
	"github.com/alnah/go-docfill/internal/pipeline"
	"github.com/alnah/go-docfill/internal/placeholder"
)

var _ pipeline.CSSInjector = (*pipeline.CSSInjection)(nil)

// Engine fills DOCX and HTML templates and renders them to PDF.
// Create with NewEngine, use Generate for each document, and Close when done.
// An Engine is safe for concurrent use; renditions through the browser are
// serialized.
type Engine struct {
	cfg     engineConfig
	logger  *slog.Logger
	eval    *placeholder.Evaluator
	assets  assets.AssetLoader
	css     pipeline.CSSInjector
	office  officeConverter
	pdf     pdfConverter
	pageCSS string

	renderMu sync.Mutex
	mu       sync.RWMutex
	closed   bool
}

// NewEngine creates an Engine with default configuration.
// Use options to customize behavior (e.g., WithTemplateDir, WithBindings, WithRenderer).
// Returns error if a binding is invalid or the page style cannot be loaded.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: engineConfig{
			templateDir:      DefaultTemplateDir,
			signatureMarker:  DefaultSignatureMarker,
			backgroundImage:  pipeline.DefaultBackgroundImage,
			pageSize:         pipeline.DefaultPageSize,
			pageMargin:       pipeline.DefaultPageMargin,
			pageStyle:        assets.DefaultPageStyle,
			renderer:         RendererChrome,
			timeout:          defaultTimeout,
			converterTimeout: defaultConverterTimeout,
			officeBinary:     DefaultOfficeBinary,
		},
		logger: slog.Default(),
		css:    &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cfg.bindings == nil {
		e.cfg.bindings = DefaultBindings()
	}
	for _, b := range e.cfg.bindings {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}

	resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	e.assets = resolver

	e.pageCSS, err = e.assets.LoadStyle(e.cfg.pageStyle)
	if err != nil {
		return nil, fmt.Errorf("loading page style %q: %w", e.cfg.pageStyle, err)
	}
	// Fail on a broken stylesheet now rather than on the first HTML request.
	if _, err := pipeline.NewPageStyle("", e.cfg.pageSize, e.cfg.pageMargin, "").CSS(e.pageCSS); err != nil {
		return nil, err
	}

	e.eval = placeholder.NewEvaluator("docfill-" + uuid.NewString())

	if e.office == nil && !e.cfg.officeDisabled {
		e.office = newSofficeConverter(e.cfg.officeBinary, e.cfg.converterTimeout)
	}

	if e.pdf == nil {
		switch e.cfg.renderer {
		case RendererChrome:
			e.pdf = newRodConverter(e.cfg.timeout)
		case RendererBasic:
			e.pdf = newBasicConverter(e.cfg.pageSize)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidRenderer, e.cfg.renderer)
		}
	}

	return e, nil
}

// job carries the state of one generation through its stages.
type job struct {
	res      *Result
	log      *slog.Logger
	stage    string
	template string
	data     map[string]any
	output   string
	native   bool
}

func (j *job) enter(stage string) {
	j.stage = stage
	j.log.Debug("stage", slog.String("stage", stage))
}

// deliver records the artifact handed to the caller.
func (j *job) deliver(d Delivery, path, msg string) {
	j.res.Delivery = d
	j.res.OutputPath = path
	j.res.Message = msg
}

// grade sets the outcome from the collected diagnostics.
func (j *job) grade(diags []Diagnostic, fallback bool) {
	j.res.Diagnostics = append(j.res.Diagnostics, diags...)
	j.res.Outcome = OutcomeFull
	if fallback || placeholder.Degraded(j.res.Diagnostics) {
		j.res.Outcome = OutcomeDegraded
	}
	for _, d := range diags {
		if d.Severity == placeholder.SeverityWarning {
			j.log.Warn("template diagnostic", slog.String("stage", j.stage), slog.String("diagnostic", d.String()))
		}
	}
}

// Generate fills the requested template and writes the rendition.
// The returned Result is never nil; on error its Outcome is OutcomeFailed and
// Message holds the reason. Malformed tokens and an unavailable converter
// are not errors: they degrade the outcome or the delivery.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) Generate(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	res = &Result{RequestID: uuid.NewString()}
	j := &job{
		res:    res,
		log:    e.logger.With(slog.String("request_id", res.RequestID)),
		stage:  "load",
		output: req.OutputPath,
		native: req.NativeOnly || e.cfg.nativeOnly,
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		res.Duration = time.Since(start)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Delivery = DeliveryNone
			res.OutputPath = ""
			res.Message = err.Error()
			j.log.Error("generation failed",
				slog.String("template", res.TemplatePath),
				slog.String("stage", j.stage),
				slog.String("outcome", res.Outcome.String()),
				slog.Any("error", err))
			return
		}
		j.log.Info("generation finished",
			slog.String("template", res.TemplatePath),
			slog.String("outcome", res.Outcome.String()),
			slog.String("delivery", res.Delivery.String()),
			slog.String("output", res.OutputPath),
			slog.Duration("duration", res.Duration))
	}()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return res, ErrEngineClosed
	}

	if err := req.Validate(); err != nil {
		return res, err
	}

	j.template, err = e.resolveTemplate(req)
	if err != nil {
		return res, err
	}
	res.TemplatePath = j.template
	res.Format = FormatOf(j.template)

	var dropped []string
	j.data, dropped = placeholder.Normalize(req.Data)
	if len(dropped) > 0 {
		j.log.Warn("context keys ignored", slog.Any("keys", dropped))
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	switch res.Format {
	case FormatDOCX:
		err = e.generateStructured(ctx, j)
	case FormatHTML:
		err = e.generateMarkup(ctx, j)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedTemplate, j.template)
	}
	return res, err
}

// GenerateFromDOCX fills a DOCX template and reports success with a message
// naming the delivered file, or failure with the reason.
func (e *Engine) GenerateFromDOCX(ctx context.Context, req Request) (bool, string) {
	return e.generateAs(ctx, req, FormatDOCX)
}

// GenerateFromHTML fills an HTML template and renders it to PDF. It reports
// success with a message naming the delivered file, or failure with the reason.
func (e *Engine) GenerateFromHTML(ctx context.Context, req Request) (bool, string) {
	return e.generateAs(ctx, req, FormatHTML)
}

func (e *Engine) generateAs(ctx context.Context, req Request, want Format) (bool, string) {
	name := req.TemplatePath
	if name == "" {
		name = req.Template
	}
	if got := FormatOf(name); got != want {
		return false, fmt.Sprintf("%v: %s is not a %s template", ErrUnsupportedTemplate, name, want)
	}

	res, err := e.Generate(ctx, req)
	if err != nil {
		return false, res.Message
	}
	return true, res.Message
}

// resolveTemplate returns the explicit template path when it exists, else
// the template name looked up in the template directory.
func (e *Engine) resolveTemplate(req Request) (string, error) {
	if req.TemplatePath != "" && fileutil.FileExists(req.TemplatePath) {
		return req.TemplatePath, nil
	}

	candidate := req.TemplatePath
	if req.Template != "" {
		candidate = filepath.Join(e.cfg.templateDir, req.Template)
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, candidate)
}

// Close releases the browser held by the fixed-layout renderer. It waits
// for running generations to finish. Calling Close twice is safe.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	if e.pdf != nil {
		if err := e.pdf.Close(); err != nil {
			return fmt.Errorf("closing renderer: %w", err)
		}
	}
	return nil
}

// isCanceled reports whether err stems from ctx being done.
func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
