package docfill

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-docfill/internal/fileutil"
	"github.com/alnah/go-docfill/internal/pipeline"
)

// generateMarkup runs the HTML path: clean the exported markup, inject row
// loops and the page style, render with fallback and hand the result to the
// fixed-layout renderer.
func (e *Engine) generateMarkup(ctx context.Context, j *job) error {
	raw, err := os.ReadFile(j.template) // #nosec G304 -- template path is caller-provided
	if err != nil {
		return fmt.Errorf("reading %s: %w", j.template, err)
	}
	baseDir, err := filepath.Abs(filepath.Dir(j.template))
	if err != nil {
		return fmt.Errorf("resolving template directory: %w", err)
	}

	j.enter("preprocess")
	src := pipeline.Preprocess(string(raw))

	j.enter("inject")
	src, report, err := pipeline.InjectLoops(src, e.cfg.bindings)
	if err != nil {
		return fmt.Errorf("injecting row loops: %w", err)
	}
	for _, x := range report.Expanded {
		j.log.Debug("anchor expanded", slog.String("anchor", x.Anchor), slog.String("list", x.List), slog.Int("table", x.Table))
	}

	style := pipeline.NewPageStyle(baseDir, e.cfg.pageSize, e.cfg.pageMargin, e.cfg.backgroundImage)
	css, err := style.CSS(e.pageCSS)
	if err != nil {
		return err
	}
	src = e.css.InjectCSS(ctx, src, css)
	if err := ctx.Err(); err != nil {
		return err
	}

	j.enter("render")
	rendered := pipeline.Render(e.eval, src, j.data)
	j.grade(rendered.Diagnostics, rendered.Fallback)

	htmlContent, err := pipeline.RewriteRelativePaths(rendered.HTML, baseDir)
	if err != nil {
		return fmt.Errorf("rewriting relative paths: %w", err)
	}

	if j.native || FormatOf(j.output) == FormatHTML {
		out := fileutil.ReplaceExt(j.output, ".html")
		if FormatOf(j.output) == FormatHTML {
			out = j.output
		}
		if err := fileutil.WriteFileAtomic(out, []byte(htmlContent)); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		j.deliver(DeliveryNative, out, "document generated at: "+out)
		return nil
	}

	j.enter("convert")
	e.renderMu.Lock()
	pdf, err := e.pdf.ToPDF(ctx, htmlContent)
	e.renderMu.Unlock()
	if err != nil {
		return fmt.Errorf("converting to PDF: %w", err)
	}

	if err := fileutil.WriteFileAtomic(j.output, pdf); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	j.deliver(DeliveryFixedLayout, j.output, "document generated at: "+j.output)
	return nil
}
