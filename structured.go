package docfill

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alnah/go-docfill/internal/docx"
	"github.com/alnah/go-docfill/internal/fileutil"
)

// injectedSuffix names the scratch copy holding the loop markers.
const injectedSuffix = "_INJECTED.docx"

// generateStructured runs the DOCX path: inject row loops into a scratch
// copy, render it, write the filled DOCX next to the output and convert it.
func (e *Engine) generateStructured(ctx context.Context, j *job) error {
	pkg, err := docx.Open(j.template)
	if err != nil {
		return err
	}

	j.enter("inject")
	report, err := docx.Inject(pkg, e.cfg.bindings, e.cfg.signatureMarker)
	if err != nil {
		return fmt.Errorf("injecting row loops: %w", err)
	}
	for _, x := range report.Expanded {
		j.log.Debug("anchor expanded", slog.String("anchor", x.Anchor), slog.String("list", x.List), slog.Int("table", x.Table))
	}
	if len(report.Unused) > 0 {
		j.log.Debug("anchors not found", slog.Any("anchors", report.Unused))
	}
	if report.PageBreak {
		j.log.Debug("page break inserted before signature block", slog.String("marker", e.cfg.signatureMarker))
	}

	injected, err := pkg.Bytes()
	if err != nil {
		return fmt.Errorf("serializing injected template: %w", err)
	}
	scratch := fileutil.ScratchPath(e.cfg.scratchDir, j.template, injectedSuffix)
	if err := fileutil.WriteFileAtomic(scratch, injected); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	j.enter("render")
	pkg, err = docx.Open(scratch)
	if err != nil {
		return err
	}
	diags, err := docx.Render(pkg, j.data, e.eval)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", j.template, err)
	}
	j.grade(diags, false)

	filled, err := pkg.Bytes()
	if err != nil {
		return fmt.Errorf("serializing rendered document: %w", err)
	}
	native := fileutil.ReplaceExt(j.output, ".docx")
	if err := fileutil.WriteFileAtomic(native, filled); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if j.native || FormatOf(j.output) == FormatDOCX || e.office == nil {
		removeScratch(j.log, scratch)
		msg := "document generated at: " + native
		if !j.native && e.office == nil && FormatOf(j.output) != FormatDOCX {
			msg += " (PDF conversion disabled)"
		}
		j.deliver(DeliveryNative, native, msg)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	j.enter("convert")
	if err := e.office.ConvertToPDF(ctx, native, j.output); err != nil {
		if isCanceled(ctx, err) {
			return err
		}
		// Scratch files stay on disk for inspection.
		j.log.Warn("PDF conversion skipped, delivering DOCX",
			slog.String("stage", j.stage),
			slog.String("docx", native),
			slog.String("scratch", scratch),
			slog.Any("error", err))
		j.deliver(DeliveryNative, native,
			fmt.Sprintf("filled DOCX saved at: %s (PDF conversion skipped: %v)", native, err))
		return nil
	}

	removeScratch(j.log, scratch, native)
	j.deliver(DeliveryFixedLayout, j.output, "document generated at: "+j.output)
	return nil
}

// removeScratch deletes intermediate files. Failures are logged only.
func removeScratch(log *slog.Logger, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("removing scratch file", slog.String("path", p), slog.Any("error", err))
		}
	}
}
