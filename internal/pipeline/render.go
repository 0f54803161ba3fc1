package pipeline

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// Rendered is a resolved markup document.
type Rendered struct {
	HTML        string
	Fallback    bool // scalar-only substitution was used
	Diagnostics []placeholder.Diagnostic
}

// Render resolves src against data. Image references are turned into <img>
// elements first; the result is then executed as a template. When the
// template cannot be parsed or executed, Render falls back to scalar-only
// substitution and reports why. Render never fails.
func Render(ev *placeholder.Evaluator, src string, data map[string]any) Rendered {
	src, diags := EmbedImages(src, data)

	out, err := ev.Render(src, data)
	if err == nil {
		return Rendered{HTML: out, Diagnostics: diags}
	}

	diags = append(diags, placeholder.Diagnostic{
		Severity: placeholder.SeverityWarning,
		Where:    "template",
		Message:  fmt.Sprintf("structured render failed, lists left unexpanded: %v", err),
	})
	return Rendered{HTML: Fallback(src, data), Fallback: true, Diagnostics: diags}
}

// EmbedImages replaces each bare-name token whose value carries the image
// sentinel with an <img> element pointing at the file. Tokens naming a
// missing file are removed and noted.
func EmbedImages(src string, data map[string]any) (string, []placeholder.Diagnostic) {
	var diags []placeholder.Diagnostic
	out := replaceTokens(src, func(expr string) (string, bool) {
		s, ok := data[expr].(string)
		if !ok || !placeholder.IsImageRef(s) {
			return "", false
		}
		file := placeholder.ImagePath(s)
		abs, err := filepath.Abs(file)
		if err == nil {
			_, err = os.Stat(abs)
		}
		if err != nil {
			diags = append(diags, placeholder.Diagnostic{
				Severity: placeholder.SeverityInfo,
				Where:    "template",
				Token:    placeholder.Format(expr),
				Message:  fmt.Sprintf("image file %s not found, rendered empty", file),
			})
			return "", true
		}
		return fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(pathToFileURL(abs)), html.EscapeString(expr)), true
	})
	return out, diags
}

// replaceTokens rewrites the bare-name tokens of src with fn. fn returns
// the replacement text and true, or false to keep the token.
func replaceTokens(src string, fn func(expr string) (string, bool)) string {
	tokens := placeholder.Find(src)
	if len(tokens) == 0 {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, tok := range tokens {
		if !placeholder.IsIdent(tok.Expr) {
			continue
		}
		repl, ok := fn(tok.Expr)
		if !ok {
			continue
		}
		b.WriteString(src[last:tok.Start])
		b.WriteString(repl)
		last = tok.End
	}
	b.WriteString(src[last:])
	return b.String()
}
