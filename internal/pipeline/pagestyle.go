package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Page defaults for the annex templates.
const (
	DefaultPageSize        = "letter"
	DefaultPageMargin      = "2cm"
	DefaultBackgroundImage = "fondo_anexos_carta.jpg"
)

// ErrPageStyle indicates a page stylesheet that cannot be rendered.
var ErrPageStyle = errors.New("page style rendering failed")

// PageStyle holds the values substituted into a page stylesheet.
type PageStyle struct {
	Size       string // CSS page size, e.g. "letter" or "A4"
	Margin     string // CSS margin shorthand
	Background string // file:// URL of the page background, empty for none
}

// NewPageStyle builds the page style for a template stored in templateDir.
// The background is used only when the named file exists in that directory.
func NewPageStyle(templateDir, size, margin, background string) PageStyle {
	style := PageStyle{Size: size, Margin: margin}
	if style.Size == "" {
		style.Size = DefaultPageSize
	}
	if style.Margin == "" {
		style.Margin = DefaultPageMargin
	}
	if background == "" || templateDir == "" {
		return style
	}

	bg := filepath.Join(templateDir, background)
	if info, err := os.Stat(bg); err == nil && !info.IsDir() {
		if abs, err := filepath.Abs(bg); err == nil {
			style.Background = pathToFileURL(abs)
		}
	}
	return style
}

// CSS renders the stylesheet source tmpl with the style's values.
func (s PageStyle) CSS(tmpl string) (string, error) {
	t, err := template.New("page").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageStyle, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageStyle, err)
	}
	return buf.String(), nil
}
