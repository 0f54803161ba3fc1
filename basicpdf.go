package docfill

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"

	"github.com/alnah/go-docfill/internal/fileutil"
)

var _ pdfConverter = (*basicConverter)(nil)

// basicConverter renders the text, tables and images of a document with
// gofpdf. It needs no browser; CSS is ignored except for the page size.
type basicConverter struct {
	pageSize string
}

func newBasicConverter(pageSize string) *basicConverter {
	return &basicConverter{pageSize: pageSize}
}

// gofpdf page sizes by CSS page size keyword.
var basicPageSizes = map[string]string{
	"letter": "Letter",
	"legal":  "Legal",
	"a4":     "A4",
	"a3":     "A3",
	"a5":     "A5",
}

const (
	basicMargin     = 20.0 // mm
	basicLineHeight = 5.0
	basicFontSize   = 10.0
	basicFont       = "Helvetica"
)

// ToPDF implements pdfConverter.
func (c *basicConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrPDFGeneration, err)
	}
	doc.Find("script, style, head").Remove()

	size, ok := basicPageSizes[strings.ToLower(strings.Fields(c.pageSize + " letter")[0])]
	if !ok {
		size = "Letter"
	}
	pdf := gofpdf.New("P", "mm", size, "")
	pdf.SetMargins(basicMargin, basicMargin, basicMargin)
	pdf.SetAutoPageBreak(true, basicMargin)
	pdf.AddPage()

	w := &basicWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		w.blocks(body)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Close implements pdfConverter.
func (c *basicConverter) Close() error { return nil }

// basicWriter lays out block elements top to bottom.
type basicWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

var headingSizes = map[string]float64{"h1": 16, "h2": 14, "h3": 12, "h4": 11, "h5": 10, "h6": 10}

// blocks writes the children of sel. Inline runs between blocks are
// gathered into paragraphs.
func (w *basicWriter) blocks(sel *goquery.Selection) {
	var inline strings.Builder
	flush := func() {
		if text := collapse(inline.String()); text != "" {
			w.paragraph(text, "", basicFontSize)
		}
		inline.Reset()
	}

	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node.Type == html.TextNode {
			inline.WriteString(node.Data)
			return
		}
		if node.Type != html.ElementNode {
			return
		}

		switch tag := goquery.NodeName(s); tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			w.pdf.Ln(2)
			w.paragraph(collapse(s.Text()), "B", headingSizes[tag])
		case "p":
			flush()
			w.inlineImages(s)
			w.paragraph(collapse(s.Text()), "", basicFontSize)
		case "br":
			flush()
		case "table":
			flush()
			w.table(s)
		case "ul", "ol":
			flush()
			s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
				bullet := "- "
				if tag == "ol" {
					bullet = fmt.Sprintf("%d. ", i+1)
				}
				w.paragraph(bullet+collapse(li.Text()), "", basicFontSize)
			})
		case "img":
			flush()
			w.image(s)
		case "div", "section", "article", "main", "header", "footer", "center", "blockquote":
			flush()
			w.blocks(s)
		default:
			w.inlineImages(s)
			inline.WriteString(s.Text())
		}
	})
	flush()
}

func (w *basicWriter) paragraph(text, style string, size float64) {
	if text == "" {
		return
	}
	w.pdf.SetFont(basicFont, style, size)
	w.pdf.MultiCell(0, size*0.5, w.tr(text), "", "L", false)
	w.pdf.Ln(1)
}

// table lays rows out with equal column widths. Rows whose cells wrap take
// the height of their tallest cell.
func (w *basicWriter) table(tbl *goquery.Selection) {
	rows := tbl.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.ParentsFiltered("table").First().IsSelection(tbl)
	})

	cols := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		if n := tr.ChildrenFiltered("td, th").Length(); n > cols {
			cols = n
		}
	})
	if cols == 0 {
		return
	}

	pageW, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	colW := (pageW - left - right) / float64(cols)

	w.pdf.Ln(1)
	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td, th")
		texts := make([]string, cells.Length())
		lines := 1
		cells.Each(func(i int, td *goquery.Selection) {
			texts[i] = w.tr(collapse(td.Text()))
			style := ""
			if goquery.NodeName(td) == "th" {
				style = "B"
			}
			w.pdf.SetFont(basicFont, style, basicFontSize)
			if n := len(w.pdf.SplitLines([]byte(texts[i]), colW-2)); n > lines {
				lines = n
			}
		})
		h := float64(lines) * basicLineHeight

		_, pageH := w.pdf.GetPageSize()
		_, _, _, bottom := w.pdf.GetMargins()
		if w.pdf.GetY()+h > pageH-bottom {
			w.pdf.AddPage()
		}

		x, y := w.pdf.GetXY()
		cells.Each(func(i int, td *goquery.Selection) {
			style := ""
			if goquery.NodeName(td) == "th" {
				style = "B"
			}
			w.pdf.SetFont(basicFont, style, basicFontSize)
			cx := x + float64(i)*colW
			w.pdf.Rect(cx, y, colW, h, "D")
			w.pdf.SetXY(cx+1, y)
			w.pdf.MultiCell(colW-2, basicLineHeight, texts[i], "", "L", false)
		})
		w.pdf.SetXY(x, y+h)
	})
	w.pdf.Ln(2)
}

// inlineImages draws the images nested in sel before its text.
func (w *basicWriter) inlineImages(sel *goquery.Selection) {
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		w.image(img)
	})
}

// image draws a local PNG, JPEG or GIF referenced by a file:// URL, scaled
// to the text width. Other sources are skipped.
func (w *basicWriter) image(img *goquery.Selection) {
	src, _ := img.Attr("src")
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "file" {
		return
	}
	file := filepath.FromSlash(u.Path)
	if !fileutil.FileExists(file) {
		return
	}

	pageW, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	maxWidth := pageW - left - right

	info := w.pdf.RegisterImageOptions(file, gofpdf.ImageOptions{ReadDpi: true})
	if w.pdf.Err() || info == nil {
		w.pdf.ClearError()
		return
	}
	width, height := info.Extent()
	if width > maxWidth {
		height = height * maxWidth / width
		width = maxWidth
	}
	w.pdf.ImageOptions(file, w.pdf.GetX(), w.pdf.GetY(), width, height, true, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	w.pdf.Ln(1)
}

// collapse joins whitespace runs, non-breaking spaces included.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
