package docx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

const wNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// newTestPackage builds a minimal DOCX package around body, the inner XML of
// w:body.
func newTestPackage(t *testing.T, body string) *Package {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{contentTypesPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="` + relsNamespace + `">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{DocumentPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="` + wNamespace + `"><w:body>` + body + `</w:body></w:document>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", f.name, err)
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			t.Fatalf("zip write %s: %v", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	pkg, err := Read(buf.Bytes())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return pkg
}

// para returns a paragraph with one run per part, so that a token can be
// split across runs on purpose.
func para(parts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, p := range parts {
		b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + p + `</w:t></w:r>`)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func cell(text string) string {
	return `<w:tc><w:tcPr><w:tcW w:w="2000" w:type="dxa"/></w:tcPr>` + para(text) + `</w:tc>`
}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tr>")
	for _, c := range cells {
		b.WriteString(cell(c))
	}
	b.WriteString("</w:tr>")
	return b.String()
}

func table(rows ...string) string {
	return `<w:tbl><w:tblPr><w:tblBorders><w:top w:val="single"/></w:tblBorders></w:tblPr>` +
		strings.Join(rows, "") + `</w:tbl>`
}

// documentOf returns the parsed main document of pkg.
func documentOf(t *testing.T, pkg *Package) *etree.Document {
	t.Helper()
	doc, err := pkg.XML(DocumentPart)
	if err != nil {
		t.Fatalf("XML(%s) error = %v", DocumentPart, err)
	}
	return doc
}

// tableTexts returns, for the first table, the text of each cell per row.
func tableTexts(t *testing.T, pkg *Package) [][]string {
	t.Helper()
	tables := collect(documentOf(t, pkg).Root(), "tbl")
	if len(tables) == 0 {
		t.Fatal("document has no table")
	}
	var out [][]string
	for _, tr := range directChildren(tables[0], "tr") {
		var cells []string
		for _, tc := range directChildren(tr, "tc") {
			cells = append(cells, textOf(tc))
		}
		out = append(out, cells)
	}
	return out
}

// reopen serializes pkg and reads it back, as a saved file would be.
func reopen(t *testing.T, pkg *Package) *Package {
	t.Helper()
	data, err := pkg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	out, err := Read(data)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return out
}

// writePNG writes a w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	p := filepath.Join(dir, "chart.png")
	if err := os.WriteFile(p, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return p
}
