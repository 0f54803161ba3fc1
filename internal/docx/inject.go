package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// DefaultSignatureMarker is the word opening the signature block of the
// annex templates.
const DefaultSignatureMarker = "ELABORARON"

// Syntax is the row-loop marker syntax understood by Render.
var Syntax = placeholder.Syntax{
	Begin: func(b placeholder.Binding) string {
		return fmt.Sprintf("{%%tr for %s in %s %%}", b.Iterator, b.List)
	},
	End:       "{%tr endfor %}",
	LoopIndex: "loop.index",
}

// InjectReport describes the changes made by Inject.
type InjectReport struct {
	placeholder.Report
	PageBreak bool // a page break was inserted before the signature block
}

// Inject rewrites the main document of pkg in place: anchor rows become
// per-item row templates wrapped in marker rows, and a page break is placed
// before the first paragraph holding signatureMarker. An empty marker
// disables the page break.
func Inject(pkg *Package, bindings []placeholder.Binding, signatureMarker string) (InjectReport, error) {
	var report InjectReport

	doc, err := pkg.XML(DocumentPart)
	if err != nil {
		return report, err
	}
	for _, p := range collect(doc.Root(), "p") {
		consolidateTokens(p)
	}

	report.Report, err = placeholder.Expand(newRowLocator(doc), bindings, Syntax)
	if err != nil {
		return report, err
	}

	if signatureMarker != "" {
		report.PageBreak = insertSignatureBreak(doc, signatureMarker)
	}
	return report, nil
}

// insertSignatureBreak puts a page break before the first paragraph holding
// marker. Table rows are searched first, then the remaining body paragraphs.
// Only the first occurrence is handled.
func insertSignatureBreak(doc *etree.Document, marker string) bool {
	for _, tr := range collect(doc.Root(), "tr") {
		if !strings.Contains(textOf(tr), marker) {
			continue
		}
		for _, p := range collect(tr, "p", "tbl") {
			if strings.Contains(textOf(p), marker) {
				insertBefore(p, newPageBreak())
				return true
			}
		}
	}

	for _, p := range collect(doc.Root(), "p", "tbl") {
		if strings.Contains(textOf(p), marker) {
			insertBefore(p, newPageBreak())
			return true
		}
	}
	return false
}
