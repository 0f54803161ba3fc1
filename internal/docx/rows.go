package docx

import (
	"errors"

	"github.com/beevik/etree"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// errDetachedRow is returned when a row has no parent to insert markers into.
var errDetachedRow = errors.New("row has no parent element")

// tableRow is a w:tr exposed to the expansion contract.
type tableRow struct {
	el    *etree.Element
	table int
}

var _ placeholder.Row = (*tableRow)(nil)

func (r *tableRow) Table() int   { return r.table }
func (r *tableRow) Text() string { return textOf(r.el) }

// RewriteTokens rewrites each text node of the row. Tokens must already be
// consolidated so that none straddles two nodes.
func (r *tableRow) RewriteTokens(fn func(string) string) {
	for _, t := range textNodes(r.el) {
		if old := t.Text(); old != "" {
			if s := fn(old); s != old {
				setText(t, s)
			}
		}
	}
}

// WrapLoop inserts a marker row before and after the row. Markers are deep
// copies of the row so they keep its cell layout, borders and widths.
func (r *tableRow) WrapLoop(begin, end string) error {
	if r.el.Parent() == nil {
		return errDetachedRow
	}
	insertBefore(r.el, markerRow(r.el, begin))
	insertAfter(r.el, markerRow(r.el, end))
	return nil
}

// markerRow copies row, clears every cell down to one empty paragraph and
// writes text into the first cell.
func markerRow(row *etree.Element, text string) *etree.Element {
	clone := row.Copy()
	for i, cell := range directChildren(clone, "tc") {
		var keep *etree.Element
		for _, c := range cell.ChildElements() {
			if keep == nil && isW(c, "p") {
				keep = c
				continue
			}
			if !isW(c, "tcPr") {
				cell.RemoveChild(c)
			}
		}
		if keep == nil {
			keep = cell.CreateElement("w:p")
		}
		for _, c := range keep.ChildElements() {
			if !isW(c, "pPr") {
				keep.RemoveChild(c)
			}
		}
		if i == 0 {
			keep.AddChild(newTextRun(text))
		}
	}
	return clone
}

// rowLocator walks every table of a part, nested tables included.
type rowLocator struct {
	rows []placeholder.Row
}

var _ placeholder.RowLocator = (*rowLocator)(nil)

// newRowLocator indexes the rows of doc. Tables are numbered in document
// order; a nested table gets its own number.
func newRowLocator(doc *etree.Document) *rowLocator {
	loc := &rowLocator{}
	for i, tbl := range collect(doc.Root(), "tbl") {
		for _, tr := range directChildren(tbl, "tr") {
			loc.rows = append(loc.rows, &tableRow{el: tr, table: i})
		}
	}
	return loc
}

func (l *rowLocator) Rows() []placeholder.Row { return l.rows }
