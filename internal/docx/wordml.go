package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// WordprocessingML namespaces declared on drawings.
const (
	nsWP = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// isW reports whether e is the w:<tag> element. Word always binds the
// main namespace to the "w" prefix.
func isW(e *etree.Element, tag string) bool {
	return e != nil && e.Space == "w" && e.Tag == tag
}

// collect returns the w:<tag> descendants of root in document order.
// Subtrees rooted at a w:<skip> element are not entered.
func collect(root *etree.Element, tag string, skip ...string) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if c.Space == "w" && containsString(skip, c.Tag) {
				continue
			}
			if isW(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// textNodes returns the w:t elements carrying e's own text, ignoring nested
// tables and text boxes.
func textNodes(e *etree.Element) []*etree.Element {
	return collect(e, "t", "tbl", "txbxContent")
}

// textOf concatenates e's own text.
func textOf(e *etree.Element) string {
	var b strings.Builder
	for _, t := range textNodes(e) {
		b.WriteString(t.Text())
	}
	return b.String()
}

// setText replaces a w:t's text and keeps surrounding spaces significant.
func setText(t *etree.Element, s string) {
	t.SetText(s)
	if strings.TrimSpace(s) != s && t.SelectAttr("xml:space") == nil {
		t.CreateAttr("xml:space", "preserve")
	}
}

// directChildren returns the w:<tag> children of e.
func directChildren(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if isW(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// ancestor returns the nearest w:<tag> ancestor of e, or nil.
func ancestor(e *etree.Element, tag string) *etree.Element {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if isW(p, tag) {
			return p
		}
	}
	return nil
}

// newTextRun builds <w:r><w:t>text</w:t></w:r>.
func newTextRun(text string) *etree.Element {
	r := etree.NewElement("w:r")
	setText(r.CreateElement("w:t"), text)
	return r
}

// newPageBreak builds a paragraph holding a single page break.
func newPageBreak() *etree.Element {
	p := etree.NewElement("w:p")
	br := p.CreateElement("w:r").CreateElement("w:br")
	br.CreateAttr("w:type", "page")
	return p
}

// insertBefore places el immediately before ref under ref's parent.
func insertBefore(ref, el *etree.Element) {
	ref.Parent().InsertChildAt(ref.Index(), el)
}

// insertAfter places el immediately after ref under ref's parent.
func insertAfter(ref, el *etree.Element) {
	ref.Parent().InsertChildAt(ref.Index()+1, el)
}

// ensureNamespace declares prefix on the root when it is missing.
func ensureNamespace(doc *etree.Document, prefix, uri string) {
	root := doc.Root()
	if root.SelectAttr("xmlns:"+prefix) == nil {
		root.CreateAttr("xmlns:"+prefix, uri)
	}
}
