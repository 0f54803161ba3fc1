package docx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/alnah/go-docfill/internal/placeholder"
)

var (
	loopBeginPattern = regexp.MustCompile(`\{%-?\s*tr\s+for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+([A-Za-z_][A-Za-z0-9_.]*)\s*-?%\}`)
	loopEndPattern   = regexp.MustCompile(`\{%-?\s*tr\s+endfor\s*-?%\}`)
)

// Render resolves every token and row loop of the content parts of pkg
// against data. It never fails on token content: unparseable tokens are left
// untouched and reported as warnings. Errors are returned only for parts that
// cannot be read as XML or images that cannot be embedded in the package.
func Render(pkg *Package, data map[string]any, ev *placeholder.Evaluator) ([]placeholder.Diagnostic, error) {
	var diags []placeholder.Diagnostic
	for _, part := range pkg.ContentParts() {
		doc, err := pkg.XML(part)
		if err != nil {
			return diags, err
		}
		for _, p := range collect(doc.Root(), "p") {
			consolidateTokens(p)
		}

		r := &renderer{
			part:   part,
			doc:    doc,
			ev:     ev,
			images: newImageEmbedder(pkg, part, doc),
		}
		r.renderTree(doc.Root(), data)
		if r.err != nil {
			return diags, r.err
		}
		diags = append(diags, r.diags...)
	}
	return diags, nil
}

// renderer holds the state for rendering one part.
type renderer struct {
	part   string
	doc    *etree.Document
	ev     *placeholder.Evaluator
	images *imageEmbedder
	diags  []placeholder.Diagnostic
	err    error
}

func (r *renderer) warn(token, msg string) {
	r.diags = append(r.diags, placeholder.Diagnostic{
		Severity: placeholder.SeverityWarning,
		Where:    r.part,
		Token:    token,
		Message:  msg,
	})
}

func (r *renderer) note(token, msg string) {
	r.diags = append(r.diags, placeholder.Diagnostic{
		Severity: placeholder.SeverityInfo,
		Where:    r.part,
		Token:    token,
		Message:  msg,
	})
}

// renderTree renders the paragraphs under e and expands the loops of the
// tables under e, all against scope.
func (r *renderer) renderTree(e *etree.Element, scope map[string]any) {
	if isW(e, "tbl") {
		r.renderTable(e, scope)
		return
	}
	if isW(e, "p") {
		r.renderParagraph(e, scope)
	}
	for _, c := range e.ChildElements() {
		if r.err != nil {
			return
		}
		r.renderTree(c, scope)
	}
}

// renderTable expands the marker-delimited loops of a table. Rows between a
// begin and an end marker are cloned once per item and rendered with the
// iterator bound to that item; the marker rows and the template rows are
// then removed. Other rows render against scope.
func (r *renderer) renderTable(tbl *etree.Element, scope map[string]any) {
	rows := directChildren(tbl, "tr")
	for i := 0; i < len(rows); i++ {
		if r.err != nil {
			return
		}
		m := loopBeginPattern.FindStringSubmatch(textOf(rows[i]))
		if m == nil {
			r.renderTree(rows[i], scope)
			continue
		}

		end := -1
		for j := i + 1; j < len(rows); j++ {
			if loopEndPattern.MatchString(textOf(rows[j])) {
				end = j
				break
			}
		}
		if end == -1 {
			r.warn(m[0], "loop marker row has no matching end row")
			r.renderTree(rows[i], scope)
			continue
		}

		r.expandLoop(rows[i], rows[i+1:end], rows[end], m[1], m[2], scope)
		i = end
	}
}

func (r *renderer) expandLoop(begin *etree.Element, body []*etree.Element, end *etree.Element, iter, list string, scope map[string]any) {
	value, _ := lookup(scope, list)
	if value != nil && !placeholder.IsList(value) {
		r.warn(list, "loop source is not a list")
	}
	items := placeholder.Items(value)

	parent := end.Parent()
	for i, item := range items {
		itemScope := childScope(scope, iter, item, i, len(items))
		for _, row := range body {
			clone := row.Copy()
			parent.InsertChildAt(end.Index(), clone)
			r.renderTree(clone, itemScope)
		}
	}

	parent.RemoveChild(begin)
	for _, row := range body {
		parent.RemoveChild(row)
	}
	parent.RemoveChild(end)
}

// childScope derives the scope of one loop iteration.
func childScope(parent map[string]any, iter string, item map[string]any, i, n int) map[string]any {
	scope := make(map[string]any, len(parent)+2)
	for k, v := range parent {
		scope[k] = v
	}
	scope[iter] = item
	scope["loop"] = map[string]any{
		"index":    i + 1,
		"index0":   i,
		"revindex": n - i,
		"first":    i == 0,
		"last":     i == n-1,
		"length":   n,
	}
	return scope
}

// lookup resolves a dotted name against nested mappings.
func lookup(scope map[string]any, name string) (any, bool) {
	var cur any = scope
	for _, key := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// renderParagraph substitutes the tokens of a paragraph's own text nodes.
func (r *renderer) renderParagraph(p *etree.Element, scope map[string]any) {
	for _, t := range textNodes(p) {
		if r.err != nil {
			return
		}
		r.renderText(t, scope)
	}
	r.reportStatements(p)
}

// reportStatements warns about control tags that survive rendering. Only row
// loops are expanded in DOCX templates; any other statement stays as text.
// Loop markers left behind are reported by renderTable.
func (r *renderer) reportStatements(p *etree.Element) {
	for _, stmt := range placeholder.FindStatements(textOf(p)) {
		if loopBeginPattern.MatchString(stmt) {
			continue
		}
		r.warn(stmt, "control statement outside a row loop left as text")
	}
}

// renderText substitutes the tokens of one w:t. An image value splits the
// run: text before the token stays, the picture follows in its own run, and
// the remaining text moves to a copy of the original run.
func (r *renderer) renderText(t *etree.Element, scope map[string]any) {
	text := t.Text()
	tokens := placeholder.Find(text)
	if len(tokens) == 0 {
		return
	}

	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		b.WriteString(text[last:tok.Start])
		raw := text[tok.Start:tok.End]
		last = tok.End

		val, err := r.ev.Eval(tok.Expr, scope)
		if err != nil {
			r.warn(raw, err.Error())
			b.WriteString(raw)
			continue
		}
		if placeholder.IsImageRef(val) {
			setText(t, b.String())
			r.placeImage(t, placeholder.ImagePath(val), raw, text[last:], scope)
			return
		}
		b.WriteString(val)
	}
	b.WriteString(text[last:])
	setText(t, b.String())
}

// placeImage inserts the picture for an image token after t's run, then
// carries rest into a new run that is rendered in turn.
func (r *renderer) placeImage(t *etree.Element, file, raw, rest string, scope map[string]any) {
	run := t.Parent()
	if run == nil || !isW(run, "r") {
		r.warn(raw, "image token outside a text run")
		return
	}

	var tail *etree.Element
	if rest != "" {
		tail = splitRunAfter(run, t)
		setText(firstText(tail), rest)
	}

	drawing, err := r.images.drawingRun(file, availableWidth(run, r.doc))
	switch {
	case errors.Is(err, errImageMissing):
		r.note(raw, fmt.Sprintf("image file %s not found, rendered empty", file))
	case errors.Is(err, errImageUnsupported):
		r.warn(raw, err.Error())
	case err != nil:
		r.err = fmt.Errorf("embedding image %s in %s: %w", file, r.part, err)
		return
	default:
		insertAfter(run, drawing)
	}

	if tail != nil {
		if err == nil {
			insertAfter(drawing, tail)
		} else {
			insertAfter(run, tail)
		}
		r.renderText(firstText(tail), scope)
	}
}

// splitRunAfter returns a copy of run that keeps its properties and the
// content following t; that content is removed from run. The copy's first
// w:t is the copy of t itself.
func splitRunAfter(run, t *etree.Element) *etree.Element {
	idx := -1
	children := run.ChildElements()
	for i, c := range children {
		if c == t {
			idx = i
		}
	}

	tail := run.Copy()
	tailChildren := tail.ChildElements()
	for i, c := range tailChildren {
		if i < idx && !isW(c, "rPr") {
			tail.RemoveChild(c)
		}
	}
	for i, c := range children {
		if i > idx {
			run.RemoveChild(c)
		}
	}
	return tail
}

func firstText(run *etree.Element) *etree.Element {
	for _, c := range run.ChildElements() {
		if isW(c, "t") {
			return c
		}
	}
	return run.CreateElement("w:t")
}
