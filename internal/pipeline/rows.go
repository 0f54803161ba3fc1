package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// tableTagPattern matches the table and row tags the row walker tracks.
var tableTagPattern = regexp.MustCompile(`(?i)<(/?)(table|tr)\b[^>]*>`)

// Syntax is the loop marker syntax understood by the markup renderer.
var Syntax = placeholder.Syntax{
	Begin: func(b placeholder.Binding) string {
		return fmt.Sprintf("{%% for %s in %s %%}", b.Iterator, b.List)
	},
	End:       "{% endfor %}",
	LoopIndex: "forloop.Counter",
}

// markupRow is a <tr>...</tr> span of the source.
type markupRow struct {
	start, end int // byte offsets of "<tr" and just past "</tr>"
	table      int
	text       string
	begin, fin string
}

var _ placeholder.Row = (*markupRow)(nil)

func (r *markupRow) Table() int                                { return r.table }
func (r *markupRow) Text() string                              { return r.text }
func (r *markupRow) RewriteTokens(fn func(text string) string) { r.text = fn(r.text) }

func (r *markupRow) WrapLoop(begin, end string) error {
	r.begin, r.fin = begin, end
	return nil
}

// openRow is a row whose closing tag has not been seen yet.
type openRow struct {
	start    int
	table    int
	depth    int
	hasChild bool
}

// rowLocator finds rows with a pattern walk over the tags only, so it copes
// with markup an HTML parser would rearrange. Only innermost rows are
// reported: a row holding a nested table never matches an anchor that
// belongs to one of the nested rows.
type rowLocator struct {
	src  string
	rows []*markupRow
}

var _ placeholder.RowLocator = (*rowLocator)(nil)

func newRowLocator(src string) *rowLocator {
	loc := &rowLocator{src: src}

	var tables []int // ids of the open tables, innermost last
	var open []openRow
	nextTable := 0

	for _, m := range tableTagPattern.FindAllStringSubmatchIndex(src, -1) {
		closing := m[3] > m[2]
		tag := strings.ToLower(src[m[4]:m[5]])
		depth := len(tables)

		switch {
		case tag == "table" && !closing:
			if n := len(open); n > 0 {
				open[n-1].hasChild = true
			}
			tables = append(tables, nextTable)
			nextTable++

		case tag == "table" && closing:
			// Rows left open inside the table end with it.
			for len(open) > 0 && open[len(open)-1].depth >= depth {
				open = open[:len(open)-1]
			}
			if depth > 0 {
				tables = tables[:depth-1]
			}

		case tag == "tr" && !closing:
			// An unclosed sibling row is dropped.
			if n := len(open); n > 0 && open[n-1].depth == depth {
				open = open[:n-1]
			}
			table := -1
			if depth > 0 {
				table = tables[depth-1]
			}
			open = append(open, openRow{start: m[0], table: table, depth: depth})

		case tag == "tr" && closing:
			n := len(open)
			if n == 0 || open[n-1].depth != depth {
				continue
			}
			row := open[n-1]
			open = open[:n-1]
			if row.hasChild {
				continue
			}
			loc.rows = append(loc.rows, &markupRow{
				start: row.start,
				end:   m[1],
				table: row.table,
				text:  src[row.start:m[1]],
			})
		}
	}

	sort.Slice(loc.rows, func(i, j int) bool { return loc.rows[i].start < loc.rows[j].start })
	return loc
}

func (l *rowLocator) Rows() []placeholder.Row {
	rows := make([]placeholder.Row, len(l.rows))
	for i, r := range l.rows {
		rows[i] = r
	}
	return rows
}

// String reassembles the source with every row's rewritten text and loop
// markers.
func (l *rowLocator) String() string {
	var b strings.Builder
	b.Grow(len(l.src))
	pos := 0
	for _, r := range l.rows {
		b.WriteString(l.src[pos:r.start])
		b.WriteString(r.begin)
		b.WriteString(r.text)
		b.WriteString(r.fin)
		pos = r.end
	}
	b.WriteString(l.src[pos:])
	return b.String()
}

// InjectLoops wraps each anchor row of src in a for-loop over its list and
// qualifies the row's mapped tokens with the loop variable. src should be
// preprocessed so that tokens are contiguous.
func InjectLoops(src string, bindings []placeholder.Binding) (string, placeholder.Report, error) {
	loc := newRowLocator(src)
	report, err := placeholder.Expand(loc, bindings, Syntax)
	if err != nil {
		return src, report, err
	}
	return loc.String(), report, nil
}
