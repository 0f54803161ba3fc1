package placeholder

import "fmt"

// Row is one table row located in a template, whatever the backing format.
type Row interface {
	// Table identifies the table holding the row, unique within one document.
	Table() int
	// Text returns the row's concatenated text content.
	Text() string
	// RewriteTokens applies fn to every text fragment of the row in place.
	RewriteTokens(fn func(text string) string)
	// WrapLoop surrounds the row with loop-begin and loop-end markers.
	WrapLoop(begin, end string) error
}

// RowLocator walks a template and yields its table rows in document order.
// A row never spans another row's boundary.
type RowLocator interface {
	Rows() []Row
}

// Syntax describes the loop markers understood by a renderer.
type Syntax struct {
	Begin     func(b Binding) string // loop-begin marker for a binding
	End       string                 // loop-end marker
	LoopIndex string                 // expression replacing {{ loop_index }}
}

// Expansion records one anchor row turned into a per-item row template.
type Expansion struct {
	Anchor string
	List   string
	Table  int
}

// Report summarizes what Expand did to a template.
type Report struct {
	Expanded []Expansion
	Unused   []string // anchors never found
}

// Expand turns every anchor row into a per-item row template: the row is
// wrapped in loop markers and its mapped tokens are qualified with the
// iterator. Unmapped tokens are left untouched.
//
// Bindings are applied in order. A row claimed by one binding is not seen by
// later bindings, and each binding expands at most one row per table.
func Expand(loc RowLocator, bindings []Binding, syn Syntax) (Report, error) {
	var report Report
	rows := loc.Rows()
	claimed := make(map[int]bool, len(rows))

	for _, b := range bindings {
		if err := b.Validate(); err != nil {
			return report, err
		}

		found := false
		tables := make(map[int]bool)
		for i, row := range rows {
			if claimed[i] || tables[row.Table()] {
				continue
			}
			if !Contains(row.Text(), b.Anchor) {
				continue
			}

			row.RewriteTokens(func(text string) string {
				return RewriteSimple(text, func(name string) (string, bool) {
					if name == LoopIndexName && syn.LoopIndex != "" {
						return syn.LoopIndex, true
					}
					return b.Qualify(name)
				})
			})
			if err := row.WrapLoop(syn.Begin(b), syn.End); err != nil {
				return report, fmt.Errorf("wrapping row for anchor %q: %w", b.Anchor, err)
			}

			claimed[i] = true
			tables[row.Table()] = true
			found = true
			report.Expanded = append(report.Expanded, Expansion{Anchor: b.Anchor, List: b.List, Table: row.Table()})
		}
		if !found {
			report.Unused = append(report.Unused, b.Anchor)
		}
	}
	return report, nil
}
