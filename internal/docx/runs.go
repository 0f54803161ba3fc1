package docx

import (
	"regexp"

	"github.com/beevik/etree"
)

// spanPattern matches template spans that Word may split across runs.
var spanPattern = regexp.MustCompile(`\{\{.*?\}\}|\{%.*?%\}`)

// consolidateTokens moves every template span of a paragraph into the w:t
// where the span starts, so that each token can be read and rewritten as a
// whole. Text outside spans keeps its run and formatting; emptied w:t
// elements are left in place.
func consolidateTokens(p *etree.Element) {
	nodes := textNodes(p)
	if len(nodes) < 2 {
		return
	}

	texts := make([]string, len(nodes))
	starts := make([]int, len(nodes))
	full := ""
	for i, t := range nodes {
		texts[i] = t.Text()
		starts[i] = len(full)
		full += texts[i]
	}

	spans := spanPattern.FindAllStringIndex(full, -1)
	changed := make([]bool, len(nodes))

	// Walk spans backwards so edits never shift the offsets of earlier spans.
	for k := len(spans) - 1; k >= 0; k-- {
		s, e := spans[k][0], spans[k][1]
		first, last := nodeAt(starts, s), nodeAt(starts, e-1)
		if first == last {
			continue
		}
		localStart := s - starts[first]
		localEnd := e - starts[last]

		texts[first] = texts[first][:localStart] + full[s:e]
		changed[first] = true
		for i := first + 1; i < last; i++ {
			texts[i] = ""
			changed[i] = true
		}
		texts[last] = texts[last][localEnd:]
		changed[last] = true
	}

	for i, t := range nodes {
		if changed[i] {
			setText(t, texts[i])
		}
	}
}

// nodeAt returns the index of the node containing byte offset off.
func nodeAt(starts []int, off int) int {
	idx := 0
	for i, s := range starts {
		if s > off {
			break
		}
		idx = i
	}
	return idx
}
