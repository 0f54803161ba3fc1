package pipeline

import (
	"regexp"
	"strings"
)

// styleBlockPattern matches embedded <style> blocks, attributes included.
var styleBlockPattern = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)

// StripStyleBlocks removes every <style> block. Editor exports carry large
// vendor stylesheets the fixed-layout renderers do not understand.
func StripStyleBlocks(src string) string {
	return styleBlockPattern.ReplaceAllString(src, "")
}

// delimiters are the template spans recovered by NormalizeTokens.
var delimiters = [...][2]string{{"{{", "}}"}, {"{%", "%}"}}

// NormalizeTokens rewrites each {{ ... }} and {% ... %} span so that it holds
// only its expression: interior tags are stripped, entities decoded and
// runs of spaces, non-breaking spaces and newlines collapsed. A span is
// emitted as "{{ expr }}" or "{% stmt %}".
//
// The scan only moves forward, so it is linear in the input size. An
// opening delimiter without a closer leaves the rest of the input as is.
func NormalizeTokens(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	pos := 0
	for pos < len(src) {
		start, kind := nextDelimiter(src, pos)
		if start < 0 {
			break
		}
		open, closing := delimiters[kind][0], delimiters[kind][1]

		end := strings.Index(src[start+len(open):], closing)
		if end < 0 {
			break
		}
		end += start + len(open)

		b.WriteString(src[pos:start])
		raw := src[start : end+len(closing)]
		if inner := cleanExpression(src[start+len(open) : end]); inner != "" {
			b.WriteString(open + " " + inner + " " + closing)
		} else {
			b.WriteString(raw)
		}
		pos = end + len(closing)
	}
	b.WriteString(src[pos:])
	return b.String()
}

// nextDelimiter finds the first opening delimiter at or after pos and
// returns its offset and index in delimiters, or -1.
func nextDelimiter(src string, pos int) (int, int) {
	for i := pos; i+1 < len(src); i++ {
		if src[i] != '{' {
			continue
		}
		switch src[i+1] {
		case '{':
			return i, 0
		case '%':
			return i, 1
		}
	}
	return -1, 0
}

// cleanExpression strips markup from the inside of a template span.
// strings.Fields also splits on U+00A0, which &nbsp; decodes to.
func cleanExpression(s string) string {
	s = stripHTMLTags(s)
	return strings.Join(strings.Fields(s), " ")
}

// Preprocess prepares an editor-exported HTML template for rendering.
func Preprocess(src string) string {
	return NormalizeTokens(StripStyleBlocks(src))
}
