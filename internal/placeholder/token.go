package placeholder

import (
	"regexp"
	"strings"
)

// ImageSentinel prefixes a context value that references an image file
// instead of literal text, e.g. "IMAGE_PATH:/tmp/chart.png".
const ImageSentinel = "IMAGE_PATH:"

// LoopIndexName is the template-author spelling of the 1-based loop counter.
const LoopIndexName = "loop_index"

var (
	// tokenPattern matches any {{ ... }} span that does not contain a closing brace.
	tokenPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

	// simpleTokenPattern matches a token holding a bare identifier.
	simpleTokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

	// statementPattern matches {% ... %} control tags.
	statementPattern = regexp.MustCompile(`\{%-?[^%]*-?%\}`)

	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Token is a placeholder occurrence inside a text.
type Token struct {
	Start int    // byte offset of "{{"
	End   int    // byte offset just past "}}"
	Expr  string // trimmed expression between the delimiters
}

// Find returns every {{ ... }} token in s, left to right.
func Find(s string) []Token {
	locs := tokenPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{
			Start: loc[0],
			End:   loc[1],
			Expr:  strings.TrimSpace(s[loc[2]:loc[3]]),
		})
	}
	return tokens
}

// Contains reports whether s holds a {{ name }} token for the given identifier,
// with any amount of whitespace inside the delimiters.
func Contains(s, name string) bool {
	for _, m := range simpleTokenPattern.FindAllStringSubmatch(s, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// Format renders an expression as a normalized token: "{{ expr }}".
func Format(expr string) string {
	return "{{ " + expr + " }}"
}

// IsIdent reports whether s is a bare identifier usable as a context key.
func IsIdent(s string) bool {
	return identPattern.MatchString(s)
}

// RewriteSimple replaces every bare-identifier token in s using fn.
// fn returns the replacement expression and true, or false to keep the token.
func RewriteSimple(s string, fn func(name string) (string, bool)) string {
	return simpleTokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := simpleTokenPattern.FindStringSubmatch(tok)[1]
		expr, ok := fn(name)
		if !ok {
			return tok
		}
		return Format(expr)
	})
}

// FindStatements returns every {% ... %} tag in s, left to right.
func FindStatements(s string) []string {
	return statementPattern.FindAllString(s, -1)
}

// StripStatements removes {% ... %} control tags from s.
func StripStatements(s string) string {
	return statementPattern.ReplaceAllString(s, "")
}

// IsImageRef reports whether a rendered value uses the image sentinel.
func IsImageRef(v string) bool {
	return strings.HasPrefix(v, ImageSentinel)
}

// ImagePath extracts the file path from a sentinel value.
func ImagePath(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(v, ImageSentinel))
}
