package pipeline

import (
	"html"

	"github.com/alnah/go-docfill/internal/placeholder"
)

// Fallback substitutes bare-name tokens with their escaped scalar values and
// removes control tags. Names absent from data render empty; list and
// mapping values, and any token that is not a bare name, are left as is.
func Fallback(src string, data map[string]any) string {
	out := replaceTokens(src, func(expr string) (string, bool) {
		v, ok := data[expr]
		if !ok {
			return "", true
		}
		if placeholder.IsList(v) {
			return "", false
		}
		if _, isMap := v.(map[string]any); isMap {
			return "", false
		}
		return html.EscapeString(placeholder.Stringify(v)), true
	})
	return placeholder.StripStatements(out)
}
