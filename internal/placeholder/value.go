package placeholder

import (
	"fmt"
	"sort"
	"strconv"
)

// Number is a context number that prints without trailing zeros.
// It stays numeric for comparisons inside template expressions.
type Number float64

// String implements fmt.Stringer.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Normalize converts a decoded context into the shapes the evaluators expect:
// floats become Number, lists of mappings become []map[string]any, and
// mappings with non-string keys get string keys. Keys that are not
// identifiers are dropped and returned so callers can report them.
func Normalize(ctx map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(ctx))
	var dropped []string
	for k, v := range ctx {
		if !IsIdent(k) {
			dropped = append(dropped, k)
			continue
		}
		out[k] = normalizeValue(v)
	}
	sort.Strings(dropped)
	return out, dropped
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case float64:
		return Number(t)
	case float32:
		return Number(t)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, iv := range t {
			m[k] = normalizeValue(iv)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, iv := range t {
			m[fmt.Sprint(k)] = normalizeValue(iv)
		}
		return m
	case []map[string]any:
		items := make([]map[string]any, len(t))
		for i, item := range t {
			items[i] = normalizeValue(item).(map[string]any)
		}
		return items
	case []any:
		return normalizeList(t)
	default:
		return v
	}
}

// normalizeList turns a list of mappings into []map[string]any so that
// iterator fields resolve; any other list is normalized element-wise.
func normalizeList(list []any) any {
	items := make([]map[string]any, 0, len(list))
	for _, el := range list {
		m, ok := normalizeValue(el).(map[string]any)
		if !ok {
			out := make([]any, len(list))
			for i, e := range list {
				out[i] = normalizeValue(e)
			}
			return out
		}
		items = append(items, m)
	}
	return items
}

// IsList reports whether a normalized context value is a list.
func IsList(v any) bool {
	switch v.(type) {
	case []map[string]any, []any:
		return true
	}
	return false
}

// Items returns the per-item mappings of a list value. Elements that are not
// mappings are exposed under the key "value".
func Items(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		items := make([]map[string]any, len(t))
		for i, el := range t {
			if m, ok := el.(map[string]any); ok {
				items[i] = m
				continue
			}
			items[i] = map[string]any{"value": el}
		}
		return items
	}
	return nil
}

// Stringify renders a scalar the way it appears in a document.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(t)
	}
}
