package placeholder

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidBinding indicates an anchor binding that cannot be applied.
var ErrInvalidBinding = errors.New("invalid anchor binding")

// Binding ties an anchor token to the list that expands its row.
type Binding struct {
	Anchor   string            // token name marking the per-item row
	List     string            // context key holding the items
	Iterator string            // loop variable name
	Fields   map[string]string // token name -> item field name
}

// Validate checks that every name is a usable identifier.
func (b Binding) Validate() error {
	names := [][2]string{{"anchor", b.Anchor}, {"list", b.List}, {"iterator", b.Iterator}}
	for _, n := range names {
		if !IsIdent(n[1]) {
			return fmt.Errorf("%w: %s %q is not an identifier", ErrInvalidBinding, n[0], n[1])
		}
	}
	for _, token := range b.FieldNames() {
		if field := b.Fields[token]; !IsIdent(token) || !IsIdent(field) {
			return fmt.Errorf("%w: field %q -> %q is not an identifier", ErrInvalidBinding, token, field)
		}
	}
	return nil
}

// Qualify returns the iterator-qualified expression for a mapped token.
// The anchor maps to the field of the same name unless the map says otherwise.
// ok is false when the token is not part of the field map.
func (b Binding) Qualify(token string) (expr string, ok bool) {
	field, ok := b.Fields[token]
	if !ok {
		if token != b.Anchor {
			return "", false
		}
		field = token
	}
	return b.Iterator + "." + field, true
}

// FieldNames returns the mapped token names in sorted order.
func (b Binding) FieldNames() []string {
	names := make([]string, 0, len(b.Fields))
	for k := range b.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultBindings reproduces the two lists of the internship annex templates.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Anchor:   "competencia",
			List:     "competencias_list",
			Iterator: "c",
			Fields: map[string]string{
				"competencia": "competencia",
				"asignatura":  "asignatura",
			},
		},
		{
			Anchor:   "actividad",
			List:     "actividades_list",
			Iterator: "a",
			Fields: map[string]string{
				"actividad":   "actividad",
				"horas":       "horas",
				"evidencia":   "evidencia",
				"lugar":       "lugar",
				"ponderacion": "ponderacion",
			},
		},
	}
}
