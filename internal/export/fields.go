package export

import (
	"sort"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// orderedFields arranges a stored field map into schema order. Schema
// fields come first, in schema order, including those stored as nil.
// Values for fields the schema no longer knows follow alphabetically so
// nothing the user entered is silently dropped.
func orderedFields(schema *types.EffectiveSchema, values map[string]any) []FieldValue {
	out := make([]FieldValue, 0, len(values))
	seen := make(map[string]bool, len(values))

	for _, spec := range schema.Fields {
		value, ok := values[spec.Name]
		if !ok {
			continue
		}
		seen[spec.Name] = true
		out = append(out, FieldValue{Name: spec.Name, Value: value})
	}

	var extras []string
	for name := range values {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		out = append(out, FieldValue{Name: name, Value: values[name]})
	}
	return out
}
