package types

import "errors"

// Customization operations. Customizations form an ordered operation log
// replayed over a template's default field list; replay is deterministic
// and order-sensitive.
const (
	OpAddField    = "add_field"
	OpRemoveField = "remove_field"
	OpReorder     = "reorder"
)

// Customization errors.
var (
	ErrUnknownFieldName = errors.New("unknown field name")
	ErrInvalidOperation = errors.New("invalid customization operation")
)

// Customization is one entry of a template's operation log. Exactly one
// payload is consulted per op: Field for add_field, Name for remove_field,
// Order for reorder.
type Customization struct {
	Op    string     `json:"op"`
	Field *FieldSpec `json:"field,omitempty"`
	Name  string     `json:"name,omitempty"`
	Order []string   `json:"order,omitempty"`
}

// CustomizationLog pairs a template name with its ordered operation log,
// as persisted by the storage collaborator and replayed at startup.
type CustomizationLog struct {
	TemplateName string          `json:"template_name"`
	Ops          []Customization `json:"ops"`
}

// EffectiveSchema is the compiled, customization-applied field list plus the
// inherited tier vocabulary and term pair. It is the only structure the
// record validator consults. Once compiled a schema is an immutable
// snapshot: safe to share across goroutines without locking, and discarded
// rather than mutated when customizations change.
type EffectiveSchema struct {
	TemplateName    string      `json:"template_name"`
	EntryTerm       string      `json:"entry_term"`
	ObservationTerm string      `json:"observation_term"`
	Tiers           []string    `json:"tiers"`
	Fields          []FieldSpec `json:"fields"`
}

// Field returns the spec with the given name and whether it exists.
func (s *EffectiveSchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// HasTier reports whether the given tier is in the schema's vocabulary.
func (s *EffectiveSchema) HasTier(tier string) bool {
	for _, name := range s.Tiers {
		if name == tier {
			return true
		}
	}
	return false
}

// FieldNames returns the field names in schema order.
func (s *EffectiveSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
