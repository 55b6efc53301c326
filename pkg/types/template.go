package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Template definition errors.
var (
	ErrNoTiers       = errors.New("template must define at least one tier")
	ErrDuplicateTier = errors.New("duplicate tier name")
)

// Template store errors.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrDuplicateName    = errors.New("template name already registered")
	ErrBuiltInTemplate  = errors.New("built-in template cannot be deleted or renamed")
	ErrTemplateInUse    = errors.New("template has existing entries")
)

// Tier errors.
var (
	ErrUnknownTier  = errors.New("unknown tier")
	ErrOrphanedTier = errors.New("stored tier no longer exists in template")
)

// Template is a named category definition: the tier vocabulary, the pair of
// domain nouns, and the default field list. Built-in templates are seeded
// from configuration at startup and cannot be deleted or renamed; their
// field lists may still be extended through customizations.
type Template struct {
	Name            string      `json:"name"`
	Tiers           []string    `json:"tiers"`
	EntryTerm       string      `json:"entry_term"`       // Noun for one tracked subject ("species", "book").
	ObservationTerm string      `json:"observation_term"` // Noun for one dated event ("sighting", "reading").
	Fields          []FieldSpec `json:"fields"`
	BuiltIn         bool        `json:"built_in"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Validate checks the template definition: non-empty name, at least one
// tier, tiers non-empty and unique, and every field spec well-formed with a
// unique name. A failure here is fatal to the operation that produced the
// template (config load or user registration), never coerced.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if len(t.Tiers) == 0 {
		return fmt.Errorf("template %q: %w", t.Name, ErrNoTiers)
	}
	seenTiers := make(map[string]bool, len(t.Tiers))
	for _, tier := range t.Tiers {
		if strings.TrimSpace(tier) == "" {
			return fmt.Errorf("template %q: %w: empty tier name", t.Name, ErrInvalidName)
		}
		if seenTiers[tier] {
			return fmt.Errorf("template %q: %w: %q", t.Name, ErrDuplicateTier, tier)
		}
		seenTiers[tier] = true
	}
	seenFields := make(map[string]bool, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		if err := f.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		if seenFields[f.Name] {
			return fmt.Errorf("template %q: %w: %q", t.Name, ErrDuplicateFieldName, f.Name)
		}
		seenFields[f.Name] = true
	}
	return nil
}

// HasTier reports whether the given tier is in the template's vocabulary.
func (t *Template) HasTier(tier string) bool {
	for _, name := range t.Tiers {
		if name == tier {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	out := &Template{
		Name:            t.Name,
		Tiers:           append([]string(nil), t.Tiers...),
		EntryTerm:       t.EntryTerm,
		ObservationTerm: t.ObservationTerm,
		Fields:          make([]FieldSpec, len(t.Fields)),
		BuiltIn:         t.BuiltIn,
		CreatedAt:       t.CreatedAt,
	}
	for i := range t.Fields {
		out.Fields[i] = t.Fields[i].Clone()
	}
	return out
}
