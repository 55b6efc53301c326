package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field types determine what values a field accepts.
const (
	FieldTypeText   = "text"
	FieldTypeNumber = "number"
	FieldTypeRating = "rating"
	FieldTypeChoice = "choice"
)

// validFieldTypes is the set of recognized field types.
var validFieldTypes = map[string]bool{
	FieldTypeText:   true,
	FieldTypeNumber: true,
	FieldTypeRating: true,
	FieldTypeChoice: true,
}

// Field definition errors. These are schema-definition failures: they are
// detected when a template is constructed or customized, never during
// record validation.
var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidFieldType   = errors.New("invalid field type")
	ErrOptionsMismatch    = errors.New("options do not match field type")
	ErrDuplicateFieldName = errors.New("duplicate field name")
)

// RatingLowerBound is the inclusive lower bound for every rating field.
// A rating of zero means unrated; the upper bound comes from RatingOptions.
const RatingLowerBound = 0

// RatingOptions carries the scale for a rating field.
type RatingOptions struct {
	Max int64 `json:"max"` // Inclusive upper bound; must be >= 1.
}

// ChoiceOption is one selectable option of a choice field.
type ChoiceOption struct {
	Label string `json:"label"` // Display text.
	Value string `json:"value"` // Stored value; unique within the field.
}

// ChoiceOptions carries the allowed options for a choice field.
type ChoiceOptions struct {
	Options []ChoiceOption `json:"options"`
}

// Values returns the stored values of all options in declaration order.
func (c *ChoiceOptions) Values() []string {
	vals := make([]string, len(c.Options))
	for i, opt := range c.Options {
		vals[i] = opt.Value
	}
	return vals
}

// FieldSpec defines one field of a template: its name, type, required flag,
// and the type-specific options payload. Exactly one of Rating and Choice is
// set when Type is "rating" or "choice" respectively; both are nil for
// "text" and "number". The pairing is checked by Validate, so a spec that
// passed Validate can never claim one type while carrying another type's
// options.
type FieldSpec struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Required bool           `json:"required"`
	Rating   *RatingOptions `json:"rating,omitempty"`
	Choice   *ChoiceOptions `json:"choice,omitempty"`
}

// IsValidFieldType reports whether the given string is a recognized field type.
func IsValidFieldType(ft string) bool {
	return validFieldTypes[ft]
}

// Validate checks that the spec is well-formed: non-empty name, recognized
// type, and an options payload matching the type.
// Returns ErrInvalidName, ErrInvalidFieldType, or ErrOptionsMismatch.
func (f *FieldSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrInvalidName
	}
	if !validFieldTypes[f.Type] {
		return fmt.Errorf("field %q: %w: %q", f.Name, ErrInvalidFieldType, f.Type)
	}
	switch f.Type {
	case FieldTypeText, FieldTypeNumber:
		if f.Rating != nil || f.Choice != nil {
			return fmt.Errorf("field %q: %w: %s fields carry no options", f.Name, ErrOptionsMismatch, f.Type)
		}
	case FieldTypeRating:
		if f.Rating == nil || f.Choice != nil {
			return fmt.Errorf("field %q: %w: rating fields require a max option", f.Name, ErrOptionsMismatch)
		}
		if f.Rating.Max < 1 {
			return fmt.Errorf("field %q: %w: rating max must be positive", f.Name, ErrOptionsMismatch)
		}
	case FieldTypeChoice:
		if f.Choice == nil || f.Rating != nil {
			return fmt.Errorf("field %q: %w: choice fields require an options list", f.Name, ErrOptionsMismatch)
		}
		if len(f.Choice.Options) == 0 {
			return fmt.Errorf("field %q: %w: choice fields need at least one option", f.Name, ErrOptionsMismatch)
		}
		seen := make(map[string]bool, len(f.Choice.Options))
		for _, opt := range f.Choice.Options {
			if seen[opt.Value] {
				return fmt.Errorf("field %q: %w: duplicate option value %q", f.Name, ErrOptionsMismatch, opt.Value)
			}
			seen[opt.Value] = true
		}
	}
	return nil
}

// Clone returns a deep copy of the spec. Compiled schemas hand out clones so
// a cached snapshot can never be mutated through a shared options pointer.
func (f *FieldSpec) Clone() FieldSpec {
	out := FieldSpec{Name: f.Name, Type: f.Type, Required: f.Required}
	if f.Rating != nil {
		r := *f.Rating
		out.Rating = &r
	}
	if f.Choice != nil {
		c := ChoiceOptions{Options: make([]ChoiceOption, len(f.Choice.Options))}
		copy(c.Options, f.Choice.Options)
		out.Choice = &c
	}
	return out
}

// NormalizeValue checks a raw candidate value against the spec and returns
// the normalized typed value: a trimmed string for text, a float64 for
// number, an int64 for rating, and the matched option value for choice.
// On failure it returns a Violation tagged with the field name; the spec
// itself is assumed well-formed (see Validate).
//
// NormalizeValue is a pure function of spec and value. A nil raw value is
// the caller's absence marker and is rejected here; callers handle absence
// before delegating.
func NormalizeValue(spec FieldSpec, raw any) (any, *Violation) {
	switch spec.Type {
	case FieldTypeText:
		s, ok := raw.(string)
		if !ok {
			return nil, invalidValue(spec.Name, fmt.Sprintf("expected text, got %T", raw))
		}
		return strings.TrimSpace(s), nil

	case FieldTypeNumber:
		n, err := toFloat(raw)
		if err != nil {
			return nil, invalidValue(spec.Name, err.Error())
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, invalidValue(spec.Name, "value must be finite")
		}
		return n, nil

	case FieldTypeRating:
		n, err := toInt(raw)
		if err != nil {
			return nil, invalidValue(spec.Name, err.Error())
		}
		if n < RatingLowerBound || n > spec.Rating.Max {
			return nil, invalidValue(spec.Name,
				fmt.Sprintf("rating %d outside range %d-%d", n, RatingLowerBound, spec.Rating.Max))
		}
		return n, nil

	case FieldTypeChoice:
		s, ok := raw.(string)
		if !ok {
			return nil, invalidValue(spec.Name, fmt.Sprintf("expected choice value, got %T", raw))
		}
		for _, opt := range spec.Choice.Options {
			if opt.Value == s {
				return s, nil
			}
		}
		allowed := spec.Choice.Values()
		return nil, &Violation{
			Field:   spec.Name,
			Code:    ViolationInvalidChoice,
			Message: fmt.Sprintf("%q is not one of: %s", s, strings.Join(allowed, ", ")),
			Allowed: allowed,
		}

	default:
		// Unreachable for specs that passed Validate.
		return nil, invalidValue(spec.Name, fmt.Sprintf("unknown field type %q", spec.Type))
	}
}

// invalidValue builds an InvalidFieldValue violation for the given field.
func invalidValue(field, message string) *Violation {
	return &Violation{Field: field, Code: ViolationInvalidValue, Message: message}
}

// toFloat coerces the numeric representations that reach the engine from
// JSON decoding, CLI flags, and SQLite hydration into a float64.
func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

// toInt coerces a raw value to int64, rejecting fractional floats.
func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", raw)
	}
}
