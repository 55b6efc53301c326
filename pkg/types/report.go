package types

import (
	"fmt"
	"strings"
)

// Violation codes identify the kind of each record-validation failure.
// All of these are recoverable: the caller renders the report and resubmits.
const (
	ViolationMissingRequired = "missing_required_field"
	ViolationInvalidValue    = "invalid_field_value"
	ViolationInvalidChoice   = "invalid_choice"
	ViolationUnknownField    = "unknown_field"
	ViolationUnknownTier     = "unknown_tier"
	ViolationOrphanedTier    = "orphaned_tier"
)

// Violation describes one rejected field or tier of a candidate record.
type Violation struct {
	Field   string   `json:"field,omitempty"` // Field name, or empty for tier violations.
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Allowed []string `json:"allowed,omitempty"` // Allowed values for invalid_choice and unknown_tier.
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
	return fmt.Sprintf("%s (%s): %s", v.Field, v.Code, v.Message)
}

// ValidationReport collects every violation found in one validation pass,
// in schema order. Validation is all-or-nothing per record: a non-empty
// report means the record was rejected as a whole.
//
// ValidationReport implements error so callers can propagate it through
// ordinary error returns and recover it with errors.As.
type ValidationReport struct {
	Violations []Violation `json:"violations"`
}

// Add appends a violation to the report.
func (r *ValidationReport) Add(v Violation) {
	r.Violations = append(r.Violations, v)
}

// OK reports whether the record passed with no violations.
func (r *ValidationReport) OK() bool {
	return r == nil || len(r.Violations) == 0
}

// Error renders every violation, one per line.
func (r *ValidationReport) Error() string {
	if r.OK() {
		return "record is valid"
	}
	lines := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("record rejected with %d violation(s):\n%s",
		len(r.Violations), strings.Join(lines, "\n"))
}

// ValidatedRecord is an accepted, normalized record: the tier plus every
// schema field keyed by name. Optional fields absent from the candidate are
// present with a nil value (the type-appropriate absence marker).
type ValidatedRecord struct {
	Tier   string         `json:"tier,omitempty"`
	Fields map[string]any `json:"fields"`
}
