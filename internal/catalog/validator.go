package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// ValidateRecord checks a candidate entry record against an effective
// schema and its tier vocabulary. Validation is all-or-nothing: any
// violation yields a full report covering every problem, collected in
// schema order, and no normalized record.
//
// On success the returned record holds the tier plus every schema field:
// present values are normalized by the field type registry, absent optional
// fields carry nil (the type-appropriate absence marker, never a
// type-violating placeholder).
func ValidateRecord(schema *types.EffectiveSchema, values map[string]any, tier string) (types.ValidatedRecord, *types.ValidationReport) {
	report := &types.ValidationReport{}

	if !schema.HasTier(tier) {
		report.Add(types.Violation{
			Code:    types.ViolationUnknownTier,
			Message: fmt.Sprintf("%q is not a tier of template %q (allowed: %s)", tier, schema.TemplateName, strings.Join(schema.Tiers, ", ")),
			Allowed: append([]string(nil), schema.Tiers...),
		})
	}

	fields := validateFields(schema, values, report, false)
	reportUnknownFields(schema, values, report)

	if !report.OK() {
		return types.ValidatedRecord{}, report
	}
	return types.ValidatedRecord{Tier: tier, Fields: fields}, nil
}

// ValidateObservationRecord checks an observation's field subset against
// the schema. Observations carry an optional subset of the entry's fields,
// so required flags are waived: only present values are type-checked, and
// unknown names are still rejected. No tier applies.
func ValidateObservationRecord(schema *types.EffectiveSchema, values map[string]any) (types.ValidatedRecord, *types.ValidationReport) {
	report := &types.ValidationReport{}

	fields := validateFields(schema, values, report, true)
	reportUnknownFields(schema, values, report)

	if !report.OK() {
		return types.ValidatedRecord{}, report
	}
	return types.ValidatedRecord{Fields: fields}, nil
}

// validateFields walks the schema's fields in order, normalizing present
// values and recording violations. When waiveRequired is set, absent and
// empty values pass regardless of the required flag.
func validateFields(schema *types.EffectiveSchema, values map[string]any, report *types.ValidationReport, waiveRequired bool) map[string]any {
	fields := make(map[string]any, len(schema.Fields))

	for _, spec := range schema.Fields {
		raw, present := values[spec.Name]
		if !present || raw == nil {
			// Absent: either the field is new and the candidate
			// predates it, or the caller left it blank.
			if spec.Required && !waiveRequired {
				report.Add(types.Violation{
					Field:   spec.Name,
					Code:    types.ViolationMissingRequired,
					Message: "required field is missing",
				})
				continue
			}
			fields[spec.Name] = nil
			continue
		}

		normalized, violation := types.NormalizeValue(spec, raw)
		if violation != nil {
			report.Add(*violation)
			continue
		}
		if spec.Required && !waiveRequired && spec.Type == types.FieldTypeText && normalized == "" {
			report.Add(types.Violation{
				Field:   spec.Name,
				Code:    types.ViolationMissingRequired,
				Message: "required field is empty",
			})
			continue
		}
		fields[spec.Name] = normalized
	}
	return fields
}

// reportUnknownFields records a violation for every candidate field name
// the schema does not define. Unknown names indicate a stale customization
// or a caller bug and are never silently dropped. They have no schema
// position, so they are reported alphabetically for determinism.
func reportUnknownFields(schema *types.EffectiveSchema, values map[string]any, report *types.ValidationReport) {
	var unknown []string
	for name := range values {
		if _, ok := schema.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		report.Add(types.Violation{
			Field:   name,
			Code:    types.ViolationUnknownField,
			Message: fmt.Sprintf("template %q defines no field named %q", schema.TemplateName, name),
		})
	}
}
