package catalog

import (
	"testing"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

func booksSchema(t *testing.T) *types.EffectiveSchema {
	t.Helper()
	_, c := newBooksCompiler(t)
	schema, err := c.Schema("Books")
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	return schema
}

func TestValidateRecordAccepts(t *testing.T) {
	schema := booksSchema(t)

	rec, report := ValidateRecord(schema, map[string]any{
		"Author":    "  Octavia Butler ",
		"Publisher": "Doubleday",
		"Year":      1979,
		"Genre":     "science fiction",
		"Rating":    5,
	}, "read")
	if !report.OK() {
		t.Fatalf("valid record rejected: %v", report)
	}
	if rec.Tier != "read" {
		t.Errorf("tier = %q, want read", rec.Tier)
	}
	if rec.Fields["Author"] != "Octavia Butler" {
		t.Errorf("text not trimmed: %q", rec.Fields["Author"])
	}
	if rec.Fields["Year"] != float64(1979) {
		t.Errorf("number not normalized: %v (%T)", rec.Fields["Year"], rec.Fields["Year"])
	}
	if rec.Fields["Rating"] != int64(5) {
		t.Errorf("rating not normalized: %v (%T)", rec.Fields["Rating"], rec.Fields["Rating"])
	}
}

// A record with a single out-of-range rating produces exactly one report
// entry; the other fields and the tier are accepted.
func TestValidateRecordSingleViolation(t *testing.T) {
	schema := booksSchema(t)

	_, report := ValidateRecord(schema, map[string]any{
		"Author": "X",
		"Rating": 6,
	}, "read")
	if report.OK() {
		t.Fatal("out-of-range rating accepted")
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", report.Violations)
	}
	v := report.Violations[0]
	if v.Field != "Rating" || v.Code != types.ViolationInvalidValue {
		t.Errorf("violation = %+v, want InvalidFieldValue on Rating", v)
	}
}

func TestValidateRecordMissingRequired(t *testing.T) {
	schema := booksSchema(t)

	tests := []struct {
		name   string
		values map[string]any
	}{
		{"absent", map[string]any{}},
		{"nil value", map[string]any{"Author": nil}},
		{"blank after trim", map[string]any{"Author": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, report := ValidateRecord(schema, tt.values, "read")
			if report.OK() {
				t.Fatal("record without required Author accepted")
			}
			if len(report.Violations) != 1 {
				t.Fatalf("violations = %v, want exactly one", report.Violations)
			}
			v := report.Violations[0]
			if v.Field != "Author" || v.Code != types.ViolationMissingRequired {
				t.Errorf("violation = %+v, want MissingRequiredField on Author", v)
			}
		})
	}
}

func TestValidateRecordAbsentOptionalIsNil(t *testing.T) {
	schema := booksSchema(t)

	rec, report := ValidateRecord(schema, map[string]any{"Author": "X"}, "read")
	if !report.OK() {
		t.Fatalf("record rejected: %v", report)
	}
	for _, name := range []string{"Publisher", "Year", "Genre", "Rating"} {
		v, ok := rec.Fields[name]
		if !ok {
			t.Errorf("optional field %q missing from normalized record", name)
		}
		if v != nil {
			t.Errorf("absent optional %q = %v, want nil absence marker", name, v)
		}
	}
}

func TestValidateRecordUnknownTier(t *testing.T) {
	s := NewStore()
	if err := s.Register(travelTemplate()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	schema, err := NewCompiler(s).Schema("Travel")
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}

	_, report := ValidateRecord(schema, map[string]any{"Country": "Iceland"}, "lost")
	if report.OK() {
		t.Fatal("unknown tier accepted")
	}
	v := report.Violations[0]
	if v.Code != types.ViolationUnknownTier {
		t.Errorf("violation code = %s, want %s", v.Code, types.ViolationUnknownTier)
	}
	if len(v.Allowed) != 3 || v.Allowed[0] != "visited" {
		t.Errorf("unknown-tier violation must name the vocabulary, got %v", v.Allowed)
	}
}

func TestValidateRecordUnknownField(t *testing.T) {
	schema := booksSchema(t)

	_, report := ValidateRecord(schema, map[string]any{
		"Author":   "X",
		"Subtitle": "stale",
	}, "read")
	if report.OK() {
		t.Fatal("unknown field accepted")
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", report.Violations)
	}
	v := report.Violations[0]
	if v.Field != "Subtitle" || v.Code != types.ViolationUnknownField {
		t.Errorf("violation = %+v, want UnknownField on Subtitle", v)
	}
}

// Every problem is collected in one pass, in schema order, not just the first.
func TestValidateRecordCollectsAllViolations(t *testing.T) {
	schema := booksSchema(t)

	_, report := ValidateRecord(schema, map[string]any{
		"Year":     "sometime",
		"Rating":   -1,
		"Subtitle": "extra",
	}, "misplaced")
	if report.OK() {
		t.Fatal("record accepted")
	}

	wantCodes := []string{
		types.ViolationUnknownTier,     // tier checked first
		types.ViolationMissingRequired, // Author, schema position 0
		types.ViolationInvalidValue,    // Year
		types.ViolationInvalidValue,    // Rating
		types.ViolationUnknownField,    // Subtitle, after schema fields
	}
	if len(report.Violations) != len(wantCodes) {
		t.Fatalf("violations = %v, want %d entries", report.Violations, len(wantCodes))
	}
	for i, code := range wantCodes {
		if report.Violations[i].Code != code {
			t.Errorf("violation[%d].Code = %s, want %s", i, report.Violations[i].Code, code)
		}
	}
}

func TestValidateObservationRecordWaivesRequired(t *testing.T) {
	schema := booksSchema(t)

	// Observations carry a subset of fields; required flags do not apply.
	rec, report := ValidateObservationRecord(schema, map[string]any{"Rating": 3})
	if !report.OK() {
		t.Fatalf("observation record rejected: %v", report)
	}
	if rec.Fields["Rating"] != int64(3) {
		t.Errorf("Rating = %v, want 3", rec.Fields["Rating"])
	}

	// Present values are still type-checked.
	_, report = ValidateObservationRecord(schema, map[string]any{"Rating": 6})
	if report.OK() {
		t.Fatal("out-of-range rating accepted on observation")
	}

	// Unknown names are still rejected.
	_, report = ValidateObservationRecord(schema, map[string]any{"Weather": "sunny"})
	if report.OK() {
		t.Fatal("unknown observation field accepted")
	}
	if report.Violations[0].Code != types.ViolationUnknownField {
		t.Errorf("violation = %+v, want UnknownField", report.Violations[0])
	}
}
