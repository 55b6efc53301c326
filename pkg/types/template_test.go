package types

import (
	"errors"
	"testing"
)

func validTemplate() *Template {
	return &Template{
		Name:            "Books",
		Tiers:           []string{"read", "currently reading", "want to read", "abandoned"},
		EntryTerm:       "book",
		ObservationTerm: "reading",
		Fields: []FieldSpec{
			{Name: "Author", Type: FieldTypeText, Required: true},
			{Name: "Year", Type: FieldTypeNumber},
			ratingSpec("Rating", 5),
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr error
	}{
		{"valid", func(*Template) {}, nil},
		{"empty name", func(tpl *Template) { tpl.Name = "" }, ErrInvalidName},
		{"no tiers", func(tpl *Template) { tpl.Tiers = nil }, ErrNoTiers},
		{"empty tier", func(tpl *Template) { tpl.Tiers = []string{"read", " "} }, ErrInvalidName},
		{"duplicate tier", func(tpl *Template) { tpl.Tiers = []string{"read", "read"} }, ErrDuplicateTier},
		{"duplicate field", func(tpl *Template) {
			tpl.Fields = append(tpl.Fields, FieldSpec{Name: "Author", Type: FieldTypeText})
		}, ErrDuplicateFieldName},
		{"malformed field options", func(tpl *Template) {
			tpl.Fields[2].Rating = nil
		}, ErrOptionsMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(tpl)
			err := tpl.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplateHasTier(t *testing.T) {
	tpl := validTemplate()
	if !tpl.HasTier("read") {
		t.Error(`HasTier("read") = false`)
	}
	if tpl.HasTier("lost") {
		t.Error(`HasTier("lost") = true`)
	}
}

func TestTemplateClone(t *testing.T) {
	tpl := validTemplate()
	clone := tpl.Clone()
	clone.Tiers[0] = "mutated"
	clone.Fields[2].Rating.Max = 10
	if tpl.Tiers[0] != "read" {
		t.Error("Clone shares the tiers slice with the original")
	}
	if tpl.Fields[2].Rating.Max != 5 {
		t.Error("Clone shares field options with the original")
	}
}
