package types

import (
	"errors"
	"time"
)

// Entry errors.
var (
	ErrFieldNotFound = errors.New("field not found")
)

// Entry is one tracked subject under a template: one species, one book, one
// place. It references its template by name (lookup only; the template store
// detects deletion conflicts), holds the current tier, and maps field names
// to values satisfying the compiled schema. An entry owns its observations:
// deleting an entry cascades.
type Entry struct {
	EntryID      string         `json:"entry_id"` // UUID v7, generated on creation.
	TemplateName string         `json:"template_name"`
	Name         string         `json:"name"` // Display name of the subject (required, non-empty).
	Tier         string         `json:"tier"`
	Fields       map[string]any `json:"fields"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SetField sets a field value on the entry. The entry itself performs no
// schema checks; callers validate through the record validator first.
func (e *Entry) SetField(name string, value any) {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[name] = value
	e.UpdatedAt = time.Now().UTC()
}

// GetField returns the value of a field on this entry.
// Returns ErrFieldNotFound if the name has no value.
func (e *Entry) GetField(name string) (any, error) {
	v, ok := e.Fields[name]
	if !ok {
		return nil, ErrFieldNotFound
	}
	return v, nil
}

// ApplyRecord replaces the entry's tier and field values with an accepted
// validation result.
func (e *Entry) ApplyRecord(rec ValidatedRecord) {
	e.Tier = rec.Tier
	e.Fields = rec.Fields
	e.UpdatedAt = time.Now().UTC()
}
