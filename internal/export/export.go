// Package export writes lifelist data to JSONL files, one record per line.
// Field values appear in effective-schema order so repeated exports of the
// same data are byte-identical.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// Exporter renders entries and their observations for one template as
// JSONL. The schema compiler supplies the field order; storage supplies
// the rows.
type Exporter struct {
	storage       types.Storage
	compiler      *catalog.Compiler
	includePhotos bool
}

// New creates an Exporter. When includePhotos is false, photo references
// are stripped from exported observations.
func New(storage types.Storage, compiler *catalog.Compiler, includePhotos bool) *Exporter {
	return &Exporter{storage: storage, compiler: compiler, includePhotos: includePhotos}
}

// FieldValue is one exported field: the pair keeps schema order intact,
// which a JSON object could not.
type FieldValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ObservationRecord is the exported form of one observation.
type ObservationRecord struct {
	ObservationID string       `json:"observation_id"`
	ObservedAt    string       `json:"observed_at"`
	Location      string       `json:"location,omitempty"`
	Latitude      *float64     `json:"latitude,omitempty"`
	Longitude     *float64     `json:"longitude,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Photos        []string     `json:"photos,omitempty"`
	Fields        []FieldValue `json:"fields"`
}

// EntryRecord is the exported form of one entry together with its
// observations.
type EntryRecord struct {
	EntryID      string              `json:"entry_id"`
	TemplateName string              `json:"template_name"`
	Name         string              `json:"name"`
	Tier         string              `json:"tier"`
	Fields       []FieldValue        `json:"fields"`
	Observations []ObservationRecord `json:"observations"`
	CreatedAt    string              `json:"created_at"`
}

// Template exports every entry of one template to the JSONL file at path.
// Entries keep storage order (creation time); fields follow the template's
// effective schema, with any values for fields no longer in the schema
// appended alphabetically after.
func (e *Exporter) Template(templateName, path string) (int, error) {
	schema, err := e.compiler.Schema(templateName)
	if err != nil {
		return 0, err
	}

	entriesTable, err := e.storage.GetTable(types.TableEntries)
	if err != nil {
		return 0, err
	}
	observationsTable, err := e.storage.GetTable(types.TableObservations)
	if err != nil {
		return 0, err
	}

	items, err := entriesTable.Fetch(map[string]any{"template_name": templateName})
	if err != nil {
		return 0, fmt.Errorf("fetching entries for %q: %w", templateName, err)
	}

	var records []json.RawMessage
	for _, item := range items {
		entry := item.(*types.Entry)
		record, err := e.renderEntry(schema, entry, observationsTable)
		if err != nil {
			return 0, err
		}
		line, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("encoding entry %s: %w", entry.EntryID, err)
		}
		records = append(records, line)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (e *Exporter) renderEntry(schema *types.EffectiveSchema, entry *types.Entry, observations types.Table) (*EntryRecord, error) {
	record := &EntryRecord{
		EntryID:      entry.EntryID,
		TemplateName: entry.TemplateName,
		Name:         entry.Name,
		Tier:         entry.Tier,
		Fields:       orderedFields(schema, entry.Fields),
		Observations: []ObservationRecord{},
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
	}

	items, err := observations.Fetch(map[string]any{"entry_id": entry.EntryID})
	if err != nil {
		return nil, fmt.Errorf("fetching observations for %s: %w", entry.EntryID, err)
	}
	for _, item := range items {
		obs := item.(*types.Observation)
		rendered := ObservationRecord{
			ObservationID: obs.ObservationID,
			ObservedAt:    obs.ObservedAt.UTC().Format(time.RFC3339),
			Location:      obs.Location,
			Latitude:      obs.Latitude,
			Longitude:     obs.Longitude,
			Notes:         obs.Notes,
			Fields:        orderedFields(schema, obs.Fields),
		}
		if e.includePhotos {
			rendered.Photos = obs.Photos
		}
		record.Observations = append(record.Observations, rendered)
	}
	return record, nil
}
