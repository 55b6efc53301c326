// This file implements the templates table accessor for the SQLite backend.
// Only user-defined templates are persisted here; built-ins come from
// configuration and never reach the database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

var _ types.Table = (*templatesTable)(nil)

// templatesTable implements the Table interface for the template entity
// type, keyed by template name.
type templatesTable struct {
	backend *Backend
}

// Get retrieves a template by name.
func (tt *templatesTable) Get(name string) (any, error) {
	if name == "" {
		return nil, types.ErrInvalidID
	}

	row := tt.backend.db.QueryRow(
		"SELECT name, tiers, entry_term, observation_term, fields, built_in, created_at FROM templates WHERE name = ?",
		name,
	)
	tpl, err := hydrateTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting template %q: %w", name, err)
	}
	return tpl, nil
}

// Set persists a template under its name. The id argument, when non-empty,
// must agree with the template's own name.
func (tt *templatesTable) Set(id string, data any) (string, error) {
	tpl, ok := data.(*types.Template)
	if !ok {
		return "", types.ErrInvalidData
	}
	if tpl.Name == "" || (id != "" && id != tpl.Name) {
		return "", types.ErrInvalidData
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}

	tiersJSON, err := json.Marshal(tpl.Tiers)
	if err != nil {
		return "", fmt.Errorf("encoding template tiers: %w", err)
	}
	fieldsJSON, err := json.Marshal(tpl.Fields)
	if err != nil {
		return "", fmt.Errorf("encoding template fields: %w", err)
	}

	builtIn := 0
	if tpl.BuiltIn {
		builtIn = 1
	}

	_, err = tt.backend.db.Exec(
		`INSERT INTO templates (name, tiers, entry_term, observation_term, fields, built_in, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             tiers = excluded.tiers,
             entry_term = excluded.entry_term,
             observation_term = excluded.observation_term,
             fields = excluded.fields,
             built_in = excluded.built_in`,
		tpl.Name, string(tiersJSON), tpl.EntryTerm, tpl.ObservationTerm,
		string(fieldsJSON), builtIn, tpl.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("persisting template %q: %w", tpl.Name, err)
	}
	return tpl.Name, nil
}

// Delete removes a template row by name.
func (tt *templatesTable) Delete(name string) error {
	if name == "" {
		return types.ErrInvalidID
	}
	res, err := tt.backend.db.Exec("DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting template %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Fetch returns all persisted templates ordered by name. No filter keys
// are supported.
func (tt *templatesTable) Fetch(filter map[string]any) ([]any, error) {
	if len(filter) != 0 {
		return nil, fmt.Errorf("%w: templates support no filters", types.ErrInvalidData)
	}

	rows, err := tt.backend.db.Query(
		"SELECT name, tiers, entry_term, observation_term, fields, built_in, created_at FROM templates ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching templates: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		tpl, err := hydrateTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating template: %w", err)
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

// hydrateTemplate scans one templates row into a *types.Template.
func hydrateTemplate(row rowScanner) (*types.Template, error) {
	var tpl types.Template
	var tiersJSON, fieldsJSON, createdAt string
	var builtIn int

	if err := row.Scan(&tpl.Name, &tiersJSON, &tpl.EntryTerm,
		&tpl.ObservationTerm, &fieldsJSON, &builtIn, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tiersJSON), &tpl.Tiers); err != nil {
		return nil, fmt.Errorf("decoding template tiers: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &tpl.Fields); err != nil {
		return nil, fmt.Errorf("decoding template fields: %w", err)
	}
	tpl.BuiltIn = builtIn != 0
	var err error
	if tpl.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &tpl, nil
}
