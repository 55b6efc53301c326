// This file implements the entries table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// Compile-time interface check: entriesTable must implement Table.
var _ types.Table = (*entriesTable)(nil)

// entriesTable implements the Table interface for the entry entity type.
// Each operation hydrates/dehydrates between SQLite rows and *types.Entry
// structs; field values travel as one JSON column.
type entriesTable struct {
	backend *Backend
}

// Get retrieves an entry by ID.
func (et *entriesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := et.backend.db.QueryRow(
		"SELECT entry_id, template_name, name, tier, fields, created_at, updated_at FROM entries WHERE entry_id = ?",
		id,
	)
	entry, err := hydrateEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting entry %s: %w", id, err)
	}
	return entry, nil
}

// Set persists an entry. If id is empty, generates a UUID v7 and creates
// the entry; otherwise updates the existing row. Returns the actual ID.
func (et *entriesTable) Set(id string, data any) (string, error) {
	entry, ok := data.(*types.Entry)
	if !ok {
		return "", types.ErrInvalidData
	}
	if entry.Name == "" || entry.TemplateName == "" {
		return "", types.ErrInvalidData
	}

	now := time.Now().UTC()

	if id == "" {
		entry.EntryID = generateUUID()
		entry.CreatedAt = now
		entry.UpdatedAt = now
		if entry.Fields == nil {
			entry.Fields = make(map[string]any)
		}
		id = entry.EntryID
	} else {
		entry.UpdatedAt = now
	}

	fieldsJSON, err := json.Marshal(entry.Fields)
	if err != nil {
		return "", fmt.Errorf("encoding entry fields: %w", err)
	}

	_, err = et.backend.db.Exec(
		`INSERT INTO entries (entry_id, template_name, name, tier, fields, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(entry_id) DO UPDATE SET
             template_name = excluded.template_name,
             name = excluded.name,
             tier = excluded.tier,
             fields = excluded.fields,
             updated_at = excluded.updated_at`,
		id, entry.TemplateName, entry.Name, entry.Tier, string(fieldsJSON),
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("persisting entry %s: %w", id, err)
	}
	return id, nil
}

// Delete removes an entry. Observations cascade through the foreign key.
func (et *entriesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := et.backend.db.Exec("DELETE FROM entries WHERE entry_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
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

// Fetch returns entries matching the filter. Supported filter keys:
// template_name, tier, name. An empty filter returns every entry, ordered
// by creation time then ID for deterministic listings.
func (et *entriesTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT entry_id, template_name, name, tier, fields, created_at, updated_at FROM entries"
	where, args, err := buildFilter(filter, map[string]bool{
		"template_name": true, "tier": true, "name": true,
	})
	if err != nil {
		return nil, err
	}
	query += where + " ORDER BY created_at, entry_id"

	rows, err := et.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		entry, err := hydrateEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateEntry scans one entries row into a *types.Entry.
func hydrateEntry(row rowScanner) (*types.Entry, error) {
	var entry types.Entry
	var fieldsJSON, createdAt, updatedAt string

	if err := row.Scan(&entry.EntryID, &entry.TemplateName, &entry.Name,
		&entry.Tier, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &entry.Fields); err != nil {
		return nil, fmt.Errorf("decoding entry fields: %w", err)
	}
	var err error
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &entry, nil
}

// buildFilter turns a filter map into a WHERE clause over the allowed
// columns. Unknown keys are rejected rather than ignored.
func buildFilter(filter map[string]any, allowed map[string]bool) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []any
	for key, value := range filter {
		if !allowed[key] {
			return "", nil, fmt.Errorf("%w: unknown filter key %q", types.ErrInvalidData, key)
		}
		clauses = append(clauses, key+" = ?")
		args = append(args, value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
