// This file implements the customizations table accessor: one persisted
// operation log per template name, replayed by the schema compiler at
// startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

var _ types.Table = (*customizationsTable)(nil)

// customizationsTable stores each template's customization log as a single
// JSON-encoded row keyed by template name. Get and Fetch return
// *types.CustomizationLog.
type customizationsTable struct {
	backend *Backend
}

// Get retrieves the log for a template name.
// Returns ErrNotFound if the template has no persisted customizations.
func (ct *customizationsTable) Get(templateName string) (any, error) {
	if templateName == "" {
		return nil, types.ErrInvalidID
	}

	row := ct.backend.db.QueryRow(
		"SELECT template_name, ops FROM customizations WHERE template_name = ?",
		templateName,
	)
	log, err := hydrateCustomizationLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting customizations for %q: %w", templateName, err)
	}
	return log, nil
}

// Set replaces the persisted log for a template.
func (ct *customizationsTable) Set(id string, data any) (string, error) {
	log, ok := data.(*types.CustomizationLog)
	if !ok {
		return "", types.ErrInvalidData
	}
	if log.TemplateName == "" || (id != "" && id != log.TemplateName) {
		return "", types.ErrInvalidData
	}

	opsJSON, err := json.Marshal(log.Ops)
	if err != nil {
		return "", fmt.Errorf("encoding customizations: %w", err)
	}

	_, err = ct.backend.db.Exec(
		`INSERT INTO customizations (template_name, ops, updated_at)
         VALUES (?, ?, ?)
         ON CONFLICT(template_name) DO UPDATE SET
             ops = excluded.ops,
             updated_at = excluded.updated_at`,
		log.TemplateName, string(opsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("persisting customizations for %q: %w", log.TemplateName, err)
	}
	return log.TemplateName, nil
}

// Delete removes a template's persisted log.
func (ct *customizationsTable) Delete(templateName string) error {
	if templateName == "" {
		return types.ErrInvalidID
	}
	res, err := ct.backend.db.Exec(
		"DELETE FROM customizations WHERE template_name = ?", templateName,
	)
	if err != nil {
		return fmt.Errorf("deleting customizations for %q: %w", templateName, err)
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

// Fetch returns every persisted log ordered by template name. No filter
// keys are supported.
func (ct *customizationsTable) Fetch(filter map[string]any) ([]any, error) {
	if len(filter) != 0 {
		return nil, fmt.Errorf("%w: customizations support no filters", types.ErrInvalidData)
	}

	rows, err := ct.backend.db.Query(
		"SELECT template_name, ops FROM customizations ORDER BY template_name",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching customizations: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		log, err := hydrateCustomizationLog(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating customizations: %w", err)
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

// hydrateCustomizationLog scans one customizations row.
func hydrateCustomizationLog(row rowScanner) (*types.CustomizationLog, error) {
	var log types.CustomizationLog
	var opsJSON string

	if err := row.Scan(&log.TemplateName, &opsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(opsJSON), &log.Ops); err != nil {
		return nil, fmt.Errorf("decoding customizations: %w", err)
	}
	return &log, nil
}
