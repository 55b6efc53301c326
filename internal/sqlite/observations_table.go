// This file implements the observations table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

var _ types.Table = (*observationsTable)(nil)

// observationsTable implements the Table interface for the observation
// entity type. Observations belong to an entry; deleting the entry removes
// its observations through the schema's cascade.
type observationsTable struct {
	backend *Backend
}

// Get retrieves an observation by ID.
func (ot *observationsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := ot.backend.db.QueryRow(
		`SELECT observation_id, entry_id, observed_at, location, latitude, longitude, notes, photos, fields, created_at
         FROM observations WHERE observation_id = ?`,
		id,
	)
	obs, err := hydrateObservation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting observation %s: %w", id, err)
	}
	return obs, nil
}

// Set persists an observation. If id is empty, generates a UUID v7 and
// creates the row; otherwise updates it. The owning entry must exist (the
// foreign key rejects orphans). Returns the actual ID.
func (ot *observationsTable) Set(id string, data any) (string, error) {
	obs, ok := data.(*types.Observation)
	if !ok {
		return "", types.ErrInvalidData
	}
	if obs.EntryID == "" {
		return "", types.ErrInvalidData
	}

	now := time.Now().UTC()
	if id == "" {
		obs.ObservationID = generateUUID()
		obs.CreatedAt = now
		if obs.ObservedAt.IsZero() {
			obs.ObservedAt = now
		}
		if obs.Fields == nil {
			obs.Fields = make(map[string]any)
		}
		id = obs.ObservationID
	}

	fieldsJSON, err := json.Marshal(obs.Fields)
	if err != nil {
		return "", fmt.Errorf("encoding observation fields: %w", err)
	}
	photosJSON, err := json.Marshal(obs.Photos)
	if err != nil {
		return "", fmt.Errorf("encoding observation photos: %w", err)
	}

	_, err = ot.backend.db.Exec(
		`INSERT INTO observations (observation_id, entry_id, observed_at, location, latitude, longitude, notes, photos, fields, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(observation_id) DO UPDATE SET
             observed_at = excluded.observed_at,
             location = excluded.location,
             latitude = excluded.latitude,
             longitude = excluded.longitude,
             notes = excluded.notes,
             photos = excluded.photos,
             fields = excluded.fields`,
		id, obs.EntryID, obs.ObservedAt.Format(time.RFC3339), obs.Location,
		obs.Latitude, obs.Longitude, obs.Notes, string(photosJSON),
		string(fieldsJSON), obs.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("persisting observation %s: %w", id, err)
	}
	return id, nil
}

// Delete removes an observation.
func (ot *observationsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := ot.backend.db.Exec("DELETE FROM observations WHERE observation_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting observation %s: %w", id, err)
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

// Fetch returns observations matching the filter. Supported filter key:
// entry_id. Results are ordered by observation time then ID.
func (ot *observationsTable) Fetch(filter map[string]any) ([]any, error) {
	query := `SELECT observation_id, entry_id, observed_at, location, latitude, longitude, notes, photos, fields, created_at
              FROM observations`
	where, args, err := buildFilter(filter, map[string]bool{"entry_id": true})
	if err != nil {
		return nil, err
	}
	query += where + " ORDER BY observed_at, observation_id"

	rows, err := ot.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching observations: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		obs, err := hydrateObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating observation: %w", err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// hydrateObservation scans one observations row into a *types.Observation.
func hydrateObservation(row rowScanner) (*types.Observation, error) {
	var obs types.Observation
	var observedAt, createdAt string
	var location, notes, photosJSON sql.NullString
	var fieldsJSON string

	if err := row.Scan(&obs.ObservationID, &obs.EntryID, &observedAt,
		&location, &obs.Latitude, &obs.Longitude, &notes, &photosJSON,
		&fieldsJSON, &createdAt); err != nil {
		return nil, err
	}

	obs.Location = location.String
	obs.Notes = notes.String
	if photosJSON.Valid && photosJSON.String != "" {
		if err := json.Unmarshal([]byte(photosJSON.String), &obs.Photos); err != nil {
			return nil, fmt.Errorf("decoding observation photos: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &obs.Fields); err != nil {
		return nil, fmt.Errorf("decoding observation fields: %w", err)
	}
	var err error
	if obs.ObservedAt, err = time.Parse(time.RFC3339, observedAt); err != nil {
		return nil, fmt.Errorf("parsing observed_at: %w", err)
	}
	if obs.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &obs, nil
}
