package types

import "time"

// Observation is a dated event recorded against an entry: a sighting, a
// reading, a visit, a tasting. It may carry its own subset of field values
// (weather, location conditions) distinct from the entry's persistent
// fields; every value present must still satisfy the entry's compiled
// schema, but no field is required of an observation.
type Observation struct {
	ObservationID string         `json:"observation_id"` // UUID v7, generated on creation.
	EntryID       string         `json:"entry_id"`
	ObservedAt    time.Time      `json:"observed_at"`
	Location      string         `json:"location,omitempty"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Photos        []string       `json:"photos,omitempty"` // Paths to attached photo files.
	Fields        map[string]any `json:"fields,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// HasCoordinates reports whether the observation carries a lat/lon pair.
func (o *Observation) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}
