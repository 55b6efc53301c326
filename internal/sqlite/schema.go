package sqlite

import "strings"

// Schema DDL for all tables. The templates table holds user-defined
// templates only; built-ins live in configuration and are seeded into the
// store at startup without touching the database.
const (
	createTemplates = `CREATE TABLE IF NOT EXISTS templates (
    name TEXT PRIMARY KEY,
    tiers TEXT NOT NULL,
    entry_term TEXT NOT NULL,
    observation_term TEXT NOT NULL,
    fields TEXT NOT NULL,
    built_in INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`

	createCustomizations = `CREATE TABLE IF NOT EXISTS customizations (
    template_name TEXT PRIMARY KEY,
    ops TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    entry_id TEXT PRIMARY KEY,
    template_name TEXT NOT NULL,
    name TEXT NOT NULL,
    tier TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createObservations = `CREATE TABLE IF NOT EXISTS observations (
    observation_id TEXT PRIMARY KEY,
    entry_id TEXT NOT NULL,
    observed_at TEXT NOT NULL,
    location TEXT,
    latitude REAL,
    longitude REAL,
    notes TEXT,
    photos TEXT,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (entry_id) REFERENCES entries(entry_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxEntriesTemplate  = `CREATE INDEX IF NOT EXISTS idx_entries_template ON entries(template_name);`
	idxEntriesTier      = `CREATE INDEX IF NOT EXISTS idx_entries_tier ON entries(template_name, tier);`
	idxObservationsEntry = `CREATE INDEX IF NOT EXISTS idx_observations_entry ON observations(entry_id);`
)

// schemaDDL lists all statements in dependency order.
var schemaDDL = []string{
	createTemplates,
	createCustomizations,
	createEntries,
	createObservations,
	idxEntriesTemplate,
	idxEntriesTier,
	idxObservationsEntry,
}

// schemaSQL returns the full DDL executed on Attach.
func schemaSQL() string {
	return strings.Join(schemaDDL, "\n")
}
