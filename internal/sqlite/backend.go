// Package sqlite implements the SQLite persistence backend for lifelists.
// The backend is a collaborator of the schema engine: it stores templates,
// customization logs, entries, and observations, and performs no schema
// validation of its own.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// Backend implements the Storage interface over a SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]types.Table
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]types.Table),
	}
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrStorageDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStorageDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, opens the database file named by
// the config (lifelists.db by default), and applies the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dbFile := config.DatabaseFile
	if dbFile == "" {
		dbFile = types.DefaultDatabaseFile
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	if err != nil {
		return err
	}

	// Entry deletion cascades to observations through foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL()); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true

	b.tables[types.TableTemplates] = &templatesTable{backend: b}
	b.tables[types.TableCustomizations] = &customizationsTable{backend: b}
	b.tables[types.TableEntries] = &entriesTable{backend: b}
	b.tables[types.TableObservations] = &observationsTable{backend: b}

	return nil
}

// Detach closes the database connection. After Detach, table operations
// return ErrStorageDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)

	return nil
}

// TemplateInUse reports whether any entries reference the named template.
// The template store consults this before deleting a template.
func (b *Backend) TemplateInUse(name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStorageDetached
	}

	var count int
	err := b.db.QueryRow(
		"SELECT COUNT(*) FROM entries WHERE template_name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting entries for template %q: %w", name, err)
	}
	return count > 0, nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}
