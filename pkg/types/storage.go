package types

import "errors"

// Storage defines the interface for the persistence collaborator. Callers
// attach to a backend, access tables by name, and detach when done. The
// schema engine itself never creates, updates, or deletes records; it is a
// pure service consulted by the application that drives Storage.
type Storage interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Storage to the backend described by config.
	// Creates the DataDir if it does not exist.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, table operations return ErrStorageDetached.
	Detach() error
}

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Standard table names for Storage.GetTable.
const (
	TableTemplates      = "templates"
	TableCustomizations = "customizations"
	TableEntries        = "entries"
	TableObservations   = "observations"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableTemplates,
	TableCustomizations,
	TableEntries,
	TableObservations,
}

// Storage lifecycle errors.
var (
	ErrStorageDetached = errors.New("storage is detached")
	ErrAlreadyAttached = errors.New("storage is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)
