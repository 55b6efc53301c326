package types

import "errors"

// Config holds backend selection and parameters for Storage.Attach.
type Config struct {
	Backend      string `json:"backend" yaml:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	DatabaseFile string `json:"database_file" yaml:"database_file"` // File name inside DataDir; defaults to lifelists.db.
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultDatabaseFile is the database file name used when Config leaves
// DatabaseFile empty.
const DefaultDatabaseFile = "lifelists.db"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
