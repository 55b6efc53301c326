// Package types defines the template, field, entry, and observation entity
// types, the field type registry, validation violations, and standard error
// types for the lifelists schema engine. Everything here is pure: validation
// and normalization never touch storage and never log.
package types
