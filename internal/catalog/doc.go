// Package catalog implements the lifelists schema engine: the template
// store, the schema compiler with its effective-schema cache, the record
// validator, and the tier state tracker. The engine is a pure synchronous
// service; the only shared mutable state is the store's registry and the
// compiler's cache, both guarded for concurrent readers with serialized
// writers. Compiled schemas are immutable snapshots, safe to share across
// goroutines once handed out.
package catalog
