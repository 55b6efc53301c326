// Package lifelists holds module-level metadata shared by the CLI and
// library consumers.
package lifelists

// Version is the current lifelists release.
const Version = "0.1.0"
