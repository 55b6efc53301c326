// Package main provides the lifelists CLI: personal catalogues of things
// seen, read, visited, and collected, stored locally in SQLite.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// Exit codes: 1 for user errors (bad input, validation failures), 2 for
// system errors (storage, config).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isUserError(err) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}

// isUserError classifies errors the user can fix by changing input.
func isUserError(err error) bool {
	for _, target := range []error{
		types.ErrTemplateNotFound,
		types.ErrDuplicateName,
		types.ErrBuiltInTemplate,
		types.ErrTemplateInUse,
		types.ErrUnknownTier,
		types.ErrOrphanedTier,
		types.ErrUnknownFieldName,
		types.ErrInvalidOperation,
		types.ErrInvalidName,
		types.ErrInvalidFieldType,
		types.ErrOptionsMismatch,
		types.ErrDuplicateFieldName,
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var report *types.ValidationReport
	return errors.As(err, &report)
}
