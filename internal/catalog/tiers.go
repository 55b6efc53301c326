package catalog

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// TierTracker enforces that tier transitions only ever land on a tier
// present in the entry's template at the moment of the call. Checks are
// late-bound against the current compiled schema, so a template's tier
// vocabulary can evolve without the tracker holding stale state.
type TierTracker struct {
	compiler *Compiler
}

// NewTierTracker creates a tracker over the given compiler.
func NewTierTracker(compiler *Compiler) *TierTracker {
	return &TierTracker{compiler: compiler}
}

// SetTier moves the entry to newTier.
// Returns ErrUnknownTier if newTier is not in the owning template's current
// vocabulary; the entry is left unchanged.
func (t *TierTracker) SetTier(entry *types.Entry, newTier string) error {
	schema, err := t.compiler.Schema(entry.TemplateName)
	if err != nil {
		return err
	}
	if !schema.HasTier(newTier) {
		return fmt.Errorf("%w: %q is not a tier of template %q (allowed: %s)",
			types.ErrUnknownTier, newTier, entry.TemplateName, strings.Join(schema.Tiers, ", "))
	}
	entry.Tier = newTier
	return nil
}

// Check verifies that the entry's stored tier still exists in its template.
// An entry whose tier was removed by a template edit is flagged with
// ErrOrphanedTier rather than silently accepted on read.
func (t *TierTracker) Check(entry *types.Entry) error {
	schema, err := t.compiler.Schema(entry.TemplateName)
	if err != nil {
		return err
	}
	if !schema.HasTier(entry.Tier) {
		return fmt.Errorf("%w: entry %q holds tier %q", types.ErrOrphanedTier, entry.EntryID, entry.Tier)
	}
	return nil
}
