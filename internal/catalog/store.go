package catalog

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// UsageChecker reports whether entries currently reference a template.
// The persistence collaborator implements this; the store consults it so a
// template deletion while entries exist surfaces as a conflict instead of
// orphaning the entries silently.
type UsageChecker interface {
	TemplateInUse(name string) (bool, error)
}

// Store holds named category templates, built-in plus user-defined, keyed
// by template name. Reads may run concurrently from multiple callers;
// registration and deletion are serialized behind the write lock.
type Store struct {
	mu        sync.RWMutex
	templates map[string]*types.Template
	order     []string          // registration order, for deterministic List
	revs      map[string]uint64 // bumped on every mutation of a name
	usage     UsageChecker
}

// NewStore creates an empty template store.
func NewStore() *Store {
	return &Store{
		templates: make(map[string]*types.Template),
		revs:      make(map[string]uint64),
	}
}

// SetUsageChecker wires the entry-usage check consulted by Delete.
// A nil checker disables the conflict check.
func (s *Store) SetUsageChecker(u UsageChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = u
}

// Register adds a template to the store. The template is validated first;
// a malformed definition fails the whole operation and the store is left
// unchanged. A name collision returns ErrDuplicateName rather than
// overwriting.
func (s *Store) Register(tpl *types.Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[tpl.Name]; exists {
		return fmt.Errorf("%w: %q", types.ErrDuplicateName, tpl.Name)
	}
	s.templates[tpl.Name] = tpl.Clone()
	s.order = append(s.order, tpl.Name)
	s.revs[tpl.Name]++
	return nil
}

// Get returns a copy of the named template.
// Returns ErrTemplateNotFound if no template has that name.
func (s *Store) Get(name string) (*types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrTemplateNotFound, name)
	}
	return tpl.Clone(), nil
}

// List returns copies of all templates in registration order. The order is
// stable so exports reproduce byte-identically across runs.
func (s *Store) List() []*types.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Template, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.templates[name].Clone())
	}
	return out
}

// Delete removes a user template from the store.
// Returns ErrBuiltInTemplate for built-ins, ErrTemplateInUse when entries
// still reference the template, and ErrTemplateNotFound for unknown names.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrTemplateNotFound, name)
	}
	if tpl.BuiltIn {
		return fmt.Errorf("%w: %q", types.ErrBuiltInTemplate, name)
	}
	if s.usage != nil {
		inUse, err := s.usage.TemplateInUse(name)
		if err != nil {
			return fmt.Errorf("checking template usage: %w", err)
		}
		if inUse {
			return fmt.Errorf("%w: %q", types.ErrTemplateInUse, name)
		}
	}

	delete(s.templates, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.revs[name]++
	return nil
}

// Revision returns a counter that changes whenever the named template is
// registered or deleted. The compiler compares revisions to decide whether
// a cached effective schema is still current.
func (s *Store) Revision(name string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revs[name]
}
