package catalog

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// Compiler merges a template's default fields with its customization log
// into an effective schema. Compiled schemas are cached per template and
// invalidated whenever the log or the underlying template changes; the
// validator never re-derives field lists from the raw template.
type Compiler struct {
	store *Store

	mu    sync.Mutex
	ops   map[string][]types.Customization
	cache map[string]cachedSchema
}

// cachedSchema pairs a compiled snapshot with the store revision and log
// length it was built from.
type cachedSchema struct {
	schema   *types.EffectiveSchema
	revision uint64
	opCount  int
}

// NewCompiler creates a compiler over the given store.
func NewCompiler(store *Store) *Compiler {
	return &Compiler{
		store: store,
		ops:   make(map[string][]types.Customization),
		cache: make(map[string]cachedSchema),
	}
}

// Schema returns the effective schema for the named template, compiling it
// if no current snapshot is cached. The returned schema is an immutable
// snapshot; callers may hold it across goroutines.
func (c *Compiler) Schema(templateName string) (*types.EffectiveSchema, error) {
	rev := c.store.Revision(templateName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[templateName]; ok &&
		cached.revision == rev && cached.opCount == len(c.ops[templateName]) {
		return cached.schema, nil
	}

	tpl, err := c.store.Get(templateName)
	if err != nil {
		return nil, err
	}
	schema, err := Compile(tpl, c.ops[templateName])
	if err != nil {
		return nil, err
	}
	c.cache[templateName] = cachedSchema{
		schema:   schema,
		revision: rev,
		opCount:  len(c.ops[templateName]),
	}
	return schema, nil
}

// Customize appends operations to a template's log. The extended log is
// validated by a trial replay before anything is committed, so a rejected
// operation leaves the log and the cache untouched.
func (c *Compiler) Customize(templateName string, ops ...types.Customization) error {
	tpl, err := c.store.Get(templateName)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	extended := append(append([]types.Customization(nil), c.ops[templateName]...), ops...)
	if _, err := Compile(tpl, extended); err != nil {
		return err
	}
	c.ops[templateName] = extended
	delete(c.cache, templateName)
	return nil
}

// Customizations returns a copy of the template's operation log.
func (c *Compiler) Customizations(templateName string) []types.Customization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Customization(nil), c.ops[templateName]...)
}

// SetCustomizations replaces a template's log wholesale, validating it by
// replay first. Used when loading persisted logs at startup.
func (c *Compiler) SetCustomizations(templateName string, ops []types.Customization) error {
	tpl, err := c.store.Get(templateName)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := Compile(tpl, ops); err != nil {
		return err
	}
	c.ops[templateName] = append([]types.Customization(nil), ops...)
	delete(c.cache, templateName)
	return nil
}

// Invalidate drops the cached schema for a template. The store bumps its
// revision on register/delete, so this is only needed when a caller knows
// a snapshot must not outlive the current operation.
func (c *Compiler) Invalidate(templateName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, templateName)
}

// Compile replays an ordered customization log over a template's default
// fields and returns the resulting effective schema. Compilation is
// deterministic and order-sensitive:
//   - add_field validates the spec and fails with ErrDuplicateFieldName on
//     a name collision with any field present at that point of the replay;
//   - remove_field of a name not present is a no-op;
//   - reorder places the listed names first in the given sequence, keeps
//     unlisted fields after them in their existing order, and fails with
//     ErrUnknownFieldName if the order names a field that does not exist.
func Compile(tpl *types.Template, ops []types.Customization) (*types.EffectiveSchema, error) {
	fields := make([]types.FieldSpec, len(tpl.Fields))
	for i := range tpl.Fields {
		fields[i] = tpl.Fields[i].Clone()
	}

	for i, op := range ops {
		var err error
		switch op.Op {
		case types.OpAddField:
			fields, err = applyAdd(fields, op)
		case types.OpRemoveField:
			fields = applyRemove(fields, op.Name)
		case types.OpReorder:
			fields, err = applyReorder(fields, op.Order)
		default:
			err = fmt.Errorf("%w: %q", types.ErrInvalidOperation, op.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("customization %d for template %q: %w", i, tpl.Name, err)
		}
	}

	return &types.EffectiveSchema{
		TemplateName:    tpl.Name,
		EntryTerm:       tpl.EntryTerm,
		ObservationTerm: tpl.ObservationTerm,
		Tiers:           append([]string(nil), tpl.Tiers...),
		Fields:          fields,
	}, nil
}

func applyAdd(fields []types.FieldSpec, op types.Customization) ([]types.FieldSpec, error) {
	if op.Field == nil {
		return nil, fmt.Errorf("%w: add_field without a field spec", types.ErrInvalidOperation)
	}
	spec := op.Field.Clone()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Name == spec.Name {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateFieldName, spec.Name)
		}
	}
	return append(fields, spec), nil
}

func applyRemove(fields []types.FieldSpec, name string) []types.FieldSpec {
	out := fields[:0]
	for _, f := range fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func applyReorder(fields []types.FieldSpec, order []string) ([]types.FieldSpec, error) {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		byName[f.Name] = i
	}

	out := make([]types.FieldSpec, 0, len(fields))
	picked := make(map[string]bool, len(order))
	for _, name := range order {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownFieldName, name)
		}
		if picked[name] {
			return nil, fmt.Errorf("%w: reorder lists %q twice", types.ErrInvalidOperation, name)
		}
		picked[name] = true
		out = append(out, fields[i])
	}
	// Unlisted fields keep their relative order after the listed ones.
	for _, f := range fields {
		if !picked[f.Name] {
			out = append(out, f)
		}
	}
	return out, nil
}
