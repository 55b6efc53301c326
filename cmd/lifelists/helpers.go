// Shared helpers for lifelists CLI commands: storage attachment, catalog
// wiring, and output formatting.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/internal/sqlite"
	"github.com/mesh-intelligence/lifelists/pkg/types"
)

// session bundles the attached backend with the in-memory catalog built
// from it. Every subcommand opens a session, works, and closes it.
type session struct {
	backend  *sqlite.Backend
	store    *catalog.Store
	compiler *catalog.Compiler
	tiers    *catalog.TierTracker
}

// openSession attaches the SQLite backend and assembles the template
// catalog: built-ins from configuration, user templates and customization
// logs from storage. The caller must defer Close.
func openSession() (*session, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := sqlite.NewBackend()
	err = backend.Attach(types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dataDir,
		DatabaseFile: appConfig.Database.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	s := &session{backend: backend, store: catalog.NewStore()}
	if err := s.loadCatalog(); err != nil {
		backend.Detach()
		return nil, err
	}
	return s, nil
}

// Close detaches the backend.
func (s *session) Close() error {
	return s.backend.Detach()
}

// loadCatalog registers built-in templates from config, then user
// templates and customization logs from storage.
func (s *session) loadCatalog() error {
	builtIns, err := appConfig.Templates()
	if err != nil {
		return fmt.Errorf("load built-in templates: %w", err)
	}
	for _, tpl := range builtIns {
		if err := s.store.Register(tpl); err != nil {
			return fmt.Errorf("register built-in %q: %w", tpl.Name, err)
		}
	}

	templatesTable, err := s.backend.GetTable(types.TableTemplates)
	if err != nil {
		return err
	}
	stored, err := templatesTable.Fetch(nil)
	if err != nil {
		return fmt.Errorf("load stored templates: %w", err)
	}
	for _, item := range stored {
		tpl := item.(*types.Template)
		if err := s.store.Register(tpl); err != nil {
			return fmt.Errorf("register template %q: %w", tpl.Name, err)
		}
	}

	s.store.SetUsageChecker(s.backend)
	s.compiler = catalog.NewCompiler(s.store)
	s.tiers = catalog.NewTierTracker(s.compiler)

	customizationsTable, err := s.backend.GetTable(types.TableCustomizations)
	if err != nil {
		return err
	}
	logs, err := customizationsTable.Fetch(nil)
	if err != nil {
		return fmt.Errorf("load customizations: %w", err)
	}
	for _, item := range logs {
		log := item.(*types.CustomizationLog)
		err := s.compiler.SetCustomizations(log.TemplateName, log.Ops)
		if errors.Is(err, types.ErrTemplateNotFound) {
			// Stale log for a template that no longer exists.
			continue
		}
		if err != nil {
			return fmt.Errorf("replay customizations for %q: %w", log.TemplateName, err)
		}
	}
	return nil
}

// persistCustomizations writes the compiler's current log for a template
// back to storage.
func (s *session) persistCustomizations(templateName string) error {
	table, err := s.backend.GetTable(types.TableCustomizations)
	if err != nil {
		return err
	}
	log := &types.CustomizationLog{
		TemplateName: templateName,
		Ops:          s.compiler.Customizations(templateName),
	}
	if _, err := table.Set(templateName, log); err != nil {
		return fmt.Errorf("persist customizations for %q: %w", templateName, err)
	}
	return nil
}

// findEntry resolves an entry reference: a UUID first, then a unique
// template+name match.
func (s *session) findEntry(templateName, ref string) (*types.Entry, error) {
	table, err := s.backend.GetTable(types.TableEntries)
	if err != nil {
		return nil, err
	}

	if item, err := table.Get(ref); err == nil {
		return item.(*types.Entry), nil
	}

	matches, err := table.Fetch(map[string]any{
		"template_name": templateName,
		"name":          ref,
	})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no %s entry %q", types.ErrNotFound, templateName, ref)
	case 1:
		return matches[0].(*types.Entry), nil
	default:
		return nil, fmt.Errorf("%w: %d entries named %q, use the entry ID", types.ErrInvalidID, len(matches), ref)
	}
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// printViolations renders a validation report for humans, or as JSON when
// --json is set.
func printViolations(report *types.ValidationReport) {
	if flagJSON {
		printJSON(report)
		return
	}
	for _, v := range report.Violations {
		fmt.Fprintf(os.Stderr, "  %s\n", v.String())
	}
}
