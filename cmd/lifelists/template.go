// Template commands for the lifelists CLI: list, show, create, and delete
// category templates.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/lifelists/pkg/types"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage category templates",
}

func init() {
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateDeleteCmd)
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		templates := s.store.List()
		if flagJSON {
			return printJSON(templates)
		}
		for _, tpl := range templates {
			marker := ""
			if tpl.BuiltIn {
				marker = " (built-in)"
			}
			fmt.Printf("%s%s\n  tiers: %s\n", tpl.Name, marker, strings.Join(tpl.Tiers, ", "))
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a template's effective schema",
	Long: `Show prints the schema currently in effect for a template: its default
fields with all customizations applied, in display order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		schema, err := s.compiler.Schema(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(schema)
		}

		fmt.Printf("%s (%s / %s)\n", schema.TemplateName, schema.EntryTerm, schema.ObservationTerm)
		fmt.Println("  tiers:", strings.Join(schema.Tiers, ", "))
		fmt.Println("  fields:")
		for _, spec := range schema.Fields {
			fmt.Printf("    %s\n", describeField(spec))
		}
		return nil
	},
}

// describeField renders one field spec on a single line.
func describeField(spec types.FieldSpec) string {
	var b strings.Builder
	b.WriteString(spec.Name)
	b.WriteString(" [")
	b.WriteString(spec.Type)
	switch spec.Type {
	case types.FieldTypeRating:
		fmt.Fprintf(&b, " %d-%d", types.RatingLowerBound, spec.Rating.Max)
	case types.FieldTypeChoice:
		fmt.Fprintf(&b, ": %s", strings.Join(spec.Choice.Values(), ", "))
	}
	b.WriteString("]")
	if spec.Required {
		b.WriteString(" required")
	}
	return b.String()
}

var templateCreateFile string

var templateCreateCmd = &cobra.Command{
	Use:     "create <name> [definition-json]",
	Aliases: []string{"register"},
	Short:   "Create a user-defined template",
	Long: `Create registers a new template. The definition is a JSON document with
tiers, entry_term, observation_term, and fields, given inline or via --file:

  lifelists template create Vinyl '{
    "tiers": ["owned", "wanted"],
    "entry_term": "record",
    "observation_term": "listen",
    "fields": [
      {"name": "Artist", "type": "text", "required": true},
      {"name": "Rating", "type": "rating", "rating": {"max": 5}}
    ]
  }'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		definition, err := readDefinition(args)
		if err != nil {
			return err
		}

		var tpl types.Template
		if err := json.Unmarshal(definition, &tpl); err != nil {
			return fmt.Errorf("%w: parsing template definition: %v", types.ErrInvalidData, err)
		}
		tpl.Name = args[0]
		tpl.BuiltIn = false

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.Register(&tpl); err != nil {
			return err
		}
		table, err := s.backend.GetTable(types.TableTemplates)
		if err != nil {
			return err
		}
		if _, err := table.Set(tpl.Name, &tpl); err != nil {
			return fmt.Errorf("persist template %q: %w", tpl.Name, err)
		}

		fmt.Printf("Created template %q with %d field(s)\n", tpl.Name, len(tpl.Fields))
		return nil
	},
}

// readDefinition returns the template definition JSON from the second
// argument or the --file flag.
func readDefinition(args []string) ([]byte, error) {
	if templateCreateFile != "" {
		data, err := os.ReadFile(templateCreateFile)
		if err != nil {
			return nil, fmt.Errorf("reading definition file: %w", err)
		}
		return data, nil
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: a definition is required, inline or via --file", types.ErrInvalidData)
	}
	return []byte(args[1]), nil
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user-defined template",
	Long: `Delete removes a user-defined template. Built-in templates cannot be
deleted, and neither can templates that still have entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.Delete(name); err != nil {
			return err
		}
		s.compiler.Invalidate(name)

		table, err := s.backend.GetTable(types.TableTemplates)
		if err != nil {
			return err
		}
		if err := table.Delete(name); err != nil && !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("remove stored template %q: %w", name, err)
		}
		customizations, err := s.backend.GetTable(types.TableCustomizations)
		if err != nil {
			return err
		}
		if err := customizations.Delete(name); err != nil && !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("remove customizations for %q: %w", name, err)
		}

		fmt.Printf("Deleted template %q\n", name)
		return nil
	},
}

func init() {
	templateCreateCmd.Flags().StringVar(&templateCreateFile, "file", "", "read the template definition from a JSON file")
}
