// Entry commands for the lifelists CLI: the subjects being tracked, one
// per template ("Barn Owl" in Wildlife, "Dawn" in Books).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/pkg/types"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage entries",
}

func init() {
	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryShowCmd)
	entryCmd.AddCommand(entrySetCmd)
	entryCmd.AddCommand(entryTierCmd)
	entryCmd.AddCommand(entryDeleteCmd)
}

var (
	entryAddTier   string
	entryAddFields []string
)

var entryAddCmd = &cobra.Command{
	Use:   "add <template> <name>",
	Short: "Add an entry to a lifelist",
	Long: `Add validates the candidate record against the template's effective
schema and stores it. Validation is all-or-nothing: on any violation the
full report prints and nothing is written.

  lifelists entry add Books "Parable of the Sower" --tier read \
    --field "Author=Octavia E. Butler" --field Rating=5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateName, name := args[0], args[1]

		values, err := parseFieldArgs(entryAddFields)
		if err != nil {
			return err
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		schema, err := s.compiler.Schema(templateName)
		if err != nil {
			return err
		}
		record, report := catalog.ValidateRecord(schema, values, entryAddTier)
		if !report.OK() {
			fmt.Fprintf(os.Stderr, "entry rejected with %d violation(s):\n", len(report.Violations))
			printViolations(report)
			return report
		}

		entry := &types.Entry{
			TemplateName: templateName,
			Name:         name,
		}
		entry.ApplyRecord(record)

		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		id, err := table.Set("", entry)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(entry)
		}
		fmt.Printf("Added %s %q (%s)\n", schema.EntryTerm, name, id)
		return nil
	},
}

// parseFieldArgs turns repeated --field key=value flags into a candidate
// record map. Values stay raw strings; the validator coerces them per the
// field's type, so "75" is a valid text value and a valid number alike.
func parseFieldArgs(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: invalid field %q (expected key=value)", types.ErrInvalidData, arg)
		}
		values[key] = raw
	}
	return values, nil
}

var entryListTier string

var entryListCmd = &cobra.Command{
	Use:   "list <template>",
	Short: "List a template's entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		// Resolve the schema first so an unknown template errors cleanly.
		schema, err := s.compiler.Schema(args[0])
		if err != nil {
			return err
		}

		filter := map[string]any{"template_name": args[0]}
		if entryListTier != "" {
			filter["tier"] = entryListTier
		}
		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		items, err := table.Fetch(filter)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(items)
		}
		for _, item := range items {
			entry := item.(*types.Entry)
			fmt.Printf("%s  %-30s %s\n", entry.EntryID, entry.Name, entry.Tier)
		}
		if len(items) == 0 {
			fmt.Printf("no %ss\n", schema.EntryTerm)
		}
		return nil
	},
}

var entryShowCmd = &cobra.Command{
	Use:     "show <template> <name-or-id>",
	Aliases: []string{"get"},
	Short:   "Show one entry with its observations",
	Args:    cobra.ExactArgs(2),
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
		entry, err := s.findEntry(args[0], args[1])
		if err != nil {
			return err
		}

		observations, err := s.backend.GetTable(types.TableObservations)
		if err != nil {
			return err
		}
		items, err := observations.Fetch(map[string]any{"entry_id": entry.EntryID})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]any{"entry": entry, "observations": items})
		}

		fmt.Printf("%s (%s, tier: %s)\n", entry.Name, entry.EntryID, entry.Tier)
		for _, spec := range schema.Fields {
			if value, ok := entry.Fields[spec.Name]; ok && value != nil {
				fmt.Printf("  %s: %v\n", spec.Name, value)
			}
		}
		fmt.Printf("  %ss: %d\n", schema.ObservationTerm, len(items))
		for _, item := range items {
			obs := item.(*types.Observation)
			line := obs.ObservedAt.Format("2006-01-02")
			if obs.Location != "" {
				line += " @ " + obs.Location
			}
			if obs.Notes != "" {
				line += " - " + obs.Notes
			}
			fmt.Printf("    %s\n", line)
		}
		return nil
	},
}

var entrySetFields []string

var entrySetCmd = &cobra.Command{
	Use:   "set <template> <name-or-id>",
	Short: "Update an entry's field values",
	Long: `Set revalidates the entry with the given fields applied and stores the
result. The whole record is checked; a violation anywhere rejects the
update.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, err := parseFieldArgs(entrySetFields)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return fmt.Errorf("%w: nothing to set, use --field", types.ErrInvalidData)
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		schema, err := s.compiler.Schema(args[0])
		if err != nil {
			return err
		}
		entry, err := s.findEntry(args[0], args[1])
		if err != nil {
			return err
		}

		candidate := make(map[string]any, len(entry.Fields)+len(updates))
		for k, v := range entry.Fields {
			if v != nil {
				candidate[k] = v
			}
		}
		for k, v := range updates {
			candidate[k] = v
		}

		record, report := catalog.ValidateRecord(schema, candidate, entry.Tier)
		if !report.OK() {
			fmt.Fprintf(os.Stderr, "update rejected with %d violation(s):\n", len(report.Violations))
			printViolations(report)
			return report
		}
		entry.ApplyRecord(record)

		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		if _, err := table.Set(entry.EntryID, entry); err != nil {
			return err
		}

		fmt.Printf("Updated %q\n", entry.Name)
		return nil
	},
}

var entryTierCmd = &cobra.Command{
	Use:     "tier <template> <name-or-id> <tier>",
	Aliases: []string{"set-tier"},
	Short:   "Move an entry to another tier",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := s.findEntry(args[0], args[1])
		if err != nil {
			return err
		}
		if err := s.tiers.SetTier(entry, args[2]); err != nil {
			return err
		}

		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		if _, err := table.Set(entry.EntryID, entry); err != nil {
			return err
		}

		fmt.Printf("Moved %q to tier %q\n", entry.Name, entry.Tier)
		return nil
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <template> <name-or-id>",
	Short: "Delete an entry and its observations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := s.findEntry(args[0], args[1])
		if err != nil {
			return err
		}

		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		if err := table.Delete(entry.EntryID); err != nil {
			return err
		}

		fmt.Printf("Deleted %q\n", entry.Name)
		return nil
	},
}

func init() {
	entryAddCmd.Flags().StringVar(&entryAddTier, "tier", "", "tier for the new entry")
	entryAddCmd.Flags().StringArrayVar(&entryAddFields, "field", nil, "field value as key=value (repeatable)")
	entryListCmd.Flags().StringVar(&entryListTier, "tier", "", "only entries in this tier")
	entrySetCmd.Flags().StringArrayVar(&entrySetFields, "field", nil, "field value as key=value (repeatable)")
}
