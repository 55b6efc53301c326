// Validate command for the lifelists CLI: re-checks stored entries against
// the schemas currently in effect.
package main

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/pkg/types"
	"github.com/spf13/cobra"
)

// validationFinding pairs an entry with the report it failed with.
type validationFinding struct {
	EntryID      string                  `json:"entry_id"`
	TemplateName string                  `json:"template_name"`
	Name         string                  `json:"name"`
	Report       *types.ValidationReport `json:"report"`
}

var (
	validateTier   string
	validateFields []string
)

var validateCmd = &cobra.Command{
	Use:   "validate [template]",
	Short: "Validate stored entries, or dry-run a candidate record",
	Long: `Validate re-checks every stored entry against its template's effective
schema. Schema customizations and template changes can leave old entries
with orphaned tiers, missing required fields, or values a new field type
rejects; validate surfaces those without modifying anything.

With --tier or --field, validate instead dry-runs one candidate record
against the named template and prints the report; nothing is read from or
written to the entry store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if cmd.Flags().Changed("tier") || len(validateFields) > 0 {
			if len(args) != 1 {
				return fmt.Errorf("%w: dry-run needs a template name", types.ErrInvalidData)
			}
			return dryRunRecord(s, args[0])
		}

		filter := map[string]any{}
		if len(args) == 1 {
			if _, err := s.compiler.Schema(args[0]); err != nil {
				return err
			}
			filter["template_name"] = args[0]
		}

		table, err := s.backend.GetTable(types.TableEntries)
		if err != nil {
			return err
		}
		items, err := table.Fetch(filter)
		if err != nil {
			return err
		}

		var findings []validationFinding
		checked := 0
		for _, item := range items {
			entry := item.(*types.Entry)
			schema, err := s.compiler.Schema(entry.TemplateName)
			if err != nil {
				report := &types.ValidationReport{}
				report.Add(types.Violation{
					Code:    types.ViolationOrphanedTier,
					Message: fmt.Sprintf("template %q unavailable: %v", entry.TemplateName, err),
				})
				findings = append(findings, validationFinding{
					EntryID: entry.EntryID, TemplateName: entry.TemplateName,
					Name: entry.Name, Report: report,
				})
				continue
			}
			checked++

			candidate := make(map[string]any, len(entry.Fields))
			for k, v := range entry.Fields {
				if v != nil {
					candidate[k] = v
				}
			}
			if _, report := catalog.ValidateRecord(schema, candidate, entry.Tier); !report.OK() {
				findings = append(findings, validationFinding{
					EntryID: entry.EntryID, TemplateName: entry.TemplateName,
					Name: entry.Name, Report: report,
				})
			}
		}

		if flagJSON {
			return printJSON(map[string]any{
				"checked":  len(items),
				"findings": findings,
			})
		}

		if len(findings) == 0 {
			fmt.Printf("%d entries valid\n", checked)
			return nil
		}
		for _, f := range findings {
			fmt.Printf("%s %q (%s):\n", f.TemplateName, f.Name, f.EntryID)
			for _, v := range f.Report.Violations {
				fmt.Printf("  %s\n", v.String())
			}
		}
		return fmt.Errorf("%w: %d of %d entries failed validation",
			types.ErrInvalidData, len(findings), len(items))
	},
}

// dryRunRecord validates one candidate record built from the flags and
// prints the outcome without touching stored entries.
func dryRunRecord(s *session, templateName string) error {
	values, err := parseFieldArgs(validateFields)
	if err != nil {
		return err
	}
	schema, err := s.compiler.Schema(templateName)
	if err != nil {
		return err
	}

	record, report := catalog.ValidateRecord(schema, values, validateTier)
	if !report.OK() {
		fmt.Fprintf(os.Stderr, "record rejected with %d violation(s):\n", len(report.Violations))
		printViolations(report)
		return report
	}
	if flagJSON {
		return printJSON(record)
	}
	fmt.Println("record is valid")
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validateTier, "tier", "", "tier of the candidate record (dry-run)")
	validateCmd.Flags().StringArrayVar(&validateFields, "field", nil, "candidate field value as key=value (repeatable, dry-run)")
}
