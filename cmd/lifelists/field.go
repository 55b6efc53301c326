// Field commands for the lifelists CLI: per-template schema customization
// through the add/remove/reorder operation log.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/lifelists/pkg/types"
	"github.com/spf13/cobra"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Customize a template's fields",
}

func init() {
	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldRemoveCmd)
	fieldCmd.AddCommand(fieldReorderCmd)
	fieldCmd.AddCommand(fieldLogCmd)
}

var (
	fieldAddType     string
	fieldAddRequired bool
	fieldAddMax      int64
	fieldAddChoices  string
)

var fieldAddCmd = &cobra.Command{
	Use:   "add <template> <field-name>",
	Short: "Add a field to a template",
	Long: `Add appends an add_field operation to the template's customization log.

Rating fields need --max; choice fields need --choices with comma-separated
label=value pairs (or bare values used as both):

  lifelists field add Books Translator
  lifelists field add Books "Re-read Rating" --type rating --max 5
  lifelists field add Books Format --type choice --choices "Hardcover=hardcover,Paperback=paperback"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := types.FieldSpec{
			Name:     args[1],
			Type:     fieldAddType,
			Required: fieldAddRequired,
		}
		switch fieldAddType {
		case types.FieldTypeRating:
			spec.Rating = &types.RatingOptions{Max: fieldAddMax}
		case types.FieldTypeChoice:
			options, err := parseChoices(fieldAddChoices)
			if err != nil {
				return err
			}
			spec.Choice = options
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.compiler.Customize(args[0], types.Customization{
			Op:    types.OpAddField,
			Field: &spec,
		})
		if err != nil {
			return err
		}
		if err := s.persistCustomizations(args[0]); err != nil {
			return err
		}

		fmt.Printf("Added field %q to %s\n", spec.Name, args[0])
		return nil
	},
}

// parseChoices turns "Label=value,Label2=value2" into choice options. A
// bare token without "=" serves as both label and value.
func parseChoices(raw string) (*types.ChoiceOptions, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: choice fields need --choices", types.ErrOptionsMismatch)
	}
	var options []types.ChoiceOption
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		label, value, found := strings.Cut(token, "=")
		if !found {
			value = label
		}
		options = append(options, types.ChoiceOption{Label: label, Value: value})
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: --choices has no options", types.ErrOptionsMismatch)
	}
	return &types.ChoiceOptions{Options: options}, nil
}

var fieldRemoveCmd = &cobra.Command{
	Use:   "remove <template> <field-name>",
	Short: "Remove a field from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.compiler.Customize(args[0], types.Customization{
			Op:   types.OpRemoveField,
			Name: args[1],
		})
		if err != nil {
			return err
		}
		if err := s.persistCustomizations(args[0]); err != nil {
			return err
		}

		fmt.Printf("Removed field %q from %s\n", args[1], args[0])
		return nil
	},
}

var fieldReorderCmd = &cobra.Command{
	Use:   "reorder <template> <field-name>...",
	Short: "Reorder a template's fields",
	Long: `Reorder places the listed fields first, in the given order. Fields not
listed keep their relative order after them.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.compiler.Customize(args[0], types.Customization{
			Op:    types.OpReorder,
			Order: args[1:],
		})
		if err != nil {
			return err
		}
		if err := s.persistCustomizations(args[0]); err != nil {
			return err
		}

		fmt.Printf("Reordered fields of %s\n", args[0])
		return nil
	},
}

var fieldLogCmd = &cobra.Command{
	Use:   "log <template>",
	Short: "Show a template's customization log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		// Resolve the schema first so an unknown template errors cleanly.
		if _, err := s.compiler.Schema(args[0]); err != nil {
			return err
		}
		ops := s.compiler.Customizations(args[0])
		if flagJSON {
			return printJSON(ops)
		}
		if len(ops) == 0 {
			fmt.Printf("%s has no customizations\n", args[0])
			return nil
		}
		for i, op := range ops {
			fmt.Printf("%3d  %s\n", i+1, describeOp(op))
		}
		return nil
	},
}

func describeOp(op types.Customization) string {
	switch op.Op {
	case types.OpAddField:
		return fmt.Sprintf("add_field %s", describeField(*op.Field))
	case types.OpRemoveField:
		return fmt.Sprintf("remove_field %s", op.Name)
	case types.OpReorder:
		return fmt.Sprintf("reorder %s", strings.Join(op.Order, ", "))
	default:
		raw, _ := json.Marshal(op)
		return string(raw)
	}
}

func init() {
	fieldAddCmd.Flags().StringVar(&fieldAddType, "type", types.FieldTypeText, "field type: text, number, rating, choice")
	fieldAddCmd.Flags().BoolVar(&fieldAddRequired, "required", false, "require a value for this field")
	fieldAddCmd.Flags().Int64Var(&fieldAddMax, "max", 5, "inclusive upper bound for rating fields")
	fieldAddCmd.Flags().StringVar(&fieldAddChoices, "choices", "", "comma-separated label=value pairs for choice fields")
}
