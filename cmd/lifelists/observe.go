// Observe commands for the lifelists CLI: dated events logged against an
// entry (a sighting, a reading, a visit).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/lifelists/internal/catalog"
	"github.com/mesh-intelligence/lifelists/pkg/types"
	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Log and list observations",
}

func init() {
	observeCmd.AddCommand(observeAddCmd)
	observeCmd.AddCommand(observeListCmd)
	observeCmd.AddCommand(observeDeleteCmd)
}

var (
	observeAddDate     string
	observeAddLocation string
	observeAddLat      float64
	observeAddLon      float64
	observeAddNotes    string
	observeAddPhotos   []string
	observeAddFields   []string
)

var observeAddCmd = &cobra.Command{
	Use:   "add <template> <entry-name-or-id>",
	Short: "Log an observation of an entry",
	Long: `Add logs one dated event against an entry. Field values are optional on
observations even when the template requires them on entries, but given
values must still satisfy the field's type.

  lifelists observe add Wildlife "Barn Owl" --date 2025-06-14 \
    --location "old barn" --lat 52.1 --lon 5.3 --notes "pair nesting"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseFieldArgs(observeAddFields)
		if err != nil {
			return err
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

		record, report := catalog.ValidateObservationRecord(schema, values)
		if !report.OK() {
			fmt.Fprintf(os.Stderr, "%s rejected with %d violation(s):\n", schema.ObservationTerm, len(report.Violations))
			printViolations(report)
			return report
		}

		obs := &types.Observation{
			EntryID:  entry.EntryID,
			Location: observeAddLocation,
			Notes:    observeAddNotes,
			Photos:   observeAddPhotos,
			Fields:   record.Fields,
		}
		if observeAddDate != "" {
			observedAt, err := parseObservationDate(observeAddDate)
			if err != nil {
				return err
			}
			obs.ObservedAt = observedAt
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return fmt.Errorf("%w: --lat and --lon go together", types.ErrInvalidData)
			}
			lat, lon := observeAddLat, observeAddLon
			obs.Latitude = &lat
			obs.Longitude = &lon
		}

		table, err := s.backend.GetTable(types.TableObservations)
		if err != nil {
			return err
		}
		id, err := table.Set("", obs)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(obs)
		}
		fmt.Printf("Logged %s of %q (%s)\n", schema.ObservationTerm, entry.Name, id)
		return nil
	},
}

// parseObservationDate accepts a date or a full RFC 3339 timestamp.
func parseObservationDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q (use YYYY-MM-DD or RFC 3339)", types.ErrInvalidData, raw)
}

var observeListCmd = &cobra.Command{
	Use:   "list <template> <entry-name-or-id>",
	Short: "List an entry's observations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.compiler.Schema(args[0]); err != nil {
			return err
		}
		entry, err := s.findEntry(args[0], args[1])
		if err != nil {
			return err
		}

		table, err := s.backend.GetTable(types.TableObservations)
		if err != nil {
			return err
		}
		items, err := table.Fetch(map[string]any{"entry_id": entry.EntryID})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(items)
		}
		for _, item := range items {
			obs := item.(*types.Observation)
			line := fmt.Sprintf("%s  %s", obs.ObservationID, obs.ObservedAt.Format("2006-01-02"))
			if obs.Location != "" {
				line += "  " + obs.Location
			}
			if len(obs.Photos) > 0 {
				line += fmt.Sprintf("  [%d photo(s)]", len(obs.Photos))
			}
			fmt.Println(line)
		}
		return nil
	},
}

var observeDeleteCmd = &cobra.Command{
	Use:   "delete <observation-id>",
	Short: "Delete an observation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		table, err := s.backend.GetTable(types.TableObservations)
		if err != nil {
			return err
		}
		if err := table.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted observation", args[0])
		return nil
	},
}

func init() {
	observeAddCmd.Flags().StringVar(&observeAddDate, "date", "", "observation date (default: now)")
	observeAddCmd.Flags().StringVar(&observeAddLocation, "location", "", "free-form location")
	observeAddCmd.Flags().Float64Var(&observeAddLat, "lat", 0, "latitude")
	observeAddCmd.Flags().Float64Var(&observeAddLon, "lon", 0, "longitude")
	observeAddCmd.Flags().StringVar(&observeAddNotes, "notes", "", "free-form notes")
	observeAddCmd.Flags().StringArrayVar(&observeAddPhotos, "photo", nil, "photo file path (repeatable)")
	observeAddCmd.Flags().StringArrayVar(&observeAddFields, "field", nil, "field value as key=value (repeatable)")
}
