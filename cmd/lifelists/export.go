// Export command for the lifelists CLI.
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/lifelists/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportNoPhotos bool
)

var exportCmd = &cobra.Command{
	Use:   "export <template>",
	Short: "Export a template's entries to JSONL",
	Long: `Export writes every entry of a template, with its observations, to a
JSONL file. Fields follow the effective schema's order, so repeated
exports of unchanged data are byte-identical.

The output path defaults to <export.default_directory>/<template>.jsonl
from the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateName := args[0]

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		path := exportOutput
		if path == "" {
			filename := strings.ToLower(strings.ReplaceAll(templateName, " ", "-")) + ".jsonl"
			path = filepath.Join(appConfig.Export.DefaultDirectory, filename)
		}

		includePhotos := appConfig.Export.IncludePhotos && !exportNoPhotos
		exporter := export.New(s.backend, s.compiler, includePhotos)
		n, err := exporter.Template(templateName, path)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d record(s) to %s\n", n, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().BoolVar(&exportNoPhotos, "no-photos", false, "omit photo references")
}
