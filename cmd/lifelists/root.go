// Root command for the lifelists CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lifelists/internal/config"
	"github.com/mesh-intelligence/lifelists/internal/paths"
	"github.com/mesh-intelligence/lifelists/pkg/lifelists"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// appConfig holds the configuration loaded by PersistentPreRunE so all
// subcommands can use it.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:     "lifelists",
	Short:   "Lifelists tracks personal catalogues of things seen, read, and collected",
	Version: lifelists.Version,
	// main prints the final error once, with the right exit code.
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		appConfig, err = config.Load(configDir)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.lifelists)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.lifelists-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
}

// resolveDataDir returns the data directory path with precedence:
// --data-dir flag > LIFELISTS_DATA_DIR env > default $(CWD)/.lifelists-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir)
}

// resolveConfigDir returns the configuration directory with precedence:
// --config-dir flag > LIFELISTS_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
