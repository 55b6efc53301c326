// Init command for the lifelists CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lifelists configuration and storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already created the config directory and a
		// default config.json; attaching creates the database.
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}

		fmt.Println("Lifelists initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		fmt.Printf("  templates: %d built-in\n", len(s.store.List()))
		return nil
	},
}
