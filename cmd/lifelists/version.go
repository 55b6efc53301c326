// Version command for the lifelists CLI.
package main

import (
	"fmt"

	"github.com/mesh-intelligence/lifelists/pkg/lifelists"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lifelists version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lifelists", lifelists.Version)
	},
}
