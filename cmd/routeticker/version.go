// Version command for the routeticker CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the CLI release string.
const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the routeticker version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "routeticker", version)
	},
}
