// Activate command: make one attribute instance the displayed one.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <attribute-key>",
	Short: "Make an attribute the displayed instance of its kind",
	Long: `Mark the attribute at the given key active and every same-kind
sibling on the same node inactive, as one atomic operation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseNodeKey(args[0])
		if err != nil {
			return err
		}
		if err := engine.SetAttribActive(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", key)
		return nil
	},
}
