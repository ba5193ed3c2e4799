// Init command: bootstrap the tree root.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the content-tree root",
	Long: `Create the well-known root node and its "root" name attribute.
Idempotent: an existing root is reported unchanged. Requires an
administrator identity (config "admin: true" or the --admin flag).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		el, err := engine.Create(content.TypeRoot, types.Key{}, false)
		if err != nil {
			return err
		}
		if !el.Found() {
			return fmt.Errorf("root not created: an authenticated administrator is required")
		}
		if flagJSON {
			return printView(cmd, viewOf(el))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "root ready at %s\n", el.Key())
		return nil
	},
}
