// Add command: create a child node under a parent.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
)

var (
	flagAddType   string
	flagAddActive bool
)

var addCmd = &cobra.Command{
	Use:   "add <parent-key>",
	Short: "Create a node under a parent",
	Long: `Create a new tree node of the given type under the parent node and
link it into the parent's menu. The parent becomes active. New nodes
default to inactive; pass --active to create them visible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := parseNodeKey(args[0])
		if err != nil {
			return err
		}
		ct, err := content.ParseContentType(flagAddType)
		if err != nil {
			return err
		}
		if ct == content.TypeRoot {
			return fmt.Errorf("the root is created with %q, not %q", "init", "add")
		}
		el, err := engine.Create(ct, parent, flagAddActive)
		if err != nil {
			return err
		}
		if !el.Found() {
			return fmt.Errorf("node not created: an authenticated user is required")
		}
		if flagJSON {
			return printView(cmd, viewOf(el))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s %s under %s\n", ct, el.Key(), parent)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&flagAddType, "type", "area", "content type: area, crag, or climb")
	addCmd.Flags().BoolVar(&flagAddActive, "active", false, "create the node active")
}
