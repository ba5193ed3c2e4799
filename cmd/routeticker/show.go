// Show command: display one node with its active attributes.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/element"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Display a node and its active attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseNodeKey(args[0])
		if err != nil {
			return err
		}
		el, err := engine.Lookup(key, element.Filter{})
		if err != nil {
			return err
		}
		if !el.Found() {
			return fmt.Errorf("no node at %s", key)
		}
		if err := el.AttribShallowAll(); err != nil {
			return err
		}
		view := viewOf(el)
		if flagJSON {
			return printJSON(cmd, view)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key:         %s\n", view.Key)
		fmt.Fprintf(out, "type:        %s\n", view.ContentType)
		fmt.Fprintf(out, "active:      %v\n", view.Active)
		if view.Name != "" {
			fmt.Fprintf(out, "name:        %s\n", view.Name)
		}
		if view.Description != "" {
			fmt.Fprintf(out, "description: %s\n", view.Description)
		}
		if view.MenuParent != "" {
			fmt.Fprintf(out, "parent:      %s\n", view.MenuParent)
		}
		for _, child := range view.MenuChildren {
			fmt.Fprintf(out, "child:       %s\n", child)
		}
		return nil
	},
}
