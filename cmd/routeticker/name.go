// Name command: attach or update a name attribute on a node.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/element"
)

var flagNameActivate bool

var nameCmd = &cobra.Command{
	Use:   "name <key> <text>",
	Short: "Attach or update a node's name",
	Long: `Attach a name attribute to the node, attributed to the acting user.
A prior name by the same user is updated in place; other users' names
are untouched. Pass --activate to make this the displayed name.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttach(cmd, args[0], content.NewName(args[1]), flagNameActivate)
	},
}

func init() {
	nameCmd.Flags().BoolVar(&flagNameActivate, "activate", false, "make this the displayed instance")
}

// runAttach is the shared body of the name and describe commands.
func runAttach(cmd *cobra.Command, keyArg string, a content.Attrib, activate bool) error {
	key, err := parseNodeKey(keyArg)
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
	stored, err := el.AddAttrib(a)
	if err != nil {
		return err
	}
	if !stored.Key().Valid() {
		return fmt.Errorf("attribute not stored: an authenticated user is required")
	}
	if activate {
		if err := engine.SetAttribActive(stored.Key()); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", stored.Key())
	return nil
}
