// List command: display a node's children.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/element"
)

var (
	flagListActive bool
	flagListType   string
)

var listCmd = &cobra.Command{
	Use:   "list <key>",
	Short: "List a node's children",
	Long: `Fetch the node's menu children in menu order and display the ones
matching the filters. When the child count fits under the store's
atomic-group ceiling the fetch is atomic, otherwise best-effort.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseNodeKey(args[0])
		if err != nil {
			return err
		}
		parent, err := engine.Lookup(key, element.Filter{})
		if err != nil {
			return err
		}
		if !parent.Found() {
			return fmt.Errorf("no node at %s", key)
		}

		var f element.Filter
		if flagListActive {
			active := true
			f.Active = &active
		}
		if flagListType != "" {
			ct, err := content.ParseContentType(flagListType)
			if err != nil {
				return err
			}
			f.ContentTypes = []content.ContentType{ct}
		}

		children, err := engine.LookupMany(parent.MenuChildren(), f)
		if err != nil {
			return err
		}

		views := make([]containerView, 0, len(children.Keys()))
		for _, k := range children.Keys() {
			el, err := engine.Lookup(k, element.Filter{})
			if err != nil {
				return err
			}
			if !el.Found() {
				continue
			}
			if err := el.AttribShallow(content.KindName); err != nil {
				return err
			}
			views = append(views, viewOf(el))
		}
		if flagJSON {
			return printJSON(cmd, views)
		}
		for _, view := range views {
			if err := printView(cmd, view); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&flagListActive, "active", false, "only active children")
	listCmd.Flags().StringVar(&flagListType, "type", "", "only children of this content type")
}
