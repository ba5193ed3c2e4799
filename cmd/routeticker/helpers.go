// Shared helpers for routeticker CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/element"
	"github.com/mrdunk/routeticker/pkg/types"
)

// parseNodeKey parses a CLI key argument. Both "Container/<id>" and a bare
// "<id>" resolve to a container key.
func parseNodeKey(arg string) (types.Key, error) {
	k, err := types.ParseKey(arg)
	if err != nil {
		return types.Key{}, fmt.Errorf("bad key %q: %w", arg, err)
	}
	return k, nil
}

// containerView is the CLI rendering of a tree node.
type containerView struct {
	Key          string   `json:"key"`
	ContentType  string   `json:"content_type"`
	Active       bool     `json:"active"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	MenuParent   string   `json:"menu_parent,omitempty"`
	MenuChildren []string `json:"menu_children,omitempty"`
	Attributes   []string `json:"attributes,omitempty"`
}

// viewOf flattens an element into its CLI rendering. The name and
// description come from the active attribute instances when the element's
// summaries have been fetched.
func viewOf(el *element.Element) containerView {
	c := el.Container()
	view := containerView{
		Key:         el.Key().String(),
		ContentType: c.ContentType().String(),
		Active:      c.Active(),
	}
	if p, ok := c.MenuParent(); ok {
		view.MenuParent = p.String()
	}
	for _, k := range c.MenuChildren() {
		view.MenuChildren = append(view.MenuChildren, k.String())
	}
	for _, k := range c.Attributes() {
		view.Attributes = append(view.Attributes, k.String())
	}
	view.Name = activeText(el, content.KindName)
	view.Description = activeText(el, content.KindDescription)
	return view
}

// activeText returns the text of the cached active instance of a kind.
func activeText(el *element.Element, kind string) string {
	instances, ok := el.Attribs(kind)
	if !ok {
		return ""
	}
	for _, a := range instances {
		if a == nil || !a.Active() {
			continue
		}
		switch v := a.(type) {
		case *content.AttribName:
			return v.Text()
		case *content.AttribDescription:
			return v.Text()
		}
	}
	return ""
}

// printView renders one container view as JSON or text.
func printView(cmd *cobra.Command, view containerView) error {
	if flagJSON {
		return printJSON(cmd, view)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s", view.Key, view.ContentType)
	if view.Name != "" {
		fmt.Fprintf(out, "  %q", view.Name)
	}
	if view.Active {
		fmt.Fprint(out, "  active")
	}
	fmt.Fprintln(out)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
