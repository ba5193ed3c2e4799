// Describe command: attach or update a description attribute on a node.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mrdunk/routeticker/pkg/content"
)

var flagDescribeActivate bool

var describeCmd = &cobra.Command{
	Use:   "describe <key> <text>",
	Short: "Attach or update a node's description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttach(cmd, args[0], content.NewDescription(args[1]), flagDescribeActivate)
	},
}

func init() {
	describeCmd.Flags().BoolVar(&flagDescribeActivate, "activate", false, "make this the displayed instance")
}
