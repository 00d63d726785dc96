package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/tb/cmd/tb/opts"
)

// NewListCmd creates a new list command
func NewListCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := opts.Operator.List(cmd.Context())
			if err != nil {
				return err
			}

			opts.Logger.Templates(names)
			return nil
		},
	}

	return cmd
}
