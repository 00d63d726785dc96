package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/tb/cmd/tb/opts"
	"github.com/walteh/tb/pkg/operation"
)

// NewGetCmd creates a new get command
func NewGetCmd(opts *opts.RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "get <template-name> [destination]",
		Short: "Copy a template into a destination",
		Long: `Get copies every file of a stored template into the destination,
which defaults to the working directory. Get fails if a destination file
already exists unless --force is given; a failed get removes what it created.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := operation.GetProps{
				TemplateName: args[0],
				Force:        force,
			}
			if len(args) == 2 {
				props.Destination = args[1]
			}
			return opts.Operator.Get(cmd.Context(), props)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")

	return cmd
}
