package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walteh/tb/cmd/tb/opts"
	"github.com/walteh/tb/pkg/operation"
)

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <template-name...>",
		Aliases: []string{"rm"},
		Short:   "Delete templates",
		Long: `Delete removes every named template. Names that fail do not stop
the others; the failures are reported together at the end.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Operator.Delete(cmd.Context(), operation.DeleteProps{TemplateNames: args}); err != nil {
				return err
			}

			for _, name := range args {
				opts.Logger.Success(fmt.Sprintf("Template %s deleted", name))
			}
			return nil
		},
	}

	return cmd
}
