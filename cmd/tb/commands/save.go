// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/tb/cmd/tb/opts"
	"github.com/walteh/tb/pkg/operation"
)

// NewSaveCmd creates a new save command
func NewSaveCmd(opts *opts.RootOpts) *cobra.Command {
	var saveOpts operation.SaveOptions

	cmd := &cobra.Command{
		Use:     "save <template-name> <source...>",
		Aliases: []string{"s"},
		Short:   "Save files and directories as a template",
		Long: `Save copies every file and directory matched by the sources into a
named template. Sources may be files, directories or glob patterns.

A plain directory copies its direct children, or its whole tree with
--recursive. Excludes are glob patterns; a bare name like node_modules
excludes that name at any depth.`,
		Example: `  tb save react-app src/** package.json -x node_modules,dist
  tb save configs ~/.config/nvim -r -p`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("preserve-last-dir") && opts.Config != nil {
				saveOpts.PreserveLastDir = opts.Config.PreserveLastDir
			}

			return opts.Operator.Save(cmd.Context(), operation.SaveProps{
				TemplateName: args[0],
				Source:       args[1:],
				Options:      saveOpts,
			})
		},
	}

	cmd.Flags().BoolVarP(&saveOpts.Force, "force", "f", false, "overwrite an existing template, allow empty templates")
	cmd.Flags().BoolVarP(&saveOpts.PreserveLastDir, "preserve-last-dir", "p", false, "keep the last directory of each source in the template")
	cmd.Flags().BoolVarP(&saveOpts.Recursive, "recursive", "r", false, "copy plain directory sources recursively")
	cmd.Flags().StringSliceVarP(&saveOpts.Exclude, "exclude", "x", nil, "comma separated exclude patterns")

	return cmd
}
