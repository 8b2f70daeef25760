package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	setswapper "github.com/jeandeaual/mtga-setswapper"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

var (
	generateOutput  string
	generateRenames bool
)

var generateCmd = &cobra.Command{
	Use:   "generate SOURCE [TARGET]",
	Short: "Generate a swap plan",
	Long: `Generate builds a swap plan replacing the cards of the SOURCE set with their
functional equivalents from the TARGET set.

With --renames, the plan instead restores the canonical names of the cards of
SOURCE printed under another name.

Examples:
  mtga-setswapper generate OM1 SPM
  mtga-setswapper generate --renames SPM -o renames.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		options := setswapper.GenerateOptions{
			SourceSet: args[0],
			Renames:   generateRenames,
		}
		if len(args) == 2 {
			options.TargetSet = args[1]
		}
		if !options.Renames && len(options.TargetSet) == 0 {
			return fmt.Errorf("a target set is required")
		}

		output := generateOutput
		if len(output) == 0 {
			output = cfg.SwapsFile
		}

		client, err := newMetadataClient()
		if err != nil {
			return err
		}

		var entries []plan.Entry

		err = runJob(func(ctx context.Context) error {
			var err error
			entries, err = setswapper.Generate(ctx, client, options)
			return err
		})
		if err != nil {
			return err
		}

		if err := plan.Save(output, entries); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d swap(s) to %s\n", len(entries), output)

		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "destination file (defaults to the configured swaps file)")
	generateCmd.Flags().BoolVar(&generateRenames, "renames", false, "generate a plan restoring the canonical card names")
}
