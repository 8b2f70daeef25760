package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	setswapper "github.com/jeandeaual/mtga-setswapper"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Put the original files back",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var restored []string

		err := runJob(func(ctx context.Context) error {
			env, release, err := newEnv(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			restored, err = setswapper.Restore(ctx, env)
			return err
		})
		if err != nil {
			return err
		}

		if len(restored) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to restore")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d file(s)\n", len(restored))

		return nil
	},
}
