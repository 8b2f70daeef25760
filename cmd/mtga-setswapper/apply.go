package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	setswapper "github.com/jeandeaual/mtga-setswapper"
	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a swap plan to the installation",
	Long: `Apply replaces the art and names of the cards listed in a swap plan.

Every file is backed up before its first modification. Cards that can't be
found are reported and skipped; the other swaps are still applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := plan.Load(cfg.SwapsFile)
		if err != nil {
			return err
		}

		log.Infof("Loaded %d swap(s) from %s", len(entries), cfg.SwapsFile)

		var report *setswapper.Report

		err = runJob(func(ctx context.Context) error {
			env, release, err := newEnv(ctx, true)
			if err != nil {
				return err
			}
			defer release()

			report, err = setswapper.Apply(ctx, env, entries)
			return err
		})

		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}

		if err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}

		return nil
	},
}

func init() {
	applyCmd.Flags().String("swaps", "", "swap plan file")
	applyCmd.Flags().Bool("art-only", false, "only replace the art, keep the card names")
}
