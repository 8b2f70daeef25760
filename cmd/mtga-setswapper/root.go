package main

import (
	"github.com/spf13/cobra"

	"github.com/jeandeaual/mtga-setswapper/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mtga-setswapper",
	Short: "Replace the art and names of MTG Arena cards",
	Long: `mtga-setswapper replaces the art and names of cards in a local MTG Arena
installation with those of other printings, following a swap plan.

Swap plans can be generated by matching the cards of two sets, and every
modified file is backed up first so that the installation can be restored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}

		return setupLogger(cfg.Debug, cfg.LogFormat)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("install", "", "MTG Arena installation folder")
	flags.String("backup-dir", "", "folder holding the original files")
	flags.String("work-dir", "", "folder receiving the downloaded images during a run")
	flags.String("api-url", "", "card metadata service endpoint")
	flags.String("log-format", "", "log format (auto, console or json)")
	flags.Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd, applyCmd, restoreCmd, configCmd, versionCmd)
}
