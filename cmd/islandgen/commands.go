package main

import (
	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/logger/console"
)

type rootOptions struct {
	debug   bool
	jsonLog bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "islandgen",
		Short: "Generate synthetic identity islands with labeled anomalies",
		Long: `islandgen builds reproducible synthetic identity graphs: islands of
identity records for the same person, linked to documents and biometric
events, corrupted by a controlled share of anomalies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  opts.debug,
				JSON:   opts.jsonLog,
				Writer: cmd.ErrOrStderr(),
			}))
		},
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", util.GetEnvBool("DEBUG", false), "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonLog, "json-log", false, "log one JSON object per line")

	root.AddCommand(
		newGenerateCmd(),
		newInspectCmd(),
		newExportCmd(),
		newSimilarCmd(),
	)
	return root
}
