package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:           "engine",
		Short:         "Local job board engine",
		Long:          "engine polls the job data service and announcement feeds, caches records in SQLite and serves the computed board over HTTP.",
		Version:       version,
		SilenceUsage:  true,
		// serve is the default so a bare `engine` keeps working for the desktop shell
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	bindServeFlags(cmd, opts)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAggregateCmd())
	return cmd
}
