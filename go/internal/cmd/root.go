package main

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   string
	Pretty     bool
}

// NewRootCommand creates the root command for the dreamteams CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dreamteams",
		Short: "Build dream teams from the Marvel character catalog",
		Long: `dreamteams browses the Marvel character catalog and keeps per-user rosters
of up to ten teams with six members each, stored in a Parse backend or Postgres.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file (defaults to $DREAMTEAMS_CONFIG)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load (defaults to .env)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "human-readable console logs")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCharactersCommand(opts))

	return cmd
}
