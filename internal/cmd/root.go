package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pagemason/pagemason/internal/config/autoconfig"
)

var (
	configFile string
	verbose    bool
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:   "pagemason",
		Short: "Compose web pages out of parameterized content blocks",
		Long: `pagemason turns stored markup into an editable tree of content
blocks and back. It serves a visual page builder over HTTP and ships
CLI commands to inspect, render and convert the stored documents.

All commands read the pagemason.yaml configuration file.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			autoconfig.SetCLIOptions(autoconfig.CLIOptions{
				ConfigFile: configFile,
				Verbose:    verbose,
			})
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&configFile, "config", "", "Path to the configuration file.")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to stderr.")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(themesCmd())
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(convertCmd())

	return &cmd
}
