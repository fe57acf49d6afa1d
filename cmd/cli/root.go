package cli

import (
	"fmt"
	"os"

	"github.com/flowbaker/hubspot-executor/internal/config"
	"github.com/flowbaker/hubspot-executor/internal/initialization"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug      bool
	configFile string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "hubspot-executor",
		Short: "HubSpot executor CLI",
		Long: `hubspot-executor runs the HubSpot piece: polling triggers with time-based
deduplication, CRM actions and dynamic dropdowns, served over HTTP or run
standalone on a schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to the config file (default: executor_config.yaml in ., ./config or ~/.hubspot-executor)")

	rootCmd.AddCommand(NewStartCommand(opts))
	rootCmd.AddCommand(NewPollCommand(opts))
	rootCmd.AddCommand(NewTriggersCommand(opts))
	rootCmd.AddCommand(NewStatusCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func (o *rootOptions) loadContainer() (*initialization.ExecutorContainer, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: o.configFile})
	if err != nil {
		return nil, err
	}

	return initialization.NewExecutorContainer(cfg)
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
