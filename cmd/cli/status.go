package cli

import (
	"context"
	"fmt"
	"time"

	executortypes "github.com/flowbaker/hubspot-executor/pkg/clients/hubspot-executor"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func NewStatusCommand(root *rootOptions) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the loaded configuration and, with --remote, the health of a running executor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := root.loadContainer()
			if err != nil {
				return err
			}

			cfg := container.Config

			fmt.Println("Executor configuration")
			fmt.Printf("   HTTP address: %s\n", cfg.HTTPAddress)
			fmt.Printf("   HubSpot API: %s\n", cfg.HubSpot.BaseURL)
			fmt.Printf("   Watermark backend: %s\n", cfg.Watermark.Backend)
			fmt.Printf("   Task backend: %s\n", cfg.Tasks.Backend)
			fmt.Printf("   Credentials: %d\n", len(cfg.DomainCredentials()))
			fmt.Printf("   Triggers: %d\n", len(cfg.Triggers))
			fmt.Printf("   Workspace auth: api key %s, signature %s\n",
				enabledLabel(cfg.APIKey != ""), enabledLabel(cfg.APISigningPublicKey != ""))

			if remote == "" {
				return nil
			}

			client, err := executortypes.NewClient(executortypes.ClientConfig{
				BaseURL: remote,
				Timeout: 10 * time.Second,
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			health, err := client.HealthCheck(ctx)
			if err != nil {
				fmt.Printf("Executor at %s is unreachable: %v\n", remote, err)
				return err
			}

			fmt.Printf("Executor at %s is %s (version %s, since %s)\n",
				remote, health.Status, health.Version, cast.ToTime(health.Timestamp).Format(time.DateTime))

			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "Base URL of a running executor to health-check")

	return cmd
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "on"
	}

	return "off"
}
