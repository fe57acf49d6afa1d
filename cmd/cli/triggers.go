package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/flowbaker/hubspot-executor/internal/initialization"

	"github.com/spf13/cobra"
)

type triggerStatus struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Workspace string `json:"workspace_id"`
	Workflow  string `json:"workflow_id"`
	Schedule  string `json:"schedule"`
	Enabled   bool   `json:"enabled"`
	Watermark int64  `json:"watermark,omitempty"`
}

func NewTriggersCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Inspect and manage the watermarks of configured triggers",
	}

	var output string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured triggers and their stored watermarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), root, func(ctx context.Context, container *initialization.ExecutorContainer, resources *initialization.RunnerResources) error {
				statuses := make([]triggerStatus, 0, len(container.Config.Triggers))

				for _, trigger := range container.Config.Triggers {
					watermark, ok, err := resources.Store.Get(ctx, trigger.Key())
					if err != nil {
						return err
					}

					statuses = append(statuses, triggerStatus{
						ID:        trigger.ID,
						EventType: string(trigger.EventType),
						Workspace: trigger.WorkspaceID,
						Workflow:  trigger.WorkflowID,
						Schedule:  trigger.Schedule,
						Enabled:   ok,
						Watermark: watermark,
					})
				}

				return printOutput(os.Stdout, output, statuses)
			})
		},
	}
	listCmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format: json or yaml")

	enableCmd := &cobra.Command{
		Use:   "enable <trigger-id>",
		Short: "Seed the watermark of a trigger so live runs start from now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), root, func(ctx context.Context, container *initialization.ExecutorContainer, resources *initialization.RunnerResources) error {
				trigger, ok := container.Config.FindTrigger(args[0])
				if !ok {
					return fmt.Errorf("trigger %q is not configured", args[0])
				}

				watermark, err := resources.Runner.Enable(ctx, trigger)
				if err != nil {
					return err
				}

				fmt.Printf("Trigger %s enabled at watermark %d\n", trigger.ID, watermark)
				return nil
			})
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable <trigger-id>",
		Short: "Delete the watermark of a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), root, func(ctx context.Context, container *initialization.ExecutorContainer, resources *initialization.RunnerResources) error {
				trigger, ok := container.Config.FindTrigger(args[0])
				if !ok {
					return fmt.Errorf("trigger %q is not configured", args[0])
				}

				if err := resources.Runner.Disable(ctx, trigger); err != nil {
					return err
				}

				fmt.Printf("Trigger %s disabled\n", trigger.ID)
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, enableCmd, disableCmd)

	return cmd
}

func withRunner(ctx context.Context, root *rootOptions, fn func(ctx context.Context, container *initialization.ExecutorContainer, resources *initialization.RunnerResources) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	container, err := root.loadContainer()
	if err != nil {
		return err
	}

	resources, err := container.BuildRunner(ctx)
	if err != nil {
		return err
	}
	defer resources.Close(context.Background())

	return fn(ctx, container, resources)
}
