package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/flowbaker/hubspot-executor/internal/initialization"
	"github.com/flowbaker/hubspot-executor/internal/scheduler"
	executortypes "github.com/flowbaker/hubspot-executor/pkg/clients/hubspot-executor"
	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/spf13/cobra"
)

type pollOptions struct {
	test       bool
	since      int64
	remote     string
	apiKey     string
	signingKey string
	output     string
}

type pollOutput struct {
	TriggerID string            `json:"trigger_id"`
	RunID     string            `json:"run_id,omitempty"`
	Watermark int64             `json:"watermark"`
	Items     []domain.PollItem `json:"items"`
}

func NewPollCommand(root *rootOptions) *cobra.Command {
	opts := &pollOptions{}

	cmd := &cobra.Command{
		Use:   "poll <trigger-id>",
		Short: "Poll one configured trigger once",
		Long: `Poll runs a configured trigger once.

Without flags it behaves like a scheduled run: it reads the stored watermark,
publishes one task per new record and advances the watermark.
--test returns a sample without touching the watermark.
--since polls from the given epoch milliseconds without reading or writing the
store. --remote sends that polling event to a running executor instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := root.loadContainer()
			if err != nil {
				return err
			}

			trigger, ok := container.Config.FindTrigger(args[0])
			if !ok {
				return fmt.Errorf("trigger %q is not configured", args[0])
			}

			return runPoll(cmd.Context(), container, trigger, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.test, "test", false, "Return a sample without touching the watermark")
	cmd.Flags().Int64Var(&opts.since, "since", -1, "Poll from this epoch-milliseconds watermark, statelessly")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Base URL of a running executor to send the polling event to")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", os.Getenv("API_KEY"), "API key for --remote")
	cmd.Flags().StringVar(&opts.signingKey, "signing-key", "", "Base64 ed25519 private key used to sign --remote requests")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputJSON, "Output format: json or yaml")

	return cmd
}

func runPoll(ctx context.Context, container *initialization.ExecutorContainer, trigger scheduler.Trigger, opts *pollOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.test && opts.since >= 0 {
		return fmt.Errorf("--test and --since cannot be combined")
	}

	output := pollOutput{TriggerID: trigger.ID}

	switch {
	case opts.remote != "":
		since := opts.since
		if opts.test || since < 0 {
			since = 0
		}

		items, watermark, err := pollRemote(ctx, trigger, since, opts)
		if err != nil {
			return err
		}

		output.Items = items
		output.Watermark = watermark
	case opts.since >= 0:
		result, err := container.ExecutorService.HandlePollingEvent(ctx, domain.PollingEvent{
			IntegrationType: trigger.IntegrationType,
			Trigger: domain.WorkflowTrigger{
				ID:                  trigger.ID,
				EventType:           trigger.EventType,
				IntegrationSettings: trigger.Settings,
			},
			WorkflowID:       trigger.WorkflowID,
			UserID:           trigger.UserID,
			WorkspaceID:      trigger.WorkspaceID,
			LastFetchEpochMS: opts.since,
			Credential:       trigger.Credential,
		})
		if err != nil {
			return err
		}

		output.Items = result.Items
		output.Watermark, _ = strconv.ParseInt(result.LastModifiedData, 10, 64)
	default:
		resources, err := container.BuildRunner(ctx)
		if err != nil {
			return err
		}
		defer resources.Close(context.Background())

		if opts.test {
			items, err := resources.Runner.Test(ctx, trigger)
			if err != nil {
				return err
			}

			output.Items = items
			break
		}

		result, err := resources.Runner.Run(ctx, trigger)
		if err != nil {
			return err
		}

		output.RunID = result.RunID
		output.Items = result.Items
		output.Watermark = result.Watermark
	}

	if output.Items == nil {
		output.Items = []domain.PollItem{}
	}

	return printOutput(os.Stdout, opts.output, output)
}

func pollRemote(ctx context.Context, trigger scheduler.Trigger, since int64, opts *pollOptions) ([]domain.PollItem, int64, error) {
	client, err := executortypes.NewClient(executortypes.ClientConfig{
		BaseURL:       opts.remote,
		APIKey:        opts.apiKey,
		SigningKey:    opts.signingKey,
		Timeout:       2 * time.Minute,
		RetryAttempts: 2,
	})
	if err != nil {
		return nil, 0, err
	}

	response, err := client.HandlePollingEvent(ctx, trigger.WorkspaceID, executortypes.PollingEventRequest{
		IntegrationType: trigger.IntegrationType,
		Trigger: executortypes.Trigger{
			ID:                  trigger.ID,
			EventType:           trigger.EventType,
			IntegrationSettings: trigger.Settings,
		},
		WorkflowID:       trigger.WorkflowID,
		UserID:           trigger.UserID,
		LastFetchEpochMS: since,
		Auth:             trigger.Credential,
	})
	if err != nil {
		return nil, 0, err
	}

	watermark, _ := strconv.ParseInt(response.LastModifiedData, 10, 64)

	return response.Items, watermark, nil
}
