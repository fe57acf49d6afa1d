package hubspot

import (
	"context"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/zerolog/log"
)

type HubSpotConnectionTester struct {
	clientConfig domain.HubSpotClientConfig
}

func NewHubSpotConnectionTester(deps domain.IntegrationDeps) domain.IntegrationConnectionTester {
	return &HubSpotConnectionTester{
		clientConfig: deps.HubSpotClientConfig,
	}
}

func (c *HubSpotConnectionTester) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	credential := HubSpotCredential{}
	if err := decodeSettings(params.Credential.DecryptedPayload, &credential); err != nil {
		return false, err
	}

	if credential.AccessToken == "" {
		return false, fmt.Errorf("access token is required")
	}

	client := NewClient(ctx, c.clientConfig, credential.AccessToken)

	account, err := client.GetAccountDetails(ctx)
	if err != nil {
		log.Error().Err(err).Str("credential_id", params.Credential.ID).Msg("Failed to authenticate with HubSpot")
		return false, fmt.Errorf("failed to authenticate with HubSpot: %w", err)
	}

	log.Info().Int("portalID", account.PortalID).Msg("HubSpot connection test succeeded")

	return true, nil
}
