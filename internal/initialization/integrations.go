package initialization

import (
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/integrations/hubspot"
)

type integrationRegisterParams struct {
	Schema                 domain.Integration
	NewCreator             func(deps domain.IntegrationDeps) domain.IntegrationCreator
	NewPollingEventHandler func(deps domain.IntegrationDeps) domain.IntegrationPoller
	NewConnectionTester    func(deps domain.IntegrationDeps) domain.IntegrationConnectionTester
}

var integrationRegisterParamsList = []integrationRegisterParams{
	{
		Schema:                 hubspot.Schema,
		NewCreator:             hubspot.NewHubSpotIntegrationCreator,
		NewPollingEventHandler: hubspot.NewHubSpotPollingHandler,
		NewConnectionTester:    hubspot.NewHubSpotConnectionTester,
	},
}

func registerIntegrations(integrationSelector domain.IntegrationSelector, commonDeps domain.IntegrationDeps) error {
	for _, params := range integrationRegisterParamsList {
		integrationType := params.Schema.ID

		integrationSelector.RegisterSchema(params.Schema)

		if params.NewCreator != nil {
			integrationSelector.RegisterCreator(integrationType, params.NewCreator(commonDeps))
		}

		if params.NewPollingEventHandler != nil {
			integrationSelector.RegisterPoller(integrationType, params.NewPollingEventHandler(commonDeps))
		}

		if params.NewConnectionTester != nil {
			integrationSelector.RegisterConnectionTester(integrationType, params.NewConnectionTester(commonDeps))
		}
	}

	return nil
}
