package server

import (
	"fmt"
	"time"

	"github.com/flowbaker/hubspot-executor/internal/auth"
	"github.com/flowbaker/hubspot-executor/internal/controllers"
	"github.com/flowbaker/hubspot-executor/internal/middlewares"
	"github.com/flowbaker/hubspot-executor/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"
)

const serviceName = "hubspot-executor"

type HTTPServerDependencies struct {
	ExecutorController *controllers.ExecutorController

	// APIKey enables bearer authentication on the workspace routes.
	APIKey string

	// APISigningPublicKey enables request signature checks on the workspace
	// routes.
	APISigningPublicKey string

	// DisableRequestLog turns off the access log middleware.
	DisableRequestLog bool
}

func NewHTTPServer(deps HTTPServerDependencies) (*fiber.App, error) {
	router := fiber.New(fiber.Config{
		AppName: serviceName,
	})

	router.Use(cors.New())

	if !deps.DisableRequestLog {
		router.Use(logger.New())
	}

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   serviceName,
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Get("/integrations", deps.ExecutorController.ListIntegrations)

	specificWorkspace := router.Group("/workspaces/:workspaceID")

	if deps.APIKey != "" {
		specificWorkspace.Use(middlewares.APIKeyMiddleware(deps.APIKey))
	}

	if deps.APISigningPublicKey != "" {
		verifier, err := auth.NewRequestVerifier(deps.APISigningPublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create API signature verifier: %w", err)
		}

		specificWorkspace.Use(middlewares.APISignatureMiddleware(verifier))
	}

	if deps.APIKey == "" && deps.APISigningPublicKey == "" {
		log.Warn().Msg("Workspace routes are not authenticated, set api_key or api_signing_public_key")
	}

	specificWorkspace.Post("/polling-events", deps.ExecutorController.HandlePollingEvent)
	specificWorkspace.Post("/executions", deps.ExecutorController.ExecuteAction)
	specificWorkspace.Post("/connection-test", deps.ExecutorController.TestConnection)
	specificWorkspace.Post("/peek-data", deps.ExecutorController.PeekData)

	return router, nil
}
