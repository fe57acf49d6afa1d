package controllers

import (
	"encoding/json"
	"errors"

	executortypes "github.com/flowbaker/hubspot-executor/pkg/clients/hubspot-executor"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/domain/executor"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// ExecutorController serves the host-driven mode: an external workflow
// engine posts polling events, action executions, peek requests and
// connection tests.
type ExecutorController struct {
	executorService executor.ExecutorService
}

type ExecutorControllerDependencies struct {
	ExecutorService executor.ExecutorService
}

func NewExecutorController(deps ExecutorControllerDependencies) *ExecutorController {
	return &ExecutorController{
		executorService: deps.ExecutorService,
	}
}

// errorResponse maps service errors to HTTP statuses. Invalid user input is
// a 400 that echoes the offending value.
func errorResponse(ctx fiber.Ctx, err error) error {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(executortypes.ErrorResponse{
			Error: inputErr.Error(),
			Field: inputErr.Field,
			Value: inputErr.RawValue,
		})
	}

	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrIntegrationNotFound),
		errors.Is(err, domain.ErrActionNotFound),
		errors.Is(err, domain.ErrPeekableNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrCredentialNotFound):
		status = fiber.StatusUnprocessableEntity
	}

	return ctx.Status(status).JSON(executortypes.ErrorResponse{Error: err.Error()})
}

func (c *ExecutorController) ListIntegrations(ctx fiber.Ctx) error {
	return ctx.JSON(c.executorService.ListIntegrations())
}

func (c *ExecutorController) HandlePollingEvent(ctx fiber.Ctx) error {
	var req executortypes.PollingEventRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.LastFetchEpochMS < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "last_fetch_epoch_ms cannot be negative")
	}

	result, err := c.executorService.HandlePollingEvent(ctx.RequestCtx(), domain.PollingEvent{
		IntegrationType: req.IntegrationType,
		Trigger: domain.WorkflowTrigger{
			ID:                  req.Trigger.ID,
			EventType:           req.Trigger.EventType,
			IntegrationSettings: req.Trigger.IntegrationSettings,
		},
		WorkflowID:       req.WorkflowID,
		UserID:           req.UserID,
		WorkspaceID:      ctx.Params("workspaceID"),
		LastFetchEpochMS: req.LastFetchEpochMS,
		Credential:       req.Auth,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to handle polling event")
		return errorResponse(ctx, err)
	}

	items := result.Items
	if items == nil {
		items = []domain.PollItem{}
	}

	return ctx.JSON(executortypes.PollingEventResponse{
		Items:            items,
		LastModifiedData: result.LastModifiedData,
	})
}

func (c *ExecutorController) ExecuteAction(ctx fiber.Ctx) error {
	var req executortypes.ExecuteActionRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	items, err := executor.ItemsFromJSON(req.Items)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	output, err := c.executorService.ExecuteAction(ctx.RequestCtx(), executor.ExecuteActionParams{
		IntegrationType: req.IntegrationType,
		ActionType:      req.ActionType,
		CredentialID:    req.CredentialID,
		Credential:      req.Auth,
		WorkspaceID:     ctx.Params("workspaceID"),
		WorkflowID:      req.WorkflowID,
		NodeID:          req.NodeID,
		Settings:        req.Settings,
		Items:           items,
	})
	if err != nil {
		log.Error().Err(err).Str("action_type", string(req.ActionType)).Msg("Failed to execute action")
		return errorResponse(ctx, err)
	}

	response := executortypes.ExecuteActionResponse{Outputs: []json.RawMessage{}}
	for _, payload := range output.ResultJSONByOutputID {
		response.Outputs = append(response.Outputs, json.RawMessage(payload))
	}

	return ctx.JSON(response)
}

func (c *ExecutorController) TestConnection(ctx fiber.Ctx) error {
	var req executortypes.ConnectionTestRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	log.Info().
		Str("integration_type", string(req.IntegrationType)).
		Str("credential_id", req.CredentialID).
		Str("workspace_id", ctx.Params("workspaceID")).
		Msg("Testing connection")

	success, err := c.executorService.TestConnection(ctx.RequestCtx(), executor.TestConnectionParams{
		IntegrationType: req.IntegrationType,
		CredentialID:    req.CredentialID,
		WorkspaceID:     ctx.Params("workspaceID"),
		Payload:         req.Payload,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to test connection")
		return ctx.JSON(executortypes.ConnectionTestResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return ctx.JSON(executortypes.ConnectionTestResponse{
		Success: success,
	})
}

func (c *ExecutorController) PeekData(ctx fiber.Ctx) error {
	var req executortypes.PeekDataRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := c.executorService.PeekData(ctx.RequestCtx(), executor.PeekDataParams{
		IntegrationType: req.IntegrationType,
		CredentialID:    req.CredentialID,
		Credential:      req.Auth,
		WorkspaceID:     ctx.Params("workspaceID"),
		UserID:          req.UserID,
		PeekableType:    req.PeekableType,
		Pagination:      req.Pagination,
		PayloadJSON:     req.Payload,
	})
	if err != nil {
		log.Error().Err(err).Str("peekable_type", req.PeekableType).Msg("Failed to peek data")
		return ctx.JSON(executortypes.PeekDataResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return ctx.JSON(executortypes.PeekDataResponse{
		Success:    true,
		Result:     result.Result,
		Pagination: result.Pagination,
	})
}
