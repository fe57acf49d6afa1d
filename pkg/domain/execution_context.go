package domain

import (
	"context"
)

type WorkflowExecutionContextKey struct{}

type WorkflowExecutionContext struct {
	WorkspaceID string
	WorkflowID  string
	RunID       string
	IsTesting   bool
}

type NewContextWithWorkflowExecutionContextParams struct {
	WorkspaceID string
	WorkflowID  string
	RunID       string
	IsTesting   bool
}

func NewContextWithWorkflowExecutionContext(ctx context.Context, params NewContextWithWorkflowExecutionContextParams) context.Context {
	workflowExecutionContext := &WorkflowExecutionContext{
		WorkspaceID: params.WorkspaceID,
		WorkflowID:  params.WorkflowID,
		RunID:       params.RunID,
		IsTesting:   params.IsTesting,
	}

	return context.WithValue(ctx, WorkflowExecutionContextKey{}, workflowExecutionContext)
}

func GetWorkflowExecutionContext(ctx context.Context) (*WorkflowExecutionContext, bool) {
	workflowExecutionContext, ok := ctx.Value(WorkflowExecutionContextKey{}).(*WorkflowExecutionContext)
	return workflowExecutionContext, ok
}

// RunIDFromContext returns the run id of the execution in ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	workflowExecutionContext, ok := GetWorkflowExecutionContext(ctx)
	if !ok {
		return ""
	}

	return workflowExecutionContext.RunID
}
