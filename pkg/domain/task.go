package domain

import "context"

type ExecutorTaskPublisher interface {
	EnqueueTask(ctx context.Context, workspaceID string, task Task) error
}

type Task interface {
	GetType() TaskType
}

type TaskType string

var (
	ExecuteWorkflow TaskType = "execute_workflow"
)

// ExecuteWorkflowTask asks the workflow engine to start a run from a trigger
// node with one polled item as payload.
type ExecuteWorkflowTask struct {
	ID          string   `json:"id"`
	WorkspaceID string   `json:"workspace_id"`
	WorkflowID  string   `json:"workflow_id"`
	UserID      string   `json:"user_id"`
	FromNodeID  string   `json:"from_node_id"`
	Payload     PollItem `json:"payload"`
}

func (t ExecuteWorkflowTask) GetType() TaskType {
	return ExecuteWorkflow
}
