package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatermarkKey_String(t *testing.T) {
	tests := []struct {
		name     string
		key      WatermarkKey
		expected string
	}{
		{
			name:     "plain ids",
			key:      WatermarkKey{IntegrationType: IntegrationType_HubSpot, WorkspaceID: "ws-1", WorkflowID: "wf-1", TriggerID: "t-1"},
			expected: "hubspot:ws-1:wf-1:t-1",
		},
		{
			name:     "separator inside an id",
			key:      WatermarkKey{IntegrationType: IntegrationType_HubSpot, WorkspaceID: "ws:1", WorkflowID: "wf", TriggerID: "t"},
			expected: "hubspot:ws%3A1:wf:t",
		},
		{
			name:     "escape character inside an id",
			key:      WatermarkKey{IntegrationType: IntegrationType_HubSpot, WorkspaceID: "ws%3A1", WorkflowID: "wf", TriggerID: "t"},
			expected: "hubspot:ws%253A1:wf:t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.String())
		})
	}
}

func TestWatermarkKey_StringDoesNotCollide(t *testing.T) {
	first := WatermarkKey{IntegrationType: IntegrationType_HubSpot, WorkspaceID: "ws", WorkflowID: "wf:a", TriggerID: "b"}
	second := WatermarkKey{IntegrationType: IntegrationType_HubSpot, WorkspaceID: "ws", WorkflowID: "wf", TriggerID: "a:b"}

	assert.NotEqual(t, first.String(), second.String())
}
