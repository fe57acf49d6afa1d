package domain

import (
	"strconv"
)

// PollItem is one record emitted by a polling trigger, stamped with the
// timestamp used to advance the watermark.
type PollItem struct {
	EpochMilliseconds int64          `json:"epochMilliseconds"`
	Data              map[string]any `json:"data"`
}

// WorkflowTrigger is a configured trigger node: which event it listens for
// and the settings the user picked for it.
type WorkflowTrigger struct {
	ID                  string                      `json:"id"`
	EventType           IntegrationTriggerEventType `json:"event_type"`
	IntegrationSettings map[string]any              `json:"integration_settings"`
}

type PollingEvent struct {
	IntegrationType IntegrationType
	Trigger         WorkflowTrigger
	WorkflowID      string
	UserID          string
	WorkspaceID     string

	// LastFetchEpochMS is the stored watermark. Zero means test mode.
	LastFetchEpochMS int64

	// Credential overrides the credential_id setting when the caller sends
	// the auth object inline.
	Credential map[string]any
}

func (e PollingEvent) IsTest() bool {
	return e.LastFetchEpochMS == 0
}

type PollResult struct {
	Items []PollItem

	// LastModifiedData is the advisory next watermark in decimal. The host
	// decides whether to persist it.
	LastModifiedData string
}

func (r PollResult) NextWatermark() (int64, error) {
	if r.LastModifiedData == "" {
		return 0, nil
	}

	return strconv.ParseInt(r.LastModifiedData, 10, 64)
}
