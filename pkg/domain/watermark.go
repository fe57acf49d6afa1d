package domain

import (
	"context"
	"fmt"
	"net/url"
)

// WatermarkKey identifies the watermark of one trigger instance on one
// connector.
type WatermarkKey struct {
	IntegrationType IntegrationType
	WorkspaceID     string
	WorkflowID      string
	TriggerID       string
}

// String joins the parts with ":". Each part is query-escaped first, so a ":"
// inside an id cannot make two keys collide.
func (k WatermarkKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%s",
		url.QueryEscape(string(k.IntegrationType)),
		url.QueryEscape(k.WorkspaceID),
		url.QueryEscape(k.WorkflowID),
		url.QueryEscape(k.TriggerID),
	)
}

// WatermarkStore persists lastFetchEpochMS per trigger instance.
// Get reports ok=false when no watermark has been stored yet.
type WatermarkStore interface {
	Get(ctx context.Context, key WatermarkKey) (value int64, ok bool, err error)
	Put(ctx context.Context, key WatermarkKey, value int64) error
	Delete(ctx context.Context, key WatermarkKey) error
	Close(ctx context.Context) error
}
