package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeClickRecord = "click:record"
)

// ClickRecordPayload carries one click event to the worker.
type ClickRecordPayload struct {
	TenantID  uuid.UUID  `json:"tenant_id"`
	ProfileID uuid.UUID  `json:"profile_id"`
	BlockID   *uuid.UUID `json:"block_id,omitempty"`
	URL       string     `json:"url"`
	Referrer  *string    `json:"referrer,omitempty"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
}

func NewClickRecordTask(payload ClickRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeClickRecord, data), nil
}
