package models

import "time"

// TriggerEvent is a single inbound mention notification that may be asking
// for a storefront to be provisioned.
type TriggerEvent struct {
	ID         string    `json:"id"`
	RawText    string    `json:"raw_text"`
	ObservedAt time.Time `json:"observed_at"`
}

// ProvisioningRequest is the parsed form of a matching trigger. It only
// lives for the duration of a single orchestration run.
type ProvisioningRequest struct {
	SubjectName     string `json:"subject_name"`
	SourceTriggerID string `json:"source_trigger_id"`
	Source          string `json:"source"`
}

// Request sources.
const (
	SourceMentions = "mentions"
	SourceManual   = "manual"
)
