package models

import (
	"time"
)

// Run statuses. A pending run holds the dedup claim for its trigger;
// a failed run releases it so a later detection may retry.
const (
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ProvisionRun is the durable record of one orchestration run. It doubles
// as the dedup ledger row for the originating trigger.
type ProvisionRun struct {
	ID          string     `json:"id" gorm:"primary_key"`
	TriggerID   string     `json:"trigger_id" gorm:"uniqueIndex;not null"`
	Source      string     `json:"source" gorm:"default:mentions"`
	Subject     string     `json:"subject"`
	Status      string     `json:"status" gorm:"not null;default:pending"`
	StoreID     *string    `json:"store_id"`
	Route       *string    `json:"route"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
