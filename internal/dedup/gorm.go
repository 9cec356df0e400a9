package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"whopgen/internal/models"
)

// GormLedger stores reservations as provision_runs rows, so dedup survives
// restarts and the api binary can list runs from the same table.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Claim(ctx context.Context, triggerID string, claim Claim) (bool, error) {
	claimed := false

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run models.ProvisionRun
		err := tx.Where("trigger_id = ?", triggerID).First(&run).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			runID := claim.RunID
			if runID == "" {
				runID = uuid.NewString()
			}
			run = models.ProvisionRun{
				ID:        runID,
				TriggerID: triggerID,
				Source:    claim.Source,
				Subject:   claim.Subject,
				Status:    models.RunStatusPending,
			}
			if err := tx.Create(&run).Error; err != nil {
				return fmt.Errorf("failed to create run: %w", err)
			}
			claimed = true
			return nil

		case err != nil:
			return fmt.Errorf("failed to load run: %w", err)

		case run.Status == models.RunStatusFailed:
			// Reopen a previously failed run for retry.
			updates := map[string]interface{}{
				"status":  models.RunStatusPending,
				"subject": claim.Subject,
				"source":  claim.Source,
				"error":   nil,
			}
			if err := tx.Model(&run).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to reclaim run: %w", err)
			}
			claimed = true
			return nil

		default:
			// Pending or completed: already handled.
			return nil
		}
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (l *GormLedger) Complete(ctx context.Context, triggerID string, store models.StoreRecord) error {
	now := time.Now()
	result := l.db.WithContext(ctx).
		Model(&models.ProvisionRun{}).
		Where("trigger_id = ? AND status = ?", triggerID, models.RunStatusPending).
		Updates(map[string]interface{}{
			"status":       models.RunStatusCompleted,
			"store_id":     store.ExternalID,
			"route":        store.Route,
			"completed_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotClaimed
	}
	return nil
}

func (l *GormLedger) Release(ctx context.Context, triggerID string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}

	result := l.db.WithContext(ctx).
		Model(&models.ProvisionRun{}).
		Where("trigger_id = ? AND status = ?", triggerID, models.RunStatusPending).
		Updates(map[string]interface{}{
			"status": models.RunStatusFailed,
			"error":  message,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotClaimed
	}
	return nil
}

func (l *GormLedger) Seed(ctx context.Context, triggerIDs []string) error {
	now := time.Now()
	for _, triggerID := range triggerIDs {
		var count int64
		if err := l.db.WithContext(ctx).
			Model(&models.ProvisionRun{}).
			Where("trigger_id = ?", triggerID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check seed id: %w", err)
		}
		if count > 0 {
			continue
		}

		run := models.ProvisionRun{
			ID:          uuid.NewString(),
			TriggerID:   triggerID,
			Source:      "seed",
			Status:      models.RunStatusCompleted,
			CompletedAt: &now,
		}
		if err := l.db.WithContext(ctx).Create(&run).Error; err != nil {
			return fmt.Errorf("failed to seed run: %w", err)
		}
	}
	return nil
}
