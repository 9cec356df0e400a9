package dedup

import (
	"context"
	"errors"
	"sync"

	"whopgen/internal/models"
)

// ErrNotClaimed is returned when Complete or Release is called for a trigger
// id that has no open reservation.
var ErrNotClaimed = errors.New("dedup: trigger has no open claim")

// Claim describes an open reservation for a trigger id.
type Claim struct {
	RunID   string
	Subject string
	Source  string
}

// Ledger is the dedup store for trigger ids. Claiming is two-phase: a
// successful Claim reserves the id before any external call is made, and the
// reservation is either converted to permanently-handled by Complete or
// reopened for a later retry by Release.
type Ledger interface {
	// Claim reserves the trigger id. It returns false when the id is
	// already reserved or permanently handled. A previously failed id may
	// be claimed again.
	Claim(ctx context.Context, triggerID string, claim Claim) (bool, error)

	// Complete converts the reservation into a permanent record.
	Complete(ctx context.Context, triggerID string, store models.StoreRecord) error

	// Release reopens the id after a failed run so a later detection can
	// retry it.
	Release(ctx context.Context, triggerID string, cause error) error

	// Seed marks the given ids as permanently handled. Used at startup to
	// skip historical triggers.
	Seed(ctx context.Context, triggerIDs []string) error
}

type memoryEntry struct {
	status string
	claim  Claim
}

// MemoryLedger is a process-lifetime Ledger for development and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]*memoryEntry)}
}

func (l *MemoryLedger) Claim(_ context.Context, triggerID string, claim Claim) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[triggerID]; ok && entry.status != models.RunStatusFailed {
		return false, nil
	}

	l.entries[triggerID] = &memoryEntry{status: models.RunStatusPending, claim: claim}
	return true, nil
}

func (l *MemoryLedger) Complete(_ context.Context, triggerID string, _ models.StoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[triggerID]
	if !ok || entry.status != models.RunStatusPending {
		return ErrNotClaimed
	}
	entry.status = models.RunStatusCompleted
	return nil
}

func (l *MemoryLedger) Release(_ context.Context, triggerID string, _ error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[triggerID]
	if !ok || entry.status != models.RunStatusPending {
		return ErrNotClaimed
	}
	entry.status = models.RunStatusFailed
	return nil
}

func (l *MemoryLedger) Seed(_ context.Context, triggerIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range triggerIDs {
		l.entries[id] = &memoryEntry{status: models.RunStatusCompleted}
	}
	return nil
}
