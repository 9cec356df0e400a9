package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"whopgen/internal/config"
	"whopgen/internal/dedup"
	"whopgen/internal/events"
	"whopgen/internal/logger"
	"whopgen/internal/models"
)

// TriggerSource produces trigger events, one batch per poll.
type TriggerSource interface {
	FetchMentions(ctx context.Context) ([]models.TriggerEvent, error)
}

// Saga runs the full provisioning sequence for one request.
type Saga interface {
	Run(ctx context.Context, req models.ProvisioningRequest) (models.StoreRecord, error)
}

// Publisher announces completed runs. Optional.
type Publisher interface {
	PublishProvisioned(ctx context.Context, req models.ProvisioningRequest, store models.StoreRecord) error
}

// Worker drives the bot: a timer-driven poll of the mention stream plus a
// Kafka consumer for manual provisioning requests. Poll cycles never
// overlap: a tick that fires while the previous cycle is still in flight is
// skipped.
type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	source    TriggerSource
	parser    *Parser
	ledger    dedup.Ledger
	saga      Saga
	publisher Publisher
	reader    *kafka.Reader

	cycleMu sync.Mutex
	stop    chan struct{}
}

func New(cfg *config.Config, logger *logger.Logger, source TriggerSource, parser *Parser, ledger dedup.Ledger, saga Saga, publisher Publisher) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(cfg.KafkaBrokers, ","),
		GroupID:        "whopgen-bot",
		Topic:          events.TopicProvisionRequests,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:    cfg,
		logger:    logger,
		source:    source,
		parser:    parser,
		ledger:    ledger,
		saga:      saga,
		publisher: publisher,
		reader:    reader,
		stop:      make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, polling mentions every %s", w.config.PollInterval)

	go w.consumeRequests()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.runCycle()
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stop)
	w.reader.Close()
}

// runCycle fetches one batch of mentions and processes every matching
// trigger. A fetch failure skips the whole cycle; there are no partial
// results and no retry before the next tick.
func (w *Worker) runCycle() {
	if !w.cycleMu.TryLock() {
		w.logger.Warn("Previous poll cycle still in flight, skipping tick")
		return
	}
	defer w.cycleMu.Unlock()

	ctx := context.Background()

	triggers, err := w.source.FetchMentions(ctx)
	if err != nil {
		w.logger.Error("Failed to fetch mentions: %v", err)
		return
	}
	w.logger.Debug("Fetched %d mention(s)", len(triggers))

	for _, trigger := range triggers {
		w.handleTrigger(ctx, trigger)
	}
}

// handleTrigger parses and claims one trigger, then runs the saga for it.
// The claim happens at match time, before any external call, so overlapping
// observers of the same trigger cannot both start a run.
func (w *Worker) handleTrigger(ctx context.Context, trigger models.TriggerEvent) {
	subject, ok := w.parser.Parse(trigger.RawText)
	if !ok {
		// Not a provisioning request. The ledger is not touched.
		return
	}

	claimed, err := w.ledger.Claim(ctx, trigger.ID, dedup.Claim{
		Subject: subject,
		Source:  models.SourceMentions,
	})
	if err != nil {
		w.logger.Error("Failed to claim trigger %s: %v", trigger.ID, err)
		return
	}
	if !claimed {
		w.logger.Debug("Trigger %s already handled", trigger.ID)
		return
	}

	w.process(ctx, models.ProvisioningRequest{
		SubjectName:     subject,
		SourceTriggerID: trigger.ID,
		Source:          models.SourceMentions,
	})
}

// process runs the saga and settles the ledger claim: completed on success,
// released on failure so a later detection may retry.
func (w *Worker) process(ctx context.Context, req models.ProvisioningRequest) {
	store, err := w.saga.Run(ctx, req)
	if err != nil {
		w.logger.Error("Provisioning run for trigger %s failed: %v", req.SourceTriggerID, err)
		if releaseErr := w.ledger.Release(ctx, req.SourceTriggerID, err); releaseErr != nil {
			w.logger.Error("Failed to release claim for trigger %s: %v", req.SourceTriggerID, releaseErr)
		}
		return
	}

	if err := w.ledger.Complete(ctx, req.SourceTriggerID, store); err != nil {
		w.logger.Error("Failed to complete claim for trigger %s: %v", req.SourceTriggerID, err)
	}

	if w.publisher != nil {
		if err := w.publisher.PublishProvisioned(ctx, req, store); err != nil {
			w.logger.Error("Failed to publish provisioned event for %s: %v", store.Route, err)
		}
	}
}

// consumeRequests handles manual provisioning requests submitted through the
// api binary.
func (w *Worker) consumeRequests() {
	w.logger.Info("Listening for manual provisioning requests...")

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				continue
			}
			w.logger.Error("Failed to read request message: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse request message: %v", err)
			continue
		}
		if event.Type != events.TypeProvisionRequested || event.Subject == "" {
			continue
		}

		triggerID := event.TriggerID
		if triggerID == "" {
			triggerID = "manual-" + uuid.NewString()
		}

		claimed, err := w.ledger.Claim(context.Background(), triggerID, dedup.Claim{
			Subject: event.Subject,
			Source:  models.SourceManual,
		})
		if err != nil {
			w.logger.Error("Failed to claim request %s: %v", triggerID, err)
			continue
		}
		if !claimed {
			w.logger.Debug("Request %s already handled", triggerID)
			continue
		}

		w.process(context.Background(), models.ProvisioningRequest{
			SubjectName:     event.Subject,
			SourceTriggerID: triggerID,
			Source:          models.SourceManual,
		})
	}
}
