package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"whopgen/internal/logger"
	"whopgen/internal/models"
)

// Topics.
const (
	// TopicProvisionRequests carries manual provisioning requests from the
	// api binary to the bot.
	TopicProvisionRequests = "provision-requests"
	// TopicStorefrontEvents carries outcomes published by the bot.
	TopicStorefrontEvents = "storefront-events"
)

// Event types.
const (
	TypeProvisionRequested    = "provision.requested"
	TypeStorefrontProvisioned = "storefront.provisioned"
)

// Event is the wire shape shared by both topics.
type Event struct {
	Type      string    `json:"type"`
	TriggerID string    `json:"trigger_id"`
	Subject   string    `json:"subject"`
	StoreID   string    `json:"store_id,omitempty"`
	Route     string    `json:"route,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// PublishRequested enqueues a manual provisioning request for the bot.
func (p *Publisher) PublishRequested(ctx context.Context, triggerID, subject string) error {
	event := Event{
		Type:      TypeProvisionRequested,
		TriggerID: triggerID,
		Subject:   subject,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, TopicProvisionRequests, triggerID, event)
}

// PublishProvisioned announces a completed provisioning run.
func (p *Publisher) PublishProvisioned(ctx context.Context, req models.ProvisioningRequest, store models.StoreRecord) error {
	event := Event{
		Type:      TypeStorefrontProvisioned,
		TriggerID: req.SourceTriggerID,
		Subject:   req.SubjectName,
		StoreID:   store.ExternalID,
		Route:     store.Route,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, TopicStorefrontEvents, req.SourceTriggerID, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Published %s event for trigger %s", event.Type, event.TriggerID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
