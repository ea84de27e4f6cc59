// Package events publishes application lifecycle events to Kafka. Publishing
// is best-effort and fire-and-forget: a broker outage must never delay or
// fail the registration workflow.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"village-gate/internal/application/models"
)

// Event kinds emitted over the lifecycle of an application.
const (
	KindSubmitted = "application.submitted"
	KindApproved  = "application.approved"
	KindRejected  = "application.rejected"
)

// Event is the JSON payload produced per lifecycle transition, keyed by
// applicant id so per-applicant ordering is preserved within a partition.
type Event struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	ApplicationID int64     `json:"application_id"`
	ApplicantID   int64     `json:"applicant_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher produces lifecycle events to a Kafka topic. A nil Publisher is
// valid and drops everything, so callers never branch on configuration.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the given brokers. Returns (nil, nil) when no
// brokers are configured.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Emit produces one lifecycle event for app. Failures are logged, never
// returned: the caller's handler must not degrade because Kafka is down.
func (p *Publisher) Emit(ctx context.Context, kind string, app *models.Application) {
	if p == nil || app == nil {
		return
	}
	event := Event{
		ID:            uuid.NewString(),
		Kind:          kind,
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		Status:        string(app.Status),
		OccurredAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal lifecycle event", "kind", kind, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(app.ApplicantID, 10)),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("produce lifecycle event",
				"kind", kind,
				"applicant_id", app.ApplicantID,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client. Nil-safe.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("flush lifecycle events on close", "error", err)
	}
	p.client.Close()
}
