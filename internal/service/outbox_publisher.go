package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPublisherConfig struct {
	PollEvery time.Duration
	BatchSize int
}

// OutboxPublisher relays committed outbox rows to Kafka. Delivery is at least once:
// a crash between the write and the commit republishes the batch.
type OutboxPublisher struct {
	tx         repository.Transactor
	outboxRepo repository.OutboxRepository
	writer     MessageWriter
	log        *logrus.Logger
	pollEvery  time.Duration
	batchSize  int
}

func NewOutboxPublisher(
	tx repository.Transactor,
	outboxRepo repository.OutboxRepository,
	writer MessageWriter,
	log *logrus.Logger,
	cfg OutboxPublisherConfig,
) *OutboxPublisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &OutboxPublisher{
		tx:         tx,
		outboxRepo: outboxRepo,
		writer:     writer,
		log:        log,
		pollEvery:  cfg.PollEvery,
		batchSize:  cfg.BatchSize,
	}
}

// Run polls until ctx is cancelled. Without a writer it returns immediately.
func (p *OutboxPublisher) Run(ctx context.Context) {
	if p.writer == nil {
		p.log.Warn("Outbox publisher disabled (no kafka brokers configured)")
		return
	}

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.log.Errorf("Outbox publish failed: %+v", err)
			}
		}
	}
}

// PublishBatch relays one batch and returns how many events were published.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) (int, error) {
	var published int

	err := p.tx.Transaction(ctx, func(tx *gorm.DB) error {
		events, err := p.outboxRepo.FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil {
			return fmt.Errorf("fetch unpublished events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, e := range events {
			value, err := json.Marshal(map[string]interface{}{
				"event_id":    e.EventID,
				"event_type":  e.EventType,
				"occurred_at": e.CreatedAt,
				"data":        e.Payload,
			})
			if err != nil {
				return fmt.Errorf("encode event %s: %w", e.EventID, err)
			}

			msgs = append(msgs, kafka.Message{
				Key:   []byte(e.AggregateID.String()),
				Value: value,
				Headers: []kafka.Header{
					{Key: "event_id", Value: []byte(e.EventID.String())},
					{Key: "event_type", Value: []byte(e.EventType)},
				},
			})
			ids = append(ids, e.ID)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write %d messages: %w", len(msgs), err)
		}

		if err := p.outboxRepo.MarkPublished(ctx, tx, ids, time.Now()); err != nil {
			return fmt.Errorf("mark events published: %w", err)
		}

		published = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		p.log.Debugf("Published %d outbox events", published)
	}
	return published, nil
}
