// Package publisher drains the order-event outbox to Kafka. Events are
// written by the checkout flow in the same store as the orders they
// describe; the poller publishes them and marks them processed, so a crash
// between the two at worst re-publishes.
package publisher

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/simbarashe-m/musika/internal/domain"
)

// EventStore is the outbox slice of the persistence gateway.
type EventStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// messageWriter matches kafka.Writer; tests substitute their own.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	tick   time.Duration
	batch  int
	store  EventStore
	writer messageWriter
	logger *slog.Logger
}

func NewOutboxPoller(store EventStore, logger *slog.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		tick:   time.Second,
		batch:  100,
		store:  store,
		writer: w,
		logger: logger,
	}
}

// Close releases the underlying Kafka writer.
func (p *OutboxPoller) Close() error {
	if c, ok := p.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run polls until the context is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.store.GetUnprocessedEvents(ctx, p.batch)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", slog.String("error", err.Error()))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.Error("failed to publish outbox event",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()))
			continue
		}

		if err := p.store.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.logger.Error("failed to mark outbox event as processed",
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()))
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event domain.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id, keeps per-order ordering
		Value: event.Payload,             // already JSON from the outbox row
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
