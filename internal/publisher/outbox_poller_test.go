package publisher

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbarashe-m/musika/internal/domain"
)

type MockEventStore struct {
	Events    []domain.OutboxEvent
	FetchErr  error
	MarkErr   error
	Processed []int64
}

func (m *MockEventStore) GetUnprocessedEvents(_ context.Context, _ int) ([]domain.OutboxEvent, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Events, nil
}

func (m *MockEventStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Processed = append(m.Processed, id)
	return nil
}

type MockWriter struct {
	Messages []kafka.Message
	Err      error
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func newTestPoller(store EventStore, writer messageWriter) *OutboxPoller {
	return &OutboxPoller{
		batch:  100,
		store:  store,
		writer: writer,
		logger: slog.New(slog.DiscardHandler),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	store := &MockEventStore{
		Events: []domain.OutboxEvent{
			{ID: 1, AggregateID: "order-1", EventType: "order.created", Payload: []byte(`{"order_id":"order-1"}`)},
			{ID: 2, AggregateID: "order-2", EventType: "payment.completed", Payload: []byte(`{"order_id":"order-2"}`)},
		},
	}
	writer := &MockWriter{}
	poller := newTestPoller(store, writer)

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.Messages, 2)
	msg := writer.Messages[0]
	assert.Equal(t, []byte("order-1"), msg.Key)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("order.created"), msg.Headers[0].Value)

	assert.Equal(t, []int64{1, 2}, store.Processed)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventUnmarked(t *testing.T) {
	store := &MockEventStore{
		Events: []domain.OutboxEvent{
			{ID: 7, AggregateID: "order-7", EventType: "order.created", Payload: []byte(`{}`)},
		},
	}
	writer := &MockWriter{Err: errors.New("broker unavailable")}
	poller := newTestPoller(store, writer)

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.Messages)
	assert.Empty(t, store.Processed)
}

func TestProcessUnpublishedEvents_FetchFailureIsQuiet(t *testing.T) {
	store := &MockEventStore{FetchErr: errors.New("db down")}
	writer := &MockWriter{}
	poller := newTestPoller(store, writer)

	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, writer.Messages)
}

func TestProcessUnpublishedEvents_MarkFailureStillPublishesRest(t *testing.T) {
	store := &MockEventStore{
		Events: []domain.OutboxEvent{
			{ID: 1, AggregateID: "a", EventType: "order.created", Payload: []byte(`{}`)},
			{ID: 2, AggregateID: "b", EventType: "order.created", Payload: []byte(`{}`)},
		},
		MarkErr: errors.New("db down"),
	}
	writer := &MockWriter{}
	poller := newTestPoller(store, writer)

	poller.processUnpublishedEvents(context.Background())

	// both publish; neither marks, so both would be retried next tick
	assert.Len(t, writer.Messages, 2)
	assert.Empty(t, store.Processed)
}
