package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	r "github.com/fjod/fitlyf/orders-service/internal/repository"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"
)

type MockRepository struct {
	mu           sync.Mutex
	OutboxEvents []*r.OutboxEvent
	FetchErr     error
	MarkErr      error
	ProcessedIDs []int64
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var out []*r.OutboxEvent
	done := map[int64]bool{}
	for _, id := range m.ProcessedIDs {
		done[id] = true
	}
	for _, e := range m.OutboxEvents {
		if !done[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

func (m *MockRepository) processed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.ProcessedIDs...)
}

type MockWriter struct {
	mu       sync.Mutex
	Messages []kafkaGo.Message
	FailKeys map[string]bool
}

func (w *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		if w.FailKeys[string(m.Key)] {
			return errors.New("broker unavailable")
		}
	}
	w.Messages = append(w.Messages, msgs...)
	return nil
}

func (w *MockWriter) Close() error { return nil }

func testEvents() []*r.OutboxEvent {
	return []*r.OutboxEvent{
		{ID: 1, EventID: "e-1", AggregateID: "order-1", EventType: domain.EventTypeOrderPlaced, Payload: json.RawMessage(`{"order_id":"order-1"}`)},
		{ID: 2, EventID: "e-2", AggregateID: "order-2", EventType: domain.EventTypeOrderPlaced, Payload: json.RawMessage(`{"order_id":"order-2"}`)},
	}
}

func TestProcessUnpublishedEvents(t *testing.T) {
	repo := &MockRepository{OutboxEvents: testEvents()}
	writer := &MockWriter{}
	p := &OutboxPoller{eventTick: time.Second, repo: repo, writer: writer, log: zap.NewNop()}

	n := p.processUnpublishedEvents(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, repo.processed())
	require.Len(t, writer.Messages, 2)
	msg := writer.Messages[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventTypeOrderPlaced, string(msg.Headers[0].Value))
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventPending(t *testing.T) {
	repo := &MockRepository{OutboxEvents: testEvents()}
	writer := &MockWriter{FailKeys: map[string]bool{"order-1": true}}
	p := &OutboxPoller{eventTick: time.Second, repo: repo, writer: writer, log: zap.NewNop()}

	n := p.processUnpublishedEvents(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2}, repo.processed())

	// the broker recovers; the next tick retries the event
	writer.FailKeys = nil
	n = p.processUnpublishedEvents(context.Background())
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2, 1}, repo.processed())
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	repo := &MockRepository{FetchErr: errors.New("database connection error")}
	writer := &MockWriter{}
	p := &OutboxPoller{eventTick: time.Second, repo: repo, writer: writer, log: zap.NewNop()}

	assert.Equal(t, 0, p.processUnpublishedEvents(context.Background()))
	assert.Empty(t, writer.Messages)
}

func TestProcessUnpublishedEvents_MarkError(t *testing.T) {
	repo := &MockRepository{OutboxEvents: testEvents(), MarkErr: errors.New("deadlock")}
	writer := &MockWriter{}
	p := &OutboxPoller{eventTick: time.Second, repo: repo, writer: writer, log: zap.NewNop()}

	assert.Equal(t, 0, p.processUnpublishedEvents(context.Background()))
	assert.Len(t, writer.Messages, 2)
}

func TestRun_StopsOnCancel(t *testing.T) {
	repo := &MockRepository{OutboxEvents: testEvents()}
	p := &OutboxPoller{eventTick: 10 * time.Millisecond, repo: repo, writer: &MockWriter{}, log: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(repo.processed()) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	createTopic(t, brokerAddr, domain.TopicOrderEvents)

	repo := &MockRepository{OutboxEvents: testEvents()[:1]}
	p := NewOutboxPoller(repo, zap.NewNop(), brokerAddr)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go p.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    domain.TopicOrderEvents,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-1", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-1", payload["order_id"])

	require.Eventually(t, func() bool { return len(repo.processed()) == 1 }, 5*time.Second, 100*time.Millisecond)
}
