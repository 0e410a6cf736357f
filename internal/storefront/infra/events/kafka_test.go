package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestNewClientSplitsBrokers(t *testing.T) {
	c := NewClient([]string{"a:9092, b:9092", " ", "c:9092"})
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, c.Brokers)
	assert.True(t, c.Enabled())

	assert.False(t, NewClient(nil).Enabled())
	_, err := NewKafkaPublisher(NewClient([]string{""}), "orders")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	event := entity.OrderEvent{
		Type:       entity.EventOrderPlaced,
		OrderID:    42,
		Reference:  "ORD-42",
		Status:     entity.StatusNew,
		Total:      "23.00",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, entity.EventOrderPlaced, string(w.msgs[0].Headers[0].Value))

	var decoded entity.OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), entity.OrderEvent{Type: entity.EventOrderStatusChanged, OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestConsumeSkipsBadMessages(t *testing.T) {
	good, err := encode(entity.OrderEvent{Type: entity.EventOrderPlaced, OrderID: 9})
	require.NoError(t, err)
	r := &fakeReader{msgs: []kafka.Message{{Value: []byte("not json")}, good}}

	var seen []int64
	err = Consume(context.Background(), r, func(_ context.Context, e entity.OrderEvent) error {
		seen = append(seen, e.OrderID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, seen)
}

func TestLogPublisherNeverFails(t *testing.T) {
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), entity.OrderEvent{Type: entity.EventOrderPlaced}))
}
