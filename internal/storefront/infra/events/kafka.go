// Package events carries order events out of the process after commit.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

var ErrDisabled = errors.New("kafka disabled")

type Client struct {
	Brokers []string
}

// NewClient drops blank entries, so an empty list disables Kafka.
func NewClient(brokers []string) *Client {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return &Client{Brokers: out}
}

func (c *Client) Enabled() bool {
	return c != nil && len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func (c *Client) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher keys every message by order id so the events of one
// order land on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(c *Client, topic string) (*KafkaPublisher, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return &KafkaPublisher{writer: c.NewWriter(topic)}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.OrderEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %s for order %d: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event entity.OrderEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: encode %s: %w", event.Type, err)
	}
	return kafka.Message{
		Key:     []byte(strconv.FormatInt(event.OrderID, 10)),
		Value:   data,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(event.Type)}},
	}, nil
}

// LogPublisher stands in when no broker is configured.
type LogPublisher struct{}

var _ ports.EventPublisher = LogPublisher{}

func (LogPublisher) Publish(ctx context.Context, event entity.OrderEvent) error {
	slog.InfoContext(ctx, "order event",
		slog.String("type", event.Type),
		slog.Int64("order_id", event.OrderID),
		slog.String("reference", event.Reference),
		slog.String("status", string(event.Status)),
	)
	return nil
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consume decodes order events until ctx is cancelled. A handler error
// is logged and the message is skipped.
func Consume(ctx context.Context, r messageReader, handle func(context.Context, entity.OrderEvent) error) error {
	defer r.Close()
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("kafka: read: %w", err)
		}

		var event entity.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.WarnContext(ctx, "skipping undecodable order event",
				slog.Int64("offset", msg.Offset), slog.Any("error", err))
			continue
		}
		if err := handle(ctx, event); err != nil {
			slog.ErrorContext(ctx, "order event handler failed",
				slog.String("type", event.Type), slog.Int64("order_id", event.OrderID), slog.Any("error", err))
		}
	}
}
