package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"unilink/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	DefaultBookingsTopic  = "unilink.bookings"
	headerEventType       = "event-type"
)

// Publisher announces booking lifecycle events.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, b models.Booking) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by booking id, so every event for a
// booking lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultBookingsTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to publish booking events", zap.Int("count", len(msgs)), zap.Error(err))
			}
		},
		Logger:      kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(logger.Sugar().Errorf),
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) PublishBookingConfirmed(ctx context.Context, b models.Booking) error {
	value, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode booking %s: %w", b.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(b.ID),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(EventBookingConfirmed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventBookingConfirmed, err)
	}
	return nil
}

// Close flushes pending async writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, models.Booking) error { return nil }

func (NoopPublisher) Close() error { return nil }
