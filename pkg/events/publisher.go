package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"telecare/pkg/logger"
	"telecare/pkg/model"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

type Publisher interface {
	AppointmentBooked(ctx context.Context, appt *model.Appointment) error
	AppointmentStatusChanged(ctx context.Context, appt *model.Appointment, previousStatus string) error
	Close() error
}

// KafkaPublisher writes lifecycle events through a single kafka-go writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	source string
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic string, source string, log *logger.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // key by appointment id for per-appointment ordering
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		BatchTimeout: 10 * time.Millisecond,
	}

	log.Info("Kafka event publisher initialized", "topic", topic, "brokers", brokers)

	return &KafkaPublisher{
		writer: writer,
		source: source,
		log:    log,
	}, nil
}

func (p *KafkaPublisher) AppointmentBooked(ctx context.Context, appt *model.Appointment) error {
	return p.publish(ctx, newAppointmentEvent(TypeAppointmentBooked, appt))
}

func (p *KafkaPublisher) AppointmentStatusChanged(ctx context.Context, appt *model.Appointment, previousStatus string) error {
	event := newAppointmentEvent(TypeAppointmentStatusChanged, appt)
	event.PreviousStatus = previousStatus
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, event AppointmentEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AppointmentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.EventID)},
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderSource, Value: []byte(p.source)},
			{Key: HeaderTimestamp, Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.log.Debug("Lifecycle event published",
		"event_id", event.EventID,
		"type", event.Type,
		"appointment_id", event.AppointmentID,
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NopPublisher satisfies Publisher when event publishing is not configured.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher { return &NopPublisher{} }

func (*NopPublisher) AppointmentBooked(context.Context, *model.Appointment) error {
	return nil
}

func (*NopPublisher) AppointmentStatusChanged(context.Context, *model.Appointment, string) error {
	return nil
}

func (*NopPublisher) Close() error { return nil }
