package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer is closed")

// ProducerConfig holds writer configuration.
type ProducerConfig struct {
	Brokers      []string      `yaml:"brokers" mapstructure:"brokers"`
	ClientID     string        `yaml:"client_id" mapstructure:"client_id"`
	BatchSize    int           `yaml:"batch_size" mapstructure:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"`
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequiredAcks int           `yaml:"required_acks" mapstructure:"required_acks"`
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes, keyed by run so per-run ordering holds.
type Producer struct {
	writer    WriterInterface
	logger    logging.Logger
	source    string
	closed    atomic.Bool
	published atomic.Int64
	failed    atomic.Int64
}

// NewProducer builds a producer over a real kafka.Writer.
func NewProducer(cfg ProducerConfig, source string, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "no kafka brokers configured")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}
	return &Producer{writer: writer, logger: logger, source: source}, nil
}

// NewProducerWithWriter injects a writer, for tests.
func NewProducerWithWriter(writer WriterInterface, source string, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: writer, logger: logger, source: source}
}

// PublishEvent wraps a payload in an envelope and writes it, keyed by key.
func (p *Producer) PublishEvent(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	envelope, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	return p.PublishEnvelope(ctx, topic, key, envelope)
}

// PublishEnvelope writes a prepared envelope.
func (p *Producer) PublishEnvelope(ctx context.Context, topic, key string, envelope *EventEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	data, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(envelope.EventID)},
			{Key: "event_type", Value: []byte(envelope.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.logger.Error("failed to publish event",
			logging.String("topic", topic),
			logging.String("event_type", envelope.EventType),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka publish failed")
	}
	p.published.Add(1)
	p.logger.Debug("published event",
		logging.String("topic", topic),
		logging.String("event_type", envelope.EventType),
		logging.String("key", key))
	return nil
}

// Published reports the number of successfully written events.
func (p *Producer) Published() int64 { return p.published.Load() }

// Failed reports the number of write failures.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close flushes and shuts the writer down.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

func marshalEnvelope(envelope *EventEnvelope) ([]byte, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}
	return data, nil
}

//Personal.AI order the ending
