package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.ErrCodeInternal, "consumer closed")
)

// Handler processes one decoded event.  A non-nil error triggers retries and
// eventually the dead letter topic.
type Handler func(ctx context.Context, envelope *EventEnvelope) error

// ConsumerConfig holds reader configuration.
type ConsumerConfig struct {
	Brokers        []string      `yaml:"brokers" mapstructure:"brokers"`
	GroupID        string        `yaml:"group_id" mapstructure:"group_id"`
	Topic          string        `yaml:"topic" mapstructure:"topic"`
	MinBytes       int           `yaml:"min_bytes" mapstructure:"min_bytes"`
	MaxBytes       int           `yaml:"max_bytes" mapstructure:"max_bytes"`
	CommitInterval time.Duration `yaml:"commit_interval" mapstructure:"commit_interval"`
	MaxRetries     int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

func (cfg *ConsumerConfig) applyDefaults() {
	if cfg.MinBytes <= 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads run lifecycle events and dispatches them by event type.
type Consumer struct {
	reader     ReaderInterface
	deadLetter *Producer
	logger     logging.Logger
	cfg        ConsumerConfig

	mu       sync.RWMutex
	handlers map[string]Handler
	running  bool
	closed   bool
}

// NewConsumer builds a consumer over a real kafka.Reader.
func NewConsumer(cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "no kafka brokers configured")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "consumer group id is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "consumer topic is required")
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
	})
	return &Consumer{
		reader:     reader,
		deadLetter: deadLetter,
		logger:     logger.Named("kafka.consumer"),
		cfg:        cfg,
		handlers:   make(map[string]Handler),
	}, nil
}

// NewConsumerWithReader injects a reader, for tests.
func NewConsumerWithReader(cfg ConsumerConfig, reader ReaderInterface, deadLetter *Producer, logger logging.Logger) *Consumer {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:     reader,
		deadLetter: deadLetter,
		logger:     logger,
		cfg:        cfg,
		handlers:   make(map[string]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (c *Consumer) Subscribe(eventType string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = handler
}

// Start consumes until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConsumerClosed
	}
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka fetch failed")
		}
		c.processMessage(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka commit failed")
		}
	}
}

// processMessage decodes, dispatches with retries, and dead-letters on
// exhaustion.  Messages with no registered handler are skipped.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		c.logger.Error("discarding undecodable message",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		c.sendToDeadLetter(ctx, msg, "undecodable envelope")
		return
	}

	c.mu.RLock()
	handler, ok := c.handlers[envelope.EventType]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug("no handler for event type",
			logging.String("event_type", envelope.EventType))
		return
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryBackoff * time.Duration(attempt)):
			}
		}
		if lastErr = handler(ctx, &envelope); lastErr == nil {
			return
		}
		c.logger.Warn("event handler failed",
			logging.String("event_type", envelope.EventType),
			logging.Int("attempt", attempt+1),
			logging.Err(lastErr))
	}

	c.logger.Error("event handler exhausted retries",
		logging.String("event_type", envelope.EventType),
		logging.Err(lastErr))
	c.sendToDeadLetter(ctx, msg, lastErr.Error())
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg kafka.Message, reason string) {
	if c.deadLetter == nil {
		return
	}
	envelope := &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     "dead_letter",
		Source:        c.cfg.GroupID,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       msg.Value,
		Metadata: map[string]string{
			"origin_topic": msg.Topic,
			"reason":       reason,
		},
	}
	if err := c.deadLetter.PublishEnvelope(ctx, TopicDeadLetter, string(msg.Key), envelope); err != nil {
		c.logger.Error("failed to dead-letter message", logging.Err(err))
	}
}

// Close stops the consumer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.reader.Close()
}

//Personal.AI order the ending
