// Package kafka publishes and consumes run lifecycle events.  Every message
// on the wire is an EventEnvelope with a typed JSON payload.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

const (
	TopicRunCreated   = "discovery.run.created"
	TopicRunStarted   = "discovery.run.started"
	TopicRunCompleted = "discovery.run.completed"
	TopicRunFailed    = "discovery.run.failed"
	TopicDeadLetter   = "discovery.dead_letter"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RunCreatedPayload announces a newly accepted run.
type RunCreatedPayload struct {
	RunID     string    `json:"run_id"`
	DrugCount int       `json:"drug_count"`
	CreatedAt time.Time `json:"created_at"`
}

// RunStartedPayload announces that a worker picked a run up.
type RunStartedPayload struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// RunCompletedPayload announces a finished run and where its result lives.
type RunCompletedPayload struct {
	RunID       string    `json:"run_id"`
	ArtifactKey string    `json:"artifact_key"`
	Solutions   int       `json:"solutions"`
	Generations int       `json:"generations"`
	FinishedAt  time.Time `json:"finished_at"`
}

// RunFailedPayload announces a run that ended in error.
type RunFailedPayload struct {
	RunID      string    `json:"run_id"`
	ErrorCode  string    `json:"error_code"`
	Message    string    `json:"message"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewEventEnvelope wraps a payload for publication.
func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic administration
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes one topic to provision.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager provisions the run lifecycle topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "no kafka brokers configured")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to connect to kafka broker")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// NewTopicManagerWithConn injects a broker connection, for tests.
func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "topic name is required")
	}
	if cfg.NumPartitions <= 0 {
		cfg.NumPartitions = 3
	}
	if cfg.ReplicationFactor <= 0 {
		cfg.ReplicationFactor = 1
	}
	err := m.conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create topic "+cfg.Name)
	}
	m.logger.Info("ensured kafka topic",
		logging.String("topic", cfg.Name),
		logging.Int("partitions", cfg.NumPartitions))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureDefaultTopics provisions every run lifecycle topic.
func (m *TopicManager) EnsureDefaultTopics(ctx context.Context) error {
	for _, cfg := range DefaultTopics() {
		if err := m.CreateTopic(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

func DefaultTopics() []TopicConfig {
	return []TopicConfig{
		{Name: TopicRunCreated, NumPartitions: 3, ReplicationFactor: 1},
		{Name: TopicRunStarted, NumPartitions: 3, ReplicationFactor: 1},
		{Name: TopicRunCompleted, NumPartitions: 3, ReplicationFactor: 1},
		{Name: TopicRunFailed, NumPartitions: 3, ReplicationFactor: 1},
		{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: 1},
	}
}

//Personal.AI order the ending
