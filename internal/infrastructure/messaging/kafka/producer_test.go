package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishEventWritesEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "worker", nil)

	payload := RunCompletedPayload{
		RunID:       "r42",
		ArtifactKey: "runs/r42/result.json",
		Solutions:   7,
		Generations: 500,
		FinishedAt:  time.Now().UTC(),
	}
	err := producer.PublishEvent(context.Background(), TopicRunCompleted, "r42", TopicRunCompleted, payload)
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, TopicRunCompleted, msg.Topic)
	assert.Equal(t, []byte("r42"), msg.Key)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, TopicRunCompleted, envelope.EventType)
	assert.Equal(t, "worker", envelope.Source)

	var decoded RunCompletedPayload
	require.NoError(t, envelope.DecodePayload(&decoded))
	assert.Equal(t, "runs/r42/result.json", decoded.ArtifactKey)
	assert.Equal(t, 7, decoded.Solutions)

	assert.Equal(t, int64(1), producer.Published())
	assert.Equal(t, int64(0), producer.Failed())
}

func TestPublishEventHeadersCarryEventIdentity(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "worker", nil)

	err := producer.PublishEvent(context.Background(), TopicRunFailed, "r1", TopicRunFailed,
		RunFailedPayload{RunID: "r1", ErrorCode: "ENG_003", Message: "aborted"})
	require.NoError(t, err)

	headers := writer.messages[0].Headers
	require.Len(t, headers, 2)
	assert.Equal(t, "event_id", headers[0].Key)
	assert.NotEmpty(t, headers[0].Value)
	assert.Equal(t, "event_type", headers[1].Key)
	assert.Equal(t, TopicRunFailed, string(headers[1].Value))
}

func TestPublishWriteFailure(t *testing.T) {
	writer := &fakeWriter{err: assert.AnError}
	producer := NewProducerWithWriter(writer, "worker", nil)

	err := producer.PublishEvent(context.Background(), TopicRunCreated, "r1", TopicRunCreated,
		RunCreatedPayload{RunID: "r1"})
	assert.Error(t, err)
	assert.Equal(t, int64(1), producer.Failed())
}

func TestPublishAfterClose(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "worker", nil)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
	require.NoError(t, producer.Close())

	err := producer.PublishEvent(context.Background(), TopicRunCreated, "r1", TopicRunCreated,
		RunCreatedPayload{RunID: "r1"})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

//Personal.AI order the ending
