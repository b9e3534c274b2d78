package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent() model.StatusEvent {
	return model.StatusEvent{
		SessionID: "s-1",
		From:      model.TransactionStatusIdle,
		To:        model.TransactionStatusProcessing,
		TxHash:    "0xfeed",
		At:        time.Date(2025, 5, 17, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_WritesKeyedMessage(t *testing.T) {
	producer := &fakeProducer{}
	p := NewKafkaPublisher(quietLogger(), producer, "settlement.events")

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, producer.msgs, 1)

	msg := producer.msgs[0]
	assert.Equal(t, "settlement.events", msg.Topic)
	assert.Equal(t, "s-1", string(msg.Key))

	var got model.StatusEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, sampleEvent(), got)

	var eventType string
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			eventType = string(h.Value)
		}
	}
	assert.Equal(t, "settlement.status.processing", eventType)
}

func TestKafkaPublisher_ReturnsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(quietLogger(), &fakeProducer{err: boom}, "t")

	assert.ErrorIs(t, p.Publish(context.Background(), sampleEvent()), boom)
}

func TestLogPublisher_NeverFails(t *testing.T) {
	p := NewLogPublisher(quietLogger())
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
}
