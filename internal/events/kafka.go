package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

const eventTypePrefix = "settlement.status."

// Producer is the part of kafka.Writer the publisher needs
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter creates a kafka.Writer that waits for all in-sync replicas.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// KafkaPublisher writes one message per transition, keyed by session ID so a session's
// events stay ordered within a partition.
type KafkaPublisher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewKafkaPublisher(log *slog.Logger, producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{log: log, producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev model.StatusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode status event: %w", err)
	}

	eventType := eventTypePrefix + string(ev.To)
	headers := []kafka.Header{{Key: "event_type", Value: []byte(eventType)}}
	headers = injectTraceHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(ev.SessionID),
		Value:   payload,
		Headers: headers,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("status event dispatch failed", "session_id", ev.SessionID, "type", eventType, "err", err)
		return err
	}
	p.log.Debug("status event dispatched", "session_id", ev.SessionID, "type", eventType)
	return nil
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
