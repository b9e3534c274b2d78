// Package events delivers transaction status transitions to logs or a Kafka topic.
package events

import (
	"context"
	"log/slog"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

// Publisher receives every status transition of every session.
type Publisher interface {
	Publish(ctx context.Context, ev model.StatusEvent) error
}

// LogPublisher writes events to the structured log. It is the default when Kafka is not configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev model.StatusEvent) error {
	p.log.Info("status event",
		"session_id", ev.SessionID,
		"from", string(ev.From),
		"to", string(ev.To),
		"tx_hash", ev.TxHash,
		"at", ev.At,
	)
	return nil
}
