package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/launchdarkly/eventsource"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

// statusEvent adapts a StatusEvent to the server-sent events wire format
type statusEvent struct {
	id   string
	data string
}

func (e statusEvent) Id() string    { return e.id }
func (e statusEvent) Event() string { return "status" }
func (e statusEvent) Data() string  { return e.data }

// StreamPublisher pushes transitions to browsers subscribed to their session's channel.
type StreamPublisher struct {
	srv *eventsource.Server
	seq atomic.Uint64
}

func NewStreamPublisher() *StreamPublisher {
	srv := eventsource.NewServer()
	srv.AllowCORS = true
	return &StreamPublisher{srv: srv}
}

func (p *StreamPublisher) Publish(_ context.Context, ev model.StatusEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode status event: %w", err)
	}
	id := strconv.FormatUint(p.seq.Add(1), 10)
	p.srv.Publish([]string{ev.SessionID}, statusEvent{id: id, data: string(data)})
	return nil
}

// Handler streams the events of one session
func (p *StreamPublisher) Handler(sessionID string) http.HandlerFunc {
	return p.srv.Handler(sessionID)
}

// Close disconnects every subscriber
func (p *StreamPublisher) Close() {
	p.srv.Close()
}

// Fanout delivers each event to every publisher and returns the first error.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev model.StatusEvent) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
