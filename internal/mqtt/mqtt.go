// Package mqtt relays fired navigation actions to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/soar/gamepadbrowse/internal/actions"
)

// DefaultTopic is the topic used when none is configured.
const DefaultTopic = "gamepadbrowse/actions"

// Publisher publishes action events.
type Publisher interface {
	// Publish sends one event to the broker. Failures are reported, never
	// fatal.
	Publish(event actions.Event) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the MQTT message body.
type Payload struct {
	Action ActionPayload `json:"action"`
}

// ActionPayload carries the event details.
type ActionPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FormatPayload creates the JSON payload for an event.
func FormatPayload(event actions.Event) ([]byte, error) {
	return json.Marshal(Payload{
		Action: ActionPayload{
			Timestamp: event.Time.UTC().Format(time.RFC3339Nano),
			Name:      event.Action,
			Detail:    event.Detail,
			Error:     event.Err,
		},
	})
}

// Relay is an actions.Recorder that hands events to a Publisher on its own
// goroutine, so a slow broker never stalls the sampling loop.
type Relay struct {
	pub    Publisher
	events chan actions.Event
	log    *slog.Logger
}

// NewRelay creates a relay buffering up to size events.
func NewRelay(pub Publisher, size int, logger *slog.Logger) *Relay {
	if size <= 0 {
		size = 32
	}
	return &Relay{
		pub:    pub,
		events: make(chan actions.Event, size),
		log:    logger.With("component", "mqtt"),
	}
}

// Record queues e, dropping it when the buffer is full.
func (r *Relay) Record(e actions.Event) {
	select {
	case r.events <- e:
	default:
		r.log.Warn("relay buffer full, dropping event", "action", e.Action)
	}
}

// Run publishes queued events until ctx is cancelled, then closes the
// publisher.
func (r *Relay) Run(ctx context.Context) {
	defer func() {
		if err := r.pub.Close(); err != nil {
			r.log.Warn("close publisher", "err", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.events:
			if err := r.pub.Publish(e); err != nil {
				r.log.Warn("publish failed", "action", e.Action, "err", err)
				continue
			}
			r.log.Debug("published", "action", e.Action)
		}
	}
}
